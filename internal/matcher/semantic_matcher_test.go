package matcher

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder 固定向量的确定性嵌入器，按文本查表
type stubEmbedder struct {
	vectors map[string][]float64
}

func (s *stubEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			v = []float64{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func newTestMatcher() *SemanticMatcher {
	return NewSemanticMatcher(&stubEmbedder{vectors: map[string][]float64{
		"python":  {1, 0, 0},
		"docker":  {0, 1, 0},
		"doc-py":  {1, 0, 0},        // 与 python 完全同向
		"doc-mix": {0.6, 0.8, 0},    // 与 python 0.6、docker 0.8
		"doc-far": {0, 0, 1},        // 与两个技能正交
		"role":    {0.8, 0.6, 0},    // 岗位汇总文本
	}})
}

func TestComputeSkillMatchesThreshold(t *testing.T) {
	m := newTestMatcher()
	ctx := context.Background()
	skills := []string{"python", "docker"}
	docs := []string{"doc-py", "doc-mix", "doc-far"}

	matches, err := m.ComputeSkillMatches(ctx, skills, docs, 0.7)
	require.NoError(t, err)
	require.Len(t, matches, 3, "每份输入文档应产出一个集合")

	assert.Equal(t, []string{"python"}, matches[0])
	assert.Equal(t, []string{"docker"}, matches[1], "0.6 低于阈值, 仅 docker 命中")
	assert.Empty(t, matches[2], "正交文档不应命中任何技能")
}

func TestComputeSkillMatchesThresholdMonotone(t *testing.T) {
	m := newTestMatcher()
	ctx := context.Background()
	skills := []string{"python", "docker"}
	docs := []string{"doc-mix"}

	loose, err := m.ComputeSkillMatches(ctx, skills, docs, 0.5)
	require.NoError(t, err)
	strict, err := m.ComputeSkillMatches(ctx, skills, docs, 0.7)
	require.NoError(t, err)

	// 阈值收紧后命中集合只会缩小
	assert.Subset(t, loose[0], strict[0])
	assert.Equal(t, []string{"python", "docker"}, loose[0])
}

func TestComputeSkillMatchesZeroThreshold(t *testing.T) {
	m := newTestMatcher()

	matches, err := m.ComputeSkillMatches(context.Background(), []string{"python", "docker"}, []string{"doc-mix"}, 0)
	require.NoError(t, err)
	assert.Len(t, matches[0], 2, "非负相似度下零阈值应全量命中")
}

func TestComputeSkillMatchesEmptyInputs(t *testing.T) {
	m := newTestMatcher()
	ctx := context.Background()

	matches, err := m.ComputeSkillMatches(ctx, nil, []string{"doc-py", "doc-far"}, 0.5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Empty(t, matches[0])
	assert.Empty(t, matches[1])

	matches, err = m.ComputeSkillMatches(ctx, []string{"python"}, nil, 0.5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestComputeSimilarityScores(t *testing.T) {
	m := newTestMatcher()

	scores, err := m.ComputeSimilarityScores(context.Background(), "role", []string{"doc-py", "doc-far"})
	require.NoError(t, err)
	require.Len(t, scores, 2)

	assert.InDelta(t, 0.8, scores[0], 1e-9, "分值应为原始余弦输出")
	assert.InDelta(t, 0.0, scores[1], 1e-9)
}

func TestCosineSimilarityEdges(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 0}), "零向量相似度按0处理")
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{2, 0}, []float64{5, 0}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
}
