package matcher

import (
	"context"
	"fmt"
	"math"

	"github.com/cloudwego/eino/components/embedding"

	"resume-screener-go/internal/logger"
)

// SemanticMatcher 基于句向量的语义匹配器
// 向量模型由外部注入，进程启动时构造一次，所有调用共享
type SemanticMatcher struct {
	embedder embedding.Embedder
}

// NewSemanticMatcher 创建语义匹配器
func NewSemanticMatcher(embedder embedding.Embedder) *SemanticMatcher {
	return &SemanticMatcher{embedder: embedder}
}

// ComputeSkillMatches 计算每份文档语义命中的技能集合
// 技能与文档各嵌入一次，算完整的技能×文档余弦相似度矩阵，
// 按列筛出相似度 >= threshold 的技能；空技能表或空文档表直接返回每文档一个空集
func (m *SemanticMatcher) ComputeSkillMatches(ctx context.Context, jobSkills []string, documents []string, threshold float64) ([][]string, error) {
	result := make([][]string, len(documents))
	for i := range result {
		result[i] = []string{}
	}
	if len(jobSkills) == 0 || len(documents) == 0 {
		return result, nil
	}

	texts := make([]string, 0, len(jobSkills)+len(documents))
	texts = append(texts, jobSkills...)
	texts = append(texts, documents...)

	vectors, err := m.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("嵌入技能与文档文本失败: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("嵌入结果数量不符: 期望 %d, 实际 %d", len(texts), len(vectors))
	}

	skillVecs := vectors[:len(jobSkills)]
	docVecs := vectors[len(jobSkills):]

	for d, docVec := range docVecs {
		for s, skillVec := range skillVecs {
			if cosineSimilarity(skillVec, docVec) >= threshold {
				result[d] = append(result[d], jobSkills[s])
			}
		}
	}

	logger.Ctx(ctx).Debug().
		Int("skills", len(jobSkills)).
		Int("documents", len(documents)).
		Float64("threshold", threshold).
		Msg("技能语义匹配完成")
	return result, nil
}

// ComputeSimilarityScores 计算岗位汇总文本与各文档全文的余弦相似度
// 与阈值无关的连续相关性信号；分值保持原始余弦输出，不做截断
func (m *SemanticMatcher) ComputeSimilarityScores(ctx context.Context, roleText string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return []float64{}, nil
	}

	texts := make([]string, 0, len(documents)+1)
	texts = append(texts, roleText)
	texts = append(texts, documents...)

	vectors, err := m.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("嵌入岗位与文档文本失败: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("嵌入结果数量不符: 期望 %d, 实际 %d", len(texts), len(vectors))
	}

	roleVec := vectors[0]
	scores := make([]float64, len(documents))
	for i, docVec := range vectors[1:] {
		scores[i] = cosineSimilarity(roleVec, docVec)
	}
	return scores, nil
}

// cosineSimilarity 余弦相似度，任一向量为零向量时返回0
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
