package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExtractor 可控的提取器桩，用于验证逐级兜底
type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	s.calls++
	return s.text, s.err
}

func writeTempDoc(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGetTextFirstTierWins(t *testing.T) {
	path := writeTempDoc(t, "raw bytes")
	tier1 := &stubExtractor{text: "张三 Python工程师"}
	tier2 := &stubExtractor{text: "不应被调用"}

	provider := NewTextProvider(
		[]DocumentSource{FileDocumentSource{}},
		[]TextExtractor{tier1, tier2},
	)

	text, err := provider.GetText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "张三 Python工程师", text)
	assert.Equal(t, 1, tier1.calls)
	assert.Equal(t, 0, tier2.calls, "第一级成功后不应继续调用后续级别")
}

func TestGetTextFallsThroughOnErrorAndEmpty(t *testing.T) {
	path := writeTempDoc(t, "raw bytes")
	tier1 := &stubExtractor{err: errors.New("解析失败")}
	tier2 := &stubExtractor{text: "   "}
	tier3 := &stubExtractor{text: "OCR提取的文本"}

	provider := NewTextProvider(
		[]DocumentSource{FileDocumentSource{}},
		[]TextExtractor{tier1, tier2, tier3},
	)

	text, err := provider.GetText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "OCR提取的文本", text)
	assert.Equal(t, 1, tier1.calls)
	assert.Equal(t, 1, tier2.calls)
	assert.Equal(t, 1, tier3.calls)
}

func TestGetTextAllTiersFailReturnsEmpty(t *testing.T) {
	path := writeTempDoc(t, "raw bytes")
	tier1 := &stubExtractor{err: errors.New("解析失败")}
	tier2 := &stubExtractor{err: errors.New("OCR失败")}

	provider := NewTextProvider(
		[]DocumentSource{FileDocumentSource{}},
		[]TextExtractor{tier1, tier2},
	)

	text, err := provider.GetText(context.Background(), path)
	require.NoError(t, err, "全部级别失败时返回空文本而不是错误")
	assert.Empty(t, text)
}

func TestGetTextMissingFile(t *testing.T) {
	provider := NewTextProvider(
		[]DocumentSource{FileDocumentSource{}},
		[]TextExtractor{&stubExtractor{text: "x"}},
	)

	_, err := provider.GetText(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	path := writeTempDoc(t, "raw bytes")
	provider := NewTextProvider([]DocumentSource{FileDocumentSource{}}, nil)

	exists, err := provider.Exists(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = provider.Exists(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.NoError(t, err)
	assert.False(t, exists)

	// 无来源适配器能处理的引用按不存在处理
	exists, err = provider.Exists(context.Background(), "minio://bucket/key")
	require.NoError(t, err)
	assert.False(t, exists)
}
