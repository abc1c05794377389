package storage

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener-go/internal/constants"
)

func TestSplitSkillsText(t *testing.T) {
	skills := SplitSkillsText("python; flask;  ; docker")
	assert.Equal(t, []string{"python", "flask", "docker"}, skills, "空白条目应被丢弃")

	assert.Empty(t, SplitSkillsText(""))
	assert.Empty(t, SplitSkillsText(" ; ; "))
}

func TestTruncateSnippet(t *testing.T) {
	assert.Equal(t, "简短文本", truncateSnippet("简短文本", constants.ResumeSnippetMaxLen), "未超限的片段应原样保留")
	assert.Equal(t, "", truncateSnippet("", constants.ResumeSnippetMaxLen))

	// 第1000个字符落在多字节字符上：截断必须落在字符边界
	mixed := strings.Repeat("a", constants.ResumeSnippetMaxLen-1) + "经验丰富的后端工程师"
	got := truncateSnippet(mixed, constants.ResumeSnippetMaxLen)
	assert.True(t, utf8.ValidString(got), "截断结果必须是合法UTF-8")
	assert.Equal(t, constants.ResumeSnippetMaxLen, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "经"), "第1000个字符应完整保留")

	// 全中文长文本：字节数远超上限但按字符数截断
	chinese := strings.Repeat("精通分布式系统", 300)
	got = truncateSnippet(chinese, constants.ResumeSnippetMaxLen)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, constants.ResumeSnippetMaxLen, utf8.RuneCountInString(got))
}

func TestParseMinIOSourceRef(t *testing.T) {
	bucket, key, err := parseMinIOSourceRef("minio://resumes/2024/cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "resumes", bucket)
	assert.Equal(t, "2024/cv.pdf", key)

	_, _, err = parseMinIOSourceRef("/local/path.pdf")
	assert.Error(t, err, "非minio://前缀的引用应报错")

	_, _, err = parseMinIOSourceRef("minio://only-bucket")
	assert.Error(t, err)
}

func TestIsMinIOSourceRef(t *testing.T) {
	assert.True(t, IsMinIOSourceRef("minio://b/k"))
	assert.False(t, IsMinIOSourceRef("/data/cv.pdf"))
	assert.False(t, IsMinIOSourceRef(""))
}
