package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSkillsLexical(t *testing.T) {
	e := NewSkillExtractor(nil, true)

	skills := e.ExtractSkills("Built web applications with Python and Flask for three years.")
	assert.Equal(t, []string{"flask", "python"}, skills, "应精确命中词表中的 python 与 flask")
}

func TestExtractSkillsFromLabeledLine(t *testing.T) {
	e := NewSkillExtractor(nil, true)

	text := `Technical Skills: Python, React, Docker, Kubernetes; PostgreSQL
Experienced building services with Flask and deploying via Docker.`
	skills := e.ExtractSkills(text)

	for _, want := range []string{"python", "react", "docker", "kubernetes", "postgresql", "flask"} {
		assert.Contains(t, skills, want, "标注行与短语匹配的结果应取并集")
	}
}

func TestExtractSkillsLabeledLineOutsideVocabulary(t *testing.T) {
	e := NewSkillExtractor(nil, true)

	// 标注行中的词表外技能也应被捕获
	skills := e.ExtractSkills("Technical Skills: ClickHouse, Python")
	assert.Contains(t, skills, "clickhouse")
	assert.Contains(t, skills, "python")
}

func TestExtractSkillsVariants(t *testing.T) {
	e := NewSkillExtractor(nil, true)

	skills := e.ExtractSkills("Migrated data from Postgres to MongoDB last quarter.")
	assert.Contains(t, skills, "postgres")
	assert.Contains(t, skills, "mongodb")
}

func TestExtractSkillsSymbolNames(t *testing.T) {
	e := NewSkillExtractor(nil, true)

	skills := e.ExtractSkills("Proficient in C++ and C#, with production Node.js experience and CI/CD pipelines.")
	for _, want := range []string{"c++", "c#", "node.js", "ci/cd"} {
		assert.Contains(t, skills, want, "含符号的技能名应按整词命中")
	}
	// 单字母技能不应命中单词内部
	assert.NotContains(t, skills, "r")
	assert.NotContains(t, skills, "go")
}

func TestExtractSkillsEmptyInput(t *testing.T) {
	e := NewSkillExtractor(nil, true)

	assert.Empty(t, e.ExtractSkills(""))
	assert.Empty(t, e.ExtractSkills("   \n  "))
}

func TestExtractSkillsIdempotent(t *testing.T) {
	e := NewSkillExtractor(nil, true)

	text := "Technical Skills: Python, Docker\nAlso familiar with Kubernetes and MySQL."
	first := e.ExtractSkills(text)
	second := e.ExtractSkills(text)
	require.Equal(t, first, second, "同一输入的抽取结果应稳定")
}

func TestNounFallbackOnlyWhenNothingFound(t *testing.T) {
	e := NewSkillExtractor(nil, true)

	// 前三种策略全部落空时，含词表词根的短语整体入选
	skills := e.ExtractSkills("dedicated server administration")
	assert.Equal(t, []string{"dedicated server administration"}, skills)

	// 一旦有精确命中，兜底不触发
	skills = e.ExtractSkills("dedicated server administration with python")
	assert.Equal(t, []string{"python"}, skills)
}

func TestNounFallbackDisabled(t *testing.T) {
	e := NewSkillExtractor(nil, false)

	skills := e.ExtractSkills("dedicated server administration")
	assert.Empty(t, skills, "关闭兜底后低精度分支不应产出结果")
}

func TestCustomVocabulary(t *testing.T) {
	e := NewSkillExtractor([]string{"  Erlang ", "", "elixir"}, true)

	skills := e.ExtractSkills("Ten years of Erlang and Elixir.")
	assert.Equal(t, []string{"elixir", "erlang"}, skills, "自定义词表应在加载时小写去空")
}
