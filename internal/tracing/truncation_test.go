package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeAttributeValueMasksPII(t *testing.T) {
	masked := SafeAttributeValue("candidate_email", "alice@example.com", DefaultMaxLength)
	assert.NotContains(t, masked, "example.com", "敏感字段应被掩码")
	assert.Contains(t, masked, "*")
}

func TestSafeAttributeValueTruncates(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := SafeAttributeValue("db.statement", long, DefaultMaxLength)
	assert.Len(t, got, DefaultMaxLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateSkills(t *testing.T) {
	short := TruncateSkills([]string{"python", "docker"})
	assert.Equal(t, "python, docker", short)

	var many []string
	for i := 0; i < 100; i++ {
		many = append(many, "kubernetes")
	}
	got := TruncateSkills(many)
	assert.LessOrEqual(t, len(got), MaxSkillListLength+3)
}
