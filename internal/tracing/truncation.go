package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200

	// MaxSQLLength SQL语句最大长度
	MaxSQLLength = 500

	// MaxRedisLength Redis键值最大长度
	MaxRedisLength = 100

	// MaxSnippetLength 简历文本片段最大长度
	MaxSnippetLength = 150

	// MaxSkillListLength 技能列表属性最大长度
	MaxSkillListLength = 300
)

// maskPIILookup 属性名中出现即需掩码处理的关键字
var maskPIILookup = map[string]bool{
	"email":    true,
	"phone":    true,
	"password": true,
	"身份证":      true,
	"id_card":  true,
	"address":  true,
	"地址":       true,
	"name":     true,
	"姓名":       true,
	"secret":   true,
	"token":    true,
	"api_key":  true,
}

// SafeAttributeValue 保证span属性值安全：敏感字段掩码，超长值截断
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for keyword := range maskPIILookup {
		if strings.Contains(lowerName, keyword) {
			return maskValue(value)
		}
	}

	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if len(value) > maxLength {
		return value[:maxLength] + "..."
	}
	return value
}

// maskValue 保留首尾各一个字符，中间掩码
func maskValue(value string) string {
	if len(value) <= 2 {
		return "**"
	}
	return value[:1] + strings.Repeat("*", 4) + value[len(value)-1:]
}

// TruncateSkills 截断技能列表字符串，用于日志和span属性
func TruncateSkills(skills []string) string {
	joined := strings.Join(skills, ", ")
	if len(joined) > MaxSkillListLength {
		return joined[:MaxSkillListLength] + "..."
	}
	return joined
}
