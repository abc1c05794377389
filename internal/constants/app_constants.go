package constants

import "time"

const (
	// DefaultSemanticThreshold 语义匹配的默认余弦相似度阈值
	// 调低提高召回率，调高提高精确率，调用方可按次覆盖
	DefaultSemanticThreshold = 0.45

	// ResumeSnippetMaxLen 简历文本入库片段的最大长度（完整文本仅在内存中参与抽取，不落库）
	ResumeSnippetMaxLen = 1000

	// SkillsJoinSeparator 技能集合入库时的连接符
	SkillsJoinSeparator = "; "

	// ExtractionMethodExtracted 文本来自解析器链的正常提取
	ExtractionMethodExtracted = "extracted"
	// ExtractionMethodFallback 文本来自调用方提供的兜底文本
	ExtractionMethodFallback = "fallback"
)

// Redis Key 常量
// 统一命名规范: app:{module}:{entity}:{unique_id}
const (
	// KeyResumeTextMD5Set 简历原始文本MD5集合，用于重复投递识别 (SET)
	// 格式: app:resume:dedup_set
	KeyResumeTextMD5Set = "app:resume:dedup_set"

	// KeyRoleSkillsText 岗位技能文本缓存 (STRING)
	// 格式: app:role:text:{roleID}
	KeyRoleSkillsText = "app:role:text:%s"

	// RoleSkillsCacheDuration 岗位技能文本缓存时长
	RoleSkillsCacheDuration = 24 * time.Hour
)
