package types

import "time"

// DocumentRef 指向一份待筛选文档的来源
// Source 支持本地文件路径（如 /data/resume.pdf）和对象存储引用（minio://bucket/key）
type DocumentRef struct {
	Source string `json:"source"`
	// FallbackText 来源不可用或提取为空时的兜底文本，可为空
	FallbackText string `json:"fallback_text,omitempty"`
}

// RoleView 岗位视图
type RoleView struct {
	RoleID     string    `json:"role_id"`
	Name       string    `json:"name"`
	Skills     []string  `json:"skills"`
	SkillsText string    `json:"skills_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScreeningResultView 单份文档的筛选结果，按输入顺序返回，不做排序
type ScreeningResultView struct {
	ResumeID         string   `json:"resume_id"`
	Source           string   `json:"source"`
	ExtractionMethod string   `json:"extraction_method,omitempty"`
	MatchedSkills    []string `json:"matched_skills"`
	NumMatchedSkills int      `json:"num_matched_skills"`
	// SimilarityScore 岗位聚合文本与文档全文的余弦相似度，保留原始值，不截断到[0,1]
	SimilarityScore float64 `json:"similarity_score"`
}

// RankedResultRow 从存储中按 num_matched_skills DESC, similarity_score DESC 读出的结果行
type RankedResultRow struct {
	ResultID         uint64    `json:"result_id"`
	RoleName         string    `json:"role_name"`
	Source           string    `json:"source"`
	MatchedSkills    string    `json:"matched_skills"`
	NumMatchedSkills int       `json:"num_matched_skills"`
	SimilarityScore  float64   `json:"similarity_score"`
	ExtractionMethod string    `json:"extraction_method"`
	CreatedAt        time.Time `json:"created_at"`
}
