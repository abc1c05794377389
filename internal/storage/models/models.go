package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Role 岗位表，name全局唯一，重复添加按名覆盖技能集（upsert语义）
type Role struct {
	RoleID string `gorm:"type:char(36);primaryKey"`
	Name   string `gorm:"type:varchar(255);not null;uniqueIndex:idx_roles_name_unique"`
	// SkillsText 分号连接的小写技能集，条目去重且非空
	SkillsText string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt  time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// Resume 简历记录表，每次筛选每份输入文档创建一条，创建后不可变
type Resume struct {
	ResumeID   string `gorm:"type:char(36);primaryKey"`
	SourcePath string `gorm:"type:varchar(1024)"`
	// TextSnippet 截断到1000字符的入库片段，完整文本不落库
	TextSnippet string `gorm:"type:text"`
	// ExtractionMethod extracted / fallback，提取失败且无兜底时为NULL
	ExtractionMethod *string   `gorm:"type:varchar(50)"`
	RawTextMD5       string    `gorm:"type:char(32);index:idx_resumes_raw_text_md5"`
	CreatedAt        time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (Resume) TableName() string {
	return "resumes"
}

// ScreeningResult 筛选结果表，同一(role, resume)允许多条，每次筛选追加
type ScreeningResult struct {
	ResultID uint64 `gorm:"primaryKey;autoIncrement"`
	RoleID   string `gorm:"type:char(36);not null;index:idx_results_role_id"`
	ResumeID string `gorm:"type:char(36);not null;index:idx_results_resume_id"`
	// BatchID 同一次screen调用产生的结果共享一个批次ID
	BatchID string `gorm:"type:char(36);index:idx_results_batch_id"`
	// MatchedSkills 词法与语义命中集合的并集，分号连接
	MatchedSkills    string `gorm:"type:text"`
	NumMatchedSkills int    `gorm:"not null"`
	// SimilarityScore 原始余弦相似度，不做范围截断
	SimilarityScore float64 `gorm:"type:double;not null"`
	// MatchDetailsJSON 词法/语义命中的分解明细
	MatchDetailsJSON datatypes.JSON `gorm:"type:json"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	Role   *Role   `gorm:"foreignKey:RoleID;references:RoleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Resume *Resume `gorm:"foreignKey:ResumeID;references:ResumeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ScreeningResult) TableName() string {
	return "screening_results"
}

// MatchDetails 命中明细，按来源分解
type MatchDetails struct {
	LexicalSkills  []string `json:"lexical_skills"`
	SemanticSkills []string `json:"semantic_skills"`
}

// MatchDetailsToJSON 将命中明细序列化为JSON列值
func MatchDetailsToJSON(details MatchDetails) (datatypes.JSON, error) {
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("序列化命中明细失败: %w", err)
	}
	return datatypes.JSON(data), nil
}
