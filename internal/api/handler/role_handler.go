package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/logger"
	"resume-screener-go/internal/screener"
	"resume-screener-go/internal/storage"
	"resume-screener-go/internal/types"
)

// RoleHandler 岗位管理处理器，负责岗位的增删查与结果查询
type RoleHandler struct {
	cfg      *config.Config
	storage  *storage.Storage
	screener *screener.Screener
}

// NewRoleHandler 创建岗位处理器
func NewRoleHandler(cfg *config.Config, storage *storage.Storage, s *screener.Screener) *RoleHandler {
	return &RoleHandler{
		cfg:      cfg,
		storage:  storage,
		screener: s,
	}
}

// CreateRoleRequest 创建岗位请求
// 提供 job_text 时自动抽取技能；否则使用手工技能列表
type CreateRoleRequest struct {
	Name    string   `json:"name"`
	JobText string   `json:"job_text,omitempty"`
	Skills  []string `json:"skills,omitempty"`
}

// HandleCreateRole 按名幂等创建/更新岗位
func (h *RoleHandler) HandleCreateRole(ctx context.Context, req *CreateRoleRequest) (*types.RoleView, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("岗位名称不能为空")
	}

	if req.JobText != "" {
		return h.screener.AddRoleFromText(ctx, req.Name, req.JobText)
	}
	return h.screener.AddRoleManual(ctx, req.Name, req.Skills)
}

// HandleListRoles 列出全部岗位
func (h *RoleHandler) HandleListRoles(ctx context.Context) ([]types.RoleView, error) {
	return h.storage.MySQL.ListRoles(ctx)
}

// HandleGetRole 按ID查询岗位
func (h *RoleHandler) HandleGetRole(ctx context.Context, roleID string) (*types.RoleView, error) {
	return h.storage.MySQL.GetRole(ctx, roleID)
}

// HandleDeleteRole 删除岗位及其筛选结果，并失效缓存
func (h *RoleHandler) HandleDeleteRole(ctx context.Context, roleID string) error {
	if err := h.storage.MySQL.DeleteRole(ctx, roleID); err != nil {
		return err
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.InvalidateRoleSkillsText(ctx, roleID); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("role_id", roleID).Msg("失效岗位技能缓存失败")
		}
	}
	return nil
}

// HandleGetResults 读取岗位的筛选结果
// 排序固定为 num_matched_skills DESC, similarity_score DESC，topN<=0 返回全部
func (h *RoleHandler) HandleGetResults(ctx context.Context, roleID string, topN int) ([]types.RankedResultRow, error) {
	return h.storage.MySQL.GetResultsForRole(ctx, roleID, topN)
}

// WriteResultsCSV 将结果行写成CSV，供 ?format=csv 导出
func (h *RoleHandler) WriteResultsCSV(w io.Writer, rows []types.RankedResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"result_id", "role_name", "source", "matched_skills",
		"num_matched_skills", "similarity_score", "extraction_method", "created_at",
	}); err != nil {
		return fmt.Errorf("写CSV表头失败: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatUint(row.ResultID, 10),
			row.RoleName,
			row.Source,
			row.MatchedSkills,
			strconv.Itoa(row.NumMatchedSkills),
			strconv.FormatFloat(row.SimilarityScore, 'f', 6, 64),
			row.ExtractionMethod,
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("写CSV记录失败: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
