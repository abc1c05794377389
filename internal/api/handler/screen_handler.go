package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gofrs/uuid/v5"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/screener"
	"resume-screener-go/internal/storage"
	"resume-screener-go/internal/storage/models"
	"resume-screener-go/internal/types"
)

// ScreenHandler 筛选处理器，负责批量筛选与文档上传入口
type ScreenHandler struct {
	cfg      *config.Config
	storage  *storage.Storage
	screener *screener.Screener
}

// NewScreenHandler 创建筛选处理器
func NewScreenHandler(cfg *config.Config, storage *storage.Storage, s *screener.Screener) *ScreenHandler {
	return &ScreenHandler{
		cfg:      cfg,
		storage:  storage,
		screener: s,
	}
}

// ScreenRequest 批量筛选请求
type ScreenRequest struct {
	RoleID    string              `json:"role_id"`
	Documents []types.DocumentRef `json:"documents"`
	// Threshold 缺省取配置的默认阈值；0 是合法取值
	Threshold *float64 `json:"threshold,omitempty"`
	// SkipMissing 缺省为 true：来源不可用的文档直接跳过
	SkipMissing *bool `json:"skip_missing,omitempty"`
}

// ScreenResponse 批量筛选响应，结果保持输入顺序
type ScreenResponse struct {
	BatchID     string                      `json:"batch_id"`
	NumScreened int                         `json:"num_screened"`
	Results     []types.ScreeningResultView `json:"results"`
}

// HandleScreen 对一批文档执行岗位筛选
func (h *ScreenHandler) HandleScreen(ctx context.Context, req *ScreenRequest) (*ScreenResponse, error) {
	if req.RoleID == "" {
		return nil, fmt.Errorf("role_id 不能为空")
	}
	if len(req.Documents) == 0 {
		return nil, fmt.Errorf("documents 不能为空")
	}

	skipMissing := true
	if req.SkipMissing != nil {
		skipMissing = *req.SkipMissing
	}

	batchUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成批次ID失败: %w", err)
	}
	batchID := batchUUID.String()

	results, err := h.screener.Screen(ctx, req.RoleID, req.Documents, screener.ScreenParams{
		Threshold:   req.Threshold,
		SkipMissing: skipMissing,
		BatchID:     batchID,
	})
	if err != nil {
		return nil, err
	}

	return &ScreenResponse{
		BatchID:     batchID,
		NumScreened: len(results),
		Results:     results,
	}, nil
}

// DocumentUploadResponse 文档上传响应
// SourceRef 可直接作为筛选请求中的 documents[].source 使用
type DocumentUploadResponse struct {
	SourceRef string `json:"source_ref"`
	FileSize  int64  `json:"file_size"`
}

// HandleDocumentUpload 上传简历文档到对象存储
func (h *ScreenHandler) HandleDocumentUpload(ctx context.Context, reader io.Reader, fileSize int64, filename string) (*DocumentUploadResponse, error) {
	if h.storage.MinIO == nil {
		return nil, fmt.Errorf("对象存储未配置，无法上传文档")
	}

	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}

	docUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".pdf" // 默认为PDF
	}
	objectName := docUUID.String() + ext

	sourceRef, err := h.storage.MinIO.UploadDocument(ctx, objectName, bytes.NewReader(fileBytes), int64(len(fileBytes)), "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("上传文档到MinIO失败: %w", err)
	}

	return &DocumentUploadResponse{
		SourceRef: sourceRef,
		FileSize:  int64(len(fileBytes)),
	}, nil
}

// HandleGetResume 按ID查询简历记录
func (h *ScreenHandler) HandleGetResume(ctx context.Context, resumeID string) (*models.Resume, error) {
	if resumeID == "" {
		return nil, fmt.Errorf("resume_id 不能为空")
	}
	return h.storage.MySQL.GetResume(ctx, resumeID)
}
