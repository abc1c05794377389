package screener

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrRoleNotFound     = errors.New("岗位不存在")
	ErrEmbeddingFailed  = errors.New("语义嵌入计算失败")
	ErrPersistFailed    = errors.New("持久化筛选结果失败")
	ErrTextFetchFailed  = errors.New("取回文档文本失败")
	ErrRoleUpsertFailed = errors.New("写入岗位失败")
)

// ScreeningError 包含批次上下文的自定义错误
type ScreeningError struct {
	BatchID string
	Op      string
	BaseErr error
	Detail  string
}

func (e *ScreeningError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 批次:%s): %s", e.BaseErr, e.Op, e.BatchID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 批次:%s)", e.BaseErr, e.Op, e.BatchID)
}

func (e *ScreeningError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ScreeningError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newRoleNotFoundError(roleID string) error {
	return &ScreeningError{
		Op:      "resolve_role",
		BaseErr: ErrRoleNotFound,
		Detail:  roleID,
	}
}

func newEmbeddingError(batchID, detail string) error {
	return &ScreeningError{
		BatchID: batchID,
		Op:      "embed",
		BaseErr: ErrEmbeddingFailed,
		Detail:  detail,
	}
}

func newPersistError(batchID, detail string) error {
	return &ScreeningError{
		BatchID: batchID,
		Op:      "persist",
		BaseErr: ErrPersistFailed,
		Detail:  detail,
	}
}
