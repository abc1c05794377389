package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/storage/models"
)

// 集成测试：需要可用的MySQL实例，通过环境变量开启
//
//	MYSQL_TEST_HOST     必填，未设置时整组测试跳过
//	MYSQL_TEST_PORT     默认 3306
//	MYSQL_TEST_USER     默认 root
//	MYSQL_TEST_PASSWORD 默认空
//	MYSQL_TEST_DATABASE 默认 resume_screening_test
func newTestMySQL(t *testing.T) *MySQL {
	t.Helper()

	host := os.Getenv("MYSQL_TEST_HOST")
	if host == "" {
		t.Skip("未设置 MYSQL_TEST_HOST，跳过MySQL集成测试")
	}

	port := 3306
	if p := os.Getenv("MYSQL_TEST_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		require.NoError(t, err, "MYSQL_TEST_PORT 不是合法端口")
		port = parsed
	}

	cfg := &config.MySQLConfig{
		Host:                   host,
		Port:                   port,
		Username:               envOr("MYSQL_TEST_USER", "root"),
		Password:               os.Getenv("MYSQL_TEST_PASSWORD"),
		Database:               envOr("MYSQL_TEST_DATABASE", "resume_screening_test"),
		MaxIdleConns:           2,
		MaxOpenConns:           5,
		ConnMaxLifetimeMinutes: 5,
		ConnMaxIdleTimeMinutes: 5,
		ConnectTimeoutSeconds:  5,
		ReadTimeoutSeconds:     10,
		WriteTimeoutSeconds:    10,
		LogLevel:               1,
	}

	m, err := NewMySQL(cfg)
	require.NoError(t, err, "连接测试MySQL失败")
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestUpsertRoleIdempotent 同名岗位二次写入：仍是一行、RoleID不变、技能集整体替换
func TestUpsertRoleIdempotent(t *testing.T) {
	m := newTestMySQL(t)
	ctx := context.Background()

	name := fmt.Sprintf("集成测试-后端工程师-%d", time.Now().UnixNano())

	first, err := m.UpsertRole(ctx, name, []string{"python", "flask"})
	require.NoError(t, err)
	require.NotEmpty(t, first.RoleID)
	t.Cleanup(func() { _ = m.DeleteRole(ctx, first.RoleID) })

	second, err := m.UpsertRole(ctx, name, []string{"go", "kubernetes"})
	require.NoError(t, err)

	assert.Equal(t, first.RoleID, second.RoleID, "同名覆盖应保留原RoleID")
	assert.Equal(t, []string{"go", "kubernetes"}, second.Skills, "技能集应被整体替换")

	var count int64
	require.NoError(t, m.DB().Model(&models.Role{}).Where("name = ?", name).Count(&count).Error)
	assert.EqualValues(t, 1, count, "二次写入不应产生重复行")

	got, err := m.GetRole(ctx, first.RoleID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "kubernetes"}, got.Skills, "按原ID回读应看到替换后的技能集")
}

// TestDeleteRoleCascade 删除岗位应连带清理其全部筛选结果
func TestDeleteRoleCascade(t *testing.T) {
	m := newTestMySQL(t)
	ctx := context.Background()

	name := fmt.Sprintf("集成测试-级联删除-%d", time.Now().UnixNano())
	role, err := m.UpsertRole(ctx, name, []string{"python"})
	require.NoError(t, err)

	resume := &models.Resume{
		ResumeID:    fmt.Sprintf("00000000-0000-7000-8000-%012d", time.Now().UnixNano()%1e12),
		SourcePath:  "cascade_test.pdf",
		TextSnippet: "python工程师",
	}
	result := &models.ScreeningResult{
		RoleID:           role.RoleID,
		BatchID:          "cascade-test-batch",
		MatchedSkills:    "python",
		NumMatchedSkills: 1,
		SimilarityScore:  0.7,
	}
	require.NoError(t, m.SaveScreeningOutcome(ctx, resume, result))
	t.Cleanup(func() {
		_ = m.DB().Where("resume_id = ?", resume.ResumeID).Delete(&models.Resume{}).Error
	})

	require.NoError(t, m.DeleteRole(ctx, role.RoleID))

	_, err = m.GetRole(ctx, role.RoleID)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	var remaining int64
	require.NoError(t, m.DB().Model(&models.ScreeningResult{}).Where("role_id = ?", role.RoleID).Count(&remaining).Error)
	assert.Zero(t, remaining, "岗位删除后不应残留筛选结果")
}
