package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/constants"
	"resume-screener-go/internal/storage/models"
	"resume-screener-go/internal/tracing"
	"resume-screener-go/internal/types"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("resume-screener-go/storage/mysql")

// ErrRoleNotFound 岗位ID无法解析
var ErrRoleNotFound = errors.New("岗位不存在")

// MySQL 提供岗位/简历/筛选结果的持久化
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端并自动迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	default:
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	// 连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	m := &MySQL{db: db, cfg: cfg}
	if err := m.autoMigrateSchema(); err != nil {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并自动迁移数据库结构")
	return m, nil
}

// autoMigrateSchema 静默迁移所有表结构
func (m *MySQL) autoMigrateSchema() error {
	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	silentDB := m.db.Session(&gorm.Session{Logger: silentLogger})

	if err := silentDB.AutoMigrate(
		&models.Role{},
		&models.Resume{},
		&models.ScreeningResult{},
	); err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	return nil
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// startSpan MySQL操作的统一span构建
func (m *MySQL) startSpan(ctx context.Context, name, operation, table string) (context.Context, trace.Span) {
	return mysqlTracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemMySQL,
			attribute.String("db.name", m.cfg.Database),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", table),
		))
}

// UpsertRole 按名称幂等写入岗位及其技能集
// 已存在同名岗位时覆盖其技能集，不产生重复行
func (m *MySQL) UpsertRole(ctx context.Context, name string, skills []string) (*types.RoleView, error) {
	ctx, span := m.startSpan(ctx, "MySQL.UpsertRole", "UPSERT", "roles")
	defer span.End()

	newUUID, err := uuid.NewV7()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}

	role := models.Role{
		RoleID:     newUUID.String(),
		Name:       name,
		SkillsText: strings.Join(skills, constants.SkillsJoinSeparator),
	}

	// 名称冲突时仅更新技能集，保留原RoleID与创建时间
	err = m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"skills_text", "updated_at"}),
	}).Create(&role).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("写入岗位失败: %w", err)
	}

	// 冲突路径下Create不回填原行，按名称重读以拿到真实RoleID
	var saved models.Role
	if err := m.db.WithContext(ctx).Where("name = ?", name).First(&saved).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("回读岗位失败: %w", err)
	}

	span.SetAttributes(
		attribute.String("role.id", saved.RoleID),
		attribute.String("role.skills", tracing.TruncateSkills(skills)),
	)
	span.SetStatus(codes.Ok, "")
	return roleToView(&saved), nil
}

// GetRole 按ID查询岗位，未找到返回ErrRoleNotFound
func (m *MySQL) GetRole(ctx context.Context, roleID string) (*types.RoleView, error) {
	ctx, span := m.startSpan(ctx, "MySQL.GetRole", "SELECT", "roles")
	defer span.End()

	var role models.Role
	err := m.db.WithContext(ctx).Where("role_id = ?", roleID).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetAttributes(attribute.String("error.type", "record_not_found"))
			span.SetStatus(codes.Ok, "record not found")
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, roleID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("查询岗位失败: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return roleToView(&role), nil
}

// ListRoles 按创建顺序列出全部岗位
func (m *MySQL) ListRoles(ctx context.Context) ([]types.RoleView, error) {
	ctx, span := m.startSpan(ctx, "MySQL.ListRoles", "SELECT", "roles")
	defer span.End()

	var roles []models.Role
	if err := m.db.WithContext(ctx).Order("created_at").Find(&roles).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("列出岗位失败: %w", err)
	}

	views := make([]types.RoleView, len(roles))
	for i := range roles {
		views[i] = *roleToView(&roles[i])
	}
	span.SetAttributes(attribute.Int("roles.count", len(views)))
	span.SetStatus(codes.Ok, "")
	return views, nil
}

// DeleteRole 删除岗位及其全部筛选结果（级联），在同一事务中完成
func (m *MySQL) DeleteRole(ctx context.Context, roleID string) error {
	ctx, span := m.startSpan(ctx, "MySQL.DeleteRole", "DELETE", "roles")
	defer span.End()

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.ScreeningResult{}).Error; err != nil {
			return fmt.Errorf("删除岗位关联结果失败: %w", err)
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&models.Role{}).Error; err != nil {
			return fmt.Errorf("删除岗位失败: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetResume 按ID查询简历记录
func (m *MySQL) GetResume(ctx context.Context, resumeID string) (*models.Resume, error) {
	ctx, span := m.startSpan(ctx, "MySQL.GetResume", "SELECT", "resumes")
	defer span.End()

	var resume models.Resume
	if err := m.db.WithContext(ctx).Where("resume_id = ?", resumeID).First(&resume).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("查询简历失败: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return &resume, nil
}

// SaveScreeningOutcome 在单个事务中写入一条简历记录和对应的筛选结果
// 原子性保证：进程崩溃不会留下没有结果的孤儿简历行
func (m *MySQL) SaveScreeningOutcome(ctx context.Context, resume *models.Resume, result *models.ScreeningResult) error {
	ctx, span := m.startSpan(ctx, "MySQL.SaveScreeningOutcome", "INSERT", "resumes,screening_results")
	defer span.End()

	resume.TextSnippet = truncateSnippet(resume.TextSnippet, constants.ResumeSnippetMaxLen)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(resume).Error; err != nil {
			return fmt.Errorf("写入简历记录失败: %w", err)
		}
		result.ResumeID = resume.ResumeID
		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("写入筛选结果失败: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(
		attribute.String("resume.id", resume.ResumeID),
		attribute.String("resume.source", tracing.SafeAttributeValue("source_path", resume.SourcePath, tracing.DefaultMaxLength)),
		attribute.Int("result.num_matched", result.NumMatchedSkills),
	)
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetResultsForRole 按 num_matched_skills DESC, similarity_score DESC 读取岗位的筛选结果
// topN > 0 时限制返回条数
func (m *MySQL) GetResultsForRole(ctx context.Context, roleID string, topN int) ([]types.RankedResultRow, error) {
	ctx, span := m.startSpan(ctx, "MySQL.GetResultsForRole", "SELECT", "screening_results")
	defer span.End()

	query := m.db.WithContext(ctx).
		Table("screening_results AS r").
		Select(`r.result_id, ro.name AS role_name, re.source_path AS source,
			r.matched_skills, r.num_matched_skills, r.similarity_score,
			COALESCE(re.extraction_method, '') AS extraction_method, r.created_at`).
		Joins("JOIN roles ro ON r.role_id = ro.role_id").
		Joins("JOIN resumes re ON r.resume_id = re.resume_id").
		Where("r.role_id = ?", roleID).
		Order("r.num_matched_skills DESC, r.similarity_score DESC")
	if topN > 0 {
		query = query.Limit(topN)
	}

	var rows []types.RankedResultRow
	if err := query.Scan(&rows).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("查询筛选结果失败: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(rows)))
	span.SetStatus(codes.Ok, "")
	return rows, nil
}

// roleToView 将岗位模型转换为视图，解析分号连接的技能文本
func roleToView(role *models.Role) *types.RoleView {
	return &types.RoleView{
		RoleID:     role.RoleID,
		Name:       role.Name,
		Skills:     SplitSkillsText(role.SkillsText),
		SkillsText: role.SkillsText,
		CreatedAt:  role.CreatedAt,
	}
}

// truncateSnippet 按字符数截断入库片段
// 按字节切片会把多字节字符切成半截，utf8mb4列会拒收这样的非法尾部
func truncateSnippet(s string, maxRunes int) string {
	if len(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// SplitSkillsText 解析分号连接的技能文本，丢弃空白条目
func SplitSkillsText(skillsText string) []string {
	parts := strings.Split(skillsText, ";")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
