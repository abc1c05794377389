package screener

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	googleuuid "github.com/google/uuid"

	"resume-screener-go/internal/constants"
	"resume-screener-go/internal/extractor"
	"resume-screener-go/internal/logger"
	"resume-screener-go/internal/storage"
	"resume-screener-go/internal/storage/models"
	"resume-screener-go/internal/types"
)

// Store 筛选流程依赖的持久化能力，由 storage.MySQL 提供
type Store interface {
	UpsertRole(ctx context.Context, name string, skills []string) (*types.RoleView, error)
	GetRole(ctx context.Context, roleID string) (*types.RoleView, error)
	SaveScreeningOutcome(ctx context.Context, resume *models.Resume, result *models.ScreeningResult) error
}

// TextProvider 文档文本提供能力，由 parser.TextProvider 提供
type TextProvider interface {
	Exists(ctx context.Context, sourceRef string) (bool, error)
	GetText(ctx context.Context, sourceRef string) (string, error)
}

// Matcher 语义匹配能力，由 matcher.SemanticMatcher 提供
type Matcher interface {
	ComputeSkillMatches(ctx context.Context, jobSkills []string, documents []string, threshold float64) ([][]string, error)
	ComputeSimilarityScores(ctx context.Context, roleText string, documents []string) ([]float64, error)
}

// DedupCache 简历文本查重与岗位文本缓存，由 storage.Redis 提供，可缺省
type DedupCache interface {
	CheckTextMD5Exists(ctx context.Context, md5Hex string) (bool, error)
	RecordTextMD5(ctx context.Context, md5Hex string) error
	GetRoleSkillsText(ctx context.Context, roleID string) (string, error)
	SetRoleSkillsText(ctx context.Context, roleID string, skillsText string) error
	InvalidateRoleSkillsText(ctx context.Context, roleID string) error
}

// EventPublisher 筛选完成事件发布能力，由 storage.RabbitMQ 提供，可缺省
type EventPublisher interface {
	PublishScreeningCompleted(ctx context.Context, event storage.ScreeningCompletedEvent) error
}

// Screener 简历筛选编排器
// 词法抽取与语义匹配的结果做大小写归一的并集，连同相似度分值一起落库；
// 嵌入模型由外部注入一次，筛选过程本身不持有可变状态
type Screener struct {
	store            Store
	provider         TextProvider
	extractor        *extractor.SkillExtractor
	matcher          Matcher
	cache            DedupCache
	events           EventPublisher
	defaultThreshold float64
}

// Option 筛选器可选依赖
type Option func(*Screener)

// WithDedupCache 启用基于Redis的简历查重与岗位文本缓存
func WithDedupCache(cache DedupCache) Option {
	return func(s *Screener) { s.cache = cache }
}

// WithEventPublisher 启用批次完成事件发布
func WithEventPublisher(events EventPublisher) Option {
	return func(s *Screener) { s.events = events }
}

// WithDefaultThreshold 覆盖默认语义阈值
func WithDefaultThreshold(threshold float64) Option {
	return func(s *Screener) { s.defaultThreshold = threshold }
}

// NewScreener 创建筛选编排器
func NewScreener(store Store, provider TextProvider, skillExtractor *extractor.SkillExtractor, m Matcher, opts ...Option) *Screener {
	s := &Screener{
		store:            store,
		provider:         provider,
		extractor:        skillExtractor,
		matcher:          m,
		defaultThreshold: constants.DefaultSemanticThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRoleFromText 从岗位描述文本抽取技能并按名幂等保存
func (s *Screener) AddRoleFromText(ctx context.Context, name, jobText string) (*types.RoleView, error) {
	skills := s.extractor.ExtractSkills(jobText)
	role, err := s.store.UpsertRole(ctx, name, skills)
	if err != nil {
		return nil, &ScreeningError{Op: "add_role", BaseErr: ErrRoleUpsertFailed, Detail: err.Error()}
	}
	s.refreshRoleCache(ctx, role)

	logger.Ctx(ctx).Info().
		Str("role_id", role.RoleID).
		Str("name", name).
		Int("skills", len(skills)).
		Msg("岗位已保存（技能自动抽取）")
	return role, nil
}

// AddRoleManual 按手工给定的技能列表保存岗位
// 技能加载时小写去空白，空项丢弃
func (s *Screener) AddRoleManual(ctx context.Context, name string, skills []string) (*types.RoleView, error) {
	normalized := make([]string, 0, len(skills))
	for _, sk := range skills {
		sk = strings.ToLower(strings.TrimSpace(sk))
		if sk != "" {
			normalized = append(normalized, sk)
		}
	}

	role, err := s.store.UpsertRole(ctx, name, normalized)
	if err != nil {
		return nil, &ScreeningError{Op: "add_role", BaseErr: ErrRoleUpsertFailed, Detail: err.Error()}
	}
	s.refreshRoleCache(ctx, role)

	logger.Ctx(ctx).Info().
		Str("role_id", role.RoleID).
		Str("name", name).
		Int("skills", len(normalized)).
		Msg("岗位已保存（手工技能）")
	return role, nil
}

// refreshRoleCache upsert后刷新岗位聚合文本缓存，缓存不可用时仅记日志
func (s *Screener) refreshRoleCache(ctx context.Context, role *types.RoleView) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetRoleSkillsText(ctx, role.RoleID, roleEmbedText(role)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("role_id", role.RoleID).Msg("刷新岗位技能缓存失败")
	}
}

// roleEmbedText 岗位聚合文本：空格连接的技能集，无技能时退化为岗位名
func roleEmbedText(role *types.RoleView) string {
	if len(role.Skills) > 0 {
		return strings.Join(role.Skills, " ")
	}
	return role.Name
}

// roleTextCached 优先读缓存的岗位聚合文本，未命中时现算并回填
// 缓存故障只记日志，退化为现算
func (s *Screener) roleTextCached(ctx context.Context, role *types.RoleView) string {
	if s.cache == nil {
		return roleEmbedText(role)
	}
	cached, err := s.cache.GetRoleSkillsText(ctx, role.RoleID)
	if err == nil && cached != "" {
		return cached
	}
	if err != nil && !errors.Is(err, storage.ErrCacheMiss) {
		logger.Ctx(ctx).Warn().Err(err).Str("role_id", role.RoleID).Msg("读取岗位技能缓存失败")
	}

	text := roleEmbedText(role)
	if setErr := s.cache.SetRoleSkillsText(ctx, role.RoleID, text); setErr != nil {
		logger.Ctx(ctx).Warn().Err(setErr).Str("role_id", role.RoleID).Msg("回填岗位技能缓存失败")
	}
	return text
}

// ScreenParams 单次筛选调用的参数
type ScreenParams struct {
	// Threshold 语义匹配阈值，nil 时取默认值；0 是合法取值（全量命中）
	Threshold *float64
	// SkipMissing 来源不可用时跳过该项（true）还是以空/兜底文本建档（false）
	SkipMissing bool
	// BatchID 为空时自动生成
	BatchID string
}

// pendingDoc 完成来源解析、等待抽取与落库的文档
type pendingDoc struct {
	source string
	text   string
	method *string
}

// Screen 对一批文档执行岗位筛选
// 岗位不存在立即失败，不产生任何写入；单个文档的缺失或提取失败被吸收，
// 批次不会因个别坏输入中断；持久化失败对整个批次是致命的。
// 返回序列保持输入顺序（跳过项除外），排序是查询侧的事
func (s *Screener) Screen(ctx context.Context, roleID string, docs []types.DocumentRef, params ScreenParams) ([]types.ScreeningResultView, error) {
	role, err := s.store.GetRole(ctx, roleID)
	if err != nil {
		if errors.Is(err, storage.ErrRoleNotFound) {
			return nil, newRoleNotFoundError(roleID)
		}
		return nil, err
	}

	threshold := s.defaultThreshold
	if params.Threshold != nil {
		threshold = *params.Threshold
	}
	batchID := params.BatchID
	if batchID == "" {
		batchID = googleuuid.NewString()
	}

	// 岗位聚合文本优先走缓存，未命中时由技能集构建并回填
	roleText := s.roleTextCached(ctx, role)

	pending, numSkipped := s.gatherDocuments(ctx, docs, params.SkipMissing)
	if len(pending) == 0 {
		logger.Ctx(ctx).Info().Str("batch_id", batchID).Msg("没有可筛选的文档")
		return []types.ScreeningResultView{}, nil
	}

	texts := make([]string, len(pending))
	for i, d := range pending {
		texts[i] = d.text
	}

	// 词法抽取逐份执行，语义匹配整批一次：嵌入只算一遍
	lexical := make([][]string, len(pending))
	for i, t := range texts {
		lexical[i] = s.extractor.ExtractSkills(t)
	}

	semantic, err := s.matcher.ComputeSkillMatches(ctx, role.Skills, texts, threshold)
	if err != nil {
		return nil, newEmbeddingError(batchID, err.Error())
	}
	simScores, err := s.matcher.ComputeSimilarityScores(ctx, roleText, texts)
	if err != nil {
		return nil, newEmbeddingError(batchID, err.Error())
	}

	results := make([]types.ScreeningResultView, 0, len(pending))
	for i, doc := range pending {
		matched := fuseSkills(lexical[i], semantic[i])

		resumeUUID, err := uuid.NewV7()
		if err != nil {
			return nil, newPersistError(batchID, "生成UUIDv7失败: "+err.Error())
		}

		resume := &models.Resume{
			ResumeID:         resumeUUID.String(),
			SourcePath:       doc.source,
			TextSnippet:      doc.text,
			ExtractionMethod: doc.method,
			RawTextMD5:       s.flagDuplicate(ctx, doc),
		}

		details, err := models.MatchDetailsToJSON(models.MatchDetails{
			LexicalSkills:  lexical[i],
			SemanticSkills: semantic[i],
		})
		if err != nil {
			return nil, newPersistError(batchID, err.Error())
		}

		result := &models.ScreeningResult{
			RoleID:           role.RoleID,
			BatchID:          batchID,
			MatchedSkills:    strings.Join(matched, constants.SkillsJoinSeparator),
			NumMatchedSkills: len(matched),
			SimilarityScore:  simScores[i],
			MatchDetailsJSON: details,
		}

		// 简历与结果同事务落库，崩溃不会留下孤儿简历行
		if err := s.store.SaveScreeningOutcome(ctx, resume, result); err != nil {
			return nil, newPersistError(batchID, err.Error())
		}

		view := types.ScreeningResultView{
			ResumeID:         resume.ResumeID,
			Source:           doc.source,
			MatchedSkills:    matched,
			NumMatchedSkills: len(matched),
			SimilarityScore:  simScores[i],
		}
		if doc.method != nil {
			view.ExtractionMethod = *doc.method
		}
		results = append(results, view)
	}

	s.publishCompleted(ctx, storage.ScreeningCompletedEvent{
		BatchID:     batchID,
		RoleID:      role.RoleID,
		NumScreened: len(results),
		NumSkipped:  numSkipped,
		Threshold:   threshold,
		CompletedAt: time.Now(),
	})

	logger.Ctx(ctx).Info().
		Str("batch_id", batchID).
		Str("role_id", role.RoleID).
		Int("screened", len(results)).
		Int("skipped", numSkipped).
		Float64("threshold", threshold).
		Msg("批次筛选完成")
	return results, nil
}

// gatherDocuments 逐份解析来源并取回文本
// 缺失项按 skipMissing 分支处理；提取失败按空文本继续，不中断批次
func (s *Screener) gatherDocuments(ctx context.Context, docs []types.DocumentRef, skipMissing bool) ([]pendingDoc, int) {
	pending := make([]pendingDoc, 0, len(docs))
	numSkipped := 0

	for _, ref := range docs {
		available := ref.Source != ""
		if available {
			exists, err := s.provider.Exists(ctx, ref.Source)
			if err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("source", ref.Source).Msg("检查文档来源失败，按缺失处理")
			}
			available = err == nil && exists
		}

		if !available {
			if skipMissing {
				logger.Ctx(ctx).Warn().Str("source", ref.Source).Msg("文档来源不可用，跳过")
				numSkipped++
				continue
			}
			// 不跳过：用兜底文本建档，无兜底则空文本、方法标记缺省
			doc := pendingDoc{source: ref.Source, text: ref.FallbackText}
			if ref.FallbackText != "" {
				method := constants.ExtractionMethodFallback
				doc.method = &method
			}
			logger.Ctx(ctx).Warn().Str("source", ref.Source).Msg("文档来源不可用，使用兜底/空文本建档")
			pending = append(pending, doc)
			continue
		}

		text, err := s.provider.GetText(ctx, ref.Source)
		if err != nil {
			logger.Ctx(ctx).Warn().
				Err(fmt.Errorf("%w: %v", ErrTextFetchFailed, err)).
				Str("source", ref.Source).
				Msg("取文档文本失败，按空文本继续")
			text = ""
		}
		method := constants.ExtractionMethodExtracted
		if strings.TrimSpace(text) == "" && ref.FallbackText != "" {
			text = ref.FallbackText
			method = constants.ExtractionMethodFallback
		}
		pending = append(pending, pendingDoc{source: ref.Source, text: text, method: &method})
	}
	return pending, numSkipped
}

// flagDuplicate 计算文本MD5并在缓存可用时做重复投递标记
// 查重失败只记日志，不影响筛选主流程
func (s *Screener) flagDuplicate(ctx context.Context, doc pendingDoc) string {
	if doc.text == "" {
		return ""
	}
	sum := md5.Sum([]byte(doc.text))
	md5Hex := hex.EncodeToString(sum[:])

	if s.cache == nil {
		return md5Hex
	}
	exists, err := s.cache.CheckTextMD5Exists(ctx, md5Hex)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("source", doc.source).Msg("简历查重检查失败")
		return md5Hex
	}
	if exists {
		logger.Ctx(ctx).Warn().Str("source", doc.source).Str("md5", md5Hex).Msg("检测到重复投递的简历文本")
		return md5Hex
	}
	if err := s.cache.RecordTextMD5(ctx, md5Hex); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("source", doc.source).Msg("记录简历文本MD5失败")
	}
	return md5Hex
}

// publishCompleted 发布批次完成事件，发布失败不影响已落库的结果
func (s *Screener) publishCompleted(ctx context.Context, event storage.ScreeningCompletedEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishScreeningCompleted(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("batch_id", event.BatchID).Msg("发布筛选完成事件失败")
	}
}

// fuseSkills 词法与语义命中做大小写归一的并集，返回排序后的集合
func fuseSkills(lexical, semantic []string) []string {
	set := make(map[string]struct{}, len(lexical)+len(semantic))
	for _, s := range lexical {
		set[strings.ToLower(s)] = struct{}{}
	}
	for _, s := range semantic {
		set[strings.ToLower(s)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
