package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"resume-screener-go/internal/logger"
)

// DocumentSource 文档来源适配器，负责按来源引用判存和取回原始字节
// 本地文件与对象存储是内置实现；交互式上传等入口在外层转换为这两种引用
type DocumentSource interface {
	// Supports 判断该来源是否处理此引用
	Supports(sourceRef string) bool
	// Exists 判断来源是否可用
	Exists(ctx context.Context, sourceRef string) (bool, error)
	// Fetch 取回原始文档字节
	Fetch(ctx context.Context, sourceRef string) ([]byte, error)
}

// FileDocumentSource 本地文件系统来源
type FileDocumentSource struct{}

// Supports 非 minio:// 前缀的引用一律按本地路径处理
func (FileDocumentSource) Supports(sourceRef string) bool {
	return !strings.HasPrefix(sourceRef, "minio://")
}

// Exists 判断本地文件是否存在
func (FileDocumentSource) Exists(ctx context.Context, sourceRef string) (bool, error) {
	if sourceRef == "" {
		return false, nil
	}
	_, err := os.Stat(sourceRef)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("检查文件 '%s' 失败: %w", sourceRef, err)
	}
	return true, nil
}

// Fetch 读取本地文件内容
func (FileDocumentSource) Fetch(ctx context.Context, sourceRef string) ([]byte, error) {
	data, err := os.ReadFile(sourceRef)
	if err != nil {
		return nil, fmt.Errorf("读取文件 '%s' 失败: %w", sourceRef, err)
	}
	return data, nil
}

// ObjectFetcher 对象存储取回能力（由storage.MinIO提供）
type ObjectFetcher interface {
	DownloadDocument(ctx context.Context, sourceRef string) ([]byte, error)
	DocumentExists(ctx context.Context, sourceRef string) (bool, error)
}

// ObjectDocumentSource 对象存储来源，处理 minio://bucket/key 形式的引用
type ObjectDocumentSource struct {
	Fetcher ObjectFetcher
}

func (s *ObjectDocumentSource) Supports(sourceRef string) bool {
	return strings.HasPrefix(sourceRef, "minio://")
}

func (s *ObjectDocumentSource) Exists(ctx context.Context, sourceRef string) (bool, error) {
	return s.Fetcher.DocumentExists(ctx, sourceRef)
}

func (s *ObjectDocumentSource) Fetch(ctx context.Context, sourceRef string) ([]byte, error) {
	return s.Fetcher.DownloadDocument(ctx, sourceRef)
}

// TextProvider 三级兜底的文档文本提供者
// 依次尝试各级提取器，取第一个非空结果；全部失败返回空字符串而非错误，
// 筛选流程将空文本视为零匹配继续，不中断批次
type TextProvider struct {
	sources    []DocumentSource
	extractors []TextExtractor
}

// NewTextProvider 创建文本提供者
// extractors 按优先级排列：结构化提取 → 备用结构化提取 → OCR
func NewTextProvider(sources []DocumentSource, extractors []TextExtractor) *TextProvider {
	return &TextProvider{
		sources:    sources,
		extractors: extractors,
	}
}

// resolveSource 找到处理此引用的来源适配器
func (p *TextProvider) resolveSource(sourceRef string) DocumentSource {
	for _, s := range p.sources {
		if s.Supports(sourceRef) {
			return s
		}
	}
	return nil
}

// Exists 判断来源引用是否可用
func (p *TextProvider) Exists(ctx context.Context, sourceRef string) (bool, error) {
	src := p.resolveSource(sourceRef)
	if src == nil {
		return false, nil
	}
	return src.Exists(ctx, sourceRef)
}

// GetText 取回文档并提取文本
// 提取器逐级尝试，单级失败记录日志后继续下一级；全部落空返回空字符串
func (p *TextProvider) GetText(ctx context.Context, sourceRef string) (string, error) {
	src := p.resolveSource(sourceRef)
	if src == nil {
		return "", fmt.Errorf("没有匹配的文档来源: %s", sourceRef)
	}

	data, err := src.Fetch(ctx, sourceRef)
	if err != nil {
		return "", fmt.Errorf("取回文档失败: %w", err)
	}

	for i, extractor := range p.extractors {
		text, err := extractor.ExtractTextFromBytes(ctx, data, sourceRef)
		if err != nil {
			logger.Ctx(ctx).Warn().
				Err(err).
				Int("tier", i+1).
				Str("source", sourceRef).
				Msg("该级文本提取失败，尝试下一级")
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	logger.Ctx(ctx).Warn().
		Str("source", sourceRef).
		Msg("所有提取级别均未产出文本，按空文本继续")
	return "", nil
}
