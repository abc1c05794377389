package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// TikaPDFExtractor 基于Apache Tika服务器的文本提取器
// ocrOnly为false时作为提取链第二级（结构化文本），为true时作为第三级（图像OCR）
type TikaPDFExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 是否强制走OCR路径（X-Tika-PDFOcrStrategy: ocr_only）
	ocrOnly bool
	// OCR语言
	ocrLanguage string
	logger      *log.Logger
}

// TikaOption 配置选项函数
type TikaOption func(*TikaPDFExtractor)

// WithOCROnly 配置强制OCR提取策略
func WithOCROnly(ocrLanguage string) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.ocrOnly = true
		if ocrLanguage != "" {
			e.ocrLanguage = ocrLanguage
		}
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.logger = logger
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.Client.Timeout = timeout
	}
}

// 确保TikaPDFExtractor实现了TextExtractor接口
var _ TextExtractor = (*TikaPDFExtractor)(nil)

// NewTikaPDFExtractor 创建Tika文本提取器
func NewTikaPDFExtractor(serverURL string, options ...TikaOption) *TikaPDFExtractor {
	extractor := &TikaPDFExtractor{
		ServerURL: serverURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
		ocrLanguage: "eng",
		logger:      log.New(os.Stderr, "[TikaPDF] ", log.LstdFlags),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractTextFromBytes 通过Tika服务器提取纯文本
func (e *TikaPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("创建Tika请求失败: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if e.ocrOnly {
		// 仅图像OCR：跳过内嵌文本层，整页按图像识别
		req.Header.Set("X-Tika-PDFOcrStrategy", "ocr_only")
		req.Header.Set("X-Tika-OCRLanguage", e.ocrLanguage)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求Tika服务器失败 (%s): %w", uri, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取Tika响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Tika服务器返回异常状态码 %d: %.200s", resp.StatusCode, string(body))
	}

	text := string(body)
	e.logger.Printf("Tika提取完成: %s, ocr_only=%v, 提取 %d 字符, 耗时 %v",
		uri, e.ocrOnly, len(text), time.Since(startTime))
	return text, nil
}
