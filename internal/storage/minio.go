package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"resume-screener-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOSourceScheme 对象存储文档引用的scheme前缀
const MinIOSourceScheme = "minio://"

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadDocument 上传原始文档，返回 minio://bucket/key 形式的来源引用
	UploadDocument(ctx context.Context, objectName string, reader io.Reader, fileSize int64, contentType string) (string, error)

	// DownloadDocument 按来源引用下载文档内容
	DownloadDocument(ctx context.Context, sourceRef string) ([]byte, error)

	// DocumentExists 检查来源引用指向的对象是否存在
	DocumentExists(ctx context.Context, sourceRef string) (bool, error)
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供原始简历文档的对象存储
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	bucket string
	logger *log.Logger
}

// NewMinIO 创建MinIO客户端并确保存储桶存在
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client: client,
		cfg:    cfg,
		bucket: cfg.BucketName,
		logger: logger,
	}
	if err := m.ensureBucketExists(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureBucketExists 存储桶不存在时创建
func (m *MinIO) ensureBucketExists(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.cfg.Location}); err != nil {
			return fmt.Errorf("创建存储桶 '%s' 失败: %w", m.bucket, err)
		}
		m.logger.Printf("[MinIO] 存储桶 '%s' 已创建", m.bucket)
	}
	return nil
}

// UploadDocument 上传原始文档，返回来源引用
func (m *MinIO) UploadDocument(ctx context.Context, objectName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传文档 '%s' 失败: %w", objectName, err)
	}
	m.logger.Printf("[MinIO] 文档已上传: %s/%s (%d bytes)", m.bucket, objectName, fileSize)
	return MinIOSourceScheme + m.bucket + "/" + objectName, nil
}

// DownloadDocument 按来源引用下载文档全部内容
func (m *MinIO) DownloadDocument(ctx context.Context, sourceRef string) ([]byte, error) {
	bucket, objectName, err := parseMinIOSourceRef(sourceRef)
	if err != nil {
		return nil, err
	}

	obj, err := m.client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 '%s' 失败: %w", objectName, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, fmt.Errorf("读取对象 '%s' 内容失败: %w", objectName, err)
	}
	return buf.Bytes(), nil
}

// DocumentExists 检查来源引用指向的对象是否存在
func (m *MinIO) DocumentExists(ctx context.Context, sourceRef string) (bool, error) {
	bucket, objectName, err := parseMinIOSourceRef(sourceRef)
	if err != nil {
		return false, err
	}
	_, err = m.client.StatObject(ctx, bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return false, nil
		}
		return false, fmt.Errorf("检查对象 '%s' 失败: %w", objectName, err)
	}
	return true, nil
}

// IsMinIOSourceRef 判断来源引用是否指向对象存储
func IsMinIOSourceRef(sourceRef string) bool {
	return strings.HasPrefix(sourceRef, MinIOSourceScheme)
}

// parseMinIOSourceRef 解析 minio://bucket/key 形式的引用
func parseMinIOSourceRef(sourceRef string) (bucket string, objectName string, err error) {
	if !IsMinIOSourceRef(sourceRef) {
		return "", "", fmt.Errorf("非法的对象存储引用: %s", sourceRef)
	}
	trimmed := strings.TrimPrefix(sourceRef, MinIOSourceScheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("非法的对象存储引用: %s", sourceRef)
	}
	return parts[0], path.Clean(parts[1]), nil
}
