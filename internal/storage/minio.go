package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"smart-resume-go/internal/config"
	"smart-resume-go/internal/logger"
)

// MinIO 对象存储适配层。维护两个桶：原始PDF与解析出的纯文本。
type MinIO struct {
	client           *minio.Client
	originalsBucket  string
	parsedTextBucket string
}

// NewMinIO 创建MinIO客户端并确保桶存在
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:           client,
		originalsBucket:  cfg.OriginalsBucket,
		parsedTextBucket: cfg.ParsedTextBucket,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, bucket := range []string{m.originalsBucket, m.parsedTextBucket} {
		if err := m.ensureBucketExists(ctx, bucket, cfg.Location); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查桶 %s 是否存在失败: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建桶 %s 失败: %w", bucketName, err)
	}
	logger.Info().Str("bucket", bucketName).Msg("已创建MinIO桶")
	return nil
}

// OriginalObjectKey 原始简历PDF的对象名
func OriginalObjectKey(submissionUUID string) string {
	return fmt.Sprintf("resumes/%s/original.pdf", submissionUUID)
}

// ParsedTextObjectKey 解析文本的对象名
func ParsedTextObjectKey(submissionUUID string) string {
	return fmt.Sprintf("resumes/%s/parsed.txt", submissionUUID)
}

// UploadResumeFile 上传原始简历PDF，对象名按提交UUID组织
func (m *MinIO) UploadResumeFile(ctx context.Context, submissionUUID string, data []byte) (string, error) {
	objectName := OriginalObjectKey(submissionUUID)
	_, err := m.client.PutObject(ctx, m.originalsBucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("上传原始简历失败: %w", err)
	}
	return objectName, nil
}

// UploadParsedText 上传提取出的纯文本
func (m *MinIO) UploadParsedText(ctx context.Context, submissionUUID, text string) (string, error) {
	objectName := ParsedTextObjectKey(submissionUUID)
	reader := strings.NewReader(text)
	_, err := m.client.PutObject(ctx, m.parsedTextBucket, objectName,
		reader, int64(reader.Len()),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return "", fmt.Errorf("上传解析文本失败: %w", err)
	}
	return objectName, nil
}

// GetResumeFile 下载原始简历
func (m *MinIO) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	return m.download(ctx, m.originalsBucket, objectKey)
}

// GetParsedText 下载解析文本
func (m *MinIO) GetParsedText(ctx context.Context, objectKey string) (string, error) {
	data, err := m.download(ctx, m.parsedTextBucket, objectKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *MinIO) download(ctx context.Context, bucket, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucket, objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 失败: %w", bucket, objectKey, err)
	}
	return data, nil
}

// GetPresignedURL 生成原始简历的预签名下载链接
func (m *MinIO) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.originalsBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名链接失败: %w", err)
	}
	return u.String(), nil
}

// DeleteSubmission 删除一次提交的全部对象
func (m *MinIO) DeleteSubmission(ctx context.Context, submissionUUID string) error {
	originalKey := OriginalObjectKey(submissionUUID)
	parsedKey := ParsedTextObjectKey(submissionUUID)

	if err := m.client.RemoveObject(ctx, m.originalsBucket, originalKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除原始简历失败: %w", err)
	}
	if err := m.client.RemoveObject(ctx, m.parsedTextBucket, parsedKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除解析文本失败: %w", err)
	}
	return nil
}
