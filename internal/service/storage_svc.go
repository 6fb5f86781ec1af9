package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/config"
)

// ==================== 接口定义 ====================

// Storage 对象存储抽象，商品/分类图片统一经由此接口读写
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	SignedURL(ctx context.Context, key string, expire time.Duration) (string, error)
}

// NewStorage 按配置创建存储实现
func NewStorage(cfg *config.Config) (Storage, error) {
	switch cfg.StorageProvider {
	case "s3":
		return newS3Storage(cfg)
	case "local", "":
		return newLocalStorage(cfg.StorageLocalDir), nil
	default:
		return nil, apperr.Invalidf("unknown storage provider %q", cfg.StorageProvider)
	}
}

// ==================== S3 ====================

type s3Storage struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	basePath string
	cdn      string
}

func newS3Storage(cfg *config.Config) (*s3Storage, error) {
	if cfg.StorageBucket == "" {
		return nil, apperr.Invalidf("storage bucket is empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageAccess, cfg.StorageSecret, "")),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.StorageEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Storage{
		client:   client,
		presign:  s3.NewPresignClient(client),
		bucket:   cfg.StorageBucket,
		basePath: strings.Trim(cfg.StorageBasePath, "/"),
		cdn:      cfg.StorageCDN,
	}, nil
}

func (s *s3Storage) fullKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.basePath == "" {
		return key
	}
	return s.basePath + "/" + key
}

func (s *s3Storage) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	fullKey := s.fullKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", fullKey, err)
	}

	if s.cdn != "" {
		return strings.TrimSuffix(s.cdn, "/") + "/" + fullKey, nil
	}
	return fullKey, nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	fullKey := s.fullKey(key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", fullKey, err)
	}
	return nil
}

// DeletePrefix 删除某前缀下全部对象，分页列举后批量删除
func (s *s3Storage) DeletePrefix(ctx context.Context, prefix string) error {
	fullPrefix := s.fullKey(prefix)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(fullPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("s3 list %s: %w", fullPrefix, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}
		_, err = s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("s3 delete prefix %s: %w", fullPrefix, err)
		}
	}
	return nil
}

func (s *s3Storage) SignedURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return req.URL, nil
}

// ==================== 本地磁盘 ====================

// localStorage 本地磁盘实现，开发与测试环境使用
type localStorage struct {
	dir string
}

func newLocalStorage(dir string) *localStorage {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[Storage] 创建本地目录 %s 失败: %v", dir, err)
	}
	return &localStorage{dir: dir}
}

func (l *localStorage) path(key string) string {
	return filepath.Join(l.dir, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}

func (l *localStorage) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	target := l.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", err
	}
	return "/" + path.Join(l.dir, strings.TrimPrefix(key, "/")), nil
}

func (l *localStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *localStorage) DeletePrefix(_ context.Context, prefix string) error {
	return os.RemoveAll(l.path(prefix))
}

func (l *localStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "/" + path.Join(l.dir, strings.TrimPrefix(key, "/")), nil
}
