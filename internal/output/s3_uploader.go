package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"InventorySync/internal/config"
)

// objectPutter s3.Client 的最小子集
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader 报表产物上传到 S3 兼容存储
type S3Uploader struct {
	client objectPutter
	bucket string
	prefix string
	logger *logrus.Logger
}

// NewS3Uploader Bucket 为空时返回 nil（不上传）
func NewS3Uploader(ctx context.Context, cfg *config.StorageConfig, logger *logrus.Logger) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage access_key/secret_key 未配置")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("创建AWS配置失败: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return newS3Uploader(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3Uploader(client objectPutter, bucket, prefix string, logger *logrus.Logger) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Upload 上传本地文件，对象键 = prefix + 文件名
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("打开%s失败: %w", localPath, err)
	}
	defer f.Close()

	key := path.Join(strings.TrimSuffix(u.prefix, "/"), filepath.Base(localPath))
	key = strings.TrimPrefix(key, "/")
	if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	}); err != nil {
		return "", fmt.Errorf("上传%s失败: %w", key, err)
	}
	u.logger.WithFields(logrus.Fields{"bucket": u.bucket, "key": key}).Info("报表已上传")
	return key, nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
