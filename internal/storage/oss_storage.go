package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type ossObjectStore struct {
	bucket *oss.Bucket
}

func (s *ossObjectStore) put(ctx context.Context, key string, data []byte, contentType string) error {
	return s.bucket.PutObject(key, bytes.NewReader(data), oss.WithContext(ctx), oss.ContentType(contentType))
}

func (s *ossObjectStore) remove(ctx context.Context, key string) error {
	return s.bucket.DeleteObject(key, oss.WithContext(ctx))
}

func NewOSSStorage(cfg config.Config) (Storage, error) {
	endpoint := strings.TrimSpace(cfg.StorageOSSEndpoint)
	if endpoint == "" {
		return nil, errors.New("storage: missing OSS endpoint")
	}
	bucketName := strings.TrimSpace(cfg.StorageOSSBucket)
	if bucketName == "" {
		return nil, errors.New("storage: missing OSS bucket")
	}
	accessKey := strings.TrimSpace(cfg.StorageOSSAccessKeyID)
	secretKey := strings.TrimSpace(cfg.StorageOSSAccessKeySecret)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("storage: missing OSS credentials")
	}

	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("storage: create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("storage: open OSS bucket: %w", err)
	}

	publicBase := strings.TrimSpace(cfg.StoragePublicBaseURL)
	if publicBase == "" {
		// 虚拟主机风格：https://<bucket>.<endpoint>
		host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
		publicBase = fmt.Sprintf("https://%s.%s", bucketName, strings.TrimRight(host, "/"))
	}
	return newBucketStorage(TypeOSS, &ossObjectStore{bucket: bucket}, cfg.StorageOSSPrefix, publicBase)
}
