package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"scorm_host_backend/internal/config"
	"scorm_host_backend/internal/util"
	"scorm_host_backend/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var errOutsideStorageRoot = errors.New("path escapes storage root")

// StorageProvider 课程包文件存储。key 为相对存储根的路径，统一使用 "/" 分隔
type StorageProvider interface {
	PublicURL(key string) string
	Exists(ctx context.Context, key string) (bool, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// cleanKey 规范化存储 key：统一 "/" 分隔，去掉前导 "/"，".." 无法越过存储根
func cleanKey(key string) string {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	return strings.TrimPrefix(k, "/")
}

func escapePath(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// LocalStorageProvider 本地存储实现，课程包通过静态路由对外提供
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) resolve(key string) (string, error) {
	k := cleanKey(key)
	root, err := filepath.Abs(p.Config.LocalPath)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(k))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", errOutsideStorageRoot
	}
	return full, nil
}

func (p *LocalStorageProvider) PublicURL(key string) string {
	k := cleanKey(key)
	return strings.TrimRight(p.Config.PublicPrefix, "/") + "/" + escapePath(k)
}

func (p *LocalStorageProvider) Exists(ctx context.Context, key string) (bool, error) {
	full, err := p.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (p *LocalStorageProvider) DeletePrefix(ctx context.Context, prefix string) error {
	full, err := p.resolve(prefix)
	if err != nil {
		return err
	}
	root, _ := filepath.Abs(p.Config.LocalPath)
	if full == root {
		return errOutsideStorageRoot
	}
	return os.RemoveAll(full)
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) PublicURL(key string) string {
	k := cleanKey(key)
	if p.Config.PublicPrefix != "" {
		return strings.TrimRight(p.Config.PublicPrefix, "/") + "/" + escapePath(k)
	}
	return "/" + p.Config.MinioBucket + "/" + escapePath(k)
}

func (p *MinioStorageProvider) Exists(ctx context.Context, key string) (bool, error) {
	k := cleanKey(key)
	_, err := p.Client.StatObject(ctx, p.Config.MinioBucket, k, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *MinioStorageProvider) DeletePrefix(ctx context.Context, prefix string) error {
	k := cleanKey(prefix)
	if k == "" {
		return errOutsideStorageRoot
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := p.Client.ListObjects(ctx, p.Config.MinioBucket, minio.ListObjectsOptions{
		Prefix:    k + "/",
		Recursive: true,
	})
	// 出错后取消列举，但要读完结果通道，否则后台 goroutine 会阻塞在发送上
	var firstErr error
	for rErr := range p.Client.RemoveObjects(ctx, p.Config.MinioBucket, objects, minio.RemoveObjectsOptions{}) {
		if rErr.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove %s: %w", rErr.ObjectName, rErr.Err)
			cancel()
		}
	}
	return firstErr
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) PublicURL(key string) string {
	k := cleanKey(key)
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, escapePath(k))
}

func (p *OSSStorageProvider) Exists(ctx context.Context, key string) (bool, error) {
	k := cleanKey(key)
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return false, err
	}
	return bucket.IsObjectExist(k)
}

func (p *OSSStorageProvider) DeletePrefix(ctx context.Context, prefix string) error {
	k := cleanKey(prefix)
	if k == "" {
		return errOutsideStorageRoot
	}
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}

	marker := ""
	for {
		res, err := bucket.ListObjects(oss.Prefix(k+"/"), oss.Marker(marker), oss.MaxKeys(1000))
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(res.Objects))
		for _, obj := range res.Objects {
			keys = append(keys, obj.Key)
		}
		if len(keys) > 0 {
			if _, err := bucket.DeleteObjects(keys, oss.DeleteObjectsQuiet(true)); err != nil {
				return err
			}
		}
		if !res.IsTruncated {
			return nil
		}
		marker = res.NextMarker
	}
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to init minio storage, falling back to local", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to init oss storage, falling back to local", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

func (s *StorageService) PublicURL(key string) string {
	return s.Provider.PublicURL(key)
}

func (s *StorageService) Exists(ctx context.Context, key string) (bool, error) {
	return s.Provider.Exists(ctx, key)
}

func (s *StorageService) DeletePrefix(ctx context.Context, prefix string) error {
	return s.Provider.DeletePrefix(ctx, prefix)
}
