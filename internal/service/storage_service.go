package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider abstracts the object store holding course media.
type StorageProvider interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
	UploadFile(ctx context.Context, objectKey string, localPath string, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GetURL(objectKey string) string
	// KeyFromURL inverts GetURL so stored media URLs can be deleted later.
	// Returns "" when the URL does not belong to this store.
	KeyFromURL(mediaURL string) string
}

// LocalStorageProvider keeps files on disk, for development.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, objectKey)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}

	return p.GetURL(objectKey), nil
}

func (p *LocalStorageProvider) UploadFile(ctx context.Context, objectKey string, localPath string, contentType string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	return p.Upload(ctx, objectKey, src, -1, contentType)
}

func (p *LocalStorageProvider) Delete(ctx context.Context, objectKey string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, objectKey))
}

func (p *LocalStorageProvider) GetURL(objectKey string) string {
	return "/uploads/" + objectKey
}

func (p *LocalStorageProvider) KeyFromURL(mediaURL string) string {
	return strings.TrimPrefix(mediaURL, "/uploads/")
}

// MinioStorageProvider talks to MinIO or any S3-compatible store.
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

func (p *MinioStorageProvider) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(objectKey), nil
}

func (p *MinioStorageProvider) UploadFile(ctx context.Context, objectKey string, localPath string, contentType string) (string, error) {
	_, err := p.Client.FPutObject(ctx, p.Config.MinioBucket, objectKey, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(objectKey), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, objectKey string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, objectKey, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(objectKey string) string {
	if p.Config.PublicBaseURL != "" {
		return strings.TrimSuffix(p.Config.PublicBaseURL, "/") + "/" + objectKey
	}
	return "/" + p.Config.MinioBucket + "/" + objectKey
}

func (p *MinioStorageProvider) KeyFromURL(mediaURL string) string {
	if p.Config.PublicBaseURL != "" {
		base := strings.TrimSuffix(p.Config.PublicBaseURL, "/") + "/"
		if strings.HasPrefix(mediaURL, base) {
			return strings.TrimPrefix(mediaURL, base)
		}
	}

	// Fall back to treating the URL path as /bucket/key.
	u, err := url.Parse(mediaURL)
	if err != nil {
		return ""
	}
	path := strings.TrimPrefix(u.Path, "/")
	if key, ok := strings.CutPrefix(path, p.Config.MinioBucket+"/"); ok {
		return key
	}
	return path
}

// StorageService selects a provider from config and adds the URL-level
// helpers the enrollment flows use.
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == util.StorageMinio {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		} else {
			logger.Log.Error("minio storage init failed, falling back to local storage",
				zap.String("endpoint", cfg.Storage.MinioEndpoint), zap.Error(err))
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

func (s *StorageService) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Upload(ctx, objectKey, reader, size, contentType)
}

func (s *StorageService) UploadFile(ctx context.Context, objectKey string, localPath string, contentType string) (string, error) {
	return s.Provider.UploadFile(ctx, objectKey, localPath, contentType)
}

func (s *StorageService) Delete(ctx context.Context, objectKey string) error {
	return s.Provider.Delete(ctx, objectKey)
}

// DeleteByURL removes a previously uploaded object given the URL stored on
// a content node. Unknown URLs are ignored.
func (s *StorageService) DeleteByURL(ctx context.Context, mediaURL string) error {
	if mediaURL == "" {
		return nil
	}
	key := s.Provider.KeyFromURL(mediaURL)
	if key == "" {
		return nil
	}
	return s.Provider.Delete(ctx, key)
}

func (s *StorageService) GetURL(objectKey string) string {
	return s.Provider.GetURL(objectKey)
}

// BuildObjectKey produces a collision-free object key under the given
// folder while keeping the original name recognizable.
func BuildObjectKey(folder, originalName string) string {
	return fmt.Sprintf("%s/%d-%s-%s", folder, time.Now().UnixMilli(), uuid.New().String(), util.SafeFileName(originalName))
}
