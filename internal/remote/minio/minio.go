// Package minio — удалённое хранилище поверх S3-совместимого бакета.
// Папка — префикс ключа с маркер-объектом "<prefix>.folder".
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"Stash/internal/remote"
)

const (
	markerName = ".folder"
	linkTTL    = 7 * 24 * time.Hour
)

// Config — параметры подключения к бакету.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Region задаётся явно, чтобы подпись ссылок не требовала запроса к серверу.
	Region string
}

// Backend работает с одним бакетом; пользователи разделены префиксами.
type Backend struct {
	client  *minio.Client
	bucket  string
	public  string
	linkTTL time.Duration
	log     *zap.SugaredLogger
}

func New(cfg Config, logger *zap.SugaredLogger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &Backend{
		client:  client,
		bucket:  cfg.Bucket,
		public:  scheme + "://" + cfg.Endpoint,
		linkTTL: linkTTL,
		log:     logger,
	}, nil
}

// EnsureBucket создаёт бакет, если его нет.
func (b *Backend) EnsureBucket(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", b.bucket, err)
	}
	if !exists {
		if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("make bucket %s: %w", b.bucket, err)
		}
	}
	return nil
}

func (b *Backend) Name() string { return "minio" }

// AuthURL: у S3 нет пользовательского OAuth, код подтверждения — произвольная непустая строка.
func (b *Backend) AuthURL(state string) string {
	return b.public + "/" + b.bucket + "?state=" + url.QueryEscape(state)
}

func (b *Backend) Exchange(_ context.Context, code string) (remote.Credentials, error) {
	if strings.TrimSpace(code) == "" {
		return remote.Credentials{}, errors.New("empty authorization code")
	}
	return remote.Credentials{AccessToken: uuid.NewString(), RefreshToken: code}, nil
}

func (b *Backend) Open(_ context.Context, creds remote.Credentials) (remote.Drive, error) {
	if creds.AccessToken == "" {
		return nil, remote.ErrNotConnected
	}
	return &bucket{b: b}, nil
}

func (b *Backend) TopParent(userID int64) string {
	return fmt.Sprintf("users/%d/", userID)
}

type bucket struct {
	b *Backend
}

func (c *bucket) ListFolders(ctx context.Context, parentID, name string) ([]remote.Folder, error) {
	prefix := folderKey(parentID, name)
	_, err := c.b.client.StatObject(ctx, c.b.bucket, prefix+markerName, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}
	return []remote.Folder{{ID: prefix, Name: name}}, nil
}

func (c *bucket) CreateFolder(ctx context.Context, parentID, name string) (remote.Folder, error) {
	prefix := folderKey(parentID, name)
	_, err := c.b.client.PutObject(ctx, c.b.bucket, prefix+markerName, strings.NewReader(""), 0,
		minio.PutObjectOptions{ContentType: "application/x-directory"})
	if err != nil {
		return remote.Folder{}, err
	}
	return remote.Folder{ID: prefix, Name: name}, nil
}

func (c *bucket) UploadFile(ctx context.Context, parentID, name, contentType string, size int64, body io.Reader) (remote.Uploaded, error) {
	key := parentID + uuid.NewString()[:8] + "-" + clean(name)
	if size < 0 {
		size = -1
	}
	_, err := c.b.client.PutObject(ctx, c.b.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return remote.Uploaded{}, err
	}
	return remote.Uploaded{ID: key, ViewURL: c.b.viewURL(ctx, key)}, nil
}

// viewURL возвращает подписанную ссылку, действующую linkTTL. Если подписать не удалось,
// объект уже загружен, поэтому возвращается прямой адрес объекта, а ошибка логируется.
func (b *Backend) viewURL(ctx context.Context, key string) string {
	link, err := b.client.PresignedGetObject(ctx, b.bucket, key, b.linkTTL, url.Values{})
	if err != nil {
		b.log.Warnw("presign object url failed", "bucket", b.bucket, "key", key, "err", err)
		return b.objectURL(key)
	}
	return link.String()
}

func (b *Backend) objectURL(key string) string {
	return b.public + "/" + b.bucket + "/" + (&url.URL{Path: key}).EscapedPath()
}

func folderKey(parentID, name string) string {
	return parentID + clean(name) + "/"
}

// clean убирает разделители пути из имени.
func clean(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}
