package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Бэкенды удалённого хранилища
const (
	RemoteGoogleDrive = "gdrive"
	RemoteMinIO       = "minio"
	RemoteMemory      = "memory"
)

// DefaultAllowedTypes — допустимые content-type загружаемых файлов.
var DefaultAllowedTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/csv",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type Config struct {
	// Server-side settings
	DatabaseDSN string        `env:"DATABASE_URI"`
	AuthSecret  string        `env:"AUTH_SECRET"`
	AuthTTL     time.Duration `env:"AUTH_TTL"`

	// Загрузка файлов
	UploadDir         string   `env:"UPLOAD_DIR"`
	MaxUploadMB       int      `env:"MAX_UPLOAD_MB"`
	MaxFilesPerUpload int      `env:"MAX_FILES_PER_UPLOAD"`
	AllowedTypes      []string `env:"ALLOWED_TYPES" envSeparator:","`

	// Синхронизация с удалённым хранилищем
	SyncWorkers     int           `env:"SYNC_WORKERS"`
	RemoteBackend   string        `env:"REMOTE_BACKEND"`
	RemoteRootName  string        `env:"REMOTE_ROOT_NAME"`
	FolderCacheSize int           `env:"FOLDER_CACHE_SIZE"`
	FolderCacheTTL  time.Duration `env:"FOLDER_CACHE_TTL"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URI"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL"`
	MinIORegion    string `env:"MINIO_REGION"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.DurationVar(&cfg.AuthTTL, "auth-ttl", cfg.AuthTTL, "время жизни токена")
	flag.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "каталог для загруженных файлов")
	flag.IntVar(&cfg.MaxUploadMB, "max-upload-mb", cfg.MaxUploadMB, "максимальный размер файла, МБ")
	flag.IntVar(&cfg.SyncWorkers, "sync-workers", cfg.SyncWorkers, "число параллельных загрузок в удалённое хранилище")
	flag.StringVar(&cfg.RemoteBackend, "remote", cfg.RemoteBackend, "удалённое хранилище: gdrive|minio|memory")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the Stash server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "file:stash.db?cache=shared"
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.AuthTTL <= 0 {
		cfg.AuthTTL = 7 * 24 * time.Hour
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}
	if cfg.MaxFilesPerUpload <= 0 {
		cfg.MaxFilesPerUpload = 10
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = append([]string(nil), DefaultAllowedTypes...)
	}
	for i, t := range cfg.AllowedTypes {
		cfg.AllowedTypes[i] = strings.ToLower(strings.TrimSpace(t))
	}
	if cfg.SyncWorkers <= 0 {
		cfg.SyncWorkers = 4
	}
	switch cfg.RemoteBackend {
	case RemoteGoogleDrive, RemoteMinIO, RemoteMemory:
	default:
		cfg.RemoteBackend = RemoteGoogleDrive
	}
	if cfg.RemoteRootName == "" {
		cfg.RemoteRootName = "Stash - Study Materials"
	}
	if cfg.FolderCacheSize <= 0 {
		cfg.FolderCacheSize = 1024
	}
	if cfg.FolderCacheTTL <= 0 {
		cfg.FolderCacheTTL = 10 * time.Minute
	}
	if cfg.MinIOEndpoint == "" {
		cfg.MinIOEndpoint = "localhost:9000"
	}
	if cfg.MinIORegion == "" {
		cfg.MinIORegion = "us-east-1"
	}
	if cfg.MinIOBucket == "" {
		cfg.MinIOBucket = "stash"
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "stash.file-sync"
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// Fill client defaults if empty
	if cfg.TokenFile == "" {
		home, _ := os.UserHomeDir()
		cfg.TokenFile = filepath.Join(home, ".stash_token")
	}
}

// MaxUploadBytes возвращает лимит размера одного файла в байтах.
func (cfg *Config) MaxUploadBytes() int64 {
	return int64(cfg.MaxUploadMB) * 1024 * 1024
}
