package main

import (
	"Stash/internal/config"
	"Stash/internal/events"
	"Stash/internal/handlers"
	"Stash/internal/middleware"
	"Stash/internal/remote"
	"Stash/internal/remote/gdrive"
	"Stash/internal/remote/memdrive"
	"Stash/internal/remote/minio"
	"Stash/internal/repo"
	"Stash/internal/service"
	"Stash/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	middleware.SetTokenTTL(cfg.AuthTTL)
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		sugar.Fatalw("failed to initialize upload dir", "dir", cfg.UploadDir, "error", err)
	}

	backend, err := newBackend(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize remote storage", "backend", cfg.RemoteBackend, "error", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			sugar.Warnw("failed to close event publisher", "error", err)
		}
	}()

	userRepo := repo.NewUserRepository(gormDB)
	subjectRepo := repo.NewSubjectRepository(gormDB)
	fileRepo := repo.NewFileRepository(gormDB)
	resolver := remote.NewResolver(cfg.FolderCacheSize, cfg.FolderCacheTTL)

	userService := service.NewUserService(userRepo)
	subjectService := service.NewSubjectService(subjectRepo)
	fileService := service.NewFileService(fileRepo, subjectRepo, store, cfg.AllowedTypes, cfg.MaxUploadBytes(), sugar)
	syncService := service.NewSyncService(userRepo, subjectRepo, fileService, backend, resolver, publisher, cfg.SyncWorkers, sugar)
	driveService := service.NewDriveService(userRepo, backend, resolver, cfg.RemoteRootName, sugar)

	h := handlers.NewHandler(userService, subjectService, fileService, syncService, driveService, sugar, cfg)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"UploadDir", cfg.UploadDir,
		"Remote", backend.Name(),
		"SyncWorkers", cfg.SyncWorkers,
		"Kafka", len(cfg.KafkaBrokers) > 0,
	)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("shutdown failed", "error", err)
		}
	}()

	sugar.Infow("Starting server", "addr", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
}

// newBackend выбирает удалённое хранилище по конфигурации.
func newBackend(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (remote.Backend, error) {
	switch cfg.RemoteBackend {
	case config.RemoteMinIO:
		b, err := minio.New(minio.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			Region:    cfg.MinIORegion,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := b.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return b, nil
	case config.RemoteMemory:
		return memdrive.New(), nil
	default:
		return gdrive.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL), nil
	}
}
