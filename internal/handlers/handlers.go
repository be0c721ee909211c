package handlers

import (
	"Stash/internal/config"
	"Stash/internal/middleware"
	"Stash/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	subjectService *service.SubjectService,
	fileService *service.FileService,
	syncService *service.SyncService,
	driveService *service.DriveService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithMetrics)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	subjectHandler := NewSubjectHandler(subjectService, logger)
	fileHandler := NewFileHandler(fileService, syncService, logger, config)
	driveHandler := NewDriveHandler(driveService, syncService, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "ok", nil)
	})
	r.Handle("/metrics", promhttp.Handler())

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)

	// Subject routes
	r.Get("/api/subjects", subjectHandler.List)
	r.Post("/api/subjects", subjectHandler.Create)
	r.Put("/api/subjects/{id}", subjectHandler.Update)
	r.Delete("/api/subjects/{id}", subjectHandler.Delete)

	// File routes
	r.Post("/api/files/upload", fileHandler.Upload)
	r.Get("/api/files", fileHandler.List)
	r.Get("/api/files/subject/{subjectId}", fileHandler.ListBySubject)
	r.Get("/api/files/download/{fileId}", fileHandler.Download)
	r.Delete("/api/files/{fileId}", fileHandler.Delete)
	r.Post("/api/files/{fileId}/sync", fileHandler.Resync)

	// Remote storage routes
	r.Get("/api/drive/auth-url", driveHandler.AuthURL)
	r.Post("/api/drive/connect", driveHandler.Connect)
	r.Get("/api/drive/status", driveHandler.Status)
	r.Post("/api/drive/disconnect", driveHandler.Disconnect)
	r.Post("/api/drive/sync", driveHandler.Sync)

	return &Handler{Router: r}
}
