package handlers

import (
	"Stash/internal/config"
	"Stash/internal/service"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileHandler — загрузка, список, скачивание и удаление файлов.
type FileHandler struct {
	FileService *service.FileService
	SyncService *service.SyncService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewFileHandler(fileService *service.FileService, syncService *service.SyncService, logger *zap.SugaredLogger, cfg *config.Config) *FileHandler {
	return &FileHandler{FileService: fileService, SyncService: syncService, Logger: logger, Config: cfg}
}

// multipartMemory — сколько формы держать в памяти; остальное уходит во временные файлы.
const multipartMemory = 8 << 20

// Upload принимает до MaxFilesPerUpload файлов (поле files) в предмет subjectId,
// сохраняет их локально и сразу пробует синхронизировать.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	maxBody := int64(h.Config.MaxFilesPerUpload)*h.Config.MaxUploadBytes() + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request too large")
			return
		}
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	// временные файлы multipart удаляются при любом исходе
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) > h.Config.MaxFilesPerUpload {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many files: at most %d per upload", h.Config.MaxFilesPerUpload))
		return
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, toUpload(fh))
	}

	res, err := h.FileService.Ingest(r.Context(), uid, r.FormValue("subjectId"), uploads)
	if err != nil {
		writeServiceError(w, h.Logger, "Upload", err, "Subject not found")
		return
	}
	if len(res.Files) == 0 {
		writeJSON(w, http.StatusBadRequest, "No valid files uploaded", map[string]any{"rejected": res.Rejected})
		return
	}

	files := h.SyncService.SyncBatch(r.Context(), uid, res.Files)
	rejected := res.Rejected
	if rejected == nil {
		rejected = []service.Rejection{}
	}
	writeJSON(w, http.StatusCreated, fmt.Sprintf("%d file(s) uploaded successfully", len(files)), map[string]any{
		"files":    toFileViews(files),
		"rejected": rejected,
	})
}

func toUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	files, err := h.FileService.ListByOwner(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.Logger, "ListFiles", err, "File not found")
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"files": toFileViews(files)})
}

func (h *FileHandler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	files, err := h.FileService.ListBySubject(r.Context(), uid, chi.URLParam(r, "subjectId"))
	if err != nil {
		writeServiceError(w, h.Logger, "ListSubjectFiles", err, "Subject not found")
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"files": toFileViews(files)})
}

// Download отдаёт локальную копию как вложение.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	f, fh, err := h.FileService.Open(r.Context(), uid, chi.URLParam(r, "fileId"))
	if err != nil {
		writeServiceError(w, h.Logger, "Download", err, "File not found")
		return
	}
	defer fh.Close()

	w.Header().Set("Content-Type", f.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.OriginalName}))
	http.ServeContent(w, r, f.OriginalName, f.UploadedAt, fh)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.FileService.Delete(r.Context(), uid, chi.URLParam(r, "fileId")); err != nil {
		writeServiceError(w, h.Logger, "DeleteFile", err, "File not found")
		return
	}
	writeJSON(w, http.StatusOK, "File deleted successfully", nil)
}

// Resync повторяет синхронизацию одного файла.
func (h *FileHandler) Resync(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	f, err := h.SyncService.ResyncFile(r.Context(), uid, chi.URLParam(r, "fileId"))
	if err != nil {
		writeServiceError(w, h.Logger, "Resync", err, "File not found")
		return
	}
	writeJSON(w, http.StatusOK, "Sync finished", map[string]any{"file": toFileView(*f)})
}
