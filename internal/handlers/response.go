package handlers

import (
	"Stash/internal/middleware"
	"Stash/internal/model"
	"Stash/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// envelope — общий формат ответов API.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: status < 400, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, message, nil)
}

// requireUser отвечает 401, если запрос не аутентифицирован.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return 0, false
	}
	return uid, true
}

// writeServiceError переводит ошибки сервисов в HTTP-коды.
func writeServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": "))
	case errors.Is(err, service.ErrSubjectRequired),
		errors.Is(err, service.ErrNoFiles),
		errors.Is(err, service.ErrDriveNotConnected):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrSubjectExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Errorw(op+": service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

type userView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type subjectView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toSubjectView(s model.Subject) subjectView {
	return subjectView{ID: s.ID, Name: s.Name, Code: s.Code, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
}

type fileView struct {
	ID           string     `json:"id"`
	SubjectID    string     `json:"subjectId"`
	OriginalName string     `json:"originalName"`
	FileName     string     `json:"fileName"`
	FileSize     int64      `json:"fileSize"`
	MimeType     string     `json:"mimeType"`
	Category     string     `json:"category"`
	SyncStatus   string     `json:"syncStatus"`
	RemoteFileID string     `json:"remoteFileId,omitempty"`
	RemoteURL    string     `json:"remoteUrl,omitempty"`
	LastSyncAt   *time.Time `json:"lastSyncAt,omitempty"`
	UploadedAt   time.Time  `json:"uploadedAt"`
}

func toFileView(f model.File) fileView {
	return fileView{
		ID:           f.ID,
		SubjectID:    f.SubjectID,
		OriginalName: f.OriginalName,
		FileName:     f.FileName,
		FileSize:     f.FileSize,
		MimeType:     f.MimeType,
		Category:     string(f.Category),
		SyncStatus:   string(f.SyncStatus),
		RemoteFileID: f.RemoteFileID,
		RemoteURL:    f.RemoteURL,
		LastSyncAt:   f.LastSyncAt,
		UploadedAt:   f.UploadedAt,
	}
}

func toFileViews(files []model.File) []fileView {
	out := make([]fileView, 0, len(files))
	for _, f := range files {
		out = append(out, toFileView(f))
	}
	return out
}
