package handlers

import (
	"Stash/internal/service"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DriveHandler — подключение к удалённому хранилищу и ручная синхронизация.
type DriveHandler struct {
	DriveService *service.DriveService
	SyncService  *service.SyncService
	Logger       *zap.SugaredLogger
}

func NewDriveHandler(driveService *service.DriveService, syncService *service.SyncService, logger *zap.SugaredLogger) *DriveHandler {
	return &DriveHandler{DriveService: driveService, SyncService: syncService, Logger: logger}
}

type connectRequest struct {
	Code string `json:"code"`
}

func (h *DriveHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	url, state := h.DriveService.AuthURL()
	writeJSON(w, http.StatusOK, "", map[string]string{"authUrl": url, "state": state})
}

func (h *DriveHandler) Connect(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req connectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	status, err := h.DriveService.Connect(r.Context(), uid, req.Code)
	if err != nil {
		writeServiceError(w, h.Logger, "Connect", err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, "Remote storage connected successfully", status)
}

func (h *DriveHandler) Status(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	status, err := h.DriveService.Status(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.Logger, "DriveStatus", err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, "", status)
}

func (h *DriveHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.DriveService.Disconnect(r.Context(), uid); err != nil {
		writeServiceError(w, h.Logger, "Disconnect", err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, "Remote storage disconnected successfully", nil)
}

// Sync повторяет синхронизацию всех pending/failed файлов пользователя.
func (h *DriveHandler) Sync(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	sum, err := h.SyncService.ResyncPending(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.Logger, "Sync", err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf("Synced %d of %d file(s)", sum.Synced, sum.Total), map[string]any{
		"total":  sum.Total,
		"synced": sum.Synced,
		"failed": sum.Failed,
		"files":  toFileViews(sum.Files),
	})
}
