package handlers

import (
	"Stash/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SubjectHandler — CRUD предметов.
type SubjectHandler struct {
	SubjectService *service.SubjectService
	Logger         *zap.SugaredLogger
}

func NewSubjectHandler(subjectService *service.SubjectService, logger *zap.SugaredLogger) *SubjectHandler {
	return &SubjectHandler{SubjectService: subjectService, Logger: logger}
}

type subjectRequest struct {
	Name *string `json:"name"`
	Code *string `json:"code"`
}

func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	subjects, err := h.SubjectService.List(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.Logger, "ListSubjects", err, "Subject not found")
		return
	}
	views := make([]subjectView, 0, len(subjects))
	for _, s := range subjects {
		views = append(views, toSubjectView(s))
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"subjects": views})
}

func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req subjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	var name, code string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Code != nil {
		code = *req.Code
	}

	s, err := h.SubjectService.Create(r.Context(), uid, name, code)
	if err != nil {
		writeServiceError(w, h.Logger, "CreateSubject", err, "Subject not found")
		return
	}
	writeJSON(w, http.StatusCreated, "Subject created successfully", map[string]any{"subject": toSubjectView(*s)})
}

func (h *SubjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req subjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	s, err := h.SubjectService.Update(r.Context(), uid, chi.URLParam(r, "id"), req.Name, req.Code)
	if err != nil {
		writeServiceError(w, h.Logger, "UpdateSubject", err, "Subject not found")
		return
	}
	writeJSON(w, http.StatusOK, "Subject updated successfully", map[string]any{"subject": toSubjectView(*s)})
}

func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.SubjectService.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.Logger, "DeleteSubject", err, "Subject not found")
		return
	}
	writeJSON(w, http.StatusOK, "Subject deleted successfully", nil)
}
