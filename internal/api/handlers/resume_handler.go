package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
	"github.com/markdave123-py/Redacta/internal/logger"
	"github.com/markdave123-py/Redacta/internal/models"
	"github.com/markdave123-py/Redacta/internal/services"
)

const maxResumeBytes = 20 << 20

// ResumeService is the part of services.ResumeService the handlers use.
type ResumeService interface {
	Create(ctx context.Context, prospectUUID string, data []byte) (*models.Resume, error)
	Get(ctx context.Context, uuid string, keywords *string) (*models.Resume, error)
}

type ResumeHandler struct {
	resumes ResumeService
}

func NewResumeHandler(resumes ResumeService) *ResumeHandler {
	return &ResumeHandler{resumes: resumes}
}

type envelope struct {
	Data any `json:"data"`
}

func (h *ResumeHandler) Healthcheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

// CreateResume accepts a multipart form with the PDF in "resume" and the
// owner in "prospect_uuid".
func (h *ResumeHandler) CreateResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResumeBytes+1<<20)
	if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("resume")
	if err != nil {
		http.Error(w, "missing resume file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxResumeBytes+1))
	if err != nil {
		http.Error(w, "could not read resume", http.StatusBadRequest)
		return
	}
	if len(data) > maxResumeBytes {
		http.Error(w, "resume too large", http.StatusRequestEntityTooLarge)
		return
	}

	resume, err := h.resumes.Create(r.Context(), r.FormValue("prospect_uuid"), data)
	switch {
	case errors.Is(err, services.ErrEmptyResume), errors.Is(err, pdfdoc.ErrMalformedDocument):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("create resume failed", zap.Error(err))
		http.Error(w, "failed to store resume", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Data: resume})
}

// GetResume returns a resume; the optional keywords query selects which
// text coordinates come with it.
func (h *ResumeHandler) GetResume(w http.ResponseWriter, r *http.Request) {
	var keywords *string
	if q := r.URL.Query(); q.Has("keywords") {
		k := q.Get("keywords")
		keywords = &k
	}

	resume, err := h.resumes.Get(r.Context(), chi.URLParam(r, "uuid"), keywords)
	switch {
	case errors.Is(err, models.ErrResumeNotFound):
		http.Error(w, "resume not found", http.StatusNotFound)
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("get resume failed", zap.Error(err))
		http.Error(w, "failed to load resume", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Data: resume})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
