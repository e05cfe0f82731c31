package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/romariotrain/video-stream/internal/media/models"
	"github.com/romariotrain/video-stream/internal/media/service"
)

const (
	DefaultMaxUploadBytes = 1 << 30
	multipartMemory       = 32 << 20
)

type Handler struct {
	svc            *service.Service
	logger         zerolog.Logger
	maxUploadBytes int64
}

func New(svc *service.Service, logger zerolog.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		svc:            svc,
		logger:         logger.With().Str("component", "httpapi").Logger(),
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateVideo accepts a multipart form with file, title and description.
func (h *Handler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorJSON(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeErrorJSON(w, http.StatusBadRequest, "invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	description := r.FormValue("description")
	if title == "" || description == "" {
		writeErrorJSON(w, http.StatusBadRequest, "missing title or description")
		return
	}

	v, err := h.svc.StoreVideo(r.Context(), service.StoreInput{
		Title:       title,
		Description: description,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidArgument):
			writeErrorJSON(w, http.StatusBadRequest, "invalid argument")
		default:
			h.logger.Error().Err(err).Str("file", header.Filename).Msg("store video")
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "video not uploaded", Success: false})
		}
		return
	}

	writeJSON(w, http.StatusOK, toVideoResponse(v))
}

func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.svc.ListVideos(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list videos")
		writeErrorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		out = append(out, toVideoResponse(&videos[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// StreamVideo serves the stored bytes with Range support. An id that is not a
// uuid, or is the nil uuid, cannot name a stored video and is reported as not
// found.
func (h *Handler) StreamVideo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "videoId"))
	if err != nil {
		writeErrorJSON(w, http.StatusNotFound, "not found")
		return
	}

	v, content, err := h.svc.OpenStream(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidArgument):
			writeErrorJSON(w, http.StatusNotFound, "not found")
		default:
			h.logger.Error().Err(err).Str("video_id", id.String()).Msg("open stream")
			writeErrorJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	defer content.Close()

	ct := v.ContentType
	if ct == "" {
		ct = models.DefaultContentType
	}
	w.Header().Set("Content-Type", ct)
	http.ServeContent(w, r, v.ID.String(), v.CreatedAt, content)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
