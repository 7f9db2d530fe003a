package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/entities"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/queue"
)

type UseCase interface {
	Compress(ctx context.Context, rawURL, rawSize string) (entities.CompressionResult, error)
}

type Handler struct {
	useCase   UseCase
	validator *validator.Validate
	log       zerolog.Logger
}

func New(useCase UseCase, log zerolog.Logger) *Handler {
	return &Handler{
		useCase:   useCase,
		validator: validator.New(),
		log:       log,
	}
}

func (h *Handler) Compress(w http.ResponseWriter, r *http.Request) {
	params := CompressParams{
		URL:  r.URL.Query().Get("url"),
		Size: r.URL.Query().Get("size"),
	}
	if err := h.validator.Struct(params); err != nil {
		writeJSONError(w, "url and size query parameters are required", http.StatusBadRequest)
		return
	}

	res, err := h.useCase.Compress(r.Context(), params.URL, params.Size)
	if err != nil {
		h.writeCompressError(w, err)
		return
	}

	data := CompressData{Link: res.Link, Cached: res.FromCache}
	if !res.FromCache {
		reduction := res.SizeReductionPct
		data.SizeReduction = &reduction
	}
	writeJSON(w, http.StatusOK, CompressResponse{Status: "success", Data: data})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeCompressError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrInvalidSize), errors.Is(err, entities.ErrUnsupportedFormat):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, queue.ErrQueueFull):
		writeJSONError(w, "server is busy, try again later", http.StatusTooManyRequests)
	case errors.Is(err, queue.ErrQueueClosed):
		writeJSONError(w, "server is shutting down", http.StatusServiceUnavailable)
	default:
		h.log.Error().Err(err).Msg("compression request failed")
		sentry.CaptureException(err)
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}
