package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/image-extractor-service/internal/delivery/http/request"
	"github.com/user/image-extractor-service/internal/delivery/http/response"
	"github.com/user/image-extractor-service/internal/entity"
	"github.com/user/image-extractor-service/internal/usecase"
)

const healthTimeout = 2 * time.Second

type Handler struct {
	extractor    usecase.ImageExtractor
	maxBatchSize int
	logger       *zap.Logger
	now          func() time.Time
}

func NewHandler(extractor usecase.ImageExtractor, maxBatchSize int, logger *zap.Logger) *Handler {
	return &Handler{
		extractor:    extractor,
		maxBatchSize: maxBatchSize,
		logger:       logger,
		now:          time.Now,
	}
}

// HandleFetchImage extracts the image for one URL. Content and fetch failures
// are answered with 400 and the structured failure.
func (h *Handler) HandleFetchImage(w http.ResponseWriter, r *http.Request) {
	req, err := request.ParseFetchImage(r.Body)
	if err != nil {
		h.writeValidationError(w, err)
		return
	}

	// Extraction runs to completion even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	result, err := h.extractor.Extract(ctx, req.URL, req.ForceRefresh)
	if err != nil {
		h.logger.Error("Failed to extract image", zap.String("url", req.URL), zap.Error(err))
		h.writeInternalError(w, "Failed to extract image data")
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	h.writeJSON(w, status, response.FromResult(result, req.IncludeMetadata, true))
}

// HandleFetchMultiple extracts images for up to maxBatchSize URLs, in order.
func (h *Handler) HandleFetchMultiple(w http.ResponseWriter, r *http.Request) {
	req, err := request.ParseFetchMultiple(r.Body, h.maxBatchSize)
	var tooMany *request.TooManyURLsError
	if errors.As(err, &tooMany) {
		h.writeJSON(w, http.StatusBadRequest, response.ErrorResponse{
			Error:         tooMany.Error(),
			ProvidedCount: tooMany.Provided,
		})
		return
	}
	if err != nil {
		h.writeValidationError(w, err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	batch, err := h.extractor.ExtractBatch(ctx, req.URLs, req.ForceRefresh)
	if err != nil {
		if errors.Is(err, usecase.ErrBatchTooLarge) {
			h.writeJSON(w, http.StatusBadRequest, response.ErrorResponse{
				Error:         (&request.TooManyURLsError{Limit: h.maxBatchSize}).Error(),
				ProvidedCount: len(req.URLs),
			})
			return
		}
		h.logger.Error("Failed to process batch", zap.Int("urls_count", len(req.URLs)), zap.Error(err))
		h.writeInternalError(w, "Failed to process multiple URLs")
		return
	}

	h.writeJSON(w, http.StatusOK, response.FromBatch(batch, req.IncludeMetadata, h.timestamp()))
}

// HandleClearCache removes the entry for the given URL, or every entry when
// the body is empty.
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	req, err := request.ParseClearCache(r.Body)
	if err != nil {
		h.writeValidationError(w, err)
		return
	}
	if req.URL == "" {
		h.HandleClearAllCache(w, r)
		return
	}

	if err := h.extractor.ClearCache(context.WithoutCancel(r.Context()), req.URL); err != nil {
		h.logger.Error("Failed to clear image cache", zap.String("url", req.URL), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, response.ErrorResponse{Error: "Failed to clear cache"})
		return
	}

	h.writeJSON(w, http.StatusOK, response.CacheClearedResponse{
		Success:   true,
		Message:   "Cache cleared for URL",
		URL:       req.URL,
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) HandleClearAllCache(w http.ResponseWriter, r *http.Request) {
	if err := h.extractor.ClearAllCache(context.WithoutCancel(r.Context())); err != nil {
		h.logger.Error("Failed to clear all image cache", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, response.ErrorResponse{Error: "Failed to clear all cache"})
		return
	}

	h.writeJSON(w, http.StatusOK, response.CacheClearedResponse{
		Success:   true,
		Message:   "All image extraction cache cleared",
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.extractor.Health(ctx); err != nil {
		h.logger.Error("health check failed for cache", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable", Cache: "unhealthy"})
		return
	}
	h.writeJSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Cache: "healthy"})
}

func (h *Handler) timestamp() string {
	return entity.FormatTimestamp(h.now())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var verr request.ValidationError
	if !errors.As(err, &verr) {
		verr = request.ValidationError{"body": {err.Error()}}
	}
	h.writeJSON(w, http.StatusUnprocessableEntity, response.ErrorResponse{
		Error:     "Validation failed",
		Details:   verr,
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) writeInternalError(w http.ResponseWriter, message string) {
	h.writeJSON(w, http.StatusInternalServerError, response.ErrorResponse{
		Error:     "Internal server error",
		Message:   message,
		Timestamp: h.timestamp(),
	})
}
