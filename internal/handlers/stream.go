package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Mahendrakumar19/streamgate/internal/apperrors"
	"github.com/Mahendrakumar19/streamgate/internal/handlers/render"
	"github.com/Mahendrakumar19/streamgate/internal/logger"
	"github.com/Mahendrakumar19/streamgate/internal/metrics"
	"github.com/Mahendrakumar19/streamgate/internal/models"
	"github.com/Mahendrakumar19/streamgate/internal/service/accesslog"
	"github.com/Mahendrakumar19/streamgate/internal/service/stream"
)

// Served assets may be cached by clients and CDNs for an hour
const cacheControl = "public, max-age=3600"

type streamService interface {
	// Validate token scope against the request and open the origin asset.
	// Has to return apperrors.ErrScopeMismatch when the token covers another resource
	ServeAsset(ctx context.Context, req models.StreamRequest) (models.StreamScope, stream.Asset, error)
}

type StreamHandler struct {
	stream streamService
	access *accesslog.Recorder
	logger logger.Logger
}

func NewStream(s streamService, access *accesslog.Recorder, logger logger.Logger) *StreamHandler {
	return &StreamHandler{stream: s, access: access, logger: logger}
}

// Serve handles GET /api/video/stream?token=&type=&file=&courseId=&moduleId=
func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("token")
	rawType := q.Get("type")
	file := q.Get("file")
	rawCourse := q.Get("courseId")
	rawModule := q.Get("moduleId")

	if token == "" || rawType == "" || file == "" || rawCourse == "" || rawModule == "" {
		metrics.StreamRequestsTotal.WithLabelValues(rawType, "invalid").Inc()
		render.ServiceError(w, "token, type, file, courseId and moduleId are required", http.StatusBadRequest)
		return
	}

	assetType, err := models.ParseAssetType(rawType)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(rawType, "invalid").Inc()
		render.ServiceError(w, "type must be one of master, playlist, segment", http.StatusBadRequest)
		return
	}

	courseID, err1 := strconv.ParseInt(rawCourse, 10, 64)
	moduleID, err2 := strconv.ParseInt(rawModule, 10, 64)
	if err1 != nil || err2 != nil || courseID <= 0 || moduleID <= 0 {
		metrics.StreamRequestsTotal.WithLabelValues(rawType, "invalid").Inc()
		render.ServiceError(w, "courseId and moduleId must be positive integers", http.StatusBadRequest)
		return
	}

	scope, asset, err := h.stream.ServeAsset(r.Context(), models.StreamRequest{
		Token:    token,
		Type:     assetType,
		FileName: file,
		CourseID: courseID,
		ModuleID: moduleID,
	})
	if err != nil {
		h.renderStreamError(w, rawType, err)
		return
	}
	defer asset.Body.Close() //nolint:errcheck

	w.Header().Set("Content-Type", asset.ContentType)
	if asset.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(asset.ContentLength, 10))
	}
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)

	// Pipe origin bytes straight through, an aborted client cancels
	// r.Context() which in turn stops the origin read
	n, err := io.Copy(w, asset.Body)
	if err != nil {
		h.logger.Debug("Stream interrupted", "error", err, "bytes_sent", n, "file", file)
	}

	metrics.StreamRequestsTotal.WithLabelValues(rawType, "ok").Inc()
	metrics.StreamBytesTotal.Add(float64(n))

	// Fire and forget, never blocks the response path
	h.access.Record(accesslog.Record{
		UserID:    scope.UserID,
		CourseID:  courseID,
		ModuleID:  moduleID,
		AssetType: assetType,
		FileName:  file,
		At:        time.Now(),
	})
}

// Preflight answers non-preflight OPTIONS probes, CORS headers come from middleware
func (h *StreamHandler) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *StreamHandler) renderStreamError(w http.ResponseWriter, assetType string, err error) {
	var originErr *stream.OriginError

	switch {
	case errors.Is(err, apperrors.ErrInvalidToken):
		metrics.StreamRequestsTotal.WithLabelValues(assetType, "invalid_token").Inc()
		render.ServiceError(w, "Access token is not valid", http.StatusUnauthorized)

	case errors.Is(err, apperrors.ErrScopeMismatch):
		metrics.StreamRequestsTotal.WithLabelValues(assetType, "forbidden").Inc()
		render.ServiceError(w, "Token does not grant access to this resource", http.StatusForbidden)

	case errors.As(err, &originErr):
		// Propagate origin status but never its error detail
		metrics.StreamRequestsTotal.WithLabelValues(assetType, "origin_error").Inc()
		render.ServiceError(w, "Asset not found or access denied", originErr.StatusCode)

	default:
		h.logger.Error("Stream request failed", "error", err)
		metrics.StreamRequestsTotal.WithLabelValues(assetType, "error").Inc()
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
