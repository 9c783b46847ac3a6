package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Mahendrakumar19/streamgate/internal/apperrors"
	"github.com/Mahendrakumar19/streamgate/internal/handlers/render"
	"github.com/Mahendrakumar19/streamgate/internal/handlers/sessionctx"
	"github.com/Mahendrakumar19/streamgate/internal/logger"
	"github.com/Mahendrakumar19/streamgate/internal/metrics"
	"github.com/Mahendrakumar19/streamgate/internal/models"
	"github.com/Mahendrakumar19/streamgate/internal/service/issuer"
)

type issuerService interface {
	// Issue scoped access/refresh pair for an enrolled caller
	// Has to fail closed with apperrors.ErrEnrollmentUnavailable when the LMS is down
	IssueToken(ctx context.Context, session models.Session, courseID int64, moduleID int64) (issuer.Grant, error)

	// Mint new access token from a refresh token, keeping the original scope
	Refresh(ctx context.Context, session models.Session, refresh string) (issuer.Grant, error)
}

type IssuerHandler struct {
	issuer issuerService
	logger logger.Logger
}

func NewIssuer(s issuerService, logger logger.Logger) *IssuerHandler {
	return &IssuerHandler{issuer: s, logger: logger}
}

// Issue handles GET /api/video/token?courseId=&moduleId=
func (h *IssuerHandler) Issue(w http.ResponseWriter, r *http.Request) {
	type TokenResponse struct {
		Token        string `json:"token"`
		ExpiresIn    int64  `json:"expires_in"`
		TokenType    string `json:"token_type"`
		RefreshToken string `json:"refresh_token"`
		CourseID     int64  `json:"courseId"`
		ModuleID     int64  `json:"moduleId"`
	}

	session, ok := sessionctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	courseID, err1 := strconv.ParseInt(r.URL.Query().Get("courseId"), 10, 64)
	moduleID, err2 := strconv.ParseInt(r.URL.Query().Get("moduleId"), 10, 64)
	if err1 != nil || err2 != nil || courseID <= 0 || moduleID <= 0 {
		metrics.TokensIssuedTotal.WithLabelValues("issue", "invalid").Inc()
		render.ServiceError(w, "courseId and moduleId must be positive integers", http.StatusBadRequest)
		return
	}

	grant, err := h.issuer.IssueToken(r.Context(), session, courseID, moduleID)
	if err != nil {
		h.renderIssueError(w, "issue", err)
		return
	}

	metrics.TokensIssuedTotal.WithLabelValues("issue", "ok").Inc()

	// Tokens must never be cached by intermediaries
	w.Header().Set("Cache-Control", "no-store")
	render.JSON(w, TokenResponse{
		Token:        grant.Pair.Access.Value,
		ExpiresIn:    grant.ExpiresIn,
		TokenType:    grant.TokenType,
		RefreshToken: grant.Pair.Refresh.Value,
		CourseID:     grant.Scope.CourseID,
		ModuleID:     grant.Scope.ModuleID,
	})
}

// Refresh handles POST /api/video/token with {"refresh_token": "..."}
func (h *IssuerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	type RefreshResponse struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
		TokenType string `json:"token_type"`
	}

	session, ok := sessionctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", "invalid").Inc()
		return
	}

	grant, err := h.issuer.Refresh(r.Context(), session, data.RefreshToken)
	if err != nil {
		h.renderIssueError(w, "refresh", err)
		return
	}

	metrics.TokensIssuedTotal.WithLabelValues("refresh", "ok").Inc()

	w.Header().Set("Cache-Control", "no-store")
	render.JSON(w, RefreshResponse{
		Token:     grant.Pair.Access.Value,
		ExpiresIn: grant.ExpiresIn,
		TokenType: grant.TokenType,
	})
}

func (h *IssuerHandler) renderIssueError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidScope):
		metrics.TokensIssuedTotal.WithLabelValues(operation, "invalid").Inc()
		render.ServiceError(w, "courseId and moduleId must be positive integers", http.StatusBadRequest)

	case errors.Is(err, apperrors.ErrInvalidToken):
		metrics.TokensIssuedTotal.WithLabelValues(operation, "invalid_token").Inc()
		render.ServiceError(w, "Refresh token is not valid", http.StatusUnauthorized)

	case errors.Is(err, apperrors.ErrUnauthorized):
		metrics.TokensIssuedTotal.WithLabelValues(operation, "unauthorized").Inc()
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)

	case errors.Is(err, apperrors.ErrNotEnrolled):
		metrics.TokensIssuedTotal.WithLabelValues(operation, "forbidden").Inc()
		render.ServiceError(w, "Not enrolled in course", http.StatusForbidden)

	default:
		h.logger.Error("Token issuance failed", "operation", operation, "error", err)
		metrics.TokensIssuedTotal.WithLabelValues(operation, "error").Inc()
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
