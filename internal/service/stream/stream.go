package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Mahendrakumar19/streamgate/internal/apperrors"
	"github.com/Mahendrakumar19/streamgate/internal/logger"
	"github.com/Mahendrakumar19/streamgate/internal/models"
)

type tokenParser interface {
	ParseAccess(access string) (models.StreamScope, error)
}

// OriginError carries the origin status code so the handler can pass it
// through with a sanitized message
type OriginError struct {
	StatusCode int
}

func (e *OriginError) Error() string {
	return fmt.Sprintf("origin responded with status %d", e.StatusCode)
}

func (e *OriginError) Unwrap() error {
	return apperrors.ErrAssetNotFound
}

// Asset is an open origin response ready to be streamed to the caller.
// The caller owns Body and must close it.
type Asset struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

type Config struct {
	// Origin media store base address, no trailing slash
	OriginAddr string

	// Access credential appended to every origin request
	OriginToken string
}

// Service validates stream requests and fetches assets from the origin store
type Service struct {
	originAddr  string
	originToken string

	tokens tokenParser
	client *http.Client
	logger logger.Logger
}

func NewService(cfg Config, tokens tokenParser, logger logger.Logger) (*Service, error) {
	if cfg.OriginAddr == "" {
		return nil, errors.New("origin address must not be empty")
	}
	if tokens == nil {
		return nil, errors.New("token parser must not be nil")
	}

	return &Service{
		originAddr:  cfg.OriginAddr,
		originToken: cfg.OriginToken,
		// No client timeout: segment downloads may legitimately take long,
		// the inbound request context cancels the origin read on client abort
		client: &http.Client{},
		tokens: tokens,
		logger: logger,
	}, nil
}

// ServeAsset checks the token scope against the requested resource and opens
// the origin response for streaming. Returns the verified scope for access
// logging.
func (s *Service) ServeAsset(ctx context.Context, req models.StreamRequest) (models.StreamScope, Asset, error) {
	var asset Asset

	scope, err := s.tokens.ParseAccess(req.Token)
	if err != nil {
		return scope, asset, err
	}

	if !scope.Covers(req.CourseID, req.ModuleID) {
		return scope, asset, fmt.Errorf("%w: token is for course %d module %d",
			apperrors.ErrScopeMismatch, scope.CourseID, scope.ModuleID)
	}

	resp, err := s.fetchOrigin(ctx, req)
	if err != nil {
		return scope, asset, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		s.logger.Warn("Origin refused asset",
			"status_code", resp.StatusCode,
			"course_id", req.CourseID,
			"module_id", req.ModuleID,
			"file", req.FileName,
		)
		return scope, asset, &OriginError{StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = req.Type.ContentType()
	}

	return scope, Asset{
		Body:          resp.Body,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
	}, nil
}

func (s *Service) fetchOrigin(ctx context.Context, req models.StreamRequest) (*http.Response, error) {
	// File name is percent-encoded so a crafted name can't change the origin path
	target := fmt.Sprintf("%s/courses/%d/modules/%d/%s",
		s.originAddr, req.CourseID, req.ModuleID, url.PathEscape(req.FileName))

	if s.originToken != "" {
		target += "?token=" + url.QueryEscape(s.originToken)
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create origin request. Err: %w", err)
	}

	resp, err := s.client.Do(r)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch origin asset. Err: %w", err)
	}

	return resp, nil
}
