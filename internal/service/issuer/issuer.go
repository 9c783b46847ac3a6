package issuer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mahendrakumar19/streamgate/internal/apperrors"
	"github.com/Mahendrakumar19/streamgate/internal/logger"
	"github.com/Mahendrakumar19/streamgate/internal/models"
	"github.com/Mahendrakumar19/streamgate/internal/service/enrollment"
	"github.com/Mahendrakumar19/streamgate/internal/service/issuer/tokenmanager"
)

const tokenType = "Bearer"

type enrollmentClient interface {
	UserCourses(ctx context.Context, userID int64) ([]enrollment.Course, error)
}

// Grant is what the issuer hands back to the transport layer
type Grant struct {
	Pair      models.TokenPair
	Scope     models.StreamScope
	TokenType string
	ExpiresIn int64
}

// Service gates token issuance on session identity and course enrollment
type Service struct {
	tokens     *tokenmanager.TokenManager
	enrollment enrollmentClient
	logger     logger.Logger
}

func NewService(tokens *tokenmanager.TokenManager, enrollment enrollmentClient, logger logger.Logger) (*Service, error) {
	if tokens == nil || enrollment == nil {
		return nil, errors.New("token manager and enrollment client must not be nil")
	}

	return &Service{
		tokens:     tokens,
		enrollment: enrollment,
		logger:     logger,
	}, nil
}

// IssueToken mints a scoped access/refresh pair for an enrolled caller
func (s *Service) IssueToken(ctx context.Context, session models.Session, courseID int64, moduleID int64) (Grant, error) {
	var grant Grant

	if !session.Authenticated() {
		return grant, apperrors.ErrUnauthorized
	}

	if courseID <= 0 || moduleID <= 0 {
		return grant, apperrors.ErrInvalidScope
	}

	if err := s.checkEnrollment(ctx, session.UserID, courseID); err != nil {
		return grant, err
	}

	scope := models.StreamScope{
		UserID:   session.UserID,
		CourseID: courseID,
		ModuleID: moduleID,
		Email:    session.Email,
	}

	pair, err := s.tokens.GeneratePair(scope)
	if err != nil {
		return grant, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	s.logger.Info("Access token issued",
		"user_id", session.UserID,
		"course_id", courseID,
		"module_id", moduleID,
	)

	return Grant{
		Pair:      pair,
		Scope:     scope,
		TokenType: tokenType,
		ExpiresIn: int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Refresh mints a new access token from a valid refresh token.
// Scope is taken from the refresh token itself and enrollment is re-checked
// for it, so a refresh can never widen what the original grant covered.
func (s *Service) Refresh(ctx context.Context, session models.Session, refresh string) (Grant, error) {
	var grant Grant

	scope, err := s.tokens.ParseRefresh(refresh)
	if err != nil {
		return grant, err
	}

	if !session.Authenticated() || session.UserID != scope.UserID {
		return grant, apperrors.ErrUnauthorized
	}

	if err := s.checkEnrollment(ctx, scope.UserID, scope.CourseID); err != nil {
		return grant, err
	}

	scope.Email = session.Email
	access, err := s.tokens.GenerateAccess(scope)
	if err != nil {
		return grant, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	s.logger.Info("Access token refreshed",
		"user_id", scope.UserID,
		"course_id", scope.CourseID,
		"module_id", scope.ModuleID,
	)

	return Grant{
		Pair:      models.TokenPair{Access: access},
		Scope:     scope,
		TokenType: tokenType,
		ExpiresIn: int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// checkEnrollment fails closed: lookup errors deny issuance
func (s *Service) checkEnrollment(ctx context.Context, userID int64, courseID int64) error {
	courses, err := s.enrollment.UserCourses(ctx, userID)
	if err != nil {
		s.logger.Error("Enrollment lookup failed", "error", err, "user_id", userID)
		return err
	}

	for _, course := range courses {
		if course.ID == courseID {
			return nil
		}
	}

	return fmt.Errorf("%w: course %d", apperrors.ErrNotEnrolled, courseID)
}
