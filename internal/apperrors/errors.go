package apperrors

import (
	"errors"
)

var (
	ErrUnauthorized = errors.New("session is missing or not valid")

	ErrInvalidToken  = errors.New("token is not valid")
	ErrInvalidScope  = errors.New("course and module ids must be positive integers")
	ErrScopeMismatch = errors.New("token scope does not cover requested resource")

	ErrNotEnrolled           = errors.New("user is not enrolled in course")
	ErrEnrollmentUnavailable = errors.New("enrollment lookup failed")

	ErrUnknownAssetType = errors.New("unknown asset type")
	ErrAssetNotFound    = errors.New("asset not found or access denied")
)
