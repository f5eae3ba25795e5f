package util

import (
	"errors"

	"scorm_host_backend/internal/scorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCourseNotFound    = errors.New("course not found")
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrAttemptCompleted  = errors.New("attempt already completed")
	ErrCourseHasAttempts = errors.New("course has learner attempts")
	ErrInvalidID         = errors.New("invalid id")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrManifestMissing   = errors.New("imsmanifest.xml not found in package")
	ErrUnsupportedScorm  = errors.New("unsupported scorm version")
	ErrMalformedPayload  = scorm.ErrMalformedPayload
)
