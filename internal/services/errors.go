package services

import (
	"errors"

	apperrors "github.com/kfc-academy/learning-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")
	ErrInternalError    = errors.New("internal server error")

	// Course / content errors
	ErrCourseNotFound   = errors.New("course not found")
	ErrModuleNotFound   = errors.New("module not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrUserNotFound     = errors.New("user not found")

	// Question invariant errors
	ErrCorrectAnswerNotInOptions = errors.New("correct answer must be one of the question options")
	ErrOptionsRequired           = errors.New("options are required for choice questions")

	// Submission errors
	ErrAnswerNotInOptions = errors.New("submitted answer must be one of the question options")

	// Progress errors
	ErrTopicNotInModule = errors.New("topic does not belong to module")
	ErrConcurrentUpdate = errors.New("progress record was modified concurrently")

	// Enrollment errors
	ErrNotEnrolled     = errors.New("user is not enrolled in this course")
	ErrAlreadyEnrolled = errors.New("user is already enrolled in this course")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrModuleNotFound) ||
		errors.Is(err, ErrTopicNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrAnswerNotInOptions) ||
		errors.Is(err, ErrCorrectAnswerNotInOptions) ||
		errors.Is(err, ErrOptionsRequired) ||
		errors.Is(err, ErrTopicNotInModule) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrConcurrentUpdate) ||
		errors.Is(err, ErrAlreadyEnrolled)
}
