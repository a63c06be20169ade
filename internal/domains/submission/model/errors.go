package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeSubmissionNotFound = "SUB001"
	ErrCodeAlreadyReviewed    = "SUB002"
	ErrCodeValidation         = "SUB003"
	ErrCodeSlugConflict       = "SUB004"
	ErrCodeStoreUnavailable   = "SUB005"
)

// Errors
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyReviewed    = errors.New("submission already reviewed")
	ErrUnusableTitle      = errors.New("title produces an empty slug")
	ErrSlugConflict       = errors.New("slug conflict retries exhausted")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// SubmissionError custom error type
type SubmissionError struct {
	Code    string
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewSubmissionNotFoundError() *SubmissionError {
	return &SubmissionError{
		Code:    ErrCodeSubmissionNotFound,
		Message: "Submission not found",
		Err:     ErrSubmissionNotFound,
	}
}

func NewAlreadyReviewedError() *SubmissionError {
	return &SubmissionError{
		Code:    ErrCodeAlreadyReviewed,
		Message: "Submission has already been reviewed",
		Err:     ErrAlreadyReviewed,
	}
}

func NewValidationError(reason string) *SubmissionError {
	return &SubmissionError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("Invalid submission: %s", reason),
	}
}

func NewUnusableTitleError() *SubmissionError {
	return &SubmissionError{
		Code:    ErrCodeValidation,
		Message: "Title contains no characters usable in a slug",
		Err:     ErrUnusableTitle,
	}
}

func NewSlugConflictError(slug string) *SubmissionError {
	return &SubmissionError{
		Code:    ErrCodeSlugConflict,
		Message: fmt.Sprintf("Could not find a free slug for %q", slug),
		Err:     ErrSlugConflict,
	}
}

func NewStoreUnavailableError(err error) *SubmissionError {
	return &SubmissionError{
		Code:    ErrCodeStoreUnavailable,
		Message: "Submission store unavailable, retry later",
		Err:     errors.Join(ErrStoreUnavailable, err),
	}
}
