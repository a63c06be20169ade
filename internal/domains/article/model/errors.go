package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeArticleNotFound  = "ART001"
	ErrCodeSlugTaken        = "ART002"
	ErrCodeAlreadyPromoted  = "ART003"
	ErrCodeStoreUnavailable = "ART004"
)

// Errors
var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrSlugTaken        = errors.New("slug already in use")
	ErrAlreadyPromoted  = errors.New("submission already has an article")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ArticleError custom error type
type ArticleError struct {
	Code    string
	Message string
	Err     error
}

func (e *ArticleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ArticleError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewArticleNotFoundError() *ArticleError {
	return &ArticleError{
		Code:    ErrCodeArticleNotFound,
		Message: "Article not found",
		Err:     ErrArticleNotFound,
	}
}

func NewStoreUnavailableError(err error) *ArticleError {
	return &ArticleError{
		Code:    ErrCodeStoreUnavailable,
		Message: "Article store unavailable, retry later",
		Err:     errors.Join(ErrStoreUnavailable, err),
	}
}
