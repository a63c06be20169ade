package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// ========================================
// INTAKE DTOs
// ========================================

// CreateSubmissionRequest is the public intake payload. Body and
// AttachmentKey are alternatives; exactly one source of content is required.
type CreateSubmissionRequest struct {
	Title         string  `json:"title"`
	Body          *string `json:"body,omitempty"`
	AttachmentKey *string `json:"attachment_key,omitempty"`
	AuthorName    string  `json:"author_name"`
	AuthorEmail   string  `json:"author_email"`
	Category      string  `json:"category"`
}

func (r CreateSubmissionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 200),
		),
		validation.Field(&r.AuthorName,
			validation.Required.Error("author name is required"),
			validation.Length(1, 100),
		),
		validation.Field(&r.AuthorEmail,
			validation.Required.Error("author contact is required"),
			is.Email.Error("invalid email format"),
		),
		validation.Field(&r.Category,
			validation.Required.Error("category is required"),
			validation.Length(1, 50),
		),
		validation.Field(&r.Body,
			validation.By(func(interface{}) error {
				if !r.hasContent() {
					return validation.NewError(
						"validation_content_required",
						"either body or attachment_key must be provided")
				}
				return nil
			}),
		),
	)
}

func (r CreateSubmissionRequest) hasContent() bool {
	if r.Body != nil && *r.Body != "" {
		return true
	}
	return r.AttachmentKey != nil && *r.AttachmentKey != ""
}

// ReviewRequest carries the admin decision metadata for approve/reject.
type ReviewRequest struct {
	Notes string `json:"notes,omitempty"`
}

func (r ReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Notes, validation.Length(0, 2000)),
	)
}

// ========================================
// RESPONSES
// ========================================

type SubmissionResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Body          *string    `json:"body,omitempty"`
	AttachmentKey *string    `json:"attachment_key,omitempty"`
	AuthorName    string     `json:"author_name"`
	AuthorEmail   string     `json:"author_email"`
	Category      string     `json:"category"`
	Status        string     `json:"status"`
	AdminNotes    *string    `json:"admin_notes,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToSubmissionResponse(s *Submission) *SubmissionResponse {
	return &SubmissionResponse{
		ID:            s.ID,
		Title:         s.Title,
		Body:          s.Body,
		AttachmentKey: s.AttachmentKey,
		AuthorName:    s.AuthorName,
		AuthorEmail:   s.AuthorEmail,
		Category:      s.Category,
		Status:        s.Status,
		AdminNotes:    s.AdminNotes,
		ReviewedAt:    s.ReviewedAt,
		CreatedAt:     s.CreatedAt,
	}
}

// ApproveResponse returns the article created by a successful promotion.
type ApproveResponse struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	ArticleID    uuid.UUID `json:"article_id"`
	Slug         string    `json:"slug"`
}

// UploadAttachmentResponse returns the storage key for an uploaded draft file.
type UploadAttachmentResponse struct {
	AttachmentKey string `json:"attachment_key"`
	URL           string `json:"url"`
}
