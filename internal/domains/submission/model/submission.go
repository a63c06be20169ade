package model

import (
	"time"

	"github.com/google/uuid"
)

// Submission statuses. A submission leaves pending exactly once,
// to approved or rejected, and never returns.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Slug collision handling
const (
	// MaxSlugAttempts bounds the disambiguation retries during promotion.
	MaxSlugAttempts = 5
)

// Submission is a visitor-authored draft awaiting moderation.
// Either Body or AttachmentKey is set; AttachmentKey references an
// object in blob storage.
type Submission struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Body          *string   `json:"body,omitempty"`
	AttachmentKey *string   `json:"attachment_key,omitempty"`
	AuthorName    string    `json:"author_name"`
	AuthorEmail   string    `json:"author_email"`
	Category      string    `json:"category"`

	// Moderation
	Status     string     `json:"status"`
	AdminNotes *string    `json:"admin_notes,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsPending reports whether the submission is still waiting for review.
func (s *Submission) IsPending() bool {
	return s.Status == StatusPending
}
