package model

import (
	"time"

	"github.com/google/uuid"
)

// Article is a published piece promoted from an approved submission.
// SubmissionID is unique: at most one article per submission. Slug is
// unique across the catalog and stable once assigned. The counters only
// ever increase.
type Article struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`

	// Content (copied from the submission at promotion time)
	Body          *string `json:"body,omitempty"`
	AttachmentKey *string `json:"attachment_key,omitempty"`
	AuthorName    string  `json:"author_name"`
	AuthorEmail   string  `json:"author_email"`
	Category      string  `json:"category"`

	// Engagement
	ViewCount     int  `json:"view_count"`
	ApplauseCount int  `json:"applause_count"`
	Featured      bool `json:"featured"`

	PublishedAt time.Time `json:"published_at"`
}
