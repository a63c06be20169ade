package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type ArticleResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Body          *string   `json:"body,omitempty"`
	AttachmentKey *string   `json:"attachment_key,omitempty"`
	AuthorName    string    `json:"author_name"`
	Category      string    `json:"category"`
	ViewCount     int       `json:"view_count"`
	ApplauseCount int       `json:"applause_count"`
	Featured      bool      `json:"featured"`
	PublishedAt   time.Time `json:"published_at"`
}

// ToArticleResponse hides the author's contact address from public reads.
func ToArticleResponse(a *Article) *ArticleResponse {
	return &ArticleResponse{
		ID:            a.ID,
		Title:         a.Title,
		Slug:          a.Slug,
		Body:          a.Body,
		AttachmentKey: a.AttachmentKey,
		AuthorName:    a.AuthorName,
		Category:      a.Category,
		ViewCount:     a.ViewCount,
		ApplauseCount: a.ApplauseCount,
		Featured:      a.Featured,
		PublishedAt:   a.PublishedAt,
	}
}

// CounterResponse is returned by the view/applause endpoints.
type CounterResponse struct {
	ArticleID uuid.UUID `json:"article_id"`
	Count     int       `json:"count"`
}

// SetFeaturedRequest toggles the featured flag (admin side channel).
type SetFeaturedRequest struct {
	Featured bool `json:"featured"`
}

// ListQuery bounds pagination for category listings.
type ListQuery struct {
	Category string `form:"category"`
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
}

func (q ListQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Category, validation.Required.Error("category is required")),
		validation.Field(&q.Page, validation.Min(1)),
		validation.Field(&q.Limit, validation.Min(1), validation.Max(100)),
	)
}
