package service

import (
	"context"

	"github.com/google/uuid"

	"schoolsite-backend/internal/domains/article/model"
)

// ArticleService serves the public catalog and the engagement counters.
type ArticleService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ArticleResponse, error)

	GetBySlug(ctx context.Context, slug string) (*model.ArticleResponse, error)

	ListByCategory(ctx context.Context, category string, page, limit int) ([]*model.ArticleResponse, int, error)

	// ListFeatured returns featured articles ordered by applause desc then
	// publish time desc, served through a short-lived cache.
	ListFeatured(ctx context.Context, limit int) ([]*model.ArticleResponse, error)

	// RecordView adds exactly 1 to the view counter. ref is either an
	// article id or a slug.
	RecordView(ctx context.Context, ref string) (*model.CounterResponse, error)

	// RecordApplause adds exactly 1 to the applause counter.
	RecordApplause(ctx context.Context, ref string) (*model.CounterResponse, error)

	// SetFeatured toggles the featured flag (admin side channel).
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error

	// Delete removes an article (admin side channel, independent of the
	// moderation workflow).
	Delete(ctx context.Context, id uuid.UUID) error
}
