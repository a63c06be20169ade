package repository

import (
	"context"

	"github.com/google/uuid"

	"schoolsite-backend/internal/domains/article/model"
)

// =====================================================
// ARTICLE REPOSITORY INTERFACE
// =====================================================
//
// Articles are created only by the promotion transaction owned by the
// submission repository; this repository covers the read side, the
// counter increments and the admin side channels.

type ArticleRepository interface {
	// GetByID gets an article by id.
	// Returns model.ErrArticleNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Article, error)

	// GetBySlug gets an article by slug.
	GetBySlug(ctx context.Context, slug string) (*model.Article, error)

	// GetIDBySlug resolves a slug to an article id for counter updates.
	GetIDBySlug(ctx context.Context, slug string) (uuid.UUID, error)

	// ListByCategory lists published articles in a category, newest first.
	ListByCategory(ctx context.Context, category string, page, limit int) ([]*model.Article, int, error)

	// ListFeatured lists featured articles ordered by applause desc,
	// then publish time desc.
	ListFeatured(ctx context.Context, limit int) ([]*model.Article, error)

	// ========================================
	// Counters
	// ========================================
	// Single atomic add-one statements at the store level; concurrent
	// calls must all be reflected in the stored value.

	// IncrementViews adds 1 to the view counter and returns the new value.
	IncrementViews(ctx context.Context, id uuid.UUID) (int, error)

	// IncrementApplause adds 1 to the applause counter and returns the
	// new value.
	IncrementApplause(ctx context.Context, id uuid.UUID) (int, error)

	// ========================================
	// Admin side channels
	// ========================================

	// SetFeatured toggles the featured flag.
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error

	// Delete removes an article. The originating submission row is not
	// touched.
	Delete(ctx context.Context, id uuid.UUID) error
}
