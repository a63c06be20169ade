package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"schoolsite-backend/internal/domains/article/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresArticleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &postgresArticleRepository{pool: pool}
}

const articleColumns = `
	id, submission_id, title, slug,
	body, attachment_key, author_name, author_email, category,
	view_count, applause_count, featured, published_at
`

func scanArticle(row pgx.Row) (*model.Article, error) {
	a := &model.Article{}

	err := row.Scan(
		&a.ID,
		&a.SubmissionID,
		&a.Title,
		&a.Slug,
		&a.Body,
		&a.AttachmentKey,
		&a.AuthorName,
		&a.AuthorEmail,
		&a.Category,
		&a.ViewCount,
		&a.ApplauseCount,
		&a.Featured,
		&a.PublishedAt,
	)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// =====================================================
// READS
// =====================================================

func (r *postgresArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`

	article, err := scanArticle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrArticleNotFound
		}
		return nil, wrapStoreError("failed to get article", err)
	}

	return article, nil
}

func (r *postgresArticleRepository) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`

	article, err := scanArticle(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrArticleNotFound
		}
		return nil, wrapStoreError("failed to get article by slug", err)
	}

	return article, nil
}

func (r *postgresArticleRepository) GetIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM articles WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, model.ErrArticleNotFound
		}
		return uuid.Nil, wrapStoreError("failed to resolve slug", err)
	}

	return id, nil
}

func (r *postgresArticleRepository) ListByCategory(ctx context.Context, category string, page, limit int) ([]*model.Article, int, error) {
	offset := (page - 1) * limit

	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE category = $1
		ORDER BY published_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, category, limit, offset)
	if err != nil {
		return nil, 0, wrapStoreError("failed to list articles", err)
	}
	defer rows.Close()

	articles := make([]*model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapStoreError("failed to list articles", err)
	}

	var total int
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles WHERE category = $1`, category,
	).Scan(&total)
	if err != nil {
		return nil, 0, wrapStoreError("failed to count articles", err)
	}

	return articles, total, nil
}

func (r *postgresArticleRepository) ListFeatured(ctx context.Context, limit int) ([]*model.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE featured = TRUE
		ORDER BY applause_count DESC, published_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, wrapStoreError("failed to list featured articles", err)
	}
	defer rows.Close()

	articles := make([]*model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError("failed to list featured articles", err)
	}

	return articles, nil
}

// =====================================================
// COUNTERS
// =====================================================
// A single UPDATE ... SET n = n + 1 so concurrent increments serialize
// in the database and none are lost.

func (r *postgresArticleRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		UPDATE articles
		SET view_count = view_count + 1
		WHERE id = $1
		RETURNING view_count
	`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrArticleNotFound
		}
		return 0, wrapStoreError("failed to increment views", err)
	}

	return count, nil
}

func (r *postgresArticleRepository) IncrementApplause(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		UPDATE articles
		SET applause_count = applause_count + 1
		WHERE id = $1
		RETURNING applause_count
	`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrArticleNotFound
		}
		return 0, wrapStoreError("failed to increment applause", err)
	}

	return count, nil
}

// =====================================================
// ADMIN SIDE CHANNELS
// =====================================================

func (r *postgresArticleRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE articles SET featured = $1 WHERE id = $2`, featured, id)
	if err != nil {
		return wrapStoreError("failed to set featured", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrArticleNotFound
	}

	return nil
}

func (r *postgresArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return wrapStoreError("failed to delete article", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrArticleNotFound
	}

	return nil
}

func wrapStoreError(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return model.NewStoreUnavailableError(err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
