package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	articleModel "schoolsite-backend/internal/domains/article/model"
	"schoolsite-backend/internal/domains/submission/model"
	"schoolsite-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresSubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &postgresSubmissionRepository{pool: pool}
}

const submissionColumns = `
	id, title, body, attachment_key,
	author_name, author_email, category,
	status, admin_notes, reviewed_at, created_at
`

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	s := &model.Submission{}

	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Body,
		&s.AttachmentKey,
		&s.AuthorName,
		&s.AuthorEmail,
		&s.Category,
		&s.Status,
		&s.AdminNotes,
		&s.ReviewedAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresSubmissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	query := `
		INSERT INTO submissions (
			id, title, body, attachment_key,
			author_name, author_email, category,
			status, admin_notes, reviewed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		submission.ID,
		submission.Title,
		submission.Body,
		submission.AttachmentKey,
		submission.AuthorName,
		submission.AuthorEmail,
		submission.Category,
		submission.Status,
		submission.AdminNotes,
		submission.ReviewedAt,
		submission.CreatedAt,
	)

	if err != nil {
		return wrapStoreError("failed to create submission", err)
	}

	return nil
}

// =====================================================
// GET BY ID
// =====================================================

func (r *postgresSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	submission, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSubmissionNotFound
		}
		return nil, wrapStoreError("failed to get submission", err)
	}

	return submission, nil
}

// =====================================================
// LIST BY STATUS
// =====================================================

func (r *postgresSubmissionRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]*model.Submission, int, error) {
	offset := (page - 1) * limit

	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, wrapStoreError("failed to list submissions", err)
	}
	defer rows.Close()

	submissions := make([]*model.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapStoreError("failed to list submissions", err)
	}

	total, err := r.CountByStatus(ctx, status)
	if err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *postgresSubmissionRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE status = $1`, status,
	).Scan(&count)
	if err != nil {
		return 0, wrapStoreError("failed to count submissions", err)
	}

	return count, nil
}

// =====================================================
// APPROVE AND PROMOTE (single transaction)
// =====================================================

func (r *postgresSubmissionRepository) ApproveAndPromote(
	ctx context.Context,
	submissionID uuid.UUID,
	article *articleModel.Article,
	notes *string,
	reviewedAt time.Time,
) error {
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// Conditional update: only a pending row can be flipped, so of two
		// racing reviewers exactly one sees rows affected = 1.
		if err := markReviewedTx(ctx, tx, submissionID, model.StatusApproved, notes, reviewedAt); err != nil {
			return err
		}

		insert := `
			INSERT INTO articles (
				id, submission_id, title, slug,
				body, attachment_key, author_name, author_email, category,
				view_count, applause_count, featured, published_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`

		_, err := tx.Exec(ctx, insert,
			article.ID,
			article.SubmissionID,
			article.Title,
			article.Slug,
			article.Body,
			article.AttachmentKey,
			article.AuthorName,
			article.AuthorEmail,
			article.Category,
			article.ViewCount,
			article.ApplauseCount,
			article.Featured,
			article.PublishedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				// Unique violation: either the slug or the one-article-per-
				// submission constraint. The transaction rolls back either
				// way, leaving the submission pending.
				if pgErr.ConstraintName == "articles_submission_id_key" {
					return articleModel.ErrAlreadyPromoted
				}
				return articleModel.ErrSlugTaken
			}
			return fmt.Errorf("failed to insert article: %w", err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, model.ErrSubmissionNotFound) ||
			errors.Is(err, model.ErrAlreadyReviewed) ||
			errors.Is(err, articleModel.ErrSlugTaken) ||
			errors.Is(err, articleModel.ErrAlreadyPromoted) {
			return err
		}
		return wrapStoreError("failed to promote submission", err)
	}

	return nil
}

// =====================================================
// REJECT
// =====================================================

func (r *postgresSubmissionRepository) Reject(
	ctx context.Context,
	submissionID uuid.UUID,
	notes *string,
	reviewedAt time.Time,
) error {
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return markReviewedTx(ctx, tx, submissionID, model.StatusRejected, notes, reviewedAt)
	})

	if err != nil {
		if errors.Is(err, model.ErrSubmissionNotFound) || errors.Is(err, model.ErrAlreadyReviewed) {
			return err
		}
		return wrapStoreError("failed to reject submission", err)
	}

	return nil
}

// markReviewedTx performs the terminal status flip. The WHERE clause on
// status = pending is what decides races: the loser affects zero rows.
func markReviewedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, notes *string, reviewedAt time.Time) error {
	result, err := tx.Exec(ctx, `
		UPDATE submissions
		SET status = $1,
		    admin_notes = $2,
		    reviewed_at = $3
		WHERE id = $4 AND status = $5
	`, status, notes, reviewedAt, id, model.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing submission from a lost race.
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM submissions WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrSubmissionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check submission status: %w", err)
		}
		return model.ErrAlreadyReviewed
	}

	return nil
}

// wrapStoreError maps transport-level failures (timeouts, dead
// connections) onto the retryable store-unavailable condition.
func wrapStoreError(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return model.NewStoreUnavailableError(err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
