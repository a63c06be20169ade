package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	articleModel "schoolsite-backend/internal/domains/article/model"
	"schoolsite-backend/internal/domains/submission/model"
)

// =====================================================
// SUBMISSION REPOSITORY INTERFACE
// =====================================================

type SubmissionRepository interface {
	// Create inserts a new pending submission.
	Create(ctx context.Context, submission *model.Submission) error

	// GetByID gets a submission by id.
	// Returns model.ErrSubmissionNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)

	// ListByStatus lists submissions in a status, newest first.
	ListByStatus(ctx context.Context, status string, page, limit int) ([]*model.Submission, int, error)

	// CountByStatus counts submissions in a status.
	CountByStatus(ctx context.Context, status string) (int, error)

	// ========================================
	// Transactional moderation operations
	// ========================================
	// Both writes of a promotion go through a single call so callers can
	// never observe an approved submission without its article.

	// ApproveAndPromote atomically inserts the article and flips the
	// submission from pending to approved, recording notes and review time.
	// The status flip is a conditional update; a concurrent reviewer who
	// loses the race gets model.ErrAlreadyReviewed. A slug collision
	// rolls the whole transaction back with articleModel.ErrSlugTaken.
	ApproveAndPromote(ctx context.Context, submissionID uuid.UUID, article *articleModel.Article, notes *string, reviewedAt time.Time) error

	// Reject flips the submission from pending to rejected under the same
	// conditional-update rule. No article is created.
	Reject(ctx context.Context, submissionID uuid.UUID, notes *string, reviewedAt time.Time) error
}
