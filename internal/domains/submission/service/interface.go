package service

import (
	"context"

	"github.com/google/uuid"

	"schoolsite-backend/internal/domains/submission/model"
)

// SubmissionService is the moderation workflow: public intake plus the
// admin approve/reject transitions that drive the submission state machine.
type SubmissionService interface {
	// Submit validates and stores a new pending submission, then fires a
	// best-effort "submission received" notification.
	Submit(ctx context.Context, req model.CreateSubmissionRequest) (*model.SubmissionResponse, error)

	// Approve promotes a pending submission into the article catalog.
	// The article insert and the status flip happen in one transaction;
	// slug collisions are retried with a numeric suffix up to
	// model.MaxSlugAttempts.
	Approve(ctx context.Context, id uuid.UUID, req model.ReviewRequest) (*model.ApproveResponse, error)

	// Reject terminally rejects a pending submission.
	Reject(ctx context.Context, id uuid.UUID, req model.ReviewRequest) error

	GetSubmission(ctx context.Context, id uuid.UUID) (*model.SubmissionResponse, error)

	ListByStatus(ctx context.Context, status string, page, limit int) ([]*model.SubmissionResponse, int, error)

	// UploadAttachment stores draft bytes in blob storage and returns the
	// opaque key the intake request references.
	UploadAttachment(ctx context.Context, filename string, data []byte, contentType string) (*model.UploadAttachmentResponse, error)

	// DownloadAttachment fetches a submission's draft file for review.
	// Returns the bytes and the original filename.
	DownloadAttachment(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}
