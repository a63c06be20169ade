package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"schoolsite-backend/internal/domains/submission/model"
	"schoolsite-backend/internal/domains/submission/repository"
	"schoolsite-backend/internal/infrastructure/email"
)

// ============================================
// Pending Digest Handler (scheduled)
// ============================================

// PendingDigestHandler mails the moderation admin a daily count of
// submissions still waiting for review.
type PendingDigestHandler struct {
	submissionRepo repository.SubmissionRepository
	emailService   email.EmailService
	adminEmail     string
}

func NewPendingDigestHandler(
	submissionRepo repository.SubmissionRepository,
	emailService email.EmailService,
	adminEmail string,
) *PendingDigestHandler {
	return &PendingDigestHandler{
		submissionRepo: submissionRepo,
		emailService:   emailService,
		adminEmail:     adminEmail,
	}
}

func (h *PendingDigestHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	count, err := h.submissionRepo.CountByStatus(ctx, model.StatusPending)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count pending submissions for digest")
		return err
	}

	if count == 0 {
		log.Info().Msg("No pending submissions, skipping digest")
		return nil
	}

	err = h.emailService.SendPendingDigestEmail(ctx, email.PendingDigestData{
		AdminEmail:   h.adminEmail,
		PendingCount: count,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to send pending digest email")
		return err
	}

	log.Info().Int("pending", count).Msg("Pending digest sent")
	return nil
}
