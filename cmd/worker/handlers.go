package main

import (
	"github.com/hibiken/asynq"

	"schoolsite-backend/internal/domains/submission/job"
	"schoolsite-backend/internal/domains/submission/repository"
	"schoolsite-backend/internal/infrastructure/email"
	"schoolsite-backend/internal/shared"
)

// ========================================
// HANDLER REGISTRY
// ========================================

// HandlerRegistry owns every task handler and knows which task type
// each one serves.
type HandlerRegistry struct {
	received *job.SubmissionReceivedHandler
	reviewed *job.SubmissionReviewedHandler
	digest   *job.PendingDigestHandler
}

func NewHandlerRegistry(
	submissionRepo repository.SubmissionRepository,
	emailService email.EmailService,
	adminEmail string,
) *HandlerRegistry {
	return &HandlerRegistry{
		received: job.NewSubmissionReceivedHandler(emailService),
		reviewed: job.NewSubmissionReviewedHandler(emailService),
		digest:   job.NewPendingDigestHandler(submissionRepo, emailService, adminEmail),
	}
}

// Mux maps task types to their handlers.
func (r *HandlerRegistry) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.Handle(shared.TypeNotifySubmissionReceived, r.received)
	mux.Handle(shared.TypeNotifySubmissionReviewed, r.reviewed)
	mux.Handle(shared.TypeNotifyPendingDigest, r.digest)

	return mux
}
