package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"schoolsite-backend/internal/infrastructure/email"
	"schoolsite-backend/internal/shared"
)

// ============================================
// Submission Received Handler
// ============================================

type SubmissionReceivedHandler struct {
	emailService email.EmailService
}

func NewSubmissionReceivedHandler(emailService email.EmailService) *SubmissionReceivedHandler {
	return &SubmissionReceivedHandler{
		emailService: emailService,
	}
}

func (h *SubmissionReceivedHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SubmissionReceivedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal SubmissionReceived payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("submission_id", payload.SubmissionID).
		Str("email", payload.AuthorEmail).
		Msg("Processing submission-received notification")

	err := h.emailService.SendSubmissionReceivedEmail(ctx, email.SubmissionReceivedData{
		AuthorName:  payload.AuthorName,
		AuthorEmail: payload.AuthorEmail,
		Title:       payload.Title,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to send submission-received email")
		return fmt.Errorf("send submission-received email: %w", err)
	}

	return nil
}

// ============================================
// Submission Reviewed Handler
// ============================================

type SubmissionReviewedHandler struct {
	emailService email.EmailService
}

func NewSubmissionReviewedHandler(emailService email.EmailService) *SubmissionReviewedHandler {
	return &SubmissionReviewedHandler{
		emailService: emailService,
	}
}

func (h *SubmissionReviewedHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SubmissionReviewedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal SubmissionReviewed payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("submission_id", payload.SubmissionID).
		Str("status", payload.Status).
		Str("email", payload.AuthorEmail).
		Msg("Processing submission-reviewed notification")

	err := h.emailService.SendSubmissionReviewedEmail(ctx, email.SubmissionReviewedData{
		AuthorName:  payload.AuthorName,
		AuthorEmail: payload.AuthorEmail,
		Title:       payload.Title,
		Status:      payload.Status,
		AdminNotes:  payload.AdminNotes,
		ArticleURL:  payload.ArticleURL,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to send submission-reviewed email")
		return fmt.Errorf("send submission-reviewed email: %w", err)
	}

	return nil
}
