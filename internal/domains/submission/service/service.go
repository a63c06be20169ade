package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	articleModel "schoolsite-backend/internal/domains/article/model"
	"schoolsite-backend/internal/domains/submission/model"
	"schoolsite-backend/internal/domains/submission/repository"
	"schoolsite-backend/internal/shared"
	"schoolsite-backend/internal/shared/utils"
	"schoolsite-backend/pkg/logger"
)

// TaskEnqueuer is the slice of asynq.Client the workflow needs. Tasks are
// one-way: enqueue failures are logged, never propagated.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AttachmentStorage stores draft files and hands back an opaque key.
type AttachmentStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	tasks          TaskEnqueuer
	storage        AttachmentStorage
	siteBaseURL    string
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	tasks TaskEnqueuer,
	storage AttachmentStorage,
	siteBaseURL string,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		tasks:          tasks,
		storage:        storage,
		siteBaseURL:    siteBaseURL,
	}
}

// =====================================================
// SUBMIT
// =====================================================

func (s *submissionService) Submit(ctx context.Context, req model.CreateSubmissionRequest) (*model.SubmissionResponse, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error())
	}

	// Step 2: Create submission entity
	submission := &model.Submission{
		ID:            uuid.New(),
		Title:         req.Title,
		Body:          req.Body,
		AttachmentKey: req.AttachmentKey,
		AuthorName:    req.AuthorName,
		AuthorEmail:   req.AuthorEmail,
		Category:      req.Category,
		Status:        model.StatusPending,
		CreatedAt:     time.Now(),
	}

	// Step 3: Save to database
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	// Step 4: Notify, best effort. The submission is already persisted;
	// a notification failure must not surface to the caller.
	s.enqueue(shared.TypeNotifySubmissionReceived, shared.SubmissionReceivedPayload{
		SubmissionID: submission.ID.String(),
		Title:        submission.Title,
		AuthorName:   submission.AuthorName,
		AuthorEmail:  submission.AuthorEmail,
	})

	return model.ToSubmissionResponse(submission), nil
}

// =====================================================
// APPROVE
// =====================================================

func (s *submissionService) Approve(ctx context.Context, id uuid.UUID, req model.ReviewRequest) (*model.ApproveResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error())
	}

	// Step 1: Load submission
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSubmissionNotFound) {
			return nil, model.NewSubmissionNotFoundError()
		}
		return nil, err
	}

	// Step 2: Check state early. The conditional update inside the
	// transaction rechecks this, so a stale read here cannot double-promote.
	if !submission.IsPending() {
		return nil, model.NewAlreadyReviewedError()
	}

	// Step 3: Compute slug. An unusable title is rejected, never published.
	baseSlug := utils.Slugify(submission.Title)
	if baseSlug == "" {
		return nil, model.NewUnusableTitleError()
	}

	notes := reviewNotes(req)

	// Step 4: Promote, retrying slug collisions with a numeric suffix.
	var article *articleModel.Article
	for attempt := 1; attempt <= model.MaxSlugAttempts; attempt++ {
		slug := baseSlug
		if attempt > 1 {
			slug = fmt.Sprintf("%s-%d", baseSlug, attempt)
		}

		article = &articleModel.Article{
			ID:            uuid.New(),
			SubmissionID:  submission.ID,
			Title:         submission.Title,
			Slug:          slug,
			Body:          submission.Body,
			AttachmentKey: submission.AttachmentKey,
			AuthorName:    submission.AuthorName,
			AuthorEmail:   submission.AuthorEmail,
			Category:      submission.Category,
			ViewCount:     0,
			ApplauseCount: 0,
			Featured:      false,
			PublishedAt:   time.Now(),
		}

		err = s.submissionRepo.ApproveAndPromote(ctx, submission.ID, article, notes, article.PublishedAt)
		if err == nil {
			break
		}
		if errors.Is(err, articleModel.ErrSlugTaken) {
			article = nil
			continue
		}
		if errors.Is(err, model.ErrAlreadyReviewed) || errors.Is(err, articleModel.ErrAlreadyPromoted) {
			return nil, model.NewAlreadyReviewedError()
		}
		if errors.Is(err, model.ErrSubmissionNotFound) {
			return nil, model.NewSubmissionNotFoundError()
		}
		return nil, err
	}

	if article == nil {
		return nil, model.NewSlugConflictError(baseSlug)
	}

	// Step 5: Notify the author after commit. Promotion has succeeded and
	// must not be undone because a notification failed.
	s.enqueue(shared.TypeNotifySubmissionReviewed, shared.SubmissionReviewedPayload{
		SubmissionID: submission.ID.String(),
		Title:        submission.Title,
		AuthorName:   submission.AuthorName,
		AuthorEmail:  submission.AuthorEmail,
		Status:       model.StatusApproved,
		AdminNotes:   req.Notes,
		ArticleSlug:  article.Slug,
		ArticleURL:   s.articleURL(article.Slug),
	})

	return &model.ApproveResponse{
		SubmissionID: submission.ID,
		ArticleID:    article.ID,
		Slug:         article.Slug,
	}, nil
}

// =====================================================
// REJECT
// =====================================================

func (s *submissionService) Reject(ctx context.Context, id uuid.UUID, req model.ReviewRequest) error {
	if err := req.Validate(); err != nil {
		return model.NewValidationError(err.Error())
	}

	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSubmissionNotFound) {
			return model.NewSubmissionNotFoundError()
		}
		return err
	}

	if !submission.IsPending() {
		return model.NewAlreadyReviewedError()
	}

	err = s.submissionRepo.Reject(ctx, submission.ID, reviewNotes(req), time.Now())
	if err != nil {
		if errors.Is(err, model.ErrAlreadyReviewed) {
			return model.NewAlreadyReviewedError()
		}
		if errors.Is(err, model.ErrSubmissionNotFound) {
			return model.NewSubmissionNotFoundError()
		}
		return err
	}

	s.enqueue(shared.TypeNotifySubmissionReviewed, shared.SubmissionReviewedPayload{
		SubmissionID: submission.ID.String(),
		Title:        submission.Title,
		AuthorName:   submission.AuthorName,
		AuthorEmail:  submission.AuthorEmail,
		Status:       model.StatusRejected,
		AdminNotes:   req.Notes,
	})

	return nil
}

// =====================================================
// READS
// =====================================================

func (s *submissionService) GetSubmission(ctx context.Context, id uuid.UUID) (*model.SubmissionResponse, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSubmissionNotFound) {
			return nil, model.NewSubmissionNotFoundError()
		}
		return nil, err
	}

	return model.ToSubmissionResponse(submission), nil
}

func (s *submissionService) ListByStatus(ctx context.Context, status string, page, limit int) ([]*model.SubmissionResponse, int, error) {
	if status != model.StatusPending && status != model.StatusApproved && status != model.StatusRejected {
		return nil, 0, model.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	submissions, total, err := s.submissionRepo.ListByStatus(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*model.SubmissionResponse, 0, len(submissions))
	for _, sub := range submissions {
		responses = append(responses, model.ToSubmissionResponse(sub))
	}

	return responses, total, nil
}

// =====================================================
// ATTACHMENTS
// =====================================================

func (s *submissionService) UploadAttachment(ctx context.Context, filename string, data []byte, contentType string) (*model.UploadAttachmentResponse, error) {
	if len(data) == 0 {
		return nil, model.NewValidationError("attachment is empty")
	}

	key := fmt.Sprintf("submissions/%s/%s", uuid.New().String(), path.Base(filename))

	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	return &model.UploadAttachmentResponse{
		AttachmentKey: key,
		URL:           url,
	}, nil
}

// DownloadAttachment fetches the draft file of a submission so an admin
// can review it. Returns the bytes and the filename from the storage key.
func (s *submissionService) DownloadAttachment(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSubmissionNotFound) {
			return nil, "", model.NewSubmissionNotFoundError()
		}
		return nil, "", err
	}

	if submission.AttachmentKey == nil || *submission.AttachmentKey == "" {
		return nil, "", model.NewValidationError("submission has no attachment")
	}

	data, err := s.storage.Download(ctx, *submission.AttachmentKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch attachment: %w", err)
	}

	return data, path.Base(*submission.AttachmentKey), nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *submissionService) articleURL(slug string) string {
	return fmt.Sprintf("%s/articles/%s", s.siteBaseURL, slug)
}

func reviewNotes(req model.ReviewRequest) *string {
	if req.Notes == "" {
		return nil
	}
	notes := req.Notes
	return &notes
}

// enqueue dispatches a notification task. One-way: failures are logged
// and swallowed so notifier problems never reach the state machine.
func (s *submissionService) enqueue(taskType string, payload interface{}) {
	if s.tasks == nil {
		return
	}

	b, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal notification payload", err)
		return
	}

	task := asynq.NewTask(taskType, b)
	if _, err := s.tasks.Enqueue(task, asynq.Queue(shared.QueueDefault), asynq.MaxRetry(3)); err != nil {
		logger.Error(fmt.Sprintf("Failed to enqueue %s task", taskType), err)
	}
}
