package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	articleModel "schoolsite-backend/internal/domains/article/model"
	"schoolsite-backend/internal/domains/submission/model"
	"schoolsite-backend/internal/shared"
)

// ========================================
// FAKES
// ========================================

// fakeSubmissionRepo mimics the store's transition rules: the status flip
// is conditional on pending, one article per submission, unique slugs.
type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uuid.UUID]*model.Submission
	articles    map[uuid.UUID]*articleModel.Article // keyed by submission id
	takenSlugs  map[string]bool
	createErr   error
	createCalls int
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		submissions: make(map[uuid.UUID]*model.Submission),
		articles:    make(map[uuid.UUID]*articleModel.Article),
		takenSlugs:  make(map[string]bool),
	}
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	copied := *submission
	f.submissions[submission.ID] = &copied
	return nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.submissions[id]
	if !ok {
		return nil, model.ErrSubmissionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeSubmissionRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]*model.Submission, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Submission
	for _, sub := range f.submissions {
		if sub.Status == status {
			copied := *sub
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (f *fakeSubmissionRepo) CountByStatus(_ context.Context, status string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, sub := range f.submissions {
		if sub.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubmissionRepo) ApproveAndPromote(_ context.Context, submissionID uuid.UUID, article *articleModel.Article, notes *string, reviewedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.submissions[submissionID]
	if !ok {
		return model.ErrSubmissionNotFound
	}
	if sub.Status != model.StatusPending {
		return model.ErrAlreadyReviewed
	}
	if _, exists := f.articles[submissionID]; exists {
		return articleModel.ErrAlreadyPromoted
	}
	if f.takenSlugs[article.Slug] {
		return articleModel.ErrSlugTaken
	}

	sub.Status = model.StatusApproved
	sub.AdminNotes = notes
	sub.ReviewedAt = &reviewedAt

	copied := *article
	f.articles[submissionID] = &copied
	f.takenSlugs[article.Slug] = true
	return nil
}

func (f *fakeSubmissionRepo) Reject(_ context.Context, submissionID uuid.UUID, notes *string, reviewedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.submissions[submissionID]
	if !ok {
		return model.ErrSubmissionNotFound
	}
	if sub.Status != model.StatusPending {
		return model.ErrAlreadyReviewed
	}

	sub.Status = model.StatusRejected
	sub.AdminNotes = notes
	sub.ReviewedAt = &reviewedAt
	return nil
}

// fakeEnqueuer records dispatched tasks.
type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (f *fakeEnqueuer) typesSeen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var types []string
	for _, task := range f.tasks {
		types = append(types, task.Type())
	}
	return types
}

type fakeStorage struct {
	lastKey string
	objects map[string][]byte
	err     error
}

func (f *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.lastKey = key
	f.objects[key] = data
	return "http://storage.local/" + key, nil
}

func (f *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

// ========================================
// HELPERS
// ========================================

func newTestService(repo *fakeSubmissionRepo, tasks *fakeEnqueuer) SubmissionService {
	return NewSubmissionService(repo, tasks, &fakeStorage{}, "https://school.example.org")
}

func validRequest() model.CreateSubmissionRequest {
	body := "We built a trebuchet for the fall fair."
	return model.CreateSubmissionRequest{
		Title:       "Why Physics Matters",
		Body:        &body,
		AuthorName:  "Dana Lee",
		AuthorEmail: "dana@example.org",
		Category:    "science",
	}
}

func submitPending(t *testing.T, svc SubmissionService) uuid.UUID {
	t.Helper()
	resp, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	return resp.ID
}

// ========================================
// SUBMIT
// ========================================

func TestSubmit_CreatesPendingSubmission(t *testing.T) {
	repo := newFakeSubmissionRepo()
	tasks := &fakeEnqueuer{}
	svc := newTestService(repo, tasks)

	resp, err := svc.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, resp.Status)
	assert.NotEqual(t, uuid.Nil, resp.ID)

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Nil(t, stored.ReviewedAt)

	assert.Equal(t, []string{shared.TypeNotifySubmissionReceived}, tasks.typesSeen())
}

func TestSubmit_RejectsMissingContent(t *testing.T) {
	repo := newFakeSubmissionRepo()
	svc := newTestService(repo, &fakeEnqueuer{})

	req := validRequest()
	req.Body = nil
	req.AttachmentKey = nil

	_, err := svc.Submit(context.Background(), req)

	require.Error(t, err)
	var subErr *model.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, model.ErrCodeValidation, subErr.Code)
	assert.Zero(t, repo.createCalls, "invalid request must not touch the store")
}

func TestSubmit_RejectsBadEmail(t *testing.T) {
	svc := newTestService(newFakeSubmissionRepo(), &fakeEnqueuer{})

	req := validRequest()
	req.AuthorEmail = "not-an-email"

	_, err := svc.Submit(context.Background(), req)

	var subErr *model.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, model.ErrCodeValidation, subErr.Code)
}

func TestSubmit_AttachmentOnlyIsValid(t *testing.T) {
	svc := newTestService(newFakeSubmissionRepo(), &fakeEnqueuer{})

	key := "submissions/abc/draft.pdf"
	req := validRequest()
	req.Body = nil
	req.AttachmentKey = &key

	_, err := svc.Submit(context.Background(), req)
	assert.NoError(t, err)
}

// ========================================
// APPROVE
// ========================================

func TestApprove_PromotesToArticle(t *testing.T) {
	repo := newFakeSubmissionRepo()
	tasks := &fakeEnqueuer{}
	svc := newTestService(repo, tasks)
	id := submitPending(t, svc)

	resp, err := svc.Approve(context.Background(), id, model.ReviewRequest{Notes: "great read"})

	require.NoError(t, err)
	assert.Equal(t, id, resp.SubmissionID)
	assert.Equal(t, "why-physics-matters", resp.Slug)
	assert.NotEqual(t, uuid.Nil, resp.ArticleID)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewedAt)
	require.NotNil(t, stored.AdminNotes)
	assert.Equal(t, "great read", *stored.AdminNotes)

	article := repo.articles[id]
	require.NotNil(t, article)
	assert.Equal(t, id, article.SubmissionID)
	assert.Zero(t, article.ViewCount)
	assert.Zero(t, article.ApplauseCount)
	assert.False(t, article.Featured)

	assert.Equal(t, []string{
		shared.TypeNotifySubmissionReceived,
		shared.TypeNotifySubmissionReviewed,
	}, tasks.typesSeen())
}

func TestApprove_NotFound(t *testing.T) {
	svc := newTestService(newFakeSubmissionRepo(), &fakeEnqueuer{})

	_, err := svc.Approve(context.Background(), uuid.New(), model.ReviewRequest{})

	assert.ErrorIs(t, err, model.ErrSubmissionNotFound)
}

func TestApprove_SecondReviewFails(t *testing.T) {
	repo := newFakeSubmissionRepo()
	svc := newTestService(repo, &fakeEnqueuer{})
	id := submitPending(t, svc)

	_, err := svc.Approve(context.Background(), id, model.ReviewRequest{})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), id, model.ReviewRequest{})
	assert.ErrorIs(t, err, model.ErrAlreadyReviewed)

	err = svc.Reject(context.Background(), id, model.ReviewRequest{})
	assert.ErrorIs(t, err, model.ErrAlreadyReviewed)
}

func TestApprove_UnusableTitle(t *testing.T) {
	repo := newFakeSubmissionRepo()
	tasks := &fakeEnqueuer{}
	svc := newTestService(repo, tasks)

	req := validRequest()
	req.Title = "!!! ???"
	resp, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), resp.ID, model.ReviewRequest{})

	assert.ErrorIs(t, err, model.ErrUnusableTitle)

	// Submission stays pending: the admin can fix the title workflow
	// out of band and review again.
	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestApprove_SlugCollisionGetsSuffix(t *testing.T) {
	repo := newFakeSubmissionRepo()
	repo.takenSlugs["why-physics-matters"] = true
	svc := newTestService(repo, &fakeEnqueuer{})
	id := submitPending(t, svc)

	resp, err := svc.Approve(context.Background(), id, model.ReviewRequest{})

	require.NoError(t, err)
	assert.Equal(t, "why-physics-matters-2", resp.Slug)
}

func TestApprove_SlugRetriesExhausted(t *testing.T) {
	repo := newFakeSubmissionRepo()
	repo.takenSlugs["why-physics-matters"] = true
	for i := 2; i <= model.MaxSlugAttempts; i++ {
		repo.takenSlugs[fmt.Sprintf("why-physics-matters-%d", i)] = true
	}
	svc := newTestService(repo, &fakeEnqueuer{})
	id := submitPending(t, svc)

	_, err := svc.Approve(context.Background(), id, model.ReviewRequest{})

	assert.ErrorIs(t, err, model.ErrSlugConflict)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status, "failed promotion must leave the submission reviewable")
}

func TestApprove_EnqueueFailureDoesNotFailReview(t *testing.T) {
	repo := newFakeSubmissionRepo()
	tasks := &fakeEnqueuer{err: errors.New("redis down")}
	svc := newTestService(repo, tasks)
	id := submitPending(t, svc)

	_, err := svc.Approve(context.Background(), id, model.ReviewRequest{})

	require.NoError(t, err)
	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
}

func TestReview_ConcurrentDecisionsHaveOneWinner(t *testing.T) {
	repo := newFakeSubmissionRepo()
	svc := newTestService(repo, &fakeEnqueuer{})
	id := submitPending(t, svc)

	const workers = 16
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				_, err := svc.Approve(context.Background(), id, model.ReviewRequest{})
				results <- err
			} else {
				results <- svc.Reject(context.Background(), id, model.ReviewRequest{})
			}
		}(i)
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, model.ErrAlreadyReviewed)
		}
	}
	assert.Equal(t, 1, winners, "exactly one review decision may win")

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.NotEqual(t, model.StatusPending, stored.Status)
}

// ========================================
// REJECT
// ========================================

func TestReject_MarksRejectedWithoutArticle(t *testing.T) {
	repo := newFakeSubmissionRepo()
	tasks := &fakeEnqueuer{}
	svc := newTestService(repo, tasks)
	id := submitPending(t, svc)

	err := svc.Reject(context.Background(), id, model.ReviewRequest{Notes: "needs sources"})

	require.NoError(t, err)
	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, stored.Status)
	require.NotNil(t, stored.AdminNotes)
	assert.Equal(t, "needs sources", *stored.AdminNotes)
	assert.Empty(t, repo.articles, "rejection must not create an article")

	assert.Equal(t, []string{
		shared.TypeNotifySubmissionReceived,
		shared.TypeNotifySubmissionReviewed,
	}, tasks.typesSeen())
}

func TestReject_NotFound(t *testing.T) {
	svc := newTestService(newFakeSubmissionRepo(), &fakeEnqueuer{})

	err := svc.Reject(context.Background(), uuid.New(), model.ReviewRequest{})

	assert.ErrorIs(t, err, model.ErrSubmissionNotFound)
}

// ========================================
// READS
// ========================================

func TestListByStatus_UnknownStatus(t *testing.T) {
	svc := newTestService(newFakeSubmissionRepo(), &fakeEnqueuer{})

	_, _, err := svc.ListByStatus(context.Background(), "archived", 1, 20)

	var subErr *model.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, model.ErrCodeValidation, subErr.Code)
}

func TestListByStatus_FiltersByStatus(t *testing.T) {
	repo := newFakeSubmissionRepo()
	svc := newTestService(repo, &fakeEnqueuer{})

	pendingID := submitPending(t, svc)
	approvedID := submitPending(t, svc)
	_, err := svc.Approve(context.Background(), approvedID, model.ReviewRequest{})
	require.NoError(t, err)

	pending, total, err := svc.ListByStatus(context.Background(), model.StatusPending, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, pendingID, pending[0].ID)
}

// ========================================
// ATTACHMENTS
// ========================================

func TestUploadAttachment(t *testing.T) {
	st := &fakeStorage{}
	svc := NewSubmissionService(newFakeSubmissionRepo(), &fakeEnqueuer{}, st, "https://school.example.org")

	resp, err := svc.UploadAttachment(context.Background(), "essay.pdf", []byte("pdf bytes"), "application/pdf")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.AttachmentKey, "submissions/"))
	assert.True(t, strings.HasSuffix(resp.AttachmentKey, "/essay.pdf"))
	assert.Equal(t, st.lastKey, resp.AttachmentKey)
	assert.Contains(t, resp.URL, resp.AttachmentKey)
}

func TestDownloadAttachment(t *testing.T) {
	repo := newFakeSubmissionRepo()
	st := &fakeStorage{}
	svc := NewSubmissionService(repo, &fakeEnqueuer{}, st, "https://school.example.org")

	uploaded, err := svc.UploadAttachment(context.Background(), "draft.pdf", []byte("pdf bytes"), "application/pdf")
	require.NoError(t, err)

	req := validRequest()
	req.Body = nil
	req.AttachmentKey = &uploaded.AttachmentKey
	created, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	data, filename, err := svc.DownloadAttachment(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)
	assert.Equal(t, "draft.pdf", filename)
}

func TestDownloadAttachment_NoAttachment(t *testing.T) {
	repo := newFakeSubmissionRepo()
	svc := newTestService(repo, &fakeEnqueuer{})
	id := submitPending(t, svc)

	_, _, err := svc.DownloadAttachment(context.Background(), id)

	var subErr *model.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, model.ErrCodeValidation, subErr.Code)
}

func TestUploadAttachment_EmptyFile(t *testing.T) {
	svc := newTestService(newFakeSubmissionRepo(), &fakeEnqueuer{})

	_, err := svc.UploadAttachment(context.Background(), "empty.pdf", nil, "application/pdf")

	var subErr *model.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, model.ErrCodeValidation, subErr.Code)
}
