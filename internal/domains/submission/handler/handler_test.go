package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolsite-backend/internal/domains/submission/model"
)

// stubSubmissionService returns canned results so the tests can pin the
// HTTP status mapping for each error code.
type stubSubmissionService struct {
	submitResp  *model.SubmissionResponse
	approveResp *model.ApproveResponse
	err         error
}

func (s *stubSubmissionService) Submit(_ context.Context, req model.CreateSubmissionRequest) (*model.SubmissionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error())
	}
	return s.submitResp, s.err
}

func (s *stubSubmissionService) Approve(context.Context, uuid.UUID, model.ReviewRequest) (*model.ApproveResponse, error) {
	return s.approveResp, s.err
}

func (s *stubSubmissionService) Reject(context.Context, uuid.UUID, model.ReviewRequest) error {
	return s.err
}

func (s *stubSubmissionService) GetSubmission(context.Context, uuid.UUID) (*model.SubmissionResponse, error) {
	return s.submitResp, s.err
}

func (s *stubSubmissionService) ListByStatus(context.Context, string, int, int) ([]*model.SubmissionResponse, int, error) {
	return nil, 0, s.err
}

func (s *stubSubmissionService) UploadAttachment(context.Context, string, []byte, string) (*model.UploadAttachmentResponse, error) {
	return nil, s.err
}

func (s *stubSubmissionService) DownloadAttachment(context.Context, uuid.UUID) ([]byte, string, error) {
	return nil, "", s.err
}

func setupRouter(svc *stubSubmissionService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewSubmissionHandler(svc)
	router := gin.New()
	router.POST("/submissions", h.Submit)
	router.POST("/admin/submissions/:id/approve", h.Approve)
	router.POST("/admin/submissions/:id/reject", h.Reject)
	router.GET("/admin/submissions/:id", h.GetSubmission)
	return router
}

func doJSON(router *gin.Engine, method, target string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmit_Created(t *testing.T) {
	body := "content"
	svc := &stubSubmissionService{
		submitResp: &model.SubmissionResponse{ID: uuid.New(), Status: model.StatusPending},
	}
	router := setupRouter(svc)

	w := doJSON(router, http.MethodPost, "/submissions", model.CreateSubmissionRequest{
		Title:       "A Title",
		Body:        &body,
		AuthorName:  "Dana",
		AuthorEmail: "dana@example.org",
		Category:    "news",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSubmit_ValidationFailureIs400(t *testing.T) {
	router := setupRouter(&stubSubmissionService{})

	w := doJSON(router, http.MethodPost, "/submissions", model.CreateSubmissionRequest{
		Title: "Missing everything else",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeValidation)
}

func TestApprove_InvalidIDIs400(t *testing.T) {
	router := setupRouter(&stubSubmissionService{})

	w := doJSON(router, http.MethodPost, "/admin/submissions/not-a-uuid/approve", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApprove_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", model.NewSubmissionNotFoundError(), http.StatusNotFound},
		{"already reviewed", model.NewAlreadyReviewedError(), http.StatusConflict},
		{"unusable title", model.NewUnusableTitleError(), http.StatusBadRequest},
		{"slug conflict", model.NewSlugConflictError("a-title"), http.StatusConflict},
		{"store unavailable", model.NewStoreUnavailableError(context.DeadlineExceeded), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&stubSubmissionService{err: tt.err})

			w := doJSON(router, http.MethodPost, "/admin/submissions/"+uuid.NewString()+"/approve", nil)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestApprove_EmptyBodyIsAccepted(t *testing.T) {
	svc := &stubSubmissionService{
		approveResp: &model.ApproveResponse{
			SubmissionID: uuid.New(),
			ArticleID:    uuid.New(),
			Slug:         "a-title",
		},
	}
	router := setupRouter(svc)

	// No JSON body at all: notes are optional
	req := httptest.NewRequest(http.MethodPost, "/admin/submissions/"+uuid.NewString()+"/approve", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a-title")
}

func TestReject_OK(t *testing.T) {
	router := setupRouter(&stubSubmissionService{})

	w := doJSON(router, http.MethodPost, "/admin/submissions/"+uuid.NewString()+"/reject", model.ReviewRequest{Notes: "needs work"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.StatusRejected)
}
