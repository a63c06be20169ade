package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"schoolsite-backend/internal/domains/submission/model"
	"schoolsite-backend/internal/domains/submission/service"
	"schoolsite-backend/internal/shared/response"
)

// =====================================================
// SUBMISSION HANDLER
// =====================================================

const maxAttachmentBytes = 10 << 20 // 10 MiB

type SubmissionHandler struct {
	submissionService service.SubmissionService
}

func NewSubmissionHandler(submissionService service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// =====================================================
// PUBLIC INTAKE ENDPOINTS
// =====================================================

// Submit creates a new pending submission
// POST /api/v1/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req model.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.submissionService.Submit(c.Request.Context(), req)
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// UploadAttachment stores a draft file and returns its storage key
// POST /api/v1/submissions/attachments
func (h *SubmissionHandler) UploadAttachment(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file field")
		return
	}
	defer file.Close()

	if header.Size > maxAttachmentBytes {
		response.BadRequest(c, "attachment too large")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes))
	if err != nil {
		response.InternalServerError(c, "failed to read attachment")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := h.submissionService.UploadAttachment(c.Request.Context(), header.Filename, data, contentType)
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// =====================================================
// ADMIN MODERATION ENDPOINTS
// =====================================================

// ListSubmissions lists submissions by status for the moderation queue
// GET /api/v1/admin/submissions?status=pending&page=1&limit=20
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	status := c.DefaultQuery("status", model.StatusPending)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	submissions, total, err := h.submissionService.ListByStatus(c.Request.Context(), status, page, limit)
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, submissions, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetSubmission gets one submission
// GET /api/v1/admin/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}

	resp, err := h.submissionService.GetSubmission(c.Request.Context(), id)
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// DownloadAttachment streams a submission's draft file to the reviewer
// GET /api/v1/admin/submissions/:id/attachment
func (h *SubmissionHandler) DownloadAttachment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}

	data, filename, err := h.submissionService.DownloadAttachment(c.Request.Context(), id)
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// Approve promotes a pending submission into the article catalog
// POST /api/v1/admin/submissions/:id/approve
func (h *SubmissionHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}

	var req model.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.submissionService.Approve(c.Request.Context(), id, req)
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Reject terminally rejects a pending submission
// POST /api/v1/admin/submissions/:id/reject
func (h *SubmissionHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}

	var req model.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.submissionService.Reject(c.Request.Context(), id, req); err != nil {
		respondSubmissionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.StatusRejected})
}

// =====================================================
// ERROR MAPPING
// =====================================================

func respondSubmissionError(c *gin.Context, err error) {
	var subErr *model.SubmissionError
	if errors.As(err, &subErr) {
		switch subErr.Code {
		case model.ErrCodeSubmissionNotFound:
			response.ErrorResponse(c, http.StatusNotFound, subErr.Code, subErr.Message)
		case model.ErrCodeAlreadyReviewed:
			// Surfaced to the admin UI as "already reviewed"
			response.ErrorResponse(c, http.StatusConflict, subErr.Code, subErr.Message)
		case model.ErrCodeValidation:
			response.ErrorResponse(c, http.StatusBadRequest, subErr.Code, subErr.Message)
		case model.ErrCodeSlugConflict:
			response.ErrorResponse(c, http.StatusConflict, subErr.Code, subErr.Message)
		case model.ErrCodeStoreUnavailable:
			response.ErrorResponse(c, http.StatusServiceUnavailable, subErr.Code, subErr.Message)
		default:
			response.InternalServerError(c, subErr.Message)
		}
		return
	}

	response.InternalServerError(c, "unexpected error")
}
