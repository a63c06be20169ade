package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"schoolsite-backend/internal/domains/article/model"
	"schoolsite-backend/internal/domains/article/service"
	"schoolsite-backend/internal/shared/response"
)

// =====================================================
// ARTICLE HANDLER
// =====================================================

type ArticleHandler struct {
	articleService service.ArticleService
}

func NewArticleHandler(articleService service.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
	}
}

// =====================================================
// PUBLIC CATALOG ENDPOINTS
// =====================================================

// GetByID gets an article by id
// GET /api/v1/articles/:id
func (h *ArticleHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid article id")
		return
	}

	resp, err := h.articleService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondArticleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// GetBySlug gets an article by slug
// GET /api/v1/articles/by-slug/:slug
func (h *ArticleHandler) GetBySlug(c *gin.Context) {
	resp, err := h.articleService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondArticleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ListByCategory lists articles in a category
// GET /api/v1/articles?category=Science&page=1&limit=20
func (h *ArticleHandler) ListByCategory(c *gin.Context) {
	var query model.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := query.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	articles, total, err := h.articleService.ListByCategory(c.Request.Context(), query.Category, query.Page, query.Limit)
	if err != nil {
		respondArticleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, articles, &response.Meta{
		Page:  query.Page,
		Limit: query.Limit,
		Total: total,
	})
}

// ListFeatured lists featured articles
// GET /api/v1/articles/featured?limit=10
func (h *ArticleHandler) ListFeatured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	articles, err := h.articleService.ListFeatured(c.Request.Context(), limit)
	if err != nil {
		respondArticleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, articles)
}

// =====================================================
// COUNTER ENDPOINTS
// =====================================================

// RecordView adds one view
// POST /api/v1/articles/:ref/views
func (h *ArticleHandler) RecordView(c *gin.Context) {
	resp, err := h.articleService.RecordView(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondArticleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// RecordApplause adds one applause
// POST /api/v1/articles/:ref/applause
func (h *ArticleHandler) RecordApplause(c *gin.Context) {
	resp, err := h.articleService.RecordApplause(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondArticleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// =====================================================
// ADMIN ENDPOINTS
// =====================================================

// SetFeatured toggles the featured flag
// PATCH /api/v1/admin/articles/:id/feature
func (h *ArticleHandler) SetFeatured(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid article id")
		return
	}

	var req model.SetFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.articleService.SetFeatured(c.Request.Context(), id, req.Featured); err != nil {
		respondArticleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"featured": req.Featured})
}

// Delete removes an article
// DELETE /api/v1/admin/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid article id")
		return
	}

	if err := h.articleService.Delete(c.Request.Context(), id); err != nil {
		respondArticleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// =====================================================
// ERROR MAPPING
// =====================================================

func respondArticleError(c *gin.Context, err error) {
	var artErr *model.ArticleError
	if errors.As(err, &artErr) {
		switch artErr.Code {
		case model.ErrCodeArticleNotFound:
			response.ErrorResponse(c, http.StatusNotFound, artErr.Code, artErr.Message)
		case model.ErrCodeStoreUnavailable:
			response.ErrorResponse(c, http.StatusServiceUnavailable, artErr.Code, artErr.Message)
		default:
			response.InternalServerError(c, artErr.Message)
		}
		return
	}

	response.InternalServerError(c, "unexpected error")
}
