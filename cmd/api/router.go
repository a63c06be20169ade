package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"schoolsite-backend/internal/shared/middleware"
	"schoolsite-backend/internal/shared/response"
	"schoolsite-backend/pkg/container"
)

// ========================================
// ROUTER SETUP
// ========================================

// SetupRouter wires middleware and routes onto a gin engine.
func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler(c))

		// Public submission intake
		v1.POST("/submissions", c.SubmissionHandler.Submit)
		v1.POST("/submissions/attachments", c.SubmissionHandler.UploadAttachment)

		// Public article catalog
		articles := v1.Group("/articles")
		{
			articles.GET("", c.ArticleHandler.ListByCategory)
			articles.GET("/featured", c.ArticleHandler.ListFeatured)
			articles.GET("/by-slug/:slug", c.ArticleHandler.GetBySlug)
			articles.GET("/:id", c.ArticleHandler.GetByID)

			// Engagement counters accept an id or a slug
			articles.POST("/:ref/views", c.ArticleHandler.RecordView)
			articles.POST("/:ref/applause", c.ArticleHandler.RecordApplause)
		}

		// Moderation surface. Authentication is handled by the site
		// gateway in front of this service.
		admin := v1.Group("/admin")
		{
			admin.GET("/submissions", c.SubmissionHandler.ListSubmissions)
			admin.GET("/submissions/:id", c.SubmissionHandler.GetSubmission)
			admin.GET("/submissions/:id/attachment", c.SubmissionHandler.DownloadAttachment)
			admin.POST("/submissions/:id/approve", c.SubmissionHandler.Approve)
			admin.POST("/submissions/:id/reject", c.SubmissionHandler.Reject)

			admin.PATCH("/articles/:id/feature", c.ArticleHandler.SetFeatured)
			admin.DELETE("/articles/:id", c.ArticleHandler.Delete)
		}
	}

	return router
}

// ========================================
// HEALTH CHECK
// ========================================

func healthHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
		defer cancel()

		status := "healthy"
		checks := gin.H{}

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			status = "unhealthy"
			checks["database"] = err.Error()
		} else {
			checks["database"] = "ok"
		}

		if err := c.Cache.Ping(checkCtx); err != nil {
			// Cache is degraded-mode only, not fatal
			checks["cache"] = err.Error()
		} else {
			checks["cache"] = "ok"
		}

		code := http.StatusOK
		if status != "healthy" {
			code = http.StatusServiceUnavailable
		}

		ctx.JSON(code, response.Response{
			Success: status == "healthy",
			Data: gin.H{
				"status": status,
				"checks": checks,
				"time":   time.Now().UTC(),
			},
		})
	}
}
