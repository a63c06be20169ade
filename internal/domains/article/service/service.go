package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"schoolsite-backend/internal/domains/article/model"
	"schoolsite-backend/internal/domains/article/repository"
	"schoolsite-backend/pkg/cache"
	"schoolsite-backend/pkg/logger"
)

const (
	featuredCacheKey = "articles:featured"
	slugCachePrefix  = "articles:slug:"
	articleCacheTTL  = 60 * time.Second
)

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

// BlobDeleter removes attachment blobs when their article is deleted.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

type articleService struct {
	articleRepo repository.ArticleRepository
	cache       cache.Cache
	blobs       BlobDeleter
}

func NewArticleService(articleRepo repository.ArticleRepository, c cache.Cache, blobs BlobDeleter) ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		cache:       c,
		blobs:       blobs,
	}
}

// =====================================================
// READS
// =====================================================

func (s *articleService) GetByID(ctx context.Context, id uuid.UUID) (*model.ArticleResponse, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return nil, model.NewArticleNotFoundError()
		}
		return nil, err
	}

	return model.ToArticleResponse(article), nil
}

func (s *articleService) GetBySlug(ctx context.Context, slug string) (*model.ArticleResponse, error) {
	cacheKey := slugCachePrefix + slug

	// Counters in a cached copy lag by up to the TTL; the increment
	// endpoints always return the live value.
	if s.cache != nil {
		var cached model.ArticleResponse
		if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	article, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return nil, model.NewArticleNotFoundError()
		}
		return nil, err
	}

	resp := model.ToArticleResponse(article)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, articleCacheTTL); err != nil {
			logger.Error("Failed to cache article", err)
		}
	}

	return resp, nil
}

func (s *articleService) ListByCategory(ctx context.Context, category string, page, limit int) ([]*model.ArticleResponse, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	articles, total, err := s.articleRepo.ListByCategory(ctx, category, page, limit)
	if err != nil {
		return nil, 0, err
	}

	return toResponses(articles), total, nil
}

func (s *articleService) ListFeatured(ctx context.Context, limit int) ([]*model.ArticleResponse, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("%s:%d", featuredCacheKey, limit)

	// Cache hit: counters in the cached copy may lag by up to the TTL,
	// which is acceptable for a landing-page list.
	if s.cache != nil {
		var cached []*model.ArticleResponse
		if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	articles, err := s.articleRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := toResponses(articles)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, responses, articleCacheTTL); err != nil {
			logger.Error("Failed to cache featured articles", err)
		}
	}

	return responses, nil
}

// =====================================================
// COUNTERS
// =====================================================

func (s *articleService) RecordView(ctx context.Context, ref string) (*model.CounterResponse, error) {
	id, err := s.resolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	count, err := s.articleRepo.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return nil, model.NewArticleNotFoundError()
		}
		return nil, err
	}

	return &model.CounterResponse{ArticleID: id, Count: count}, nil
}

func (s *articleService) RecordApplause(ctx context.Context, ref string) (*model.CounterResponse, error) {
	id, err := s.resolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	count, err := s.articleRepo.IncrementApplause(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return nil, model.NewArticleNotFoundError()
		}
		return nil, err
	}

	return &model.CounterResponse{ArticleID: id, Count: count}, nil
}

// =====================================================
// ADMIN SIDE CHANNELS
// =====================================================

func (s *articleService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return model.NewArticleNotFoundError()
		}
		return err
	}

	if err := s.articleRepo.SetFeatured(ctx, id, featured); err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return model.NewArticleNotFoundError()
		}
		return err
	}

	s.invalidate(ctx, article.Slug)
	return nil
}

func (s *articleService) Delete(ctx context.Context, id uuid.UUID) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return model.NewArticleNotFoundError()
		}
		return err
	}

	if err := s.articleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return model.NewArticleNotFoundError()
		}
		return err
	}

	// Drop the attachment blob so deleted articles do not leak storage.
	// Best effort: the catalog row is already gone.
	if s.blobs != nil && article.AttachmentKey != nil && *article.AttachmentKey != "" {
		if err := s.blobs.Delete(ctx, *article.AttachmentKey); err != nil {
			logger.Error("Failed to delete attachment blob", err)
		}
	}

	s.invalidate(ctx, article.Slug)
	return nil
}

// =====================================================
// HELPERS
// =====================================================

// resolveRef accepts either an article id or a slug.
func (s *articleService) resolveRef(ctx context.Context, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	id, err := s.articleRepo.GetIDBySlug(ctx, ref)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return uuid.Nil, model.NewArticleNotFoundError()
		}
		return uuid.Nil, err
	}

	return id, nil
}

// invalidate drops the cached copies a write can leave stale: the
// article's by-slug entry and the per-limit featured lists.
func (s *articleService) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}

	keys := []string{slugCachePrefix + slug}
	for _, limit := range []int{5, 10, 20} {
		keys = append(keys, fmt.Sprintf("%s:%d", featuredCacheKey, limit))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Error("Failed to invalidate featured cache", err)
	}
}

func toResponses(articles []*model.Article) []*model.ArticleResponse {
	responses := make([]*model.ArticleResponse, 0, len(articles))
	for _, a := range articles {
		responses = append(responses, model.ToArticleResponse(a))
	}
	return responses
}
