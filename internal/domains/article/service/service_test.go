package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolsite-backend/internal/domains/article/model"
)

// ========================================
// FAKES
// ========================================

// fakeArticleRepo keeps articles in memory; counter increments are
// serialized by the mutex the way the database serializes row updates.
type fakeArticleRepo struct {
	mu        sync.Mutex
	articles  map[uuid.UUID]*model.Article
	listCalls int
}

func newFakeArticleRepo(articles ...*model.Article) *fakeArticleRepo {
	repo := &fakeArticleRepo{articles: make(map[uuid.UUID]*model.Article)}
	for _, a := range articles {
		copied := *a
		repo.articles[a.ID] = &copied
	}
	return repo
}

func (f *fakeArticleRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.articles[id]
	if !ok {
		return nil, model.ErrArticleNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeArticleRepo) GetBySlug(_ context.Context, slug string) (*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.articles {
		if a.Slug == slug {
			copied := *a
			return &copied, nil
		}
	}
	return nil, model.ErrArticleNotFound
}

func (f *fakeArticleRepo) GetIDBySlug(_ context.Context, slug string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.articles {
		if a.Slug == slug {
			return a.ID, nil
		}
	}
	return uuid.Nil, model.ErrArticleNotFound
}

func (f *fakeArticleRepo) ListByCategory(_ context.Context, category string, _, _ int) ([]*model.Article, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Article
	for _, a := range f.articles {
		if a.Category == category {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (f *fakeArticleRepo) ListFeatured(_ context.Context, limit int) ([]*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	var out []*model.Article
	for _, a := range f.articles {
		if a.Featured && len(out) < limit {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeArticleRepo) IncrementViews(_ context.Context, id uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.articles[id]
	if !ok {
		return 0, model.ErrArticleNotFound
	}
	a.ViewCount++
	return a.ViewCount, nil
}

func (f *fakeArticleRepo) IncrementApplause(_ context.Context, id uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.articles[id]
	if !ok {
		return 0, model.ErrArticleNotFound
	}
	a.ApplauseCount++
	return a.ApplauseCount, nil
}

func (f *fakeArticleRepo) SetFeatured(_ context.Context, id uuid.UUID, featured bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.articles[id]
	if !ok {
		return model.ErrArticleNotFound
	}
	a.Featured = featured
	return nil
}

func (f *fakeArticleRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.articles[id]; !ok {
		return model.ErrArticleNotFound
	}
	delete(f.articles, id)
	return nil
}

// fakeCache is an in-memory JSON cache without expiry.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = b
	f.sets++
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, key := range keys {
		delete(f.entries, key)
	}
	f.deletes++
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }

// ========================================
// HELPERS
// ========================================

func testArticle(slug string) *model.Article {
	body := "article body"
	return &model.Article{
		ID:           uuid.New(),
		SubmissionID: uuid.New(),
		Title:        "Test Article",
		Slug:         slug,
		Body:         &body,
		AuthorName:   "Dana Lee",
		AuthorEmail:  "dana@example.org",
		Category:     "science",
		PublishedAt:  time.Now(),
	}
}

// ========================================
// READS
// ========================================

func TestGetBySlug(t *testing.T) {
	article := testArticle("volcano-models")
	svc := NewArticleService(newFakeArticleRepo(article), nil, nil)

	resp, err := svc.GetBySlug(context.Background(), "volcano-models")

	require.NoError(t, err)
	assert.Equal(t, article.ID, resp.ID)
	assert.Equal(t, "volcano-models", resp.Slug)
}

func TestGetBySlug_CacheAside(t *testing.T) {
	article := testArticle("volcano-models")
	repo := newFakeArticleRepo(article)
	c := newFakeCache()
	svc := NewArticleService(repo, c, nil)

	first, err := svc.GetBySlug(context.Background(), "volcano-models")
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)

	// Remove the backing row: a cache hit must still serve the copy
	require.NoError(t, repo.Delete(context.Background(), article.ID))

	second, err := svc.GetBySlug(context.Background(), "volcano-models")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewArticleService(newFakeArticleRepo(), nil, nil)

	_, err := svc.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, model.ErrArticleNotFound)
}

func TestListFeatured_CacheAside(t *testing.T) {
	article := testArticle("fair-winners")
	article.Featured = true
	repo := newFakeArticleRepo(article)
	c := newFakeCache()
	svc := NewArticleService(repo, c, nil)

	first, err := svc.ListFeatured(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, c.sets)

	// Second call is served from cache
	second, err := svc.ListFeatured(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 1, repo.listCalls, "cache hit must not reach the store")
}

func TestSetFeatured_InvalidatesCache(t *testing.T) {
	article := testArticle("fair-winners")
	article.Featured = true
	repo := newFakeArticleRepo(article)
	c := newFakeCache()
	svc := NewArticleService(repo, c, nil)

	_, err := svc.ListFeatured(context.Background(), 10)
	require.NoError(t, err)

	require.NoError(t, svc.SetFeatured(context.Background(), article.ID, false))
	assert.Equal(t, 1, c.deletes)

	listed, err := svc.ListFeatured(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

// ========================================
// COUNTERS
// ========================================

func TestRecordView_ByIDAndBySlug(t *testing.T) {
	article := testArticle("robot-club-update")
	svc := NewArticleService(newFakeArticleRepo(article), nil, nil)

	byID, err := svc.RecordView(context.Background(), article.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, byID.Count)

	bySlug, err := svc.RecordView(context.Background(), "robot-club-update")
	require.NoError(t, err)
	assert.Equal(t, article.ID, bySlug.ArticleID)
	assert.Equal(t, 2, bySlug.Count)
}

func TestRecordView_UnknownRef(t *testing.T) {
	svc := NewArticleService(newFakeArticleRepo(), nil, nil)

	_, err := svc.RecordView(context.Background(), "no-such-article")
	assert.ErrorIs(t, err, model.ErrArticleNotFound)

	_, err = svc.RecordApplause(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, model.ErrArticleNotFound)
}

func TestRecordApplause_ConcurrentIncrements(t *testing.T) {
	article := testArticle("concert-night")
	repo := newFakeArticleRepo(article)
	svc := NewArticleService(repo, nil, nil)

	const claps = 50
	var wg sync.WaitGroup
	for i := 0; i < claps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordApplause(context.Background(), article.ID.String())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.GetByID(context.Background(), article.ID)
	require.NoError(t, err)
	assert.Equal(t, claps, stored.ApplauseCount, "every applause must land")
	assert.Zero(t, stored.ViewCount)
}

// ========================================
// ADMIN SIDE CHANNELS
// ========================================

type fakeBlobDeleter struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeBlobDeleter) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, key)
	return nil
}

func TestDelete_RemovesArticle(t *testing.T) {
	article := testArticle("old-news")
	repo := newFakeArticleRepo(article)
	svc := NewArticleService(repo, newFakeCache(), nil)

	require.NoError(t, svc.Delete(context.Background(), article.ID))

	_, err := svc.GetByID(context.Background(), article.ID)
	assert.ErrorIs(t, err, model.ErrArticleNotFound)

	err = svc.Delete(context.Background(), article.ID)
	assert.ErrorIs(t, err, model.ErrArticleNotFound)
}

func TestDelete_RemovesAttachmentBlob(t *testing.T) {
	key := "submissions/abc/draft.pdf"
	article := testArticle("illustrated-essay")
	article.AttachmentKey = &key

	repo := newFakeArticleRepo(article)
	blobs := &fakeBlobDeleter{}
	svc := NewArticleService(repo, nil, blobs)

	require.NoError(t, svc.Delete(context.Background(), article.ID))

	assert.Equal(t, []string{key}, blobs.deleted)
}
