package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"schoolsite-backend/internal/config"
	articleHandler "schoolsite-backend/internal/domains/article/handler"
	articleRepo "schoolsite-backend/internal/domains/article/repository"
	articleService "schoolsite-backend/internal/domains/article/service"
	submissionHandler "schoolsite-backend/internal/domains/submission/handler"
	submissionRepo "schoolsite-backend/internal/domains/submission/repository"
	submissionService "schoolsite-backend/internal/domains/submission/service"
	infraCache "schoolsite-backend/internal/infrastructure/cache"
	"schoolsite-backend/internal/infrastructure/database"
	"schoolsite-backend/internal/infrastructure/storage"
	"schoolsite-backend/pkg/cache"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application; it is the root
// of the dependency graph. All members are singletons.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Storage     *storage.MinIOStorage
	AsynqClient *asynq.Client

	// Repositories
	SubmissionRepo submissionRepo.SubmissionRepository
	ArticleRepo    articleRepo.ArticleRepository

	// Services
	SubmissionService submissionService.SubmissionService
	ArticleService    articleService.ArticleService

	// HTTP handlers
	SubmissionHandler *submissionHandler.SubmissionHandler
	ArticleHandler    *articleHandler.ArticleHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer builds the dependency graph in order: config,
// infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// Step 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// Step 2: database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// Step 3: redis cache (non-critical: a down cache degrades reads,
	// it does not stop the service)
	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)

	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	// Step 4: asynq client for notification dispatch
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Println("✅ Task queue client initialized")

	// Step 5: attachment storage
	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init attachment storage: %w", err)
	}
	c.Storage = minioStorage
	log.Println("✅ Attachment storage initialized")

	// Step 6: repositories
	c.initRepositories()
	log.Println("✅ Repositories initialized")

	// Step 7: services
	c.initServices()
	log.Println("✅ Services initialized")

	// Step 8: handlers
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.SubmissionRepo = submissionRepo.NewPostgresSubmissionRepository(pool)
	c.ArticleRepo = articleRepo.NewPostgresArticleRepository(pool)
}

func (c *Container) initServices() {
	c.SubmissionService = submissionService.NewSubmissionService(
		c.SubmissionRepo,
		c.AsynqClient,
		c.Storage,
		c.Config.Site.PublicBaseURL,
	)

	c.ArticleService = articleService.NewArticleService(
		c.ArticleRepo,
		c.Cache,
		c.Storage,
	)
}

func (c *Container) initHandlers() {
	c.SubmissionHandler = submissionHandler.NewSubmissionHandler(c.SubmissionService)
	c.ArticleHandler = articleHandler.NewArticleHandler(c.ArticleService)
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases resources during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close task queue client: %v", err)
		} else {
			log.Println("✅ Task queue client closed")
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
	}

	log.Println("✅ Container cleanup completed")
}
