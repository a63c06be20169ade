package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"schoolsite-backend/internal/config"
	submissionRepo "schoolsite-backend/internal/domains/submission/repository"
	"schoolsite-backend/internal/infrastructure/database"
	"schoolsite-backend/internal/infrastructure/email"
	"schoolsite-backend/pkg/logger"
)

func main() {
	// Step 1: environment
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)

	// Step 2: database (the digest job reads submission counts)
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load database config: %v", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Connect(ctx); err != nil {
		cancel()
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	cancel()
	defer db.Pool.Close()
	log.Println("✅ Database connected")

	// Step 3: dependencies shared by all task handlers
	emailService := email.NewSMTPEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.From,
	)
	subRepo := submissionRepo.NewPostgresSubmissionRepository(db.Pool)

	registry := NewHandlerRegistry(subRepo, emailService, cfg.Email.AdminEmail)

	// Step 4: asynq server + scheduler
	srv := NewWorkerServer(cfg)
	mux := registry.Mux()

	scheduler := NewScheduler(cfg)
	if err := RegisterScheduledTasks(scheduler); err != nil {
		log.Fatalf("❌ Failed to register scheduled tasks: %v", err)
	}

	// Step 5: run, then drain on SIGINT/SIGTERM
	go func() {
		log.Println("🚀 Notification worker starting")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("❌ Worker error: %v", err)
		}
	}()

	go func() {
		log.Println("⏰ Scheduler starting")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("❌ Scheduler error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down worker...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Println("👋 Worker stopped")
}
