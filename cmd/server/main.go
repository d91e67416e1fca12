package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/dnbdoctor/labelops/internal/api"
	"github.com/dnbdoctor/labelops/internal/config"
	"github.com/dnbdoctor/labelops/internal/dispatch"
	"github.com/dnbdoctor/labelops/internal/news"
	"github.com/dnbdoctor/labelops/internal/repository/postgres"
	"github.com/dnbdoctor/labelops/internal/service/category"
	"github.com/dnbdoctor/labelops/internal/service/subscriber"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to reach database: %v", err)
	}
	pingCancel()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unavailable, send lock disabled: %v", err)
			redisClient = nil
		}
	}

	subscribers := subscriber.NewService(postgres.NewSubscriberRepo(db))
	categories := category.NewService(postgres.NewCategoryRepo(db))
	contentRepo := postgres.NewContentRepo(db)

	var sender dispatch.Sender = dispatch.LogSender{}
	if cfg.SES.Enabled {
		sesSender, err := dispatch.NewSESSender(context.Background(), cfg.SES)
		if err != nil {
			log.Fatalf("Failed to initialize SES sender: %v", err)
		}
		sender = sesSender
		log.Printf("SES sender active (region %s)", cfg.SES.Region)
	} else {
		log.Println("SES disabled, newsletter sends are logged only")
	}

	dispatcher := dispatch.NewDispatcher(
		subscribers,
		sender,
		redisClient,
		cfg.Newsletter.SendLockTTL(),
		cfg.Newsletter.SendConcurrency,
	)

	var importer *news.Importer
	if cfg.Feed.Enabled && cfg.Feed.URL != "" {
		importer = news.NewImporter(contentRepo, cfg.Feed)
		log.Printf("News feed importer active: %s", cfg.Feed.URL)
	}

	handlers := api.NewHandlers(
		subscribers,
		categories,
		dispatcher,
		contentRepo,
		importer,
		cfg.Newsletter.DefaultPageSize,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port),
		Handler:      api.SetupRoutes(handlers),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	db.Close()
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("Server stopped")
}
