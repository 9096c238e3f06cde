package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/plscore/leadscore-api/internal/api"
	"github.com/plscore/leadscore-api/internal/config"
	"github.com/plscore/leadscore-api/internal/pkg/logger"
	"github.com/plscore/leadscore-api/internal/progress"
	"github.com/plscore/leadscore-api/internal/repository/postgres"
	"github.com/plscore/leadscore-api/internal/scoring"
	"github.com/plscore/leadscore-api/internal/service/campaign"
	"github.com/plscore/leadscore-api/internal/service/dashboard"
	"github.com/plscore/leadscore-api/internal/service/lead"
	"github.com/plscore/leadscore-api/internal/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	slash := strings.Index(rest, "/")
	if slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func logLevel(s string) logger.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	logger.SetLevel(logLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactPII)

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	// Database
	if cfg.Database.URL == "" {
		log.Fatal("database URL is required (set DATABASE_URL or database.url)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Printf("WARNING: database %s not reachable at startup: %v", extractHost(cfg.Database.URL), err)
	} else {
		log.Printf("Connected to database at %s", extractHost(cfg.Database.URL))
	}
	pingCancel()

	// Redis is optional; without it the dashboard skips caching
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		log.Printf("Dashboard cache enabled (redis %s)", cfg.Redis.Addr)
	}

	// Scoring service client
	scorer := scoring.NewClient(cfg.Scorer.URL,
		scoring.WithBatchTimeout(cfg.Scorer.BatchTimeout()))
	log.Printf("Scoring service at %s", cfg.Scorer.URL)

	// Repositories
	leadRepo := postgres.NewLeadRepo(db)
	campaignRepo := postgres.NewCampaignRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Services
	leadSvc := lead.NewService(leadRepo, scorer)
	campaignSvc := campaign.NewService(campaignRepo)
	dashSvc := dashboard.NewService(statsRepo, redisClient)

	// Progress registry and background importer
	registry := progress.NewRegistry(cfg.Progress.Grace())
	importer := worker.NewImporter(registry, scorer, leadRepo).
		WithCacheInvalidator(dashSvc)

	handlers := api.NewHandlers(leadSvc, campaignSvc, dashSvc,
		registry, importer, db, cfg.Upload.MaxFileMB)
	server := api.NewServer(handlers)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")

	// Graceful shutdown with timeout. In-flight imports finish writing to
	// the registry but their SSE subscribers are dropped with the server.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
