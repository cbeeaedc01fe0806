package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartattend/internal/audit"
	"smartattend/internal/auth"
	"smartattend/internal/config"
	"smartattend/internal/handler"
	"smartattend/internal/httpmiddleware"
	"smartattend/internal/queue"
	"smartattend/internal/records"
	"smartattend/internal/store"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		if db == nil {
			return err
		}
		log.Printf("warning: db not ready: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() {
		_ = redisClient.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditRepo := audit.NewRepository(db.Client)

	// With the memory backend the audit trail is drained in-process; with
	// redis a separate auditworker owns persistence.
	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		mem := queue.NewInMemory(64)
		q = mem
		go drainAudit(ctx, mem, auditRepo)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "smartattend:audit")
	}

	loc, err := time.LoadLocation(cfg.StatsTZ)
	if err != nil {
		log.Printf("invalid STATS_TZ %q, using UTC", cfg.StatsTZ)
		loc = time.UTC
	}

	repo := records.NewRepository(db.Client)
	svc := records.NewService(repo, loc)
	users := auth.NewStore()
	auditor := audit.NewRecorder(q)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.Metrics())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())
	r.Use(auth.ActorFromToken(cfg.JWTSigningKey, cfg.JWTIssuer))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	h := handler.New(svc, users, auditor, auditRepo, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL)
	h.Register(r.Group("/api"))

	// serve the frontend when it is present
	if index := filepath.Join(cfg.StaticDir, "login.html"); fileExists(index) {
		r.StaticFile("/", index)
		r.Static("/static", filepath.Join(cfg.StaticDir, "static"))
	}

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// drainAudit persists queued audit entries when no external worker runs.
func drainAudit(ctx context.Context, q queue.Queue, repo *audit.Repository) {
	messages, err := q.Consume(ctx)
	if err != nil {
		log.Printf("audit drain init failed: %v", err)
		return
	}
	for msg := range messages {
		if msg.Type != audit.MessageType {
			continue
		}
		entry, err := audit.Decode(msg.Body)
		if err != nil {
			log.Printf("decode audit entry failed: %v", err)
			continue
		}
		if err := repo.Insert(ctx, entry); err != nil {
			log.Printf("persist audit entry %s failed: %v", entry.EntryID, err)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
