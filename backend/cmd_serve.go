package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AnTengye/contractdesk/backend/config"
	"github.com/AnTengye/contractdesk/backend/handler"
	"github.com/AnTengye/contractdesk/backend/job"
	"github.com/AnTengye/contractdesk/backend/middleware"
	"github.com/AnTengye/contractdesk/backend/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

// app is everything the router needs
type app struct {
	cfg      *config.Config
	ledgers  *service.Ledgers
	sessions *service.TableSessions
	files    *service.AttachmentService
	blobs    *service.MemoryAttachmentStore // nil unless the memory backend is active
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	seed, err := service.LoadSeed(cfg.Store.SeedFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("seed file not found, starting with empty ledgers", "path", cfg.Store.SeedFile)
		seed = nil
	case err != nil:
		return nil, err
	}
	ledgers, err := service.NewLedgers(seed)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		ledgers:  ledgers,
		sessions: service.NewTableSessions(time.Duration(cfg.Session.IdleMinutes) * time.Minute),
	}

	var store service.AttachmentStore
	switch cfg.Attachments.Backend {
	case config.AttachmentBackendMinio:
		minioStore, err := service.NewMinioStore(&cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := minioStore.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		store = minioStore
	case config.AttachmentBackendMemory:
		a.blobs = service.NewMemoryAttachmentStore()
		store = a.blobs
	default:
		return nil, fmt.Errorf("unknown attachment backend %q", cfg.Attachments.Backend)
	}
	a.files = service.NewAttachmentService(store, cfg.MaxAttachmentBytes())

	slog.Info("ledgers loaded",
		"contracts", ledgers.Contracts.Count(),
		"lending", ledgers.Lending.Count(),
		"attachment_backend", cfg.Attachments.Backend,
	)
	return a, nil
}

func (a *app) router() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Session())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(cacheMiddleware())
	router.Use(middleware.RateLimit(middleware.NewRateLimiter(
		a.cfg.RateLimit.Requests,
		time.Duration(a.cfg.RateLimit.WindowSeconds)*time.Second,
	)))

	if dir := a.cfg.Server.StaticDir; dir != "" {
		slog.Info("serving static files", "directory", dir)
		router.Static("/static", dir)
		router.StaticFile("/", filepath.Join(dir, "index.html"))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		contracts := handler.NewLedgerHandler(a.ledgers.Contracts, a.sessions, a.files, service.LayoutContract)
		contracts.Register(api.Group("/contracts"))

		lending := handler.NewLedgerHandler(a.ledgers.Lending, a.sessions, a.files, service.LayoutLending)
		lendingGroup := api.Group("/lending")
		lending.Register(lendingGroup)
		lending.RegisterLending(lendingGroup)

		api.GET("/overdue", handler.NewOverdueHandler(a.ledgers.Contracts).List)
		api.GET("/departments", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"departments": a.cfg.Departments})
		})

		if a.blobs != nil {
			api.GET("/attachments/*key", handler.NewBlobHandler(a.blobs).Download)
		}
	}

	return router
}

func serve(cfg *config.Config) error {
	a, err := newApp(context.Background(), cfg)
	if err != nil {
		return err
	}

	scheduler, err := job.NewScheduler(cfg, a.ledgers, a.sessions)
	if err != nil {
		return err
	}
	scheduler.Start()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	scheduler.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited gracefully")
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-Session-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Session-ID, Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// cacheMiddleware disables caching for the API and lets static assets live
// for an hour
func cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if strings.HasPrefix(path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
			return
		}

		if strings.HasSuffix(path, ".js") ||
			strings.HasSuffix(path, ".css") ||
			strings.HasSuffix(path, ".html") ||
			path == "/" {
			c.Header("Cache-Control", "public, max-age=3600, must-revalidate")
		}

		c.Next()
	}
}
