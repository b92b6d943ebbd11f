package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/config"
	http_controllers "github.com/mrlokans/booksearch/internal/http"
	"github.com/mrlokans/booksearch/internal/logger"
	"github.com/mrlokans/booksearch/internal/sessions"
	"github.com/mrlokans/booksearch/internal/state"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logrus.Infof("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT, SIGKILL can't be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Infof("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the session sweeper)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatal("Server Shutdown: ", err)
	}

	logrus.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}
	if cfg.HTTP.GinMode != "" {
		gin.SetMode(cfg.HTTP.GinMode)
	}

	logrus.Infof("Starting BookSearch v%s", version)

	client := catalog.NewOpenLibraryClient(catalog.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		UserAgent:         cfg.Catalog.UserAgent,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	})
	logrus.WithFields(logrus.Fields{
		"base_url":            cfg.Catalog.BaseURL,
		"requests_per_second": cfg.Catalog.RequestsPerSecond,
	}).Info("Catalog client initialized")

	storeOpts := state.Options{
		DiscardStaleResponses: cfg.State.DiscardStaleResponses,
		CaptureDetailErrors:   cfg.State.CaptureDetailErrors,
	}
	if !storeOpts.DiscardStaleResponses {
		logrus.Warn("Stale response guard disabled: the last fetch to settle wins")
	}

	registry := sessions.NewRegistry(func() *state.Store {
		return state.NewStore(client, storeOpts)
	})
	registry.SetMaxStores(cfg.Session.MaxStores)
	sessionManager := sessions.NewManager(registry, cfg.Session)

	sweeper := sessions.NewSweeper(registry, cfg.Session.Lifetime, cfg.Session.SweepSchedule)
	if err := sweeper.Start(); err != nil {
		logrus.Fatalf("Failed to start session sweeper: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Sessions:     sessionManager,
		FetchTimeout: 2 * cfg.Catalog.Timeout,
		Version:      version,
	})

	onShutdown := func(ctx context.Context) {
		sweeper.Stop()
	}

	Serve(router, cfg, onShutdown)
}
