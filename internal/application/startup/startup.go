// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence and blocks until shutdown
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
  storefront-go
` + "\033[97m" + `
  made by At Risk Media
` + "\033[0m")

	// Step 1: Create dependency injection container
	log.Printf("Initializing container (storage=%s, api=%s)...", config.StorageDriver, config.APIBaseURL)
	appContainer, err := container.NewContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	log.Println("✓ Dependency injection container created with singleton services.")

	logger := appContainer.Logger
	logger.LogStartupPhase("container", time.Since(start), true, map[string]any{
		"storage": appContainer.Backend.Name(),
		"tracing": config.TraceExporter,
	})
	logger.Debug().Debug("Effective configuration",
		"apiBaseUrl", config.APIBaseURL,
		"maxProfiles", config.MaxProfiles,
		"profileIdleTimeout", config.ProfileIdleTimeout,
		"cleanupInterval", config.CleanupInterval,
		"corsOrigins", config.CORSOrigins,
		"sealed", config.StorageSecret != "")

	// Step 2: Load the storefront theme. A failure leaves defaults in place.
	logger.Startup().Info("Fetching storefront theme...")
	startThemeTime := time.Now()
	fetchCtx, cancelFetch := context.WithTimeout(ctx, config.APITimeout)
	themeErr := appContainer.ThemeStore.FetchTheme(fetchCtx)
	theme := appContainer.ThemeStore.Theme()
	meta := map[string]any{"primaryColor": theme.PrimaryColor, "primaryFont": theme.PrimaryFont}
	if themeErr != nil {
		meta["error"] = themeErr.Error()
	}
	logger.LogStartupPhase("theme", time.Since(startThemeTime), themeErr == nil, meta)
	cancelFetch()

	// Step 3: Start background cleanup worker
	logger.Startup().Info("Starting profile cleanup worker...")
	go appContainer.CleanupWorker.Start(ctx)

	// Step 4: Start HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", port)

	// Step 5: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart),
		"profiles", appContainer.Profiles.Count())

	// Closes storage, flushes spans and closes log files; logger is unusable afterwards.
	if err := appContainer.Close(shutdownCtx); err != nil {
		log.Printf("Error releasing resources: %v", err)
	}

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
