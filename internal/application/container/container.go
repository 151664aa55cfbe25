// Package container provides dependency injection for all singleton services
package container

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/tracing"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/templates"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
)

// Version is reported by the health endpoint and trace resource
const Version = "v1.0.0"

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	AuthService     *services.AuthService
	CheckoutService *services.CheckoutService
	SettingsService *services.SettingsService
	CatalogService  *services.CatalogService

	// Tenant-wide state
	ThemeStore *stores.ThemeStore
	Document   *templates.Document

	// Per-profile state
	Profiles      *storefront.Manager
	CleanupWorker *storefront.CleanupWorker

	// Infrastructure Dependencies
	Backend     kv.Backend
	API         *api.Client
	Broadcaster *messaging.EventBroadcaster
	Tracing     *tracing.Provider
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// NewLogger builds the channeled logger from configuration
func NewLogger() (*logging.ChanneledLogger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.OutputToFile = config.LogToFile
	cfg.OutputToConsole = config.LogToConsole
	cfg.LogDirectory = config.LogDirectory
	cfg.JSONFormat = config.LogJSON
	cfg.IncludeSource = config.LogIncludeSource
	cfg.DefaultLevel = logging.ParseLevel(config.LogLevel)
	return logging.NewChanneledLogger(cfg)
}

// OpenBackend connects the configured persistent key-value backend
func OpenBackend(ctx context.Context) (kv.Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StorageTimeout)
	defer cancel()

	return kv.Open(ctx, kv.Options{
		Driver:        config.StorageDriver,
		SQLitePath:    config.SQLitePath,
		TursoDatabase: config.TursoDatabase,
		TursoToken:    config.TursoToken,
		PostgresDSN:   config.PostgresDSN,
		RedisAddr:     config.RedisAddr,
		Pool: kv.PoolConfig{
			MaxOpenConns:    config.DBMaxOpenConns,
			MaxIdleConns:    config.DBMaxIdleConns,
			ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
			ConnMaxIdleTime: time.Duration(config.DBConnMaxIdleMinutes) * time.Minute,
		},
	})
}

// NewSealer returns the token sealer, or nil when STORAGE_SECRET is unset
func NewSealer() (kv.Sealer, error) {
	if config.StorageSecret == "" {
		return nil, nil
	}
	sealer, err := security.NewSealer(config.StorageSecret)
	if err != nil {
		return nil, err
	}
	return sealer, nil
}

// NewContainer creates and wires all singleton services
func NewContainer(ctx context.Context) (*Container, error) {
	logger, err := NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	tp, err := tracing.Init(ctx, tracing.Config{
		Exporter:     config.TraceExporter,
		OTLPEndpoint: config.OTLPEndpoint,
		ServiceName:  config.ServiceName,
		Version:      Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	backend, err := OpenBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", config.StorageDriver, err)
	}

	sealer, err := NewSealer()
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create sealer: %w", err)
	}
	if sealer == nil {
		log.Println("STORAGE_SECRET not set - session tokens are stored unsealed")
	}

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	client := api.NewClient(config.APIBaseURL, config.APITimeout, logger)
	broadcaster := messaging.NewEventBroadcaster(logger, config.EventBufferSize)
	doc := templates.NewDocument()
	theme := stores.NewThemeStore(client, doc, logger)

	profiles := storefront.NewManager(backend, sealer, broadcaster, client, storefront.Config{
		MaxProfiles:     config.MaxProfiles,
		IdleTimeout:     config.ProfileIdleTimeout,
		CleanupInterval: config.CleanupInterval,
	}, logger, perfTracker)

	return &Container{
		AuthService:     services.NewAuthService(client, logger, perfTracker),
		CheckoutService: services.NewCheckoutService(client, logger, perfTracker),
		SettingsService: services.NewSettingsService(client, theme, logger, perfTracker),
		CatalogService:  services.NewCatalogService(client),

		ThemeStore: theme,
		Document:   doc,

		Profiles:      profiles,
		CleanupWorker: storefront.NewCleanupWorker(profiles, config.CleanupInterval, logger),

		Backend:     backend,
		API:         client,
		Broadcaster: broadcaster,
		Tracing:     tp,
		Logger:      logger,
		PerfTracker: perfTracker,
	}, nil
}

// Version reports the running build
func (c *Container) Version() string { return Version }

// Close releases storage, flushes traces and closes log files
func (c *Container) Close(ctx context.Context) error {
	return errors.Join(
		c.Backend.Close(),
		c.Tracing.Shutdown(ctx),
		c.Logger.Close(),
	)
}
