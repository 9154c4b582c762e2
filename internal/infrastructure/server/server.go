package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/shell/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/shell/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/shell/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/keyboard"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/layout"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/message"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/navigation"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/probe"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/shell"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/storage"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	pool    *shell.Pool
	kv      storage.KV
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics

	// stops the catalog push subscriber
	cancel context.CancelFunc
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing AgentOS Shell",
		zap.String("port", cfg.Server.Port),
		zap.String("origin", cfg.Shell.Origin),
		zap.String("storage", cfg.Storage.Driver),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	origin, err := url.Parse(cfg.Shell.Origin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("invalid shell origin %q", cfg.Shell.Origin)
	}
	policy, err := message.NewOriginPolicy(cfg.Shell.Origin, cfg.Shell.TrustedLabel, cfg.Shell.LocalHosts)
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout storage: %w", err)
	}
	logger.Info("Layout storage ready", zap.String("driver", cfg.Storage.Driver), zap.String("path", cfg.Storage.Path))

	// Catalog: local seed first, then the remote source when configured
	store := catalog.NewStore(logger.Component("catalog")).WithMetrics(metrics)
	seeder := catalog.NewSeeder(cfg.Catalog.SeedDir, logger.Component("seeder"))
	if err := seeder.Seed(store); err != nil {
		logger.Warn("Failed to seed catalog", zap.Error(err))
	}

	var refresher apihttp.Refresher
	if cfg.Catalog.URL != "" {
		fetcher := catalog.NewFetcher(cfg.Catalog.URL)
		if err := fetcher.Refresh(ctx, store); err != nil {
			logger.Warn("Initial catalog fetch failed", zap.String("url", cfg.Catalog.URL), zap.Error(err))
		}
		refresher = fetcher
	}

	var prober navigation.Prober = probe.Never{}
	if cfg.Probe.Enabled {
		prober = probe.NewHTTPProber(origin, cfg.Probe.Timeout).
			WithLogger(logger.Component("probe")).
			WithMetrics(metrics)
	}

	pool := shell.NewPool(shell.Options{
		Catalog:    store,
		KV:         kv,
		Prober:     prober,
		Origin:     origin,
		Policy:     policy,
		StoreApp:   cfg.Shell.StoreAppID,
		Dimensions: layout.DimensionsFromConfig(cfg.Layout),
		Bindings:   keyboard.BindingsFromConfig(cfg.Shell),
		Logger:     logger,
		Metrics:    metrics,
	})

	subCtx, cancel := context.WithCancel(context.Background())
	if cfg.Catalog.PushURL != "" {
		go catalog.NewSubscriber(cfg.Catalog.PushURL, store, logger.Component("subscriber")).Run(subCtx)
		logger.Info("Subscribed to catalog updates", zap.String("url", cfg.Catalog.PushURL))
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.PolicyCORSConfig(policy.Allow)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	apihttp.NewHandlers(pool, refresher, logger.Component("api")).WithMetrics(metrics).Register(router)
	wsHandler := ws.NewHandler(pool, policy.Allow, logger.Component("stream")).WithMetrics(metrics)
	router.GET("/shells/:id/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully", zap.Int("catalog_apps", store.Len()))

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	return &Server{
		router: router,
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		pool:    pool,
		kv:      kv,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		cancel:  cancel,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Pool returns the shell pool
func (s *Server) Pool() *shell.Pool {
	return s.pool
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains connections and releases storage
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	s.cancel()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := s.kv.Close(); err != nil {
		s.logger.Error("Failed to close layout storage", zap.Error(err))
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}

	// Sync logger before exit
	_ = s.logger.Sync()
	return errors.Join(errs...)
}
