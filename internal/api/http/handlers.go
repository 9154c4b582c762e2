package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/shell"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/utils"
)

// Version of the shell API
const Version = "0.3.0"

// Refresher reloads the catalog from its remote source
type Refresher interface {
	Refresh(ctx context.Context, store *catalog.Store) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	pool      *shell.Pool
	refresher Refresher
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewHandlers creates a new handler set. refresher may be nil when the
// catalog has no remote source.
func NewHandlers(pool *shell.Pool, refresher Refresher, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		pool:      pool,
		refresher: refresher,
		logger:    logger,
	}
}

// WithMetrics adds the metrics snapshot to the health endpoint
func (h *Handlers) WithMetrics(metrics *monitoring.Metrics) *Handlers {
	h.metrics = metrics
	return h
}

// Register mounts the routes on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/catalog", h.ListCatalog)
	r.POST("/catalog/refresh", h.RefreshCatalog)

	r.GET("/shells", h.ListShells)
	r.POST("/shells", h.CreateShell)
	r.GET("/shells/:id/state", h.GetState)
	r.POST("/shells/:id/events", h.DispatchEvent)
	r.DELETE("/shells/:id/layout", h.ResetLayout)
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "AgentOS Shell",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":       "healthy",
		"catalog_apps": h.pool.Catalog().Len(),
		"shells":       h.pool.Len(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// ListCatalog returns the current catalog
func (h *Handlers) ListCatalog(c *gin.Context) {
	apps := h.pool.Catalog().List()
	c.JSON(http.StatusOK, gin.H{
		"apps":  apps,
		"count": len(apps),
	})
}

// RefreshCatalog reloads the catalog from its remote source
func (h *Handlers) RefreshCatalog(c *gin.Context) {
	if h.refresher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog has no remote source"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.refresher.Refresh(ctx, h.pool.Catalog()); err != nil {
		h.logger.Warn("Catalog refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": h.pool.Catalog().Len()})
}

// ListShells returns every known installation, live or persisted
func (h *Handlers) ListShells(c *gin.Context) {
	installations, err := h.pool.Stored(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"installations": installations,
		"live":          h.pool.Len(),
	})
}

// ResetLayout discards an installation's layout and seeds a fresh one
func (h *Handlers) ResetLayout(c *gin.Context) {
	if err := h.pool.Reset(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateShell starts a shell for a new installation
func (h *Handlers) CreateShell(c *gin.Context) {
	s, err := h.pool.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"installation": s.Installation(),
		"state":        s.Snapshot(),
	})
}

// GetState returns the snapshot of an installation's shell
func (h *Handlers) GetState(c *gin.Context) {
	s, err := h.pool.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// DispatchEvent applies one event to an installation's shell
func (h *Handlers) DispatchEvent(c *gin.Context) {
	s, err := h.pool.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	// The largest event is a background data URI; anything past that is
	// refused while the body is still streaming.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(utils.MaxBackgroundSize))
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ev shell.Event
	if err := sonic.Unmarshal(body, &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event: " + err.Error()})
		return
	}
	if ev.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event type is required"})
		return
	}
	if err := utils.EventValidatorFor(string(ev.Type)).ValidateSize(body); err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}

	res, err := s.Dispatch(c.Request.Context(), ev)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
