package drag

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/layout"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
)

// DefaultThreshold is the distance in pixels a press must travel before it
// becomes a drag
const DefaultThreshold = 5

// Source is the kind of input device
type Source string

const (
	SourcePointer Source = "pointer"
	SourceTouch   Source = "touch"
)

// Input is one pointer or touch sample in client coordinates
type Input struct {
	Source Source         `json:"source"`
	ItemID string         `json:"itemId,omitempty"`
	Point  geometry.Point `json:"point"`
	// Editable is set when the event targets a text input
	Editable bool `json:"editable,omitempty"`
}

// Layout is the part of the layout store the controller writes to
type Layout interface {
	Position(id string) (geometry.Point, bool)
	MoveItem(id string, p geometry.Point)
	AddToDock(id string, index int)
	RemoveFromDock(id string) bool
	Viewport() geometry.Size
}

// Config holds controller measurements
type Config struct {
	ItemSize        geometry.Size
	DockReservation float64
	Threshold       float64
}

// ConfigFromDimensions derives a config from the layout dimensions
func ConfigFromDimensions(d layout.Dimensions) Config {
	return Config{
		ItemSize:        d.Icon(),
		DockReservation: d.DockHeight,
		Threshold:       DefaultThreshold,
	}
}

// Session is an active press on one item
type Session struct {
	ID       id.GestureID   `json:"id"`
	ItemID   string         `json:"itemId"`
	Source   Source         `json:"source"`
	Start    geometry.Point `json:"start"`
	Offset   geometry.Point `json:"pointerOffset"`
	Dragging bool           `json:"isDragging"`
}

// Release describes how a free drag ended
type Release struct {
	ItemID   string         `json:"itemId"`
	Dragged  bool           `json:"dragged"`
	Position geometry.Point `json:"position"`
}

// Controller tracks drag sessions for one shell
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	layout   Layout
	editMode bool
	sessions map[Source]*Session
	last     map[Source]geometry.Point
	dock     *dockDrag
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewController creates a controller writing to l
func NewController(cfg Config, l Layout, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Controller{
		cfg:      cfg,
		layout:   l,
		sessions: make(map[Source]*Session),
		last:     make(map[Source]geometry.Point),
		logger:   logger,
	}
}

// WithMetrics adds metrics tracking to the controller
func (c *Controller) WithMetrics(metrics *monitoring.Metrics) *Controller {
	c.metrics = metrics
	return c
}

// SetEditMode turns edit mode on or off. Turning it off drops every session.
func (c *Controller) SetEditMode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.editMode = on
	if !on {
		c.sessions = make(map[Source]*Session)
		c.last = make(map[Source]geometry.Point)
		c.dock = nil
	}
}

// EditMode reports whether edit mode is on
func (c *Controller) EditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editMode
}

// Session returns a copy of the active session for a source
func (c *Controller) Session(src Source) (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[src]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Down starts a press on an item. It reports whether a session was created.
func (c *Controller) Down(in Input) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editMode || in.Editable || in.ItemID == "" {
		return false
	}
	if _, busy := c.sessions[in.Source]; busy {
		return false
	}

	origin, _ := c.layout.Position(in.ItemID)
	c.sessions[in.Source] = &Session{
		ID:     id.NewGestureID(),
		ItemID: in.ItemID,
		Source: in.Source,
		Start:  in.Point,
		Offset: in.Point.Sub(origin),
	}
	return true
}

// Move advances a press. Once the press has travelled past the threshold
// the item is moved to the clamped input position minus the grab offset;
// the new position is returned with ok set.
func (c *Controller) Move(in Input) (geometry.Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[in.Source]
	if !ok || in.Editable {
		return geometry.Point{}, false
	}

	if !s.Dragging {
		if in.Point.Distance(s.Start) < c.cfg.Threshold {
			return geometry.Point{}, false
		}
		s.Dragging = true
		c.logger.Debug("Drag started", zap.String("gesture", s.ID.String()), zap.String("item", s.ItemID))
	}

	bounds := geometry.Bounds{Viewport: c.layout.Viewport(), Bottom: c.cfg.DockReservation}
	p := geometry.Clamp(in.Point.Sub(s.Offset), c.cfg.ItemSize, bounds)
	c.layout.MoveItem(s.ItemID, p)
	c.last[in.Source] = p
	return p, true
}

// Up ends a press. ok is false when no session was active for the source.
func (c *Controller) Up(in Input) (Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[in.Source]
	if !ok {
		return Release{}, false
	}
	delete(c.sessions, in.Source)

	release := Release{ItemID: s.ItemID, Dragged: s.Dragging}
	if s.Dragging {
		release.Position = c.last[in.Source]
		c.record("free")
	} else if p, ok := c.layout.Position(s.ItemID); ok {
		release.Position = p
	}
	delete(c.last, in.Source)
	return release, true
}

// Cancel drops the session of a source without further layout writes
func (c *Controller) Cancel(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, src)
	delete(c.last, src)
}

func (c *Controller) record(kind string) {
	if c.metrics != nil {
		c.metrics.RecordDrag(kind)
	}
}
