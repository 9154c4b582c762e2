package layout

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// ErrCorruptRecord is returned by persisters for records that cannot be decoded
var ErrCorruptRecord = errors.New("corrupt layout record")

const saveTimeout = 2 * time.Second

// DefaultViewport is assumed until the first resize event arrives
var DefaultViewport = geometry.Size{Width: 1280, Height: 800}

// Store manages the layout record of one installation
type Store struct {
	mu        sync.RWMutex
	record    types.LayoutRecord
	dims      Dimensions
	viewport  geometry.Size
	random    geometry.RandomSource
	persister Persister
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// NewStore creates a store holding an empty record
func NewStore(dims Dimensions, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		record:   types.NewLayoutRecord(),
		dims:     dims,
		viewport: DefaultViewport,
		random:   rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger,
	}
}

// WithRandom sets the source used for first placements
func (s *Store) WithRandom(src geometry.RandomSource) *Store {
	s.random = src
	return s
}

// WithPersister sets where committed records are written
func (s *Store) WithPersister(p Persister) *Store {
	s.persister = p
	return s
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// Load replaces the in-memory record with the persisted one. Any failure
// leaves an empty record in place; the returned error is informational.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	record, err := s.persister.Load(ctx)
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		outcome, err = "missing", nil
		record = types.NewLayoutRecord()
	case errors.Is(err, ErrCorruptRecord):
		outcome = "corrupt"
		record = types.NewLayoutRecord()
		s.logger.Warn("Discarding unreadable layout record", zap.Error(err))
	default:
		outcome = "error"
		record = types.NewLayoutRecord()
		s.logger.Error("Failed to load layout, using defaults", zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.RecordLayoutLoad(outcome)
	}

	s.mu.Lock()
	s.record = record
	s.mu.Unlock()
	return err
}

// Reset discards the record, in memory and in storage, leaving a fresh
// uninitialized one.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = types.NewLayoutRecord()
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Delete(ctx); err != nil {
		s.logger.Error("Failed to delete layout", zap.Error(err))
		return err
	}
	return nil
}

// Record returns a copy of the current record
func (s *Store) Record() types.LayoutRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// Dimensions returns the fixed measurements
func (s *Store) Dimensions() Dimensions {
	return s.dims
}

// Viewport returns the last known viewport
func (s *Store) Viewport() geometry.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// FloatingItems returns home items not shown in the dock
func (s *Store) FloatingItems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.FloatingItems()
}

// Position returns the stored position of an icon
func (s *Store) Position(id string) (geometry.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.record.Positions[id]
	return p, ok
}

// Widget returns the stored settings of a widget
func (s *Store) Widget(id string) (types.WidgetSettings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.record.WidgetSettings[id]; !ok {
		return types.WidgetSettings{}, false
	}
	return s.record.Clone().WidgetSettings[id], true
}

// update runs fn on a copy of the record and commits it when fn reports a change
func (s *Store) update(fn func(next *types.LayoutRecord) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.record.Clone()
	if !fn(&next) {
		return false
	}
	s.record = next
	s.persist(next)
	return true
}

func (s *Store) persist(record types.LayoutRecord) {
	if s.persister == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	outcome := "ok"
	if err := s.persister.Save(ctx, record); err != nil {
		outcome = "error"
		s.logger.Error("Failed to persist layout", zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordLayoutWrite(outcome)
	}
}

// AddToHome pins an item to the home surface. A never-placed item gets a
// random position in the lower part of the screen above the dock.
func (s *Store) AddToHome(id string) bool {
	return s.update(func(next *types.LayoutRecord) bool {
		return s.addToHome(next, id)
	})
}

func (s *Store) addToHome(next *types.LayoutRecord, id string) bool {
	changed := false
	if !next.OnHome(id) {
		next.HomeItemIDs = append(next.HomeItemIDs, id)
		changed = true
	}
	if _, ok := next.Positions[id]; !ok {
		next.Positions[id] = s.defaultIconPosition()
		changed = true
	}
	return changed
}

func (s *Store) defaultIconPosition() geometry.Point {
	icon := s.dims.Icon()
	bounds := s.dims.PlacementBounds(s.viewport)
	max := bounds.MaxPosition(icon)

	lower := math.Max(bounds.Top, s.viewport.Height/2-icon.Height)
	p := geometry.Point{
		X: geometry.RandomIn(s.random, s.dims.Spacing, max.X),
		Y: geometry.RandomIn(s.random, lower, max.Y),
	}
	return geometry.Clamp(p, icon, bounds)
}

// RemoveFromHome unpins an item, dropping its position and its dock slot
func (s *Store) RemoveFromHome(id string) bool {
	return s.update(func(next *types.LayoutRecord) bool {
		_, placed := next.Positions[id]
		if !next.OnHome(id) && !next.InDock(id) && !placed {
			return false
		}
		next.HomeItemIDs = without(next.HomeItemIDs, id)
		next.DockItemIDs = without(next.DockItemIDs, id)
		delete(next.Positions, id)
		return true
	})
}

// MoveItem overwrites an icon position. Callers clamp.
func (s *Store) MoveItem(id string, p geometry.Point) {
	s.update(func(next *types.LayoutRecord) bool {
		next.Positions[id] = p
		return true
	})
}

// AddToDock inserts an item at index, or appends when index is out of
// range. An item already in the dock is moved. The dock keeps its first
// DockCapacity entries.
func (s *Store) AddToDock(id string, index int) {
	s.update(func(next *types.LayoutRecord) bool {
		s.addToHome(next, id)

		dock := without(next.DockItemIDs, id)
		if index < 0 || index > len(dock) {
			index = len(dock)
		}
		dock = append(dock, "")
		copy(dock[index+1:], dock[index:])
		dock[index] = id

		if len(dock) > types.DockCapacity {
			dock = dock[:types.DockCapacity]
		}
		next.DockItemIDs = dock
		return true
	})
}

// RemoveFromDock takes an item out of the dock; it stays on home
func (s *Store) RemoveFromDock(id string) bool {
	return s.update(func(next *types.LayoutRecord) bool {
		if !next.InDock(id) {
			return false
		}
		next.DockItemIDs = without(next.DockItemIDs, id)
		return true
	})
}

// ToggleWidget flips a widget's visibility and returns whether it is now
// hidden. Position and size are seeded only when absent, so repeated
// toggles never move the widget.
func (s *Store) ToggleWidget(id string) bool {
	var hidden bool
	s.update(func(next *types.LayoutRecord) bool {
		ws := next.WidgetSettings[id]
		if ws.Size == nil {
			size := s.dims.WidgetSize(visibleWidgets(next)+1, s.viewport)
			ws.Size = &size
		}
		if ws.Position == nil {
			p := s.defaultWidgetPosition(*ws.Size)
			ws.Position = &p
		}
		ws.Hidden = !ws.Hidden
		hidden = ws.Hidden
		next.WidgetSettings[id] = ws
		return true
	})
	return hidden
}

func (s *Store) defaultWidgetPosition(size geometry.Size) geometry.Point {
	bounds := s.dims.PlacementBounds(s.viewport)
	max := bounds.MaxPosition(size)
	p := geometry.Point{
		X: geometry.RandomIn(s.random, s.dims.Spacing, max.X),
		Y: geometry.RandomIn(s.random, bounds.Top, max.Y),
	}
	return geometry.ClampToViewport(p, size, s.viewport)
}

// SetWidgetPosition overwrites a widget position regardless of visibility
func (s *Store) SetWidgetPosition(id string, p geometry.Point) {
	s.update(func(next *types.LayoutRecord) bool {
		ws := next.WidgetSettings[id]
		ws.Position = &p
		next.WidgetSettings[id] = ws
		return true
	})
}

// SetWidgetSize overwrites a widget size and marks it as explicitly resized
func (s *Store) SetWidgetSize(id string, size geometry.Size) {
	s.update(func(next *types.LayoutRecord) bool {
		ws := next.WidgetSettings[id]
		ws.Size = &size
		ws.Resized = true
		next.WidgetSettings[id] = ws
		return true
	})
}

// SetBackgroundImage replaces the background reference; nil or "" clears it
func (s *Store) SetBackgroundImage(ref *string) error {
	if ref != nil && *ref == "" {
		ref = nil
	}
	if ref != nil {
		if err := validateBackground(*ref); err != nil {
			return err
		}
	}

	s.update(func(next *types.LayoutRecord) bool {
		if ref == nil {
			next.BackgroundImageURL = nil
			return true
		}
		bg := *ref
		next.BackgroundImageURL = &bg
		return true
	})
	return nil
}

// Initialize seeds a first-run layout. Floating items without a position
// are laid out on a grid below the search bar. It is a no-op once the
// record is initialized.
func (s *Store) Initialize(home, dock []string) bool {
	return s.update(func(next *types.LayoutRecord) bool {
		if next.Initialized {
			return false
		}

		for _, id := range home {
			if !next.OnHome(id) {
				next.HomeItemIDs = append(next.HomeItemIDs, id)
			}
		}
		for _, id := range dock {
			if len(next.DockItemIDs) >= types.DockCapacity {
				break
			}
			if !next.InDock(id) {
				next.DockItemIDs = append(next.DockItemIDs, id)
			}
			if !next.OnHome(id) {
				next.HomeItemIDs = append(next.HomeItemIDs, id)
			}
		}

		var unplaced []string
		for _, id := range next.FloatingItems() {
			if _, ok := next.Positions[id]; !ok {
				unplaced = append(unplaced, id)
			}
		}
		grid := geometry.GridPositions(len(unplaced), s.viewport, s.dims.Icon(), s.dims.Spacing, s.dims.SearchHeight)
		bounds := s.dims.IconBounds(s.viewport)
		for i, id := range unplaced {
			next.Positions[id] = geometry.Clamp(grid[i], s.dims.Icon(), bounds)
		}

		next.Initialized = true
		return true
	})
}

// Resize records the new viewport and snaps every icon and every widget
// with an explicit position and size back inside it. It returns the number
// of items moved; running it again on the same viewport moves nothing.
func (s *Store) Resize(viewport geometry.Size) int {
	moved := 0
	s.mu.Lock()
	s.viewport = viewport
	s.mu.Unlock()

	s.update(func(next *types.LayoutRecord) bool {
		icon := s.dims.Icon()
		bounds := s.dims.IconBounds(viewport)
		for id, p := range next.Positions {
			if !geometry.InBounds(p, icon, bounds) {
				next.Positions[id] = geometry.Clamp(p, icon, bounds)
				moved++
			}
		}

		screen := geometry.Bounds{Viewport: viewport}
		for id, ws := range next.WidgetSettings {
			if ws.Position == nil || ws.Size == nil {
				continue
			}
			if !geometry.InBounds(*ws.Position, *ws.Size, screen) {
				c := geometry.ClampToViewport(*ws.Position, *ws.Size, viewport)
				ws.Position = &c
				next.WidgetSettings[id] = ws
				moved++
			}
		}
		return moved > 0
	})

	if moved > 0 {
		s.logger.Debug("Corrected layout after resize",
			zap.Float64("width", viewport.Width),
			zap.Float64("height", viewport.Height),
			zap.Int("moved", moved),
		)
	}
	return moved
}

// WidgetSize computes the default widget size for n visible widgets in the
// current viewport
func (s *Store) WidgetSize(n int) geometry.Size {
	return s.dims.WidgetSize(n, s.Viewport())
}

// EffectiveWidgetSize returns the explicit size of a resized widget, else
// the responsive default for n visible widgets
func (s *Store) EffectiveWidgetSize(id string, n int) geometry.Size {
	s.mu.RLock()
	ws, ok := s.record.WidgetSettings[id]
	viewport := s.viewport
	s.mu.RUnlock()

	if ok && ws.Resized && ws.Size != nil {
		return *ws.Size
	}
	return s.dims.WidgetSize(n, viewport)
}

func visibleWidgets(r *types.LayoutRecord) int {
	n := 0
	for _, ws := range r.WidgetSettings {
		if !ws.Hidden {
			n++
		}
	}
	return n
}

func without(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
