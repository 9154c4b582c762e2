package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/drag"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/keyboard"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/layout"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/message"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/navigation"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

var (
	// ErrUnknownEvent is returned for event types Dispatch does not handle
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrMissingField is returned when an event lacks a field its type needs
	ErrMissingField = errors.New("event is missing a required field")
)

// Sink receives the outbound effects of a shell
type Sink interface {
	PushHistory(entry types.HistoryEntry)
	OpenWindow(url string)
	StateChanged(snapshot Snapshot)
}

// Shell is the window manager of one installation
type Shell struct {
	mu           sync.Mutex // serializes events
	installation string
	catalog      *catalog.Store
	nav          *navigation.Manager
	history      *navigation.History
	layout       *layout.Store
	drag         *drag.Controller
	swipe        *drag.Swipe
	router       *message.Router
	keys         *keyboard.Handler

	sinksMu sync.RWMutex
	sinks   map[id.ConnectionID]Sink

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// resolve returns the catalog entry for an exact id, falling back to the
// requested-id match used by messages
func (s *Shell) resolve(requested string) (types.SubApplication, error) {
	if app, ok := s.catalog.Get(requested); ok {
		return app, nil
	}
	return s.router.Resolve(requested)
}

// Installation returns the installation id
func (s *Shell) Installation() string {
	return s.installation
}

// Navigation returns the navigation manager
func (s *Shell) Navigation() *navigation.Manager {
	return s.nav
}

// Layout returns the layout store
func (s *Shell) Layout() *layout.Store {
	return s.layout
}

// Attach registers a sink and returns its handle
func (s *Shell) Attach(sink Sink) id.ConnectionID {
	conn := id.NewConnectionID()
	s.sinksMu.Lock()
	s.sinks[conn] = sink
	s.sinksMu.Unlock()
	return conn
}

// Detach removes a sink
func (s *Shell) Detach(conn id.ConnectionID) {
	s.sinksMu.Lock()
	delete(s.sinks, conn)
	s.sinksMu.Unlock()
}

// Sinks returns the number of attached sinks
func (s *Shell) Sinks() int {
	s.sinksMu.RLock()
	defer s.sinksMu.RUnlock()
	return len(s.sinks)
}

func (s *Shell) eachSink(fn func(Sink)) {
	s.sinksMu.RLock()
	sinks := make([]Sink, 0, len(s.sinks))
	for _, sink := range s.sinks {
		sinks = append(sinks, sink)
	}
	s.sinksMu.RUnlock()

	for _, sink := range sinks {
		fn(sink)
	}
}

func (s *Shell) forwardHistory(entry types.HistoryEntry) {
	s.eachSink(func(sink Sink) { sink.PushHistory(entry) })
}

// OpenTopLevel forwards an escape-hatch URL to every sink
func (s *Shell) OpenTopLevel(url string) {
	s.eachSink(func(sink Sink) { sink.OpenWindow(url) })
}

// Snapshot returns the current state
func (s *Shell) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Dispatch applies one event. The returned error is non-fatal: the event
// was rejected and state is unchanged.
func (s *Shell) Dispatch(ctx context.Context, ev Event) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.apply(ctx, ev)
	if err != nil {
		s.logger.Debug("Event rejected", zap.String("type", string(ev.Type)), zap.Error(err))
	}

	res.Snapshot = s.snapshot()
	if res.Changed {
		snap := res.Snapshot
		s.eachSink(func(sink Sink) { sink.StateChanged(snap) })
	}
	return res, err
}

// catalogChanged refreshes running entries and the first-run layout as one
// step, the same way Dispatch applies an event.
func (s *Shell) catalogChanged(apps []types.SubApplication, seed func(*Shell)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nav.UpdateCatalog(apps)
	seed(s)
	snap := s.snapshot()
	s.eachSink(func(sink Sink) { sink.StateChanged(snap) })
}

func (s *Shell) resetLayout(ctx context.Context, seed func(*Shell)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.layout.Reset(ctx); err != nil {
		return err
	}
	s.drag.SetEditMode(false)
	seed(s)
	snap := s.snapshot()
	s.eachSink(func(sink Sink) { sink.StateChanged(snap) })
	s.logger.Info("Layout reset")
	return nil
}

func (s *Shell) apply(ctx context.Context, ev Event) (Result, error) {
	var res Result
	if err := ev.Validate(); err != nil {
		return res, err
	}

	switch ev.Type {
	case EventOpen:
		if ev.AppID == "" {
			return res, missing(ev.Type, "appId")
		}
		app, err := s.resolve(ev.AppID)
		if err != nil {
			return res, err
		}
		open, err := s.nav.Open(ctx, app, ev.Suffix)
		if err != nil {
			return res, err
		}
		res.Open = &open
		res.Changed = !open.External

	case EventClose:
		res.Changed = s.nav.Close(ev.AppID)

	case EventSwitch:
		if err := s.nav.SwitchTo(ev.AppID); err != nil {
			return res, err
		}
		res.Changed = true

	case EventDrawer:
		s.nav.ToggleDrawer()
		res.Changed = true

	case EventSwitcher:
		s.nav.ToggleSwitcher()
		s.swipe.Reset()
		res.Changed = true

	case EventHome:
		s.nav.CloseAllOverlays()
		res.Changed = true

	case EventBack:
		entry, _ := s.history.Back()
		if ev.History != nil {
			entry = ev.History
		}
		res.Back = s.nav.HandlePlatformBack(entry)
		res.Changed = res.Back != navigation.BackNoop

	case EventKey:
		if ev.Key == nil {
			return res, missing(ev.Type, "key")
		}
		action, err := s.keys.Handle(*ev.Key)
		res.Action = action
		if err != nil {
			return res, err
		}
		res.Changed = action != keyboard.ActionNone

	case EventMessage:
		if err := s.router.Route(ctx, ev.Origin, ev.Data); err != nil {
			return res, err
		}
		res.Changed = true

	case EventEditMode:
		if ev.Enabled == nil {
			return res, missing(ev.Type, "enabled")
		}
		s.drag.SetEditMode(*ev.Enabled)
		res.Changed = true

	case EventDragDown, EventDragMove, EventDragUp:
		return s.applyDrag(ev)

	case EventDockDragStart, EventDockDrop, EventDockDropOutside, EventDockDragEnd,
		EventDockTouchStart, EventDockTouchMove, EventDockTouchEnd:
		return s.applyDock(ev)

	case EventSwipeStart, EventSwipeMove, EventSwipeEnd:
		return s.applySwipe(ev)

	case EventResize, EventAddToHome, EventRemoveFromHome, EventMoveItem, EventAddToDock,
		EventRemoveFromDock, EventToggleWidget, EventWidgetPosition, EventWidgetSize, EventBackgroundImage:
		return s.applyLayout(ev)

	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	return res, nil
}

func (s *Shell) applyDrag(ev Event) (Result, error) {
	var res Result
	if ev.Input == nil {
		return res, missing(ev.Type, "input")
	}
	in := *ev.Input
	if in.Source == "" {
		in.Source = drag.SourcePointer
	}

	switch ev.Type {
	case EventDragDown:
		res.Changed = s.drag.Down(in)
	case EventDragMove:
		if p, ok := s.drag.Move(in); ok {
			res.Position = &p
			res.Changed = true
		}
	case EventDragUp:
		if release, ok := s.drag.Up(in); ok {
			res.Release = &release
			res.Changed = true
		}
	}
	return res, nil
}

func (s *Shell) applyDock(ev Event) (Result, error) {
	var res Result

	switch ev.Type {
	case EventDockDragStart:
		res.Changed = s.drag.DockDragStart(ev.ItemID)
	case EventDockDrop:
		slot := -1
		if ev.Index != nil {
			slot = *ev.Index
		}
		if drop, ok := s.drag.DockDrop(slot); ok {
			res.Drop = &drop
			res.Changed = true
		}
	case EventDockDropOutside:
		if ev.Point == nil {
			return res, missing(ev.Type, "point")
		}
		if drop, ok := s.drag.DockDropOutside(*ev.Point); ok {
			res.Drop = &drop
			res.Changed = true
		}
	case EventDockDragEnd:
		s.drag.DockDragEnd()
	case EventDockTouchStart:
		if ev.Point == nil {
			return res, missing(ev.Type, "point")
		}
		res.Changed = s.drag.DockTouchStart(ev.ItemID, *ev.Point)
	case EventDockTouchMove:
		if ev.Point == nil {
			return res, missing(ev.Type, "point")
		}
		if p, ok := s.drag.DockTouchMove(*ev.Point); ok {
			res.Position = &p
		}
	case EventDockTouchEnd:
		if ev.Point == nil {
			return res, missing(ev.Type, "point")
		}
		if ev.Dock == nil {
			return res, missing(ev.Type, "dock")
		}
		if drop, ok := s.drag.DockTouchEnd(*ev.Point, *ev.Dock); ok {
			res.Drop = &drop
			res.Changed = true
		}
	}
	return res, nil
}

func (s *Shell) applySwipe(ev Event) (Result, error) {
	var res Result
	if ev.AppID == "" {
		return res, missing(ev.Type, "appId")
	}

	switch ev.Type {
	case EventSwipeStart:
		if ev.Point == nil {
			return res, missing(ev.Type, "point")
		}
		s.swipe.Start(ev.AppID, *ev.Point)
	case EventSwipeMove:
		if ev.Point == nil {
			return res, missing(ev.Type, "point")
		}
		if offset, ok := s.swipe.Move(ev.AppID, *ev.Point); ok {
			res.Offset = &offset
		}
	case EventSwipeEnd:
		result, ok := s.swipe.End(ev.AppID, s.layout.Viewport().Height)
		if !ok {
			return res, nil
		}
		res.Swipe = &result
		if result.Dismissed {
			res.Changed = s.nav.Close(ev.AppID)
			if s.metrics != nil {
				s.metrics.RecordDrag("swipe")
			}
		}
	}
	return res, nil
}

func (s *Shell) applyLayout(ev Event) (Result, error) {
	var res Result
	store := s.layout

	needItem := ev.Type != EventResize && ev.Type != EventBackgroundImage
	if needItem && ev.ItemID == "" {
		return res, missing(ev.Type, "itemId")
	}

	switch ev.Type {
	case EventResize:
		if ev.Viewport == nil {
			return res, missing(ev.Type, "viewport")
		}
		res.Moved = store.Resize(*ev.Viewport)
		res.Changed = true
	case EventAddToHome:
		res.Changed = store.AddToHome(ev.ItemID)
	case EventRemoveFromHome:
		res.Changed = store.RemoveFromHome(ev.ItemID)
	case EventMoveItem:
		if ev.Point == nil {
			return res, missing(ev.Type, "point")
		}
		store.MoveItem(ev.ItemID, *ev.Point)
		res.Changed = true
	case EventAddToDock:
		index := -1
		if ev.Index != nil {
			index = *ev.Index
		}
		store.AddToDock(ev.ItemID, index)
		res.Changed = true
	case EventRemoveFromDock:
		res.Changed = store.RemoveFromDock(ev.ItemID)
	case EventToggleWidget:
		store.ToggleWidget(ev.ItemID)
		res.Changed = true
	case EventWidgetPosition:
		if ev.Point == nil {
			return res, missing(ev.Type, "point")
		}
		store.SetWidgetPosition(ev.ItemID, *ev.Point)
		res.Changed = true
	case EventWidgetSize:
		if ev.Size == nil {
			return res, missing(ev.Type, "size")
		}
		store.SetWidgetSize(ev.ItemID, *ev.Size)
		res.Changed = true
	case EventBackgroundImage:
		if err := store.SetBackgroundImage(ev.URL); err != nil {
			return res, err
		}
		res.Changed = true
	}
	return res, nil
}

func missing(t EventType, field string) error {
	return fmt.Errorf("%w: %s needs %s", ErrMissingField, t, field)
}
