package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/probe"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

var (
	// ErrNoLaunchTarget is returned by Open for apps without a launch path
	// or (process, publisher) pair
	ErrNoLaunchTarget = errors.New("app has no launch target")
	// ErrNotRunning is returned when switching to an app that is not running
	ErrNotRunning = errors.New("app is not running")
)

// Prober decides whether an app must leave the shell
type Prober interface {
	NeedsTopLevel(ctx context.Context, path string) bool
}

// Opener opens a URL in a new top-level browsing context
type Opener interface {
	OpenTopLevel(url string)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(url string)

// OpenTopLevel implements Opener
func (f OpenerFunc) OpenTopLevel(url string) { f(url) }

// OpenResult describes what Open did
type OpenResult struct {
	AppID string `json:"appId"`
	// External is set when the app was sent to its own browsing context
	External bool   `json:"external"`
	URL      string `json:"url,omitempty"`
	// Refocused is set when the app was already running
	Refocused bool `json:"refocused"`
}

// BackResolution names the branch HandlePlatformBack took
type BackResolution string

const (
	BackOverlay      BackResolution = "overlay"
	BackSwitched     BackResolution = "switched"
	BackHomeFallback BackResolution = "home_fallback"
	BackHome         BackResolution = "home"
	BackNoop         BackResolution = "noop"
)

// Manager owns the navigation state of one shell
type Manager struct {
	mu      sync.RWMutex
	state   types.NavigationState // Protected by mu
	history HistoryAdapter
	prober  Prober
	origin  *url.URL
	opener  Opener
	now     func() time.Time
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewManager creates a manager in the home state
func NewManager(history HistoryAdapter, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if history == nil {
		history = HistoryFunc(func(types.HistoryEntry) {})
	}
	return &Manager{
		state:   types.NavigationState{RunningApplications: []types.RunningApplication{}},
		history: history,
		now:     time.Now,
		logger:  logger,
	}
}

// WithProber enables the escape hatch for apps served under origin
func (m *Manager) WithProber(p Prober, origin *url.URL) *Manager {
	m.prober = p
	m.origin = origin
	return m
}

// WithOpener sets where escape-hatch URLs are sent
func (m *Manager) WithOpener(o Opener) *Manager {
	m.opener = o
	return m
}

// WithClock overrides the time source used for OpenedAt
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Open launches app, or refocuses it when already running. A non-empty
// suffix (query or sub-path) replaces the suffix of a running entry.
// The probe runs before any lock is taken.
func (m *Manager) Open(ctx context.Context, app types.SubApplication, suffix string) (OpenResult, error) {
	path := app.ResolvedPath()
	if path == "" {
		m.transition("open", "rejected")
		m.logger.Warn("App has no launch target", zap.String("app_id", app.ID))
		return OpenResult{AppID: app.ID}, fmt.Errorf("%w: %s", ErrNoLaunchTarget, app.ID)
	}

	if m.prober != nil && m.origin != nil && m.prober.NeedsTopLevel(ctx, path) {
		target := probe.TopLevelURL(m.origin, probe.SubdomainLabel(app), path, suffix)
		if m.opener != nil {
			m.opener.OpenTopLevel(target)
		}
		m.logger.Info("Opening app in its own context", zap.String("app_id", app.ID), zap.String("url", target))
		if m.metrics != nil {
			m.metrics.RecordOpen("top_level")
		}
		m.transition("open", "external")
		return OpenResult{AppID: app.ID, External: true, URL: target}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.foreground()
	result := OpenResult{AppID: app.ID}

	if idx := m.state.Index(app.ID); idx >= 0 {
		if suffix != "" {
			m.state.RunningApplications[idx].LaunchPath = path + suffix
		}
		result.Refocused = true
	} else {
		m.state.RunningApplications = append(m.state.RunningApplications, types.RunningApplication{
			SubApplication: app,
			OpenedAt:       m.now(),
			LaunchPath:     path + suffix,
		})
		if m.metrics != nil {
			m.metrics.AddRunning(1)
		}
	}

	m.setForeground(app.ID)
	m.state.DrawerOpen = false
	m.state.SwitcherOpen = false
	m.push(types.HistoryApp, app.ID, previous)

	if m.metrics != nil {
		if result.Refocused {
			m.metrics.RecordOpen("refocus")
		} else {
			m.metrics.RecordOpen("embed")
		}
	}
	m.transition("open", "ok")

	m.logger.Debug("App opened",
		zap.String("app_id", app.ID),
		zap.Bool("refocused", result.Refocused),
		zap.Int("running", len(m.state.RunningApplications)),
	)
	return result, nil
}

// Close removes a running app and reports whether it was running. Closing
// the foreground app promotes the most recently opened survivor.
func (m *Manager) Close(appID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.state.Index(appID)
	if idx < 0 {
		m.transition("close", "noop")
		return false
	}

	running := m.state.RunningApplications
	m.state.RunningApplications = append(running[:idx:idx], running[idx+1:]...)

	if fg := m.foreground(); fg == appID {
		if n := len(m.state.RunningApplications); n > 0 {
			m.setForeground(m.state.RunningApplications[n-1].ID)
		} else {
			m.state.ForegroundID = nil
		}
	}

	if fg := m.foreground(); fg != "" {
		m.push(types.HistoryApp, fg, appID)
	} else {
		m.push(types.HistoryHome, "", appID)
	}

	if m.metrics != nil {
		m.metrics.RecordClose()
		m.metrics.AddRunning(-1)
	}
	m.transition("close", "ok")
	return true
}

// SwitchTo foregrounds a running app and closes the switcher
func (m *Manager) SwitchTo(appID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.switchTo(appID)
}

func (m *Manager) switchTo(appID string) error {
	if m.state.Index(appID) < 0 {
		m.transition("switch", "rejected")
		return fmt.Errorf("%w: %s", ErrNotRunning, appID)
	}

	previous := m.foreground()
	m.setForeground(appID)
	m.state.SwitcherOpen = false
	m.push(types.HistoryApp, appID, previous)
	m.transition("switch", "ok")
	return nil
}

// ForegroundNth switches to the nth running app, counting from 1 in
// insertion order
func (m *Manager) ForegroundNth(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n < 1 || n > len(m.state.RunningApplications) {
		m.transition("switch", "rejected")
		return fmt.Errorf("%w: no app in slot %d", ErrNotRunning, n)
	}
	return m.switchTo(m.state.RunningApplications[n-1].ID)
}

// ToggleDrawer flips the drawer and closes the switcher. It returns the new
// drawer state.
func (m *Manager) ToggleDrawer() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.DrawerOpen = !m.state.DrawerOpen
	m.state.SwitcherOpen = false
	m.transition("drawer", "ok")
	return m.state.DrawerOpen
}

// ToggleSwitcher flips the switcher and closes the drawer. It returns the
// new switcher state.
func (m *Manager) ToggleSwitcher() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.SwitcherOpen = !m.state.SwitcherOpen
	m.state.DrawerOpen = false
	m.transition("switcher", "ok")
	return m.state.SwitcherOpen
}

// CloseAllOverlays returns to the home surface. A home entry is pushed only
// if an app was in the foreground.
func (m *Manager) CloseAllOverlays() {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.foreground()
	m.state.DrawerOpen = false
	m.state.SwitcherOpen = false
	m.state.ForegroundID = nil

	if previous != "" {
		m.push(types.HistoryHome, "", previous)
		m.transition("home", "ok")
		return
	}
	m.transition("home", "noop")
}

// HandlePlatformBack replays a back navigation. entry is the history state
// that became current; nil means the initial page state.
//
// An open overlay is dismissed first without touching the foreground. Only
// then does back walk app history: a running app named by entry is
// foregrounded, a closed one falls back to home, and a home entry clears
// the foreground.
func (m *Manager) HandlePlatformBack(entry *types.HistoryEntry) BackResolution {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolution := m.back(entry)
	if m.metrics != nil {
		m.metrics.RecordBack(string(resolution))
	}
	m.logger.Debug("Platform back", zap.String("resolution", string(resolution)))
	return resolution
}

func (m *Manager) back(entry *types.HistoryEntry) BackResolution {
	if m.state.DrawerOpen || m.state.SwitcherOpen {
		m.state.DrawerOpen = false
		m.state.SwitcherOpen = false
		return BackOverlay
	}

	if entry != nil && entry.Type == types.HistoryApp && entry.AppID != "" {
		if m.state.Index(entry.AppID) < 0 {
			if m.state.ForegroundID == nil {
				return BackNoop
			}
			m.state.ForegroundID = nil
			return BackHomeFallback
		}
		if m.foreground() == entry.AppID {
			return BackNoop
		}
		m.setForeground(entry.AppID)
		return BackSwitched
	}

	if m.state.ForegroundID == nil {
		return BackNoop
	}
	m.state.ForegroundID = nil
	return BackHome
}

// UpdateCatalog refreshes the descriptors of running apps from a new
// catalog. Launch paths and open times are kept; apps missing from the
// catalog keep running.
func (m *Manager) UpdateCatalog(apps []types.SubApplication) {
	byID := make(map[string]types.SubApplication, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, running := range m.state.RunningApplications {
		if app, ok := byID[running.ID]; ok {
			m.state.RunningApplications[i].SubApplication = app
		}
	}
}

// State returns a copy of the navigation state
func (m *Manager) State() types.NavigationState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// Running reports whether appID is in the running set
func (m *Manager) Running(appID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Index(appID) >= 0
}

// Foreground returns the foreground app id, or "" on the home surface
func (m *Manager) Foreground() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.foreground()
}

// Stats returns navigation statistics
func (m *Manager) Stats() types.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := m.state.Clone()
	stats := types.Stats{
		RunningApps:  len(state.RunningApplications),
		ForegroundID: state.ForegroundID,
		DrawerOpen:   state.DrawerOpen,
		SwitcherOpen: state.SwitcherOpen,
	}
	if d, ok := m.history.(interface{ Depth() int }); ok {
		stats.HistoryDepth = d.Depth()
	}
	return stats
}

// foreground returns the foreground id (must hold lock)
func (m *Manager) foreground() string {
	if m.state.ForegroundID == nil {
		return ""
	}
	return *m.state.ForegroundID
}

// setForeground stores a private copy of appID (must hold lock)
func (m *Manager) setForeground(appID string) {
	fg := appID
	m.state.ForegroundID = &fg
}

// push sends a history entry (must hold lock)
func (m *Manager) push(kind types.HistoryType, appID, previous string) {
	m.history.PushEntry(types.HistoryEntry{
		ID:            id.NewEntryID().String(),
		Type:          kind,
		AppID:         appID,
		PreviousAppID: previous,
	})
}

func (m *Manager) transition(operation, outcome string) {
	if m.metrics != nil {
		m.metrics.RecordTransition(operation, outcome)
	}
}
