// Package keyboard maps single-key shortcuts to navigation actions.
//
// Letters toggle the drawer and switcher or return home; digits 1-9
// foreground the nth running app. Keys typed into text fields and chords
// with Ctrl, Alt or Meta are never treated as shortcuts.
package keyboard

import (
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/config"
)

// Action is what a key resolves to
type Action string

const (
	ActionNone       Action = ""
	ActionDrawer     Action = "drawer"
	ActionSwitcher   Action = "switcher"
	ActionHome       Action = "home"
	ActionForeground Action = "foreground"
)

// Event is a key press as reported by the page
type Event struct {
	Key  string `json:"key"`
	Ctrl bool   `json:"ctrl,omitempty"`
	Alt  bool   `json:"alt,omitempty"`
	Meta bool   `json:"meta,omitempty"`
	// Target is the tag name of the focused element
	Target string `json:"target,omitempty"`
	// Editable is set when the focused element is content-editable
	Editable bool `json:"editable,omitempty"`
}

// InTextField reports whether the event targets an element that accepts typing
func (e Event) InTextField() bool {
	if e.Editable {
		return true
	}
	switch strings.ToLower(e.Target) {
	case "input", "textarea", "select":
		return true
	}
	return false
}

// Bindings are the letters bound to overlay actions
type Bindings struct {
	Drawer   string
	Switcher string
	Home     string
}

// DefaultBindings returns a/s/h
func DefaultBindings() Bindings {
	return Bindings{Drawer: "a", Switcher: "s", Home: "h"}
}

// BindingsFromConfig reads the key bindings from the shell configuration
func BindingsFromConfig(cfg config.ShellConfig) Bindings {
	return Bindings{Drawer: cfg.DrawerKey, Switcher: cfg.SwitcherKey, Home: cfg.HomeKey}
}

// Resolve maps an event to an action. For ActionForeground the returned
// slot is 1-9.
func (b Bindings) Resolve(e Event) (Action, int) {
	if e.InTextField() || e.Ctrl || e.Alt || e.Meta {
		return ActionNone, 0
	}
	if len(e.Key) != 1 {
		return ActionNone, 0
	}

	if c := e.Key[0]; c >= '1' && c <= '9' {
		return ActionForeground, int(c - '0')
	}

	switch key := strings.ToLower(e.Key); key {
	case strings.ToLower(b.Drawer):
		return ActionDrawer, 0
	case strings.ToLower(b.Switcher):
		return ActionSwitcher, 0
	case strings.ToLower(b.Home):
		return ActionHome, 0
	}
	return ActionNone, 0
}

// Navigator is the part of the navigation manager shortcuts drive
type Navigator interface {
	ToggleDrawer() bool
	ToggleSwitcher() bool
	CloseAllOverlays()
	ForegroundNth(n int) error
}

// Handler applies shortcuts to a Navigator
type Handler struct {
	bindings Bindings
	nav      Navigator
	logger   *zap.Logger
}

// NewHandler creates a shortcut handler
func NewHandler(bindings Bindings, nav Navigator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{bindings: bindings, nav: nav, logger: logger}
}

// Handle applies the action bound to e and returns it. A digit for an
// empty slot returns the navigator's error and changes nothing.
func (h *Handler) Handle(e Event) (Action, error) {
	action, slot := h.bindings.Resolve(e)
	switch action {
	case ActionDrawer:
		h.nav.ToggleDrawer()
	case ActionSwitcher:
		h.nav.ToggleSwitcher()
	case ActionHome:
		h.nav.CloseAllOverlays()
	case ActionForeground:
		if err := h.nav.ForegroundNth(slot); err != nil {
			h.logger.Debug("No app in slot", zap.Int("slot", slot))
			return action, err
		}
	}
	return action, nil
}
