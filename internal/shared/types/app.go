package types

import (
	"strings"
	"time"
)

// WidgetPathSentinel marks a widget that is rendered from the app's own path
// instead of inline markup.
const WidgetPathSentinel = "@path"

// SubApplication is a catalog entry describing an installable sub-application
type SubApplication struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	IconImage     string `json:"iconImage,omitempty"`
	LaunchPath    string `json:"launchPath,omitempty"`
	ProcessName   string `json:"processName,omitempty"`
	PublisherName string `json:"publisherName,omitempty"`
	WidgetContent string `json:"widgetContent,omitempty"`
	Order         int    `json:"order"`
	Favorite      bool   `json:"favorite"`
}

// ResolvedPath returns the launch path of the app. An explicit LaunchPath
// wins; otherwise the path is derived from the (process, publisher) pair.
// An empty result means the app has nothing to open.
func (a SubApplication) ResolvedPath() string {
	if a.LaunchPath != "" {
		return a.LaunchPath
	}
	if a.ProcessName != "" && a.PublisherName != "" {
		return "/app/" + a.PublisherName + "/" + a.ProcessName + "/"
	}
	return ""
}

// HasWidget reports whether the app contributes a widget
func (a SubApplication) HasWidget() bool {
	return strings.TrimSpace(a.WidgetContent) != ""
}

// WidgetUsesPath reports whether the widget is backed by the app's own path
func (a SubApplication) WidgetUsesPath() bool {
	return a.WidgetContent == WidgetPathSentinel
}

// RunningApplication is a sub-application opened in the current session
type RunningApplication struct {
	SubApplication
	OpenedAt time.Time `json:"openedAt"`
	// Path currently loaded, including any suffix supplied at open time.
	// Shadows SubApplication.LaunchPath in JSON.
	LaunchPath string `json:"launchPath"`
}

// NavigationState is the process table of the shell
type NavigationState struct {
	RunningApplications []RunningApplication `json:"runningApplications"`
	ForegroundID        *string              `json:"foregroundId"`
	DrawerOpen          bool                 `json:"drawerOpen"`
	SwitcherOpen        bool                 `json:"switcherOpen"`
}

// IsHome reports whether no app is foregrounded
func (s NavigationState) IsHome() bool {
	return s.ForegroundID == nil
}

// Index returns the position of id in the running set, or -1
func (s NavigationState) Index(id string) int {
	for i, app := range s.RunningApplications {
		if app.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the state
func (s NavigationState) Clone() NavigationState {
	out := s
	out.RunningApplications = append([]RunningApplication(nil), s.RunningApplications...)
	if s.ForegroundID != nil {
		id := *s.ForegroundID
		out.ForegroundID = &id
	}
	return out
}

// Stats contains navigation statistics
type Stats struct {
	RunningApps  int     `json:"running_apps"`
	ForegroundID *string `json:"foreground_id,omitempty"`
	DrawerOpen   bool    `json:"drawer_open"`
	SwitcherOpen bool    `json:"switcher_open"`
	HistoryDepth int     `json:"history_depth"`
}
