package shell

import (
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Snapshot is the renderable state of one shell
type Snapshot struct {
	Installation  string                `json:"installation"`
	Navigation    types.NavigationState `json:"navigation"`
	Layout        types.LayoutRecord    `json:"layout"`
	FloatingItems []string              `json:"floatingItems"`
	// WidgetSizes holds the effective size of every visible catalog widget
	WidgetSizes map[string]geometry.Size `json:"widgetSizes"`
	Viewport    geometry.Size            `json:"viewport"`
	EditMode    bool                     `json:"editMode"`
	Stats       types.Stats              `json:"stats"`
}

// snapshot builds the current state (must hold lock)
func (s *Shell) snapshot() Snapshot {
	record := s.layout.Record()

	var widgets []string
	for _, app := range s.catalog.List() {
		if !app.HasWidget() {
			continue
		}
		if ws, ok := record.WidgetSettings[app.ID]; ok && ws.Hidden {
			continue
		}
		widgets = append(widgets, app.ID)
	}

	sizes := make(map[string]geometry.Size, len(widgets))
	for _, id := range widgets {
		sizes[id] = s.layout.EffectiveWidgetSize(id, len(widgets))
	}

	return Snapshot{
		Installation:  s.installation,
		Navigation:    s.nav.State(),
		Layout:        record,
		FloatingItems: record.FloatingItems(),
		WidgetSizes:   sizes,
		Viewport:      s.layout.Viewport(),
		EditMode:      s.drag.EditMode(),
		Stats:         s.nav.Stats(),
	}
}
