package types

import "github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"

// DockCapacity is the number of slots in the dock
const DockCapacity = 4

// WidgetSettings holds per-widget state. Hidden and geometry are independent:
// hiding a widget keeps its saved position and size.
type WidgetSettings struct {
	Hidden   bool            `json:"hidden,omitempty"`
	Position *geometry.Point `json:"position,omitempty"`
	Size     *geometry.Size  `json:"size,omitempty"`
	// Resized is set once the user explicitly resizes the widget. Only then
	// does Size override the responsive default.
	Resized bool `json:"resized,omitempty"`
}

// LayoutRecord is the persisted layout of one installation
type LayoutRecord struct {
	HomeItemIDs        []string                  `json:"homeItemIds"`
	DockItemIDs        []string                  `json:"dockItemIds"`
	Positions          map[string]geometry.Point `json:"positions"`
	WidgetSettings     map[string]WidgetSettings `json:"widgetSettings"`
	BackgroundImageURL *string                   `json:"backgroundImageUrl"`
	Initialized        bool                      `json:"initialized"`
}

// NewLayoutRecord returns an empty record with non-nil collections
func NewLayoutRecord() LayoutRecord {
	return LayoutRecord{
		HomeItemIDs:    []string{},
		DockItemIDs:    []string{},
		Positions:      map[string]geometry.Point{},
		WidgetSettings: map[string]WidgetSettings{},
	}
}

// Normalize replaces nil collections so a record decoded from partial JSON
// is safe to mutate.
func (r *LayoutRecord) Normalize() {
	if r.HomeItemIDs == nil {
		r.HomeItemIDs = []string{}
	}
	if r.DockItemIDs == nil {
		r.DockItemIDs = []string{}
	}
	if r.Positions == nil {
		r.Positions = map[string]geometry.Point{}
	}
	if r.WidgetSettings == nil {
		r.WidgetSettings = map[string]WidgetSettings{}
	}
	if len(r.DockItemIDs) > DockCapacity {
		r.DockItemIDs = r.DockItemIDs[:DockCapacity]
	}
}

// Clone returns a deep copy of the record
func (r LayoutRecord) Clone() LayoutRecord {
	out := LayoutRecord{
		HomeItemIDs:    append([]string{}, r.HomeItemIDs...),
		DockItemIDs:    append([]string{}, r.DockItemIDs...),
		Positions:      make(map[string]geometry.Point, len(r.Positions)),
		WidgetSettings: make(map[string]WidgetSettings, len(r.WidgetSettings)),
		Initialized:    r.Initialized,
	}
	for k, v := range r.Positions {
		out.Positions[k] = v
	}
	for k, v := range r.WidgetSettings {
		if v.Position != nil {
			p := *v.Position
			v.Position = &p
		}
		if v.Size != nil {
			s := *v.Size
			v.Size = &s
		}
		out.WidgetSettings[k] = v
	}
	if r.BackgroundImageURL != nil {
		bg := *r.BackgroundImageURL
		out.BackgroundImageURL = &bg
	}
	return out
}

// InDock reports whether id occupies a dock slot
func (r LayoutRecord) InDock(id string) bool {
	return contains(r.DockItemIDs, id)
}

// OnHome reports whether id is pinned to the home surface
func (r LayoutRecord) OnHome(id string) bool {
	return contains(r.HomeItemIDs, id)
}

// FloatingItems returns home items that are not rendered in the dock
func (r LayoutRecord) FloatingItems() []string {
	out := make([]string, 0, len(r.HomeItemIDs))
	for _, id := range r.HomeItemIDs {
		if !r.InDock(id) {
			out = append(out, id)
		}
	}
	return out
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
