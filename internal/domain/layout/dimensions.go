package layout

import (
	"math"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
)

// Dimensions are the fixed measurements of the home surface in CSS pixels
type Dimensions struct {
	DockHeight       float64 `json:"dockHeight"`
	SearchHeight     float64 `json:"searchHeight"`
	Spacing          float64 `json:"spacing"`
	IconSize         float64 `json:"iconSize"`
	NarrowBreakpoint float64 `json:"narrowBreakpoint"`
	MaxWidgetWidth   float64 `json:"maxWidgetWidth"`
	MaxWidgetHeight  float64 `json:"maxWidgetHeight"`
	GestureZone      float64 `json:"gestureZone"`
}

// DefaultDimensions returns the built-in measurements
func DefaultDimensions() Dimensions {
	return Dimensions{
		DockHeight:       100,
		SearchHeight:     60,
		Spacing:          16,
		IconSize:         72,
		NarrowBreakpoint: 768,
		MaxWidgetWidth:   400,
		MaxWidgetHeight:  300,
		GestureZone:      40,
	}
}

// DimensionsFromConfig converts the layout configuration group
func DimensionsFromConfig(cfg config.LayoutConfig) Dimensions {
	return Dimensions{
		DockHeight:       cfg.DockHeight,
		SearchHeight:     cfg.SearchHeight,
		Spacing:          cfg.Spacing,
		IconSize:         cfg.IconSize,
		NarrowBreakpoint: cfg.NarrowBreakpoint,
		MaxWidgetWidth:   cfg.MaxWidgetWidth,
		MaxWidgetHeight:  cfg.MaxWidgetHeight,
		GestureZone:      cfg.GestureZone,
	}
}

// Icon returns the size of a home icon
func (d Dimensions) Icon() geometry.Size {
	return geometry.Size{Width: d.IconSize, Height: d.IconSize}
}

// IconBounds is the legal area for free-floating icons: the whole viewport
// minus the dock band.
func (d Dimensions) IconBounds(viewport geometry.Size) geometry.Bounds {
	return geometry.Bounds{Viewport: viewport, Bottom: d.DockHeight}
}

// PlacementBounds is where new items are placed: below the search bar and
// above the dock.
func (d Dimensions) PlacementBounds(viewport geometry.Size) geometry.Bounds {
	return geometry.Bounds{Viewport: viewport, Top: d.SearchHeight, Bottom: d.DockHeight}
}

// Narrow reports whether the viewport uses the single column widget layout
func (d Dimensions) Narrow(viewport geometry.Size) bool {
	return viewport.Width < d.NarrowBreakpoint
}

// WidgetSize computes the default size of each of n visible widgets.
//
// Narrow viewports stack widgets in one column at full width, sharing the
// height left after the search bar, one icon row and the dock. Wide viewports
// put widgets in one row sharing the width left after the gesture zone; each
// is capped at MaxWidgetWidth and a third of the viewport width, and the
// height is capped at MaxWidgetHeight.
func (d Dimensions) WidgetSize(n int, viewport geometry.Size) geometry.Size {
	if n < 1 {
		n = 1
	}
	count := float64(n)
	available := viewport.Height - d.SearchHeight - d.DockHeight - (d.IconSize + d.Spacing)

	if d.Narrow(viewport) {
		return geometry.Size{
			Width:  floor(viewport.Width - 2*d.Spacing),
			Height: floor((available - d.Spacing*(count+1)) / count),
		}
	}

	width := (viewport.Width - d.GestureZone - d.Spacing*(count+1)) / count
	width = math.Min(width, math.Min(d.MaxWidgetWidth, viewport.Width/3))
	height := math.Min(d.MaxWidgetHeight, available-2*d.Spacing)

	return geometry.Size{Width: floor(width), Height: floor(height)}
}

func floor(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Floor(v)
}
