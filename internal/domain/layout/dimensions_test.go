package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
)

func TestWidgetSize(t *testing.T) {
	d := DefaultDimensions()

	tests := []struct {
		name     string
		n        int
		viewport geometry.Size
		want     geometry.Size
	}{
		{"wide capped", 2, geometry.Size{Width: 1280, Height: 800}, geometry.Size{Width: 400, Height: 300}},
		{"wide shared", 4, geometry.Size{Width: 1280, Height: 800}, geometry.Size{Width: 290, Height: 300}},
		{"narrow column", 2, geometry.Size{Width: 390, Height: 844}, geometry.Size{Width: 358, Height: 274}},
		{"zero treated as one", 0, geometry.Size{Width: 390, Height: 844}, geometry.Size{Width: 358, Height: 564}},
		{"tiny viewport", 3, geometry.Size{Width: 100, Height: 100}, geometry.Size{Width: 68, Height: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.WidgetSize(tt.n, tt.viewport))
		})
	}
}

func TestWideWidgetWidthCaps(t *testing.T) {
	d := DefaultDimensions()

	for w := d.NarrowBreakpoint; w <= 3840; w += 97 {
		for _, h := range []float64{480, 800, 1440} {
			for n := 1; n <= 6; n++ {
				vp := geometry.Size{Width: w, Height: h}
				size := d.WidgetSize(n, vp)
				assert.LessOrEqual(t, size.Width, math.Min(d.MaxWidgetWidth, w/3))
				assert.LessOrEqual(t, size.Height, d.MaxWidgetHeight)
			}
		}
	}
}

func TestNarrow(t *testing.T) {
	d := DefaultDimensions()
	assert.True(t, d.Narrow(geometry.Size{Width: 767}))
	assert.False(t, d.Narrow(geometry.Size{Width: 768}))
}

func TestDimensionsFromConfig(t *testing.T) {
	assert.Equal(t, DefaultDimensions(), DimensionsFromConfig(config.Default().Layout))
}
