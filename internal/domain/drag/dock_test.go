package drag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
)

// A 4-slot dock along the bottom of an 800x600 viewport.
var testDock = DockGeometry{
	Dock: geometry.Rect{Point: geometry.Point{X: 200, Y: 500}, Size: geometry.Size{Width: 400, Height: 100}},
	Slots: []geometry.Rect{
		{Point: geometry.Point{X: 200, Y: 510}, Size: geometry.Size{Width: 100, Height: 80}},
		{Point: geometry.Point{X: 300, Y: 510}, Size: geometry.Size{Width: 100, Height: 80}},
		{Point: geometry.Point{X: 400, Y: 510}, Size: geometry.Size{Width: 100, Height: 80}},
		{Point: geometry.Point{X: 500, Y: 510}, Size: geometry.Size{Width: 100, Height: 80}},
	},
}

func TestDockGeometry(t *testing.T) {
	tests := []struct {
		name   string
		p      geometry.Point
		inDock bool
		slot   int
	}{
		{"first slot", geometry.Point{X: 250, Y: 550}, true, 0},
		{"last slot", geometry.Point{X: 599, Y: 550}, true, 3},
		{"dock padding", geometry.Point{X: 250, Y: 505}, true, -1},
		{"outside", geometry.Point{X: 100, Y: 100}, false, -1},
		{"right edge exclusive", geometry.Point{X: 600, Y: 550}, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inDock, slot := testDock.ElementAtPoint(tt.p)
			assert.Equal(t, tt.inDock, inDock)
			assert.Equal(t, tt.slot, slot)
		})
	}
}

func TestDockDrop(t *testing.T) {
	c, store := newTestController(t)
	c.SetEditMode(true)
	store.AddToDock("a", -1)
	store.AddToDock("b", -1)

	require.True(t, c.DockDragStart("c"))
	drop, ok := c.DockDrop(1)
	require.True(t, ok)
	assert.True(t, drop.Docked)
	assert.Equal(t, []string{"a", "c", "b"}, store.Record().DockItemIDs)

	require.True(t, c.DockDragStart("b"))
	_, _ = c.DockDrop(0)
	assert.Equal(t, []string{"b", "a", "c"}, store.Record().DockItemIDs)
}

func TestDockDropOutside(t *testing.T) {
	c, store := newTestController(t)
	c.SetEditMode(true)
	store.AddToDock("a", -1)

	c.DockDragStart("a")
	drop, ok := c.DockDropOutside(geometry.Point{X: 400, Y: 580})
	require.True(t, ok)

	assert.False(t, drop.Docked)
	require.NotNil(t, drop.Position)
	assert.Equal(t, geometry.Point{X: 364, Y: 428}, *drop.Position)
	assert.Empty(t, store.Record().DockItemIDs)
	p, _ := store.Position("a")
	assert.Equal(t, *drop.Position, p)
	assert.Equal(t, []string{"a"}, store.FloatingItems())
}

func TestDockDragRequiresEditMode(t *testing.T) {
	c, _ := newTestController(t)
	assert.False(t, c.DockDragStart("a"))
	assert.False(t, c.DockTouchStart("a", geometry.Point{}))
}

func TestDockTouchDropIntoSlot(t *testing.T) {
	c, store := newTestController(t)
	c.SetEditMode(true)
	store.AddToDock("a", -1)
	store.AddToDock("b", -1)
	store.AddToDock("c", -1)

	require.True(t, c.DockTouchStart("d", geometry.Point{X: 100, Y: 100}))
	preview, ok := c.DockTouchMove(geometry.Point{X: 340, Y: 540})
	require.True(t, ok)
	assert.Equal(t, geometry.Point{X: 304, Y: 504}, preview)

	drop, ok := c.DockTouchEnd(geometry.Point{X: 350, Y: 550}, testDock)
	require.True(t, ok)
	assert.True(t, drop.Docked)
	assert.Equal(t, 1, drop.Slot)
	assert.Equal(t, []string{"a", "d", "b", "c"}, store.Record().DockItemIDs)
}

func TestDockTouchDropOnDockPaddingAppends(t *testing.T) {
	c, store := newTestController(t)
	c.SetEditMode(true)
	store.AddToDock("a", -1)

	c.DockTouchStart("b", geometry.Point{})
	drop, _ := c.DockTouchEnd(geometry.Point{X: 250, Y: 505}, testDock)
	assert.Equal(t, -1, drop.Slot)
	assert.Equal(t, []string{"a", "b"}, store.Record().DockItemIDs)
}

func TestDockTouchDropOutside(t *testing.T) {
	c, store := newTestController(t)
	c.SetEditMode(true)
	store.AddToDock("a", -1)

	c.DockTouchStart("a", geometry.Point{X: 250, Y: 550})
	drop, ok := c.DockTouchEnd(geometry.Point{X: 100, Y: 100}, testDock)
	require.True(t, ok)

	assert.False(t, drop.Docked)
	assert.Equal(t, geometry.Point{X: 64, Y: 64}, *drop.Position)
	assert.Empty(t, store.Record().DockItemIDs)
}

func TestDockTouchWithoutStart(t *testing.T) {
	c, _ := newTestController(t)
	c.SetEditMode(true)

	_, ok := c.DockTouchMove(geometry.Point{})
	assert.False(t, ok)
	_, ok = c.DockTouchEnd(geometry.Point{}, testDock)
	assert.False(t, ok)

	c.DockDragStart("a")
	_, ok = c.DockTouchEnd(geometry.Point{}, testDock)
	assert.False(t, ok, "pointer dock drags are not ended by touch")
	c.DockDragEnd()
	_, ok = c.DockDrop(0)
	assert.False(t, ok)
}
