package drag

import (
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
)

// DockLocator hit-tests points against the rendered dock
type DockLocator interface {
	// ElementAtPoint reports whether p is over the dock and, when it is over
	// a slot, the slot index (-1 otherwise)
	ElementAtPoint(p geometry.Point) (inDock bool, slot int)
}

// DockGeometry is the dock rectangle and its slot rectangles as rendered
type DockGeometry struct {
	Dock  geometry.Rect   `json:"dock"`
	Slots []geometry.Rect `json:"slots"`
}

// ElementAtPoint implements DockLocator by containment
func (g DockGeometry) ElementAtPoint(p geometry.Point) (bool, int) {
	if !g.Dock.Contains(p) {
		return false, -1
	}
	for i, slot := range g.Slots {
		if slot.Contains(p) {
			return true, i
		}
	}
	return true, -1
}

// Drop describes the outcome of a dock drag
type Drop struct {
	ItemID string `json:"itemId"`
	Docked bool   `json:"docked"`
	// Slot is the insertion index; -1 appends
	Slot     int             `json:"slot"`
	Position *geometry.Point `json:"position,omitempty"`
}

type dockDrag struct {
	itemID  string
	touch   bool
	preview geometry.Point
}

// DockDragStart begins a drop-target drag of an icon. It is ignored outside
// edit mode.
func (c *Controller) DockDragStart(itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editMode || itemID == "" {
		return false
	}
	c.dock = &dockDrag{itemID: itemID}
	return true
}

// DockDrop inserts the dragged icon into the dock at slot
func (c *Controller) DockDrop(slot int) (Drop, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dock == nil {
		return Drop{}, false
	}
	drop := c.dropInDock(c.dock.itemID, slot)
	c.dock = nil
	return drop, true
}

// DockDropOutside takes the dragged icon out of the dock and places it at p
func (c *Controller) DockDropOutside(p geometry.Point) (Drop, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dock == nil {
		return Drop{}, false
	}
	drop := c.dropOnHome(c.dock.itemID, p)
	c.dock = nil
	return drop, true
}

// DockDragEnd abandons a dock drag that was not dropped anywhere
func (c *Controller) DockDragEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dock = nil
}

// DockTouchStart designates the icon a touch dock drag carries
func (c *Controller) DockTouchStart(itemID string, p geometry.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editMode || itemID == "" {
		return false
	}
	c.dock = &dockDrag{itemID: itemID, touch: true, preview: p.Sub(c.cfg.ItemSize.Half())}
	return true
}

// DockTouchMove moves the floating preview and returns its top-left corner
func (c *Controller) DockTouchMove(p geometry.Point) (geometry.Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dock == nil || !c.dock.touch {
		return geometry.Point{}, false
	}
	c.dock.preview = p.Sub(c.cfg.ItemSize.Half())
	return c.dock.preview, true
}

// DockTouchEnd hit-tests the release point. Over the dock the icon is
// inserted at the slot under the finger; elsewhere it leaves the dock and
// is placed centered on the finger, above the dock band.
func (c *Controller) DockTouchEnd(p geometry.Point, locator DockLocator) (Drop, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dock == nil || !c.dock.touch {
		return Drop{}, false
	}
	itemID := c.dock.itemID
	c.dock = nil

	if inDock, slot := locator.ElementAtPoint(p); inDock {
		drop := c.dropInDock(itemID, slot)
		c.record("dock_touch")
		return drop, true
	}
	drop := c.dropOnHome(itemID, p)
	c.record("dock_touch")
	return drop, true
}

// dropInDock must hold lock
func (c *Controller) dropInDock(itemID string, slot int) Drop {
	c.layout.AddToDock(itemID, slot)
	c.record("dock")
	return Drop{ItemID: itemID, Docked: true, Slot: slot}
}

// dropOnHome must hold lock
func (c *Controller) dropOnHome(itemID string, p geometry.Point) Drop {
	c.layout.RemoveFromDock(itemID)

	bounds := geometry.Bounds{Viewport: c.layout.Viewport(), Bottom: c.cfg.DockReservation}
	pos := geometry.Clamp(p.Sub(c.cfg.ItemSize.Half()), c.cfg.ItemSize, bounds)
	c.layout.MoveItem(itemID, pos)
	c.record("undock")
	return Drop{ItemID: itemID, Slot: -1, Position: &pos}
}
