package shell

import (
	"encoding/json"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/drag"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/keyboard"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/navigation"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/utils"
)

// EventType names an inbound event
type EventType string

const (
	// Navigation
	EventOpen     EventType = "open"
	EventClose    EventType = "close"
	EventSwitch   EventType = "switch"
	EventDrawer   EventType = "drawer"
	EventSwitcher EventType = "switcher"
	EventHome     EventType = "home"
	EventBack     EventType = "back"
	EventKey      EventType = "key"
	EventMessage  EventType = "message"

	// Free drag
	EventEditMode EventType = "edit_mode"
	EventDragDown EventType = "drag_down"
	EventDragMove EventType = "drag_move"
	EventDragUp   EventType = "drag_up"

	// Dock drag
	EventDockDragStart   EventType = "dock_drag_start"
	EventDockDrop        EventType = "dock_drop"
	EventDockDropOutside EventType = "dock_drop_outside"
	EventDockDragEnd     EventType = "dock_drag_end"
	EventDockTouchStart  EventType = "dock_touch_start"
	EventDockTouchMove   EventType = "dock_touch_move"
	EventDockTouchEnd    EventType = "dock_touch_end"

	// Recent-apps cards
	EventSwipeStart EventType = "swipe_start"
	EventSwipeMove  EventType = "swipe_move"
	EventSwipeEnd   EventType = "swipe_end"

	// Layout
	EventResize          EventType = "resize"
	EventAddToHome       EventType = "add_to_home"
	EventRemoveFromHome  EventType = "remove_from_home"
	EventMoveItem        EventType = "move_item"
	EventAddToDock       EventType = "add_to_dock"
	EventRemoveFromDock  EventType = "remove_from_dock"
	EventToggleWidget    EventType = "toggle_widget"
	EventWidgetPosition  EventType = "widget_position"
	EventWidgetSize      EventType = "widget_size"
	EventBackgroundImage EventType = utils.BackgroundEventType
)

// Event is one inbound event. Only the fields its type needs are read.
type Event struct {
	Type EventType `json:"type"`

	AppID  string `json:"appId,omitempty"`
	ItemID string `json:"itemId,omitempty"`
	Suffix string `json:"suffix,omitempty"`

	// History is the platform state that became current on back. When it
	// is absent the shell's own history stack is replayed.
	History *types.HistoryEntry `json:"history,omitempty"`

	Key   *keyboard.Event    `json:"key,omitempty"`
	Input *drag.Input        `json:"input,omitempty"`
	Dock  *drag.DockGeometry `json:"dock,omitempty"`

	Point    *geometry.Point `json:"point,omitempty"`
	Size     *geometry.Size  `json:"size,omitempty"`
	Viewport *geometry.Size  `json:"viewport,omitempty"`
	Index    *int            `json:"index,omitempty"`
	Enabled  *bool           `json:"enabled,omitempty"`
	URL      *string         `json:"url,omitempty"`

	// Origin and Data carry a cross-document message
	Origin string          `json:"origin,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Validate checks the free-form fields of an event before it is applied
func (e Event) Validate() error {
	if err := utils.ValidateAppID(e.AppID, "appId", false); err != nil {
		return err
	}
	if err := utils.ValidateAppID(e.ItemID, "itemId", false); err != nil {
		return err
	}
	if e.Input != nil {
		if err := utils.ValidateAppID(e.Input.ItemID, "input.itemId", false); err != nil {
			return err
		}
	}
	if err := utils.ValidateURL(e.Suffix, "suffix"); err != nil {
		return err
	}
	if e.Type == EventMessage {
		return utils.ValidateMessageData(e.Data)
	}
	return nil
}

// Result reports what an event did, along with the resulting snapshot
type Result struct {
	Open     *navigation.OpenResult    `json:"open,omitempty"`
	Back     navigation.BackResolution `json:"back,omitempty"`
	Action   keyboard.Action           `json:"action,omitempty"`
	Release  *drag.Release             `json:"release,omitempty"`
	Drop     *drag.Drop                `json:"drop,omitempty"`
	Position *geometry.Point           `json:"position,omitempty"`
	Swipe    *drag.SwipeResult         `json:"swipe,omitempty"`
	Offset   *float64                  `json:"offset,omitempty"`
	Moved    int                       `json:"moved,omitempty"`
	Changed  bool                      `json:"changed"`
	Snapshot Snapshot                  `json:"snapshot"`
}
