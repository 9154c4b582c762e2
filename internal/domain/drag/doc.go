// Package drag turns pointer and touch sequences into layout updates.
//
// Free-floating icons follow a small state machine per input source:
//
//	idle --Down--> pressed --Move past threshold--> dragging --Up--> idle
//
// Sessions exist only in edit mode; leaving edit mode drops them. Pointer
// and touch sessions are tracked independently so a mouse and a finger
// never interfere. While dragging, the grab offset is subtracted from every
// move and the result is clamped above the dock before it is written to the
// layout, so the icon tracks the input live. Releasing ends the gesture at
// the last position.
//
// Dock reordering has its own flow. Pointer users get drop-target semantics
// (DockDragStart, DockDrop, DockDropOutside); touch users get the same
// outcome synthesized from start, move and end, with the drop point
// hit-tested against the dock's slot rectangles through a DockLocator.
//
// Swipe tracks recent-apps cards: a swipe past the threshold dismisses the
// card, anything shorter snaps back to zero.
package drag
