// Package layout owns the persisted arrangement of the home surface.
//
// The Store is a set of synchronous reducers over one LayoutRecord:
//   - Home membership and free icon positions
//   - The four slot dock (reordering is remove plus reinsert)
//   - Widget visibility, position and size
//   - The background image reference
//
// Every reducer computes the next record from a copy and commits it in one
// step, then hands it to the Persister. A failed save is logged and the
// in-memory record stays authoritative. A missing or unreadable record on
// load degrades to an empty layout.
//
// Geometry:
//
// Dimensions carries the fixed reservations of the surface (dock band,
// search bar, spacing, icon size, widget caps). WidgetSize computes the
// responsive widget size for the current viewport and visible widget count;
// Resize snaps stored icon and widget positions back inside a new viewport.
//
// Example Usage:
//
//	store := layout.NewStore(layout.DefaultDimensions(), logger).
//	    WithPersister(layout.NewKVPersister(kv, installation))
//	store.Load(ctx)
//	store.AddToDock("settings:settings:sys", 0)
//	store.Resize(geometry.Size{Width: 390, Height: 844})
package layout
