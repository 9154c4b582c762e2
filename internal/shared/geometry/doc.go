// Package geometry provides the pure positioning math used by the shell.
//
// Everything here is side-effect free:
//   - Point, Size and Rect value types shared by layout and drag code
//   - Bounds: a viewport minus reserved regions (search bar on top, dock below)
//   - Clamp helpers that keep an item fully inside its bounds
//   - Initial grid placement for N items
//   - An injectable random source for first-time placement
//
// Example Usage:
//
//	b := geometry.Bounds{Viewport: geometry.Size{Width: 1280, Height: 800}, Bottom: 100}
//	p := geometry.Clamp(geometry.Point{X: 1300, Y: -4}, geometry.Size{Width: 72, Height: 72}, b)
package geometry
