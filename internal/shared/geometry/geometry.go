package geometry

import "math"

// Point is a position in CSS pixels relative to the viewport origin
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - o
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Add returns p + o
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Distance returns the euclidean distance between p and o
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Size is a width/height pair in CSS pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Half returns the offset of the center of an item of this size
func (s Size) Half() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// Rect is an axis-aligned rectangle
type Rect struct {
	Point
	Size
}

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Center returns the center point of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Bounds is a viewport with reserved bands at the top (search bar) and
// bottom (dock). Items clamped into Bounds never overlap the reservations.
type Bounds struct {
	Viewport Size
	Top      float64
	Bottom   float64
}

// MaxPosition returns the largest legal top-left corner for an item.
// Negative ranges collapse to the lower bound.
func (b Bounds) MaxPosition(item Size) Point {
	return Point{
		X: math.Max(0, b.Viewport.Width-item.Width),
		Y: math.Max(b.Top, b.Viewport.Height-item.Height-b.Bottom),
	}
}

// Clamp snaps p to the nearest position that keeps an item of the given
// size inside b.
func Clamp(p Point, item Size, b Bounds) Point {
	max := b.MaxPosition(item)
	return Point{
		X: clamp(p.X, 0, max.X),
		Y: clamp(p.Y, b.Top, max.Y),
	}
}

// ClampToViewport clamps p so that p + item stays inside the viewport.
func ClampToViewport(p Point, item Size, viewport Size) Point {
	return Clamp(p, item, Bounds{Viewport: viewport})
}

// InBounds reports whether p is already a legal position for item.
func InBounds(p Point, item Size, b Bounds) bool {
	return Clamp(p, item, b) == p
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GridPositions lays out n cells row-major starting below top, wrapping when
// a row runs out of horizontal space. The first column starts at spacing.
func GridPositions(n int, viewport Size, cell Size, spacing, top float64) []Point {
	if n <= 0 {
		return nil
	}

	pitchX := cell.Width + spacing
	pitchY := cell.Height + spacing

	cols := 1
	if pitchX > 0 {
		cols = int((viewport.Width - spacing) / pitchX)
	}
	if cols < 1 {
		cols = 1
	}

	points := make([]Point, n)
	for i := range points {
		col := i % cols
		row := i / cols
		points[i] = Point{
			X: spacing + float64(col)*pitchX,
			Y: top + spacing + float64(row)*pitchY,
		}
	}
	return points
}

// RandomSource yields values in [0, 1). *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// RandomIn returns a value in [lo, hi) drawn from src; hi <= lo yields lo.
func RandomIn(src RandomSource, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}

// Fixed is a RandomSource that always returns the same value. Tests use it to
// make placement deterministic.
type Fixed float64

// Float64 implements RandomSource
func (f Fixed) Float64() float64 { return float64(f) }
