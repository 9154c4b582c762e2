package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	bounds := Bounds{Viewport: Size{Width: 800, Height: 600}, Top: 60, Bottom: 100}
	item := Size{Width: 72, Height: 72}

	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"inside", Point{X: 100, Y: 200}, Point{X: 100, Y: 200}},
		{"negative", Point{X: -10, Y: -10}, Point{X: 0, Y: 60}},
		{"past right edge", Point{X: 900, Y: 200}, Point{X: 728, Y: 200}},
		{"into dock", Point{X: 10, Y: 590}, Point{X: 10, Y: 428}},
		{"corner", Point{X: 728, Y: 428}, Point{X: 728, Y: 428}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.in, item, bounds)
			assert.Equal(t, tt.want, got)
			assert.True(t, InBounds(got, item, bounds))
		})
	}
}

func TestClampCollapsesNegativeRange(t *testing.T) {
	bounds := Bounds{Viewport: Size{Width: 50, Height: 100}, Top: 10, Bottom: 80}
	got := Clamp(Point{X: 30, Y: 30}, Size{Width: 72, Height: 72}, bounds)
	assert.Equal(t, Point{X: 0, Y: 10}, got)
}

func TestClampIdempotent(t *testing.T) {
	bounds := Bounds{Viewport: Size{Width: 375, Height: 667}, Bottom: 100}
	item := Size{Width: 72, Height: 72}
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		p := Point{X: r.Float64()*1000 - 200, Y: r.Float64()*1000 - 200}
		once := Clamp(p, item, bounds)
		assert.Equal(t, once, Clamp(once, item, bounds))
	}
}

func TestClampToViewport(t *testing.T) {
	got := ClampToViewport(Point{X: 500, Y: 500}, Size{Width: 200, Height: 100}, Size{Width: 600, Height: 400})
	assert.Equal(t, Point{X: 400, Y: 300}, got)
}

func TestRect(t *testing.T) {
	r := Rect{Point: Point{X: 10, Y: 10}, Size: Size{Width: 20, Height: 20}}

	assert.True(t, r.Contains(Point{X: 10, Y: 10}))
	assert.True(t, r.Contains(Point{X: 29.9, Y: 29.9}))
	assert.False(t, r.Contains(Point{X: 30, Y: 15}))
	assert.False(t, r.Contains(Point{X: 5, Y: 15}))
	assert.Equal(t, Point{X: 20, Y: 20}, r.Center())
}

func TestPointArithmetic(t *testing.T) {
	p := Point{X: 3, Y: 4}
	assert.Equal(t, Point{X: 4, Y: 6}, p.Add(Point{X: 1, Y: 2}))
	assert.Equal(t, Point{X: 2, Y: 2}, p.Sub(Point{X: 1, Y: 2}))
	assert.Equal(t, 5.0, p.Distance(Point{}))
	assert.Equal(t, Point{X: 36, Y: 36}, Size{Width: 72, Height: 72}.Half())
}

func TestGridPositions(t *testing.T) {
	cell := Size{Width: 100, Height: 100}
	points := GridPositions(5, Size{Width: 400, Height: 800}, cell, 16, 60)

	assert.Equal(t, []Point{
		{X: 16, Y: 76},
		{X: 132, Y: 76},
		{X: 248, Y: 76},
		{X: 16, Y: 192},
		{X: 132, Y: 192},
	}, points)
}

func TestGridPositionsNarrow(t *testing.T) {
	points := GridPositions(2, Size{Width: 50, Height: 800}, Size{Width: 100, Height: 100}, 16, 0)
	assert.Equal(t, []Point{{X: 16, Y: 16}, {X: 16, Y: 132}}, points)
}

func TestGridPositionsEmpty(t *testing.T) {
	assert.Nil(t, GridPositions(0, Size{Width: 100, Height: 100}, Size{Width: 10, Height: 10}, 0, 0))
}

func TestRandomIn(t *testing.T) {
	assert.Equal(t, 15.0, RandomIn(Fixed(0.5), 10, 20))
	assert.Equal(t, 10.0, RandomIn(Fixed(0.9), 10, 5))

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v := RandomIn(r, 100, 200)
		assert.GreaterOrEqual(t, v, 100.0)
		assert.Less(t, v, 200.0)
	}
}
