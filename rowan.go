package rowan

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// The zero value is fully transparent black, which backends treat as "none".
type Color struct {
	R, G, B, A float64
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is opaque black.
var ColorBlack = Color{0, 0, 0, 1}

// None reports whether the color is fully transparent (nothing to paint).
func (c Color) None() bool {
	return c.A == 0
}

// RGBA converts the color to a standard premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets, and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Stroke describes the outline paint of a node. A zero-width or
// fully-transparent stroke is not painted.
type Stroke struct {
	Color Color
	Width float64
}

// None reports whether the stroke paints nothing.
func (s Stroke) None() bool {
	return s.Width <= 0 || s.Color.None()
}
