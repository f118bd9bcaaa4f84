package tracery

import (
	"image"
	"math"
)

// Point is a position in pixel coordinates. Sub-pixel values are used for
// centroids and motion vectors.
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

// Rect is an axis-aligned rectangle with exclusive max coordinates,
// i.e. it spans pixels [X1, X2) x [Y1, Y2).
type Rect struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

func NewRect(x1, y1, x2, y2 int) Rect {
	return Rect{
		X1: x1,
		Y1: y1,
		X2: x2,
		Y2: y2,
	}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int {
	return r.Y2 - r.Y1
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

// round2 rounds to 2 decimal places, the fixed precision for pixel
// coordinates and motion vectors in reported results.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round4 rounds to 4 decimal places, the fixed precision for normalized
// scores.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// round6 rounds to 6 decimal places, used for frame timestamps.
func round6(v float64) float64 {
	return math.Round(v*1000000) / 1000000
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
