package tracery

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Polygon is an ordered vertex sequence in pixel coordinates. It marshals
// to JSON as [[x, y], ...]. A degenerate single-vertex result is still a
// one-element sequence.
type Polygon [][2]int

const (
	// polygonStartEpsilon is the initial approximation tolerance.
	polygonStartEpsilon = 2.0
	// polygonEpsilonGrowth widens the tolerance each iteration until the
	// vertex bound is met.
	polygonEpsilonGrowth = 1.5
	// polygonMaxIterations bounds the simplification loop. If it is
	// exhausted the coarsest approximation is returned even when it still
	// exceeds the requested vertex count (best effort, not a guarantee).
	polygonMaxIterations = 20
)

// ToPolygon reduces the mask's boundary to a polygon with at most maxPoints
// vertices. An empty mask yields an empty polygon. When the mask has several
// disjoint regions only the one enclosing the largest area is reported.
func ToPolygon(mask *Mask, maxPoints int) (Polygon, error) {
	src, err := gocv.NewMatFromBytes(mask.H, mask.W, gocv.MatTypeCV8U, mask.bytes255())
	if err != nil {
		return nil, errors.Wrap(err, "can't build mat from mask")
	}
	defer src.Close()

	contours := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return Polygon{}, nil
	}

	largest := 0
	largestArea := -1.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > largestArea {
			largestArea = area
			largest = i
		}
	}
	contour := contours.At(largest)

	epsilon := polygonStartEpsilon
	var points []image.Point
	for iter := 0; iter < polygonMaxIterations; iter++ {
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		points = approx.ToPoints()
		approx.Close()
		if len(points) <= maxPoints {
			break
		}
		epsilon *= polygonEpsilonGrowth
	}

	polygon := make(Polygon, len(points))
	for i, p := range points {
		polygon[i] = [2]int{p.X, p.Y}
	}
	return polygon, nil
}
