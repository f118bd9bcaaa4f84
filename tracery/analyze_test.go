package tracery

import (
	"image/color"
	"math"
	"testing"
)

func TestAnalyzeEmptyMaskDefaults(t *testing.T) {
	frame := uniformFrame(100, 80, color.NRGBA{R: 50, G: 50, B: 50, A: 255})
	mask := NewMask(100, 80)

	res, err := NewAnalyzer().Analyze(frame, mask, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Centroid != [2]float64{50, 40} {
		t.Errorf("empty mask centroid: got %v, expected frame center", res.Centroid)
	}
	if res.BBox != [4]int{0, 0, 100, 80} {
		t.Errorf("empty mask bbox: got %v, expected full frame", res.BBox)
	}
	if res.Area != 0 {
		t.Errorf("empty mask area: got %d", res.Area)
	}
	if res.AvgLuma != 0 {
		t.Errorf("empty mask luma: got %v", res.AvgLuma)
	}
	if len(res.Polygon) != 0 {
		t.Errorf("empty mask polygon has %d vertices", len(res.Polygon))
	}
	if res.MotionVector != [2]float64{0, 0} {
		t.Errorf("motion vector without prev centroid: got %v", res.MotionVector)
	}
}

func TestAnalyzeFullMask(t *testing.T) {
	frame := uniformFrame(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	mask := NewMask(100, 100)
	fillRect(mask, 0, 0, 100, 100)

	res, err := NewAnalyzer().Analyze(frame, mask, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Centroid != [2]float64{49.5, 49.5} {
		t.Errorf("full mask centroid: got %v, expected (49.5, 49.5)", res.Centroid)
	}
	if res.BBox != [4]int{0, 0, 100, 100} {
		t.Errorf("full mask bbox: got %v", res.BBox)
	}
	if res.Area != 10000 {
		t.Errorf("full mask area: got %d", res.Area)
	}
	if math.Abs(res.AvgLuma-1.0) > eps {
		t.Errorf("white luma: got %v, expected 1.0", res.AvgLuma)
	}
	if len(res.Polygon) > 64 {
		t.Errorf("polygon exceeds cap: %d vertices", len(res.Polygon))
	}
}

func TestAnalyzeSquareGeometry(t *testing.T) {
	frame := uniformFrame(40, 40, color.NRGBA{R: 100, G: 150, B: 200, A: 255})
	mask := NewMask(40, 40)
	fillRect(mask, 2, 10, 6, 14)

	res, err := NewAnalyzer().Analyze(frame, mask, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Centroid != [2]float64{3.5, 11.5} {
		t.Errorf("square centroid: got %v, expected (3.5, 11.5)", res.Centroid)
	}
	if res.BBox != [4]int{2, 10, 6, 14} {
		t.Errorf("square bbox: got %v", res.BBox)
	}
	if res.Area != 16 {
		t.Errorf("square area: got %d, expected 16", res.Area)
	}
	// Luma of (100, 150, 200) is 141 after rounding; 141/255 = 0.5529.
	if math.Abs(res.AvgLuma-0.5529) > eps {
		t.Errorf("square luma: got %v, expected 0.5529", res.AvgLuma)
	}
}

func TestAnalyzeMotionVector(t *testing.T) {
	frame := uniformFrame(40, 40, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	mask := NewMask(40, 40)
	fillRect(mask, 10, 20, 14, 24)

	prev := &Point{X: 10.25, Y: 23.0}
	res, err := NewAnalyzer().Analyze(frame, mask, prev)
	if err != nil {
		t.Fatal(err)
	}
	if res.MotionVector != [2]float64{1.25, -1.5} {
		t.Errorf("motion vector: got %v, expected (1.25, -1.5)", res.MotionVector)
	}
}

func TestToPolygonEmptyMask(t *testing.T) {
	polygon, err := ToPolygon(NewMask(10, 10), 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(polygon) != 0 {
		t.Errorf("empty mask polygon has %d vertices", len(polygon))
	}
}

func TestToPolygonLargestRegionWins(t *testing.T) {
	mask := NewMask(60, 60)
	fillRect(mask, 2, 2, 6, 6)
	fillRect(mask, 20, 20, 50, 50)

	polygon, err := ToPolygon(mask, 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(polygon) == 0 {
		t.Fatal("no polygon for a non-empty mask")
	}
	for _, v := range polygon {
		if v[0] < 20 || v[1] < 20 {
			t.Errorf("vertex %v belongs to the smaller region", v)
		}
	}
}

func TestToPolygonVertexCap(t *testing.T) {
	// A blocky diagonal border produces many contour vertices; the
	// simplifier has to come in under the cap.
	mask := NewMask(80, 80)
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			if x+y < 80 && (x/3+y/5)%2 == 0 {
				continue
			}
			mask.Set(x, y, 1)
		}
	}
	for _, maxPts := range []int{64, 32, 8} {
		polygon, err := ToPolygon(mask, maxPts)
		if err != nil {
			t.Fatal(err)
		}
		if len(polygon) > maxPts {
			t.Errorf("polygon has %d vertices, cap %d", len(polygon), maxPts)
		}
	}
}
