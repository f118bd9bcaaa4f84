package tracery

import (
	"image"
	"image/color"
	"testing"
)

func TestFloodFillUniformFrame(t *testing.T) {
	frame := uniformFrame(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	mask := floodFill(frame, 50, 50, 30)
	if mask.W != frame.W || mask.H != frame.H {
		t.Fatalf("mask shape %dx%d does not match frame %dx%d", mask.W, mask.H, frame.W, frame.H)
	}
	if mask.Area() != 10000 {
		t.Errorf("uniform fill area: got %d, expected 10000", mask.Area())
	}
}

func TestFloodFillFixedRangeTolerance(t *testing.T) {
	// A horizontal gradient stepping by 10 per column. With a fixed-range
	// tolerance of 30 against the seed at column 0 (value 100), columns
	// 0..3 (values 100..130) are admitted and column 4 (140) is not, even
	// though each step is well within tolerance of its neighbor.
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			v := uint8(100 + 10*x)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	frame := NewFrameFromImage(img)

	mask := floodFill(frame, 0, 0, 30)
	if mask.Area() != 4*4 {
		t.Errorf("gradient fill area: got %d, expected 16", mask.Area())
	}
	if mask.At(3, 2) != 1 {
		t.Error("column within tolerance not filled")
	}
	if mask.At(4, 2) != 0 {
		t.Error("column beyond fixed-range tolerance was filled")
	}
}

func TestFloodFillDisconnectedRegion(t *testing.T) {
	// Two same-colored regions separated by a dark column: only the
	// seeded one fills.
	img := image.NewNRGBA(image.Rect(0, 0, 9, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 9; x++ {
			v := uint8(200)
			if x == 4 {
				v = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	frame := NewFrameFromImage(img)

	mask := floodFill(frame, 1, 1, 30)
	if mask.Area() != 4*3 {
		t.Errorf("seeded region area: got %d, expected 12", mask.Area())
	}
	if mask.At(6, 1) != 0 {
		t.Error("disconnected region was filled")
	}
}

func TestSegmentUniformFrame(t *testing.T) {
	frame := uniformFrame(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	seg := NewSegmenter()

	masks, err := seg.Segment(frame, []ClickPoint{{X: 50, Y: 50, ObjectID: 3}})
	if err != nil {
		t.Fatal(err)
	}
	mask, ok := masks[3]
	if !ok {
		t.Fatal("no mask for object 3")
	}
	// Closing and opening on a constant plane leave it untouched.
	if mask.Area() != 10000 {
		t.Errorf("cleaned mask area: got %d, expected 10000", mask.Area())
	}
}

func TestSegmentClampsOutOfBoundsSeeds(t *testing.T) {
	frame := uniformFrame(50, 50, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	seg := NewSegmenter()

	masks, err := seg.Segment(frame, []ClickPoint{{X: -20, Y: 9000, ObjectID: 0}})
	if err != nil {
		t.Fatal(err)
	}
	if masks[0] == nil || masks[0].Area() == 0 {
		t.Error("clamped out-of-bounds seed produced no mask")
	}
}

func TestSegmentLastSeedWinsPerObject(t *testing.T) {
	// Left half bright, right half dark, same object id for both seeds:
	// the later seed's mask must win, no merging.
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := uint8(220)
			if x >= 5 {
				v = 40
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	frame := NewFrameFromImage(img)
	seg := NewSegmenter()

	masks, err := seg.Segment(frame, []ClickPoint{
		{X: 1, Y: 5, ObjectID: 0},
		{X: 8, Y: 5, ObjectID: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(masks) != 1 {
		t.Fatalf("expected one mask, got %d", len(masks))
	}
	if masks[0].At(8, 5) != 1 {
		t.Error("later seed's region missing from the winning mask")
	}
	if masks[0].At(1, 5) != 0 {
		t.Error("earlier seed's region leaked into the winning mask")
	}
}

func TestSegmentDeterminism(t *testing.T) {
	frame := uniformFrame(40, 40, color.NRGBA{R: 90, G: 120, B: 33, A: 255})
	seg := NewSegmenter()
	points := []ClickPoint{{X: 10, Y: 10, ObjectID: 0}, {X: 30, Y: 30, ObjectID: 1}}

	first, err := seg.Segment(frame, points)
	if err != nil {
		t.Fatal(err)
	}
	second, err := seg.Segment(frame, points)
	if err != nil {
		t.Fatal(err)
	}
	for id := range first {
		if !first[id].Equal(second[id]) {
			t.Errorf("segmentation of object %d is not deterministic", id)
		}
	}
}
