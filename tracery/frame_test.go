package tracery

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// uniformFrame builds an in-memory frame of one solid color.
func uniformFrame(w, h int, c color.NRGBA) *Frame {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return NewFrameFromImage(img)
}

func TestFrameFromImage(t *testing.T) {
	f := uniformFrame(8, 6, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	if f.W != 8 || f.H != 6 {
		t.Errorf("wrong dimensions: %dx%d", f.W, f.H)
	}
	r, g, b := f.RGBAt(3, 4)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("wrong pixel: (%d, %d, %d)", r, g, b)
	}
}

func TestFrameGrayLuma(t *testing.T) {
	f := uniformFrame(2, 2, color.NRGBA{R: 100, G: 150, B: 200, A: 255})
	gray := f.Gray()
	// 0.299*100 + 0.587*150 + 0.114*200 = 140.75, rounded to 141.
	if gray[0] != 141 {
		t.Errorf("wrong luma: got %d, expected 141", gray[0])
	}

	white := uniformFrame(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if v := white.Gray()[0]; v != 255 {
		t.Errorf("white luma: got %d, expected 255", v)
	}
	black := uniformFrame(1, 1, color.NRGBA{A: 255})
	if v := black.Gray()[0]; v != 0 {
		t.Errorf("black luma: got %d, expected 0", v)
	}
}

func TestLoadFrameMissingFile(t *testing.T) {
	_, err := LoadFrame("does/not/exist.png", 0)
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if _, ok := err.(*FrameReadError); !ok {
		t.Errorf("expected FrameReadError, got %T", err)
	}
}

func TestConfidenceScore(t *testing.T) {
	// Reference area is 0.1% of the canvas: 1920*1080*0.001 = 2073.6.
	got := ConfidenceScore(1000, 1920, 1080)
	if math.Abs(got-round4(1000.0/2073.6)) > eps {
		t.Errorf("confidence: got %v", got)
	}
	if v := ConfidenceScore(100000, 1920, 1080); v != 1.0 {
		t.Errorf("confidence not clamped to 1: got %v", v)
	}
	if v := ConfidenceScore(0, 1920, 1080); v != 0.0 {
		t.Errorf("zero area confidence: got %v", v)
	}
	// Degenerate canvas still clamps into [0, 1].
	if v := ConfidenceScore(5, 0, 0); v != 1.0 {
		t.Errorf("degenerate canvas confidence: got %v", v)
	}
}
