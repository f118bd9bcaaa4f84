package tracery

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FlowField is a dense per-pixel displacement field between two consecutive
// frames: At(x, y) estimates where the pixel at (x, y) in the earlier frame
// has moved by the later one.
type FlowField struct {
	W  int
	H  int
	dx []float32
	dy []float32
}

// NewFlowField creates a zero displacement field.
func NewFlowField(w, h int) *FlowField {
	return &FlowField{
		W:  w,
		H:  h,
		dx: make([]float32, w*h),
		dy: make([]float32, w*h),
	}
}

// At returns the displacement of the pixel at (x, y).
func (f *FlowField) At(x, y int) (float32, float32) {
	i := y*f.W + x
	return f.dx[i], f.dy[i]
}

// Set overrides the displacement of the pixel at (x, y).
func (f *FlowField) Set(x, y int, dx, dy float32) {
	i := y*f.W + x
	f.dx[i] = dx
	f.dy[i] = dy
}

// FlowComputer estimates a dense flow field between two frames.
type FlowComputer interface {
	Compute(prev, curr *Frame) (*FlowField, error)
}

// FarnebackFlow computes dense optical flow with Farneback's polynomial
// expansion method. The parameter set is a contract: mask warp quality
// downstream depends on it, so it is fixed rather than tunable.
type FarnebackFlow struct {
	PyrScale   float64
	Levels     int
	WinSize    int
	Iterations int
	PolyN      int
	PolySigma  float64
}

// NewFarnebackFlow returns the contractual parameter set: pyramid scale 0.5,
// 3 levels, window 15, 3 iterations per level, polynomial neighborhood 5,
// polynomial sigma 1.2.
func NewFarnebackFlow() *FarnebackFlow {
	return &FarnebackFlow{
		PyrScale:   0.5,
		Levels:     3,
		WinSize:    15,
		Iterations: 3,
		PolyN:      5,
		PolySigma:  1.2,
	}
}

// Compute estimates the displacement field from prev to curr. Both frames
// must have equal dimensions.
func (f *FarnebackFlow) Compute(prev, curr *Frame) (*FlowField, error) {
	if prev.W != curr.W || prev.H != curr.H {
		return nil, errors.Errorf("frame size mismatch: %dx%d vs %dx%d", prev.W, prev.H, curr.W, curr.H)
	}

	prevMat, err := gocv.NewMatFromBytes(prev.H, prev.W, gocv.MatTypeCV8U, prev.Gray())
	if err != nil {
		return nil, errors.Wrap(err, "can't build mat for previous frame")
	}
	defer prevMat.Close()

	currMat, err := gocv.NewMatFromBytes(curr.H, curr.W, gocv.MatTypeCV8U, curr.Gray())
	if err != nil {
		return nil, errors.Wrap(err, "can't build mat for current frame")
	}
	defer currMat.Close()

	flowMat := gocv.NewMat()
	defer flowMat.Close()

	gocv.CalcOpticalFlowFarneback(prevMat, currMat, &flowMat,
		f.PyrScale, f.Levels, f.WinSize, f.Iterations, f.PolyN, f.PolySigma, 0)

	data, err := flowMat.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "can't read flow data")
	}

	field := NewFlowField(prev.W, prev.H)
	for i := 0; i < prev.W*prev.H; i++ {
		field.dx[i] = data[2*i]
		field.dy[i] = data[2*i+1]
	}
	return field, nil
}
