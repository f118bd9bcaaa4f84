package tracery

import "math"

// MaskSource is the seam between the deterministic pipeline and the learned
// segmentation model: one capability to segment the first frame from seed
// points, one to carry the masks across the whole sequence. The orchestrator
// picks an implementation once at startup and never branches on which one is
// active afterwards.
type MaskSource interface {
	SegmentFirstFrame(frame *Frame, points []ClickPoint) (map[int]*Mask, error)
	Propagate(seq *FrameSequence, initial map[int]*Mask) (map[int][]*Mask, error)
}

// PointSegmenter serves the interactive preview path: one mask plus a
// confidence score for a single foreground point.
type PointSegmenter interface {
	SegmentPoint(frame *Frame, x, y int) (*Mask, float64, error)
}

// FallbackSource is the deterministic MaskSource: fixed-range flood fill
// for seeding and optical-flow warping for propagation. It needs no model
// weights and produces bit-identical masks for identical inputs.
type FallbackSource struct {
	Segmenter  *Segmenter
	Propagator *Propagator
}

// NewFallbackSource creates a FallbackSource with default components and
// the given progress observer (may be nil).
func NewFallbackSource(progress ProgressFunc) *FallbackSource {
	prop := NewPropagator()
	prop.Progress = progress
	return &FallbackSource{
		Segmenter:  NewSegmenter(),
		Propagator: prop,
	}
}

// SegmentFirstFrame grows one mask per seed point on the first frame.
func (s *FallbackSource) SegmentFirstFrame(frame *Frame, points []ClickPoint) (map[int]*Mask, error) {
	return s.Segmenter.Segment(frame, points)
}

// Propagate warps the initial masks across the whole sequence.
func (s *FallbackSource) Propagate(seq *FrameSequence, initial map[int]*Mask) (map[int][]*Mask, error) {
	return s.Propagator.Propagate(seq, initial, seq.Len())
}

// SegmentPoint grows a single mask from one point. The reported score is
// the analogous fallback confidence: mask area against the frame's own
// reference area, since no model score exists on this path.
func (s *FallbackSource) SegmentPoint(frame *Frame, x, y int) (*Mask, float64, error) {
	masks, err := s.Segmenter.Segment(frame, []ClickPoint{{X: x, Y: y, ObjectID: 0}})
	if err != nil {
		return nil, 0, err
	}
	mask := masks[0]
	return mask, ConfidenceScore(mask.Area(), frame.W, frame.H), nil
}

// ConfidenceScore relates a mask area to a reference canvas area: the score
// saturates at 1 once the mask covers 0.1% of the canvas. It is clamped to
// [0, 1] for every area/canvas combination.
func ConfidenceScore(area, canvasW, canvasH int) float64 {
	ref := math.Max(1, float64(canvasW)*float64(canvasH)*0.001)
	return round4(math.Min(1, float64(area)/ref))
}

// SelectSource performs the one-time startup choice between the learned
// model and the deterministic fallback: the model is used when its handle
// initializes, the fallback otherwise. model may be nil.
func SelectSource(model *ModelSource, fallback MaskSource) MaskSource {
	if model != nil && model.Available() {
		return model
	}
	return fallback
}
