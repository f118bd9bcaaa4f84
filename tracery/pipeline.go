package tracery

import (
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultFPS is the fixed frame rate assumption used to derive per-frame
// timestamps. The true rate is caller-supplied context this core does not
// own; hosts rescale the reported times when their composition runs at a
// different rate.
const DefaultFPS = 30.0

// ObjectTrack is one object's full per-frame result sequence. Its length
// always equals the total frame count: frames with an absent mask carry a
// default result, never a gap.
type ObjectTrack struct {
	ObjectID int              `json:"object_id"`
	Frames   []AnalysisResult `json:"frames"`
}

// Results is the batch run output document.
type Results struct {
	Objects []ObjectTrack `json:"objects"`
}

// Pipeline orchestrates a full tracking run: seed segmentation on the first
// frame, mask propagation across the sequence, per-frame analysis with
// centroid chaining, and motion smoothing. The mask source is chosen once
// at construction; the pipeline never inspects which implementation it got.
type Pipeline struct {
	Source   MaskSource
	Config   *RunConfig
	Analyzer *Analyzer
	Progress ProgressFunc
	Logger   *log.Logger
}

// NewPipeline creates a Pipeline over the given mask source.
func NewPipeline(source MaskSource, cfg *RunConfig) *Pipeline {
	return &Pipeline{
		Source:   source,
		Config:   cfg,
		Analyzer: NewAnalyzer(),
	}
}

// Run executes the whole pipeline and returns the per-object tracks.
// Structural failures (no frames, unreadable first frame, zero seed masks)
// abort the run; per-frame failures later in the sequence are absorbed with
// documented defaults.
func (p *Pipeline) Run() (*Results, error) {
	runID := uuid.New()

	paths, err := DiscoverFrames(p.Config.FramesDir)
	if err != nil {
		return nil, err
	}
	total := len(paths)
	p.logf("run %s: found %d frames", runID, total)

	seq := NewFrameSequence(paths)
	first, err := seq.Frame(0)
	if err != nil {
		// An unreadable first frame is fatal: seed segmentation has
		// nothing to run on, so there is no mask to hold or propagate.
		return nil, err
	}

	p.logf("run %s: segmenting first frame", runID)
	initial, err := p.Source.SegmentFirstFrame(first, p.Config.ClickPoints)
	if err != nil {
		return nil, errors.Wrap(err, "first frame segmentation failed")
	}
	if len(initial) == 0 {
		return nil, &SegmentationEmptyError{}
	}
	p.logf("run %s: segmented %d objects", runID, len(initial))

	p.logf("run %s: propagating masks across %d frames", runID, total)
	all, err := p.Source.Propagate(seq, initial)
	if err != nil {
		return nil, errors.Wrap(err, "mask propagation failed")
	}

	p.logf("run %s: analyzing frames", runID)
	ids := make([]int, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	results := &Results{Objects: make([]ObjectTrack, 0, len(ids))}
	for _, id := range ids {
		track, err := p.analyzeTrack(seq, all[id], total)
		if err != nil {
			return nil, errors.Wrapf(err, "can't analyze object %d", id)
		}
		if err := p.smooth(track); err != nil {
			return nil, errors.Wrapf(err, "can't smooth object %d", id)
		}
		results.Objects = append(results.Objects, ObjectTrack{ObjectID: id, Frames: track})
	}
	return results, nil
}

// analyzeTrack walks one object's mask sequence in frame order, chaining the
// previous centroid into each step's motion vector. Cells with an absent
// mask, and readable-mask cells whose frame no longer decodes, get the fixed
// default result; the centroid chain skips over them unchanged.
func (p *Pipeline) analyzeTrack(seq *FrameSequence, masks []*Mask, total int) ([]AnalysisResult, error) {
	track := make([]AnalysisResult, 0, total)
	var prevCentroid *Point

	for idx := 0; idx < total; idx++ {
		mask := masks[idx]
		if mask == nil {
			track = append(track, p.defaultResult(idx))
			continue
		}

		frame, err := seq.Frame(idx)
		if err != nil {
			track = append(track, p.defaultResult(idx))
			continue
		}

		res, err := p.Analyzer.Analyze(frame, mask, prevCentroid)
		if err != nil {
			return nil, err
		}
		res.FrameIndex = idx
		res.Time = frameTime(idx)
		res.Confidence = ConfidenceScore(res.Area, p.Config.CompWidth, p.Config.CompHeight)
		prevCentroid = &Point{X: res.Centroid[0], Y: res.Centroid[1]}
		track = append(track, res)

		if idx%10 == 0 && p.Progress != nil {
			p.Progress(idx+1, total)
		}
	}
	return track, nil
}

func (p *Pipeline) smooth(track []AnalysisResult) error {
	if p.Config.SmoothMode == SmoothModeKalman {
		return SmoothMotionKalman(track, 1.0/DefaultFPS)
	}
	SmoothMotion(track, p.Config.SmoothWindow)
	return nil
}

// defaultResult is the fixed result for a frame with no usable mask:
// centroid at the canvas center, bbox covering the whole canvas, empty
// polygon, zero everything else. Its zero motion vector contributes only
// itself to neighboring smoothing windows.
func (p *Pipeline) defaultResult(idx int) AnalysisResult {
	return AnalysisResult{
		FrameIndex: idx,
		Time:       frameTime(idx),
		Centroid:   [2]float64{float64(p.Config.CompWidth) / 2.0, float64(p.Config.CompHeight) / 2.0},
		BBox:       [4]int{0, 0, p.Config.CompWidth, p.Config.CompHeight},
		Polygon:    Polygon{},
	}
}

func frameTime(idx int) float64 {
	return round6(float64(idx) / DefaultFPS)
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}
