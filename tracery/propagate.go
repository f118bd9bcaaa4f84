package tracery

import (
	"math"
	"sync"

	"github.com/pkg/errors"
)

// ProgressFunc receives a monotonically increasing frame-completion signal:
// done frames out of total.
type ProgressFunc func(done, total int)

// Propagator carries object masks forward through a frame sequence by
// warping each frame's masks through the dense flow field to the next
// frame. The steps chain: the warp input at frame i is the finalized mask
// at frame i-1, so frames are processed strictly in increasing order.
type Propagator struct {
	Flow     FlowComputer
	Progress ProgressFunc
}

// NewPropagator creates a Propagator using Farneback dense flow.
func NewPropagator() *Propagator {
	return &Propagator{
		Flow: NewFarnebackFlow(),
	}
}

// Propagate produces one mask sequence per object, each of length
// totalFrames. Frame 0 holds the object's initial mask. For every later
// frame:
//   - an unreadable frame copies every object's previous mask forward and
//     skips flow computation for that step;
//   - an object whose previous mask is absent gets an all-zero mask (the
//     object is considered lost, there is no re-detection);
//   - otherwise the previous mask is warped through the flow field and
//     re-binarized.
//
// The per-object warps within one step are independent and run on separate
// goroutines; all objects finish before the next frame step starts.
func (p *Propagator) Propagate(seq *FrameSequence, initial map[int]*Mask, totalFrames int) (map[int][]*Mask, error) {
	all := make(map[int][]*Mask, len(initial))
	ids := make([]int, 0, len(initial))
	for id, mask := range initial {
		all[id] = make([]*Mask, totalFrames)
		all[id][0] = mask
		ids = append(ids, id)
	}

	prev, err := seq.Frame(0)
	if err != nil {
		return nil, errors.Wrap(err, "can't read first frame")
	}

	for i := 1; i < totalFrames; i++ {
		curr, err := seq.Frame(i)
		if err != nil {
			// Hold-last-good-frame: a single corrupt frame must not lose
			// the masks. The previous decoded frame stays the flow input
			// for the next readable one.
			for _, id := range ids {
				if m := all[id][i-1]; m != nil {
					all[id][i] = m.Clone()
				}
			}
			p.report(i+1, totalFrames)
			continue
		}

		field, err := p.Flow.Compute(prev, curr)
		if err != nil {
			return nil, errors.Wrapf(err, "can't compute flow for frame %d", i)
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(id, i int) {
				defer wg.Done()
				prevMask := all[id][i-1]
				if prevMask == nil {
					all[id][i] = NewMask(curr.W, curr.H)
					return
				}
				all[id][i] = warpMask(prevMask, field)
			}(id, i)
		}
		wg.Wait()

		prev = curr
		p.report(i+1, totalFrames)
	}
	return all, nil
}

func (p *Propagator) report(done, total int) {
	if p.Progress != nil {
		p.Progress(done, total)
	}
}

// warpMask resamples a mask through a displacement field: each output pixel
// reads the mask at its flow-displaced source position with bilinear
// interpolation, positions outside the frame read as background, and the
// continuous result is re-binarized at the 0.5 midpoint.
func warpMask(mask *Mask, field *FlowField) *Mask {
	out := NewMask(mask.W, mask.H)
	for y := 0; y < mask.H; y++ {
		for x := 0; x < mask.W; x++ {
			dx, dy := field.At(x, y)
			sx := float64(x) + float64(dx)
			sy := float64(y) + float64(dy)
			if sampleBilinear(mask, sx, sy) > 0.5 {
				out.Set(x, y, 1)
			}
		}
	}
	return out
}

// sampleBilinear interpolates the mask as a continuous field, with zero
// outside its bounds.
func sampleBilinear(mask *Mask, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	v00 := maskValue(mask, x0, y0)
	v10 := maskValue(mask, x0+1, y0)
	v01 := maskValue(mask, x0, y0+1)
	v11 := maskValue(mask, x0+1, y0+1)

	top := v00*(1-fx) + v10*fx
	bottom := v01*(1-fx) + v11*fx
	return top*(1-fy) + bottom*fy
}

func maskValue(mask *Mask, x, y int) float64 {
	if x < 0 || y < 0 || x >= mask.W || y >= mask.H {
		return 0
	}
	return float64(mask.At(x, y))
}
