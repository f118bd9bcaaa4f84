package tracery

import (
	"image"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ClickPoint is a user-supplied seed: pixel coordinates plus the identifier
// of the object the seed belongs to.
type ClickPoint struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	ObjectID int `json:"object_id"`
}

// Segmenter produces initial object masks from seed points by fixed-range
// flood fill: a region is grown from the seed pixel, admitting neighbors
// whose color stays within Tolerance of the seed pixel's own color on every
// channel. Measuring against the seed (not each newly added pixel) keeps the
// region from drifting through gradual color changes.
type Segmenter struct {
	// Tolerance is the per-channel color tolerance of the fill.
	Tolerance uint8
	// KernelSize is the footprint of the elliptical structuring element
	// used for the closing/opening cleanup after the fill.
	KernelSize int
}

// NewSegmenter creates a Segmenter with the default tolerance of 30 and a
// 5x5 cleanup kernel.
func NewSegmenter() *Segmenter {
	return &Segmenter{
		Tolerance:  30,
		KernelSize: 5,
	}
}

// Segment grows one mask per seed point. Seeds outside the frame bounds are
// clamped to the nearest valid pixel. When two seeds carry the same object
// id the later one wins. The fills for distinct seeds are independent and
// run concurrently; results are committed in input order so last-wins stays
// deterministic.
func (s *Segmenter) Segment(frame *Frame, points []ClickPoint) (map[int]*Mask, error) {
	filled := make([]*Mask, len(points))
	errs := make([]error, len(points))

	var wg sync.WaitGroup
	for i := range points {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := clampInt(points[i].X, 0, frame.W-1)
			y := clampInt(points[i].Y, 0, frame.H-1)
			mask := floodFill(frame, x, y, s.Tolerance)
			cleaned, err := s.cleanup(mask)
			if err != nil {
				errs[i] = err
				return
			}
			filled[i] = cleaned
		}(i)
	}
	wg.Wait()

	masks := make(map[int]*Mask, len(points))
	for i, pt := range points {
		if errs[i] != nil {
			return nil, errors.Wrapf(errs[i], "can't segment seed point (%d, %d)", pt.X, pt.Y)
		}
		masks[pt.ObjectID] = filled[i]
	}
	return masks, nil
}

// floodFill grows a 4-connected region from (sx, sy), admitting pixels
// within tol of the seed pixel's color on all three channels.
func floodFill(frame *Frame, sx, sy int, tol uint8) *Mask {
	mask := NewMask(frame.W, frame.H)
	r0, g0, b0 := frame.RGBAt(sx, sy)

	inRange := func(x, y int) bool {
		r, g, b := frame.RGBAt(x, y)
		return absDiff(r, r0) <= tol && absDiff(g, g0) <= tol && absDiff(b, b0) <= tol
	}

	queue := make([]image.Point, 0, 256)
	queue = append(queue, image.Pt(sx, sy))
	mask.Set(sx, sy, 1)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range [4]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || ny < 0 || nx >= frame.W || ny >= frame.H {
				continue
			}
			if mask.At(nx, ny) != 0 || !inRange(nx, ny) {
				continue
			}
			mask.Set(nx, ny, 1)
			queue = append(queue, image.Pt(nx, ny))
		}
	}
	return mask
}

// cleanup applies one morphological closing followed by one opening with an
// elliptical kernel, filling small holes and dropping speckle noise.
func (s *Segmenter) cleanup(mask *Mask) (*Mask, error) {
	src, err := gocv.NewMatFromBytes(mask.H, mask.W, gocv.MatTypeCV8U, mask.bytes255())
	if err != nil {
		return nil, errors.Wrap(err, "can't build mat from mask")
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(s.KernelSize, s.KernelSize))
	defer kernel.Close()

	gocv.MorphologyEx(src, &src, gocv.MorphClose, kernel)
	gocv.MorphologyEx(src, &src, gocv.MorphOpen, kernel)

	return maskFromBytes(mask.W, mask.H, src.ToBytes()), nil
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
