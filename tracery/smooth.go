package tracery

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// SmoothMotion averages motion vectors over a sliding window across the
// track, in a second pass over an already-built result sequence. Tracks
// shorter than the window pass through untouched. The window is truncated
// at the sequence ends (no padding, no wraparound) and every average reads
// the pre-smoothing vectors, so earlier replacements never leak into later
// ones. Only the motion vector is rewritten.
func SmoothMotion(track []AnalysisResult, window int) []AnalysisResult {
	n := len(track)
	if n < window {
		return track
	}

	orig := make([][2]float64, n)
	for i := range track {
		orig[i] = track[i].MotionVector
	}

	half := window / 2
	for i := 0; i < n; i++ {
		start := maxInt(0, i-half)
		end := minInt(n, i+half+1)
		sumX, sumY := 0.0, 0.0
		for j := start; j < end; j++ {
			sumX += orig[j][0]
			sumY += orig[j][1]
		}
		count := float64(end - start)
		track[i].MotionVector = [2]float64{
			round2(sumX / count),
			round2(sumY / count),
		}
	}
	return track
}

// SmoothMotionKalman is an alternative smoother: a constant-velocity 2-D
// Kalman filter run over the centroid track. Centroids are replaced with
// the filtered state and motion vectors with the filtered per-step
// displacement. It trades the window average's locality for a model-based
// estimate that damps jitter on long tracks.
func SmoothMotionKalman(track []AnalysisResult, dt float64) error {
	if len(track) == 0 {
		return nil
	}

	ux := 1.0
	uy := 1.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy,
		kalman_filter.WithState2D(track[0].Centroid[0], track[0].Centroid[1]))

	prevX := track[0].Centroid[0]
	prevY := track[0].Centroid[1]
	for i := 1; i < len(track); i++ {
		kf.Predict()
		if err := kf.Update(track[i].Centroid[0], track[i].Centroid[1]); err != nil {
			return errors.Wrapf(err, "can't update centroid filter at frame %d", i)
		}
		stateX, stateY := kf.GetState()
		track[i].Centroid = [2]float64{round2(stateX), round2(stateY)}
		track[i].MotionVector = [2]float64{round2(stateX - prevX), round2(stateY - prevY)}
		prevX = stateX
		prevY = stateY
	}
	return nil
}
