package tracery

import (
	"math"
	"testing"
)

func motionTrack(vectors [][2]float64) []AnalysisResult {
	track := make([]AnalysisResult, len(vectors))
	for i, v := range vectors {
		track[i] = AnalysisResult{
			FrameIndex:   i,
			Centroid:     [2]float64{float64(i), 0},
			Area:         100 + i,
			AvgLuma:      0.5,
			MotionVector: v,
		}
	}
	return track
}

func TestSmoothMotionTruncatedWindow(t *testing.T) {
	track := motionTrack([][2]float64{{0, 0}, {2, 0}, {4, 0}, {2, 0}, {0, 0}})
	smoothed := SmoothMotion(track, 3)

	expected := [][2]float64{
		{1, 0},    // (0+2)/2
		{2, 0},    // (0+2+4)/3
		{2.67, 0}, // (2+4+2)/3
		{2, 0},    // (4+2+0)/3
		{1, 0},    // (2+0)/2
	}
	for i, want := range expected {
		got := smoothed[i].MotionVector
		if math.Abs(got[0]-want[0]) > eps || math.Abs(got[1]-want[1]) > eps {
			t.Errorf("index %d: got %v, expected %v", i, got, want)
		}
	}
}

func TestSmoothMotionShortTrackPassThrough(t *testing.T) {
	track := motionTrack([][2]float64{{5, 5}, {7, -2}})
	smoothed := SmoothMotion(track, 3)
	if len(smoothed) != 2 {
		t.Fatalf("length changed: %d", len(smoothed))
	}
	if smoothed[0].MotionVector != [2]float64{5, 5} || smoothed[1].MotionVector != [2]float64{7, -2} {
		t.Error("track shorter than window was modified")
	}
}

func TestSmoothMotionOnlyTouchesMotionVectors(t *testing.T) {
	track := motionTrack([][2]float64{{1, 0}, {2, 0}, {3, 0}, {4, 0}})
	smoothed := SmoothMotion(track, 3)
	if len(smoothed) != 4 {
		t.Fatalf("length changed: %d", len(smoothed))
	}
	for i, res := range smoothed {
		if res.FrameIndex != i {
			t.Errorf("frame index changed at %d", i)
		}
		if res.Centroid != [2]float64{float64(i), 0} {
			t.Errorf("centroid changed at %d", i)
		}
		if res.Area != 100+i {
			t.Errorf("area changed at %d", i)
		}
		if res.AvgLuma != 0.5 {
			t.Errorf("luma changed at %d", i)
		}
	}
}

func TestSmoothMotionReadsOriginalVectors(t *testing.T) {
	// Every average must read the pre-smoothing vectors: if index 1's
	// replacement leaked into index 2's window, the result there would be
	// 2.78 instead of 2.67.
	track := motionTrack([][2]float64{{0, 0}, {2, 0}, {4, 0}, {2, 0}, {0, 0}})
	smoothed := SmoothMotion(track, 3)
	if math.Abs(smoothed[2].MotionVector[0]-2.67) > eps {
		t.Errorf("index 2: got %v, expected 2.67", smoothed[2].MotionVector[0])
	}
}

func TestSmoothMotionKalmanTracksSteadyMotion(t *testing.T) {
	track := make([]AnalysisResult, 12)
	for i := range track {
		track[i] = AnalysisResult{
			FrameIndex: i,
			Centroid:   [2]float64{10 + 5*float64(i), 20},
			Area:       50,
		}
	}
	if err := SmoothMotionKalman(track, 1.0/DefaultFPS); err != nil {
		t.Fatal(err)
	}
	if len(track) != 12 {
		t.Fatalf("length changed: %d", len(track))
	}
	// The filter follows the steadily advancing measurements.
	for i := 2; i < 12; i++ {
		if track[i].Centroid[0] <= track[i-1].Centroid[0] {
			t.Errorf("filtered centroid not advancing at %d: %v <= %v",
				i, track[i].Centroid[0], track[i-1].Centroid[0])
		}
		if track[i].MotionVector[0] <= 0 {
			t.Errorf("filtered motion vector not positive at %d: %v", i, track[i].MotionVector)
		}
	}
	for i, res := range track {
		if res.Area != 50 || res.FrameIndex != i {
			t.Errorf("non-motion field changed at %d", i)
		}
	}
}
