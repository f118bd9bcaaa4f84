package tracery

import (
	"os"
	"path/filepath"
	"sort"
)

// DiscoverFrames lists the frame files of a directory in frame-index order.
// It tries the render queue naming first, then progressively looser
// patterns: some hosts append frame numbers after the extension
// (st_frame_00000.png00000), and hand-prepared directories may contain
// plain numbered PNGs. Ordering is a lexicographic filename sort, which is
// index-consistent for zero-padded names.
func DiscoverFrames(dir string) ([]string, error) {
	patterns := []string{"st_frame_*.png", "st_frame_*", "*.png"}
	for _, pattern := range patterns {
		paths, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = regularFiles(paths)
		if len(paths) > 0 {
			sort.Strings(paths)
			return paths, nil
		}
	}

	// Last resort: any regular file.
	paths, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, err
	}
	paths = regularFiles(paths)
	if len(paths) == 0 {
		return nil, &FrameDiscoveryError{Dir: dir}
	}
	sort.Strings(paths)
	return paths, nil
}

func regularFiles(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FrameSequence is an ordered, zero-indexed run of frames, loaded on demand
// so that long sequences never sit in memory at once.
type FrameSequence struct {
	paths  []string
	frames []*Frame
}

// NewFrameSequence builds a sequence over frame files, in the given order.
func NewFrameSequence(paths []string) *FrameSequence {
	return &FrameSequence{
		paths:  paths,
		frames: make([]*Frame, len(paths)),
	}
}

// NewFrameSequenceFromFrames builds a fully materialized sequence. Mostly
// useful for callers that already hold decoded frames.
func NewFrameSequenceFromFrames(frames []*Frame) *FrameSequence {
	paths := make([]string, len(frames))
	for i, f := range frames {
		if f != nil {
			paths[i] = f.Path
		}
	}
	return &FrameSequence{
		paths:  paths,
		frames: frames,
	}
}

// Len returns the total number of frames in the sequence.
func (s *FrameSequence) Len() int {
	return len(s.paths)
}

// Path returns the file path of frame i.
func (s *FrameSequence) Path(i int) string {
	return s.paths[i]
}

// Frame decodes and returns frame i. Materialized frames are returned as-is;
// decoded frames are not retained, the propagation loop keeps only the
// previous frame alive.
func (s *FrameSequence) Frame(i int) (*Frame, error) {
	if s.frames[i] != nil {
		return s.frames[i], nil
	}
	return LoadFrame(s.paths[i], i)
}
