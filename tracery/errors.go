package tracery

import "fmt"

// ConfigError reports missing or invalid run parameters. It is fatal and
// raised before any frame work starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// FrameDiscoveryError reports that no frames were found in a directory.
type FrameDiscoveryError struct {
	Dir string
}

func (e *FrameDiscoveryError) Error() string {
	return "no frames found in " + e.Dir
}

// FrameReadError reports a frame file that could not be read or decoded.
// During propagation it is absorbed by the hold-last-good-frame policy;
// it is fatal only for the first frame, where seed segmentation runs.
type FrameReadError struct {
	Path string
	Err  error
}

func (e *FrameReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("can't read frame %s: %v", e.Path, e.Err)
	}
	return "can't read frame " + e.Path
}

func (e *FrameReadError) Unwrap() error {
	return e.Err
}

// SegmentationEmptyError reports that seed segmentation yielded zero masks,
// leaving nothing to track.
type SegmentationEmptyError struct{}

func (e *SegmentationEmptyError) Error() string {
	return "segmentation produced no masks"
}
