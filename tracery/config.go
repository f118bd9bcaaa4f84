package tracery

import (
	"encoding/json"
)

// Run modes.
const (
	ModeSegmentAndTrack = "segment_and_track"
	ModeSegmentOnly     = "segment_only"
)

// Motion smoothing modes.
const (
	SmoothModeWindow = "window"
	SmoothModeKalman = "kalman"
)

// RunConfig is the run description passed by the host as one JSON document.
// The same schema drives both run modes.
type RunConfig struct {
	Mode         string       `json:"mode"`
	FramesDir    string       `json:"frames_dir"`
	ClickPoints  []ClickPoint `json:"click_points"`
	OutputDir    string       `json:"output_dir"`
	CompWidth    int          `json:"comp_width"`
	CompHeight   int          `json:"comp_height"`
	SmoothWindow int          `json:"smooth_window"`
	SmoothMode   string       `json:"smooth_mode"`
	ModelCommand string       `json:"model_command"`
}

// ParseRunConfig decodes and validates a JSON run configuration, filling
// defaults for omitted fields.
func ParseRunConfig(data []byte) (*RunConfig, error) {
	cfg := &RunConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Reason: "invalid JSON: " + err.Error()}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *RunConfig) applyDefaults() {
	if cfg.Mode == "" {
		cfg.Mode = ModeSegmentAndTrack
	}
	if cfg.CompWidth == 0 {
		cfg.CompWidth = 1920
	}
	if cfg.CompHeight == 0 {
		cfg.CompHeight = 1080
	}
	if cfg.SmoothWindow == 0 {
		cfg.SmoothWindow = 3
	}
	if cfg.SmoothMode == "" {
		cfg.SmoothMode = SmoothModeWindow
	}
}

// Validate checks the configuration before any frame work starts.
func (cfg *RunConfig) Validate() error {
	switch cfg.Mode {
	case ModeSegmentAndTrack, ModeSegmentOnly:
	default:
		return &ConfigError{Reason: "unknown mode '" + cfg.Mode + "'"}
	}
	if cfg.FramesDir == "" {
		return &ConfigError{Reason: "frames_dir is required"}
	}
	if cfg.OutputDir == "" {
		return &ConfigError{Reason: "output_dir is required"}
	}
	if len(cfg.ClickPoints) == 0 {
		return &ConfigError{Reason: "at least one click point is required"}
	}
	if cfg.CompWidth <= 0 || cfg.CompHeight <= 0 {
		return &ConfigError{Reason: "comp dimensions must be positive"}
	}
	if cfg.SmoothWindow < 1 {
		return &ConfigError{Reason: "smooth_window must be at least 1"}
	}
	switch cfg.SmoothMode {
	case SmoothModeWindow, SmoothModeKalman:
	default:
		return &ConfigError{Reason: "unknown smooth_mode '" + cfg.SmoothMode + "'"}
	}
	return nil
}
