package tracery

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// Model handle initialization states. The handle starts uninitialized, is
// loaded lazily on first use, and sticks to unavailable once every variant
// failed so later calls don't retry a dead sidecar.
type modelState int

const (
	modelUninitialized modelState = iota
	modelLoaded
	modelUnavailable
)

// modelVariants are attempted in order: the large model first, then the
// small one when the large fails to come up.
var modelVariants = []string{"large", "small"}

// modelTransport is one line-JSON session with the sidecar process.
type modelTransport interface {
	send(req modelRequest) error
	recv(resp interface{}) error
	close() error
}

type modelRequest struct {
	Op     string       `json:"op"`
	Frame  string       `json:"frame,omitempty"`
	Frames []string     `json:"frames,omitempty"`
	Points []ClickPoint `json:"points,omitempty"`
	X      int          `json:"x,omitempty"`
	Y      int          `json:"y,omitempty"`
}

// maskPayload carries one mask over the wire as alternating background /
// object run lengths, starting with background.
type maskPayload struct {
	W   int   `json:"w"`
	H   int   `json:"h"`
	RLE []int `json:"rle"`
}

type modelResponse struct {
	Masks      map[string]maskPayload `json:"masks,omitempty"`
	Score      float64                `json:"score,omitempty"`
	FrameIndex int                    `json:"frame_index"`
	Done       bool                   `json:"done,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// ModelSource is the learned-model MaskSource: an external segmentation
// process driven over line-delimited JSON on its stdin/stdout. The handle is
// lazily constructed and owned by whoever injected it into the orchestrator;
// there is no package-level model state.
type ModelSource struct {
	Progress ProgressFunc
	Logger   *log.Logger

	// dial starts a sidecar session for one model variant. Overridable so
	// tests can run the protocol without a process.
	dial func(variant string) (modelTransport, error)

	mu        sync.Mutex
	state     modelState
	transport modelTransport
}

// NewModelSource creates a lazily-initialized handle for the sidecar at
// command. Nothing is launched until the first Available, segmentation or
// propagation call.
func NewModelSource(command string, progress ProgressFunc, logger *log.Logger) *ModelSource {
	return &ModelSource{
		Progress: progress,
		Logger:   logger,
		dial: func(variant string) (modelTransport, error) {
			return dialProcess(command, variant)
		},
	}
}

// Available reports whether the model handle is usable, initializing it on
// first call.
func (s *ModelSource) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure() == modelLoaded
}

// ensure runs the initialization state machine under s.mu: each variant is
// attempted once, the first success wins, and total failure is remembered.
func (s *ModelSource) ensure() modelState {
	if s.state != modelUninitialized {
		return s.state
	}
	for _, variant := range modelVariants {
		transport, err := s.dial(variant)
		if err != nil {
			s.logf("model variant %q failed: %v", variant, err)
			continue
		}
		s.logf("loaded model variant %q", variant)
		s.transport = transport
		s.state = modelLoaded
		return s.state
	}
	s.state = modelUnavailable
	return s.state
}

// Close ends the sidecar session, if one is active.
func (s *ModelSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return nil
	}
	err := s.transport.close()
	s.transport = nil
	s.state = modelUninitialized
	return err
}

// SegmentFirstFrame asks the model for one mask per seed point.
func (s *ModelSource) SegmentFirstFrame(frame *Frame, points []ClickPoint) (map[int]*Mask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensure() != modelLoaded {
		return nil, errors.New("model is unavailable")
	}

	req := modelRequest{Op: "segment", Frame: frame.Path, Points: points}
	if err := s.transport.send(req); err != nil {
		return nil, errors.Wrap(err, "can't send segment request")
	}
	var resp modelResponse
	if err := s.transport.recv(&resp); err != nil {
		return nil, errors.Wrap(err, "can't read segment response")
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return decodeMasks(resp.Masks)
}

// Propagate asks the model to carry the seeded objects across the whole
// sequence. The sidecar streams one line per frame; a final done line closes
// the exchange.
func (s *ModelSource) Propagate(seq *FrameSequence, initial map[int]*Mask) (map[int][]*Mask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensure() != modelLoaded {
		return nil, errors.New("model is unavailable")
	}

	total := seq.Len()
	paths := make([]string, total)
	for i := range paths {
		paths[i] = seq.Path(i)
	}

	all := make(map[int][]*Mask, len(initial))
	for id := range initial {
		all[id] = make([]*Mask, total)
	}

	if err := s.transport.send(modelRequest{Op: "propagate", Frames: paths}); err != nil {
		return nil, errors.Wrap(err, "can't send propagate request")
	}

	for {
		var resp modelResponse
		if err := s.transport.recv(&resp); err != nil {
			return nil, errors.Wrap(err, "can't read propagate response")
		}
		if resp.Error != "" {
			return nil, errors.New(resp.Error)
		}
		if resp.Done {
			break
		}
		if resp.FrameIndex < 0 || resp.FrameIndex >= total {
			return nil, errors.Errorf("frame index %d out of range", resp.FrameIndex)
		}
		masks, err := decodeMasks(resp.Masks)
		if err != nil {
			return nil, err
		}
		for id, mask := range masks {
			if _, ok := all[id]; ok {
				all[id][resp.FrameIndex] = mask
			}
		}
		if s.Progress != nil {
			s.Progress(resp.FrameIndex+1, total)
		}
	}
	return all, nil
}

// SegmentPoint asks the model for a single-point mask plus its own
// confidence score, for the interactive preview path.
func (s *ModelSource) SegmentPoint(frame *Frame, x, y int) (*Mask, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensure() != modelLoaded {
		return nil, 0, errors.New("model is unavailable")
	}

	req := modelRequest{Op: "segment_point", Frame: frame.Path, X: x, Y: y}
	if err := s.transport.send(req); err != nil {
		return nil, 0, errors.Wrap(err, "can't send point request")
	}
	var resp modelResponse
	if err := s.transport.recv(&resp); err != nil {
		return nil, 0, errors.Wrap(err, "can't read point response")
	}
	if resp.Error != "" {
		return nil, 0, errors.New(resp.Error)
	}
	masks, err := decodeMasks(resp.Masks)
	if err != nil {
		return nil, 0, err
	}
	mask, ok := masks[0]
	if !ok {
		for _, m := range masks {
			mask = m
			break
		}
	}
	if mask == nil {
		return nil, 0, errors.New("model returned no mask")
	}
	return mask, resp.Score, nil
}

func (s *ModelSource) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func decodeMasks(payloads map[string]maskPayload) (map[int]*Mask, error) {
	masks := make(map[int]*Mask, len(payloads))
	for key, payload := range payloads {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Wrapf(err, "bad object id %q", key)
		}
		mask, err := decodeRLE(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "bad mask for object %s", key)
		}
		masks[id] = mask
	}
	return masks, nil
}

// encodeRLE serializes a mask as alternating background/object run lengths,
// background first.
func encodeRLE(mask *Mask) maskPayload {
	payload := maskPayload{W: mask.W, H: mask.H}
	run := 0
	want := uint8(0)
	for _, v := range mask.Pix {
		if v == want {
			run++
			continue
		}
		payload.RLE = append(payload.RLE, run)
		want = v
		run = 1
	}
	payload.RLE = append(payload.RLE, run)
	return payload
}

func decodeRLE(payload maskPayload) (*Mask, error) {
	mask := NewMask(payload.W, payload.H)
	i := 0
	v := uint8(0)
	for _, run := range payload.RLE {
		if run < 0 || i+run > len(mask.Pix) {
			return nil, errors.New("run length exceeds mask size")
		}
		if v != 0 {
			for j := i; j < i+run; j++ {
				mask.Pix[j] = 1
			}
		}
		i += run
		v = 1 - v
	}
	if i != len(mask.Pix) {
		return nil, errors.Errorf("run lengths cover %d of %d pixels", i, len(mask.Pix))
	}
	return mask, nil
}

// procTransport drives a sidecar process over its standard streams.
type procTransport struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	enc     *json.Encoder
}

// dialProcess launches the sidecar for one model variant and waits for its
// READY handshake line. Anything else on the first line means the variant
// failed to load.
func dialProcess(command, variant string) (modelTransport, error) {
	if command == "" {
		return nil, errors.New("no model command configured")
	}
	cmd := exec.Command(command, "--model", variant)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "can't open model stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "can't open model stdout")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "can't start model command %q", command)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	if !scanner.Scan() || scanner.Text() != "READY" {
		stdin.Close()
		cmd.Process.Kill()
		cmd.Wait()
		return nil, errors.Errorf("model variant %q did not become ready", variant)
	}
	return &procTransport{
		cmd:     cmd,
		stdin:   stdin,
		scanner: scanner,
		enc:     json.NewEncoder(stdin),
	}, nil
}

func (t *procTransport) send(req modelRequest) error {
	return t.enc.Encode(req)
}

func (t *procTransport) recv(resp interface{}) error {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	return json.Unmarshal(t.scanner.Bytes(), resp)
}

func (t *procTransport) close() error {
	t.stdin.Close()
	return t.cmd.Wait()
}
