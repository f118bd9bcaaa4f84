package tracery

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// previewPolygonPoints caps polygon size on the interactive path, where
// results cross a process boundary on every click.
const previewPolygonPoints = 32

// PreviewQuery is one single-point segmentation request.
type PreviewQuery struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// PreviewResult is the successful response to a PreviewQuery.
type PreviewResult struct {
	BBox     [4]int     `json:"bbox"`
	Polygon  Polygon    `json:"polygon"`
	Score    float64    `json:"score"`
	Centroid [2]float64 `json:"centroid"`
}

type previewFailure struct {
	Error string `json:"error"`
}

// PreviewServer serves the interactive single-point query protocol over a
// persistent line-JSON channel: one request line in, one response line out,
// always. A malformed request gets an error response and never ends the
// session; a literal QUIT line or channel closure does.
type PreviewServer struct {
	Frame     *Frame
	Segmenter PointSegmenter
}

// NewPreviewServer creates a server answering queries against one frame.
func NewPreviewServer(frame *Frame, segmenter PointSegmenter) *PreviewServer {
	return &PreviewServer{
		Frame:     frame,
		Segmenter: segmenter,
	}
}

// Serve reads queries from r until QUIT or EOF, writing one JSON line per
// query to w.
func (s *PreviewServer) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	enc := json.NewEncoder(w)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "QUIT" {
			break
		}
		if err := enc.Encode(s.handle(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *PreviewServer) handle(line string) interface{} {
	var query PreviewQuery
	if err := json.Unmarshal([]byte(line), &query); err != nil {
		return previewFailure{Error: "invalid query: " + err.Error()}
	}
	if query.X == nil || query.Y == nil {
		return previewFailure{Error: "query requires x and y"}
	}

	mask, score, err := s.Segmenter.SegmentPoint(s.Frame, *query.X, *query.Y)
	if err != nil {
		return previewFailure{Error: err.Error()}
	}

	polygon, err := ToPolygon(mask, previewPolygonPoints)
	if err != nil {
		return previewFailure{Error: err.Error()}
	}

	result := PreviewResult{
		Polygon: polygon,
		Score:   round4(score),
	}

	m00, m10, m01 := 0, 0, 0
	minX, minY := mask.W, mask.H
	maxX, maxY := -1, -1
	for y := 0; y < mask.H; y++ {
		for x := 0; x < mask.W; x++ {
			if mask.At(x, y) == 0 {
				continue
			}
			m00++
			m10 += x
			m01 += y
			minX = minInt(minX, x)
			minY = minInt(minY, y)
			maxX = maxInt(maxX, x)
			maxY = maxInt(maxY, y)
		}
	}
	if m00 > 0 {
		result.BBox = [4]int{minX, minY, maxX + 1, maxY + 1}
		result.Centroid = [2]float64{
			round2(float64(m10) / float64(m00)),
			round2(float64(m01) / float64(m00)),
		}
	} else {
		// An empty mask answers with the clicked point itself: that is
		// where the user is pointing, a canvas-center default would jump
		// the preview away from the cursor.
		result.BBox = [4]int{0, 0, mask.W, mask.H}
		result.Centroid = [2]float64{float64(*query.X), float64(*query.Y)}
	}
	return result
}
