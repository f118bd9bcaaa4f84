package tracery

// AnalysisResult is the per-frame geometry and photometry of one tracked
// object. Coordinates and motion vectors are rounded to 2 decimal places,
// normalized scores to 4, so repeated runs produce comparable output.
type AnalysisResult struct {
	FrameIndex   int        `json:"frame_index"`
	Time         float64    `json:"time"`
	Centroid     [2]float64 `json:"centroid"`
	BBox         [4]int     `json:"bbox"`
	Polygon      Polygon    `json:"polygon"`
	Area         int        `json:"area"`
	AvgLuma      float64    `json:"avg_luma"`
	MotionVector [2]float64 `json:"motion_vector"`
	Confidence   float64    `json:"confidence"`
}

// Analyzer extracts per-frame features from a mask and its frame.
type Analyzer struct {
	// MaxPolygonPoints caps the simplified polygon's vertex count.
	MaxPolygonPoints int
}

// NewAnalyzer creates an Analyzer with the full-analysis polygon cap of 64
// vertices. The interactive preview path uses 32.
func NewAnalyzer() *Analyzer {
	return &Analyzer{MaxPolygonPoints: 64}
}

// Analyze computes centroid, bounding box, polygon, area, average luminance
// and motion vector for one (object, frame) cell. prevCentroid is the same
// object's centroid on the previous frame; nil on the first frame yields a
// zero motion vector. FrameIndex, Time and Confidence are left for the
// orchestrator, which owns the canvas context they need.
func (a *Analyzer) Analyze(frame *Frame, mask *Mask, prevCentroid *Point) (AnalysisResult, error) {
	res := AnalysisResult{}

	// First-order image moments.
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

	var cx, cy float64
	if m00 > 0 {
		cx = float64(m10) / float64(m00)
		cy = float64(m01) / float64(m00)
		res.BBox = [4]int{minX, minY, maxX + 1, maxY + 1}
	} else {
		cx = float64(frame.W) / 2.0
		cy = float64(frame.H) / 2.0
		res.BBox = [4]int{0, 0, frame.W, frame.H}
	}
	res.Centroid = [2]float64{round2(cx), round2(cy)}
	res.Area = m00

	// Average luminance over the masked pixels only.
	if m00 > 0 {
		gray := frame.Gray()
		sum := 0.0
		for i, v := range mask.Pix {
			if v != 0 {
				sum += float64(gray[i])
			}
		}
		res.AvgLuma = round4(sum / float64(m00) / 255.0)
	}

	polygon, err := ToPolygon(mask, a.MaxPolygonPoints)
	if err != nil {
		return AnalysisResult{}, err
	}
	res.Polygon = polygon

	if prevCentroid != nil {
		res.MotionVector = [2]float64{
			round2(res.Centroid[0] - prevCentroid.X),
			round2(res.Centroid[1] - prevCentroid.Y),
		}
	}
	return res, nil
}
