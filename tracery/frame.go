package tracery

import (
	"image"
	"os"

	// Frame sequences are PNG renders; JPEG shows up in hand-prepared inputs.
	_ "image/jpeg"
	_ "image/png"
)

// Frame is one decoded video frame: an immutable 8-bit color image with its
// position in the sequence. Pixels are stored as interleaved RGB.
type Frame struct {
	Index int
	Path  string
	W     int
	H     int
	pix   []uint8
}

// LoadFrame reads and decodes the frame file at path. A file that cannot be
// opened or decoded yields a FrameReadError.
func LoadFrame(path string, index int) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FrameReadError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &FrameReadError{Path: path, Err: err}
	}
	fr := NewFrameFromImage(img)
	fr.Index = index
	fr.Path = path
	return fr, nil
}

// NewFrameFromImage converts a decoded image into a Frame.
func NewFrameFromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	pix := make([]uint8, 3*w*h)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pix[i] = uint8(r >> 8)
			pix[i+1] = uint8(g >> 8)
			pix[i+2] = uint8(b >> 8)
			i += 3
		}
	}
	return &Frame{W: w, H: h, pix: pix}
}

// RGBAt returns the color channels of the pixel at (x, y).
func (f *Frame) RGBAt(x, y int) (uint8, uint8, uint8) {
	i := 3 * (y*f.W + x)
	return f.pix[i], f.pix[i+1], f.pix[i+2]
}

// Gray renders the frame as a single-channel luma plane using the BT.601
// weights (0.299 R + 0.587 G + 0.114 B).
func (f *Frame) Gray() []uint8 {
	gray := make([]uint8, f.W*f.H)
	for i := range gray {
		r := float64(f.pix[3*i])
		g := float64(f.pix[3*i+1])
		b := float64(f.pix[3*i+2])
		gray[i] = uint8(0.299*r + 0.587*g + 0.114*b + 0.5)
	}
	return gray
}
