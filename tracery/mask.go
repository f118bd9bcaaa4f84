package tracery

// Mask is a binary per-pixel ownership bitmap for one object in one frame.
// Values are 0 (background) or 1 (object). Its dimensions always equal the
// dimensions of the frame it was produced from. An absent mask for a given
// (object, frame) cell is represented by a nil *Mask, which is distinct from
// an all-zero Mask.
type Mask struct {
	W   int
	H   int
	Pix []uint8
}

// NewMask creates an all-zero mask of the given dimensions.
func NewMask(w, h int) *Mask {
	return &Mask{
		W:   w,
		H:   h,
		Pix: make([]uint8, w*h),
	}
}

// At reports whether the pixel at (x, y) belongs to the object.
func (m *Mask) At(x, y int) uint8 {
	return m.Pix[y*m.W+x]
}

// Set marks the pixel at (x, y).
func (m *Mask) Set(x, y int, v uint8) {
	m.Pix[y*m.W+x] = v
}

// Area returns the number of object pixels.
func (m *Mask) Area() int {
	area := 0
	for _, v := range m.Pix {
		if v != 0 {
			area++
		}
	}
	return area
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	c := &Mask{
		W:   m.W,
		H:   m.H,
		Pix: make([]uint8, len(m.Pix)),
	}
	copy(c.Pix, m.Pix)
	return c
}

// Equal reports whether two masks have identical dimensions and pixels.
func (m *Mask) Equal(other *Mask) bool {
	if m.W != other.W || m.H != other.H {
		return false
	}
	for i := range m.Pix {
		if m.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

// bytes255 renders the mask as a 0/255 byte plane for OpenCV interop.
func (m *Mask) bytes255() []uint8 {
	out := make([]uint8, len(m.Pix))
	for i, v := range m.Pix {
		if v != 0 {
			out[i] = 255
		}
	}
	return out
}

// maskFromBytes builds a binary mask from a byte plane, treating any nonzero
// byte as an object pixel.
func maskFromBytes(w, h int, data []uint8) *Mask {
	m := NewMask(w, h)
	for i, v := range data {
		if v != 0 {
			m.Pix[i] = 1
		}
	}
	return m
}
