package core

import "strings"

// Screen is the pixel frame buffer every scene draws into.
// It mirrors the LED matrix: one Pixel per LED, black meaning off.
type Screen struct {
	width  int
	height int
	pix    []Pixel
}

// NewScreen creates a black screen with the given dimensions.
func NewScreen(width, height int) *Screen {
	return &Screen{
		width:  width,
		height: height,
		pix:    make([]Pixel, width*height),
	}
}

// Width returns the screen width in pixels.
func (s *Screen) Width() int {
	return s.width
}

// Height returns the screen height in pixels.
func (s *Screen) Height() int {
	return s.height
}

// Bounds returns the full screen rectangle.
func (s *Screen) Bounds() Rect {
	return Rect{W: s.width, H: s.height}
}

// Clear turns every pixel off.
func (s *Screen) Clear() {
	for i := range s.pix {
		s.pix[i] = Black
	}
}

// SetPixel sets a single pixel.
// Out-of-bounds coordinates are silently ignored.
func (s *Screen) SetPixel(x, y int, p Pixel) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.pix[y*s.width+x] = p
}

// Get returns the pixel at (x, y), or Black outside the screen.
func (s *Screen) Get(x, y int) Pixel {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return Black
	}
	return s.pix[y*s.width+x]
}

// DrawLine draws a straight line between two points (inclusive).
func (s *Screen) DrawLine(x0, y0, x1, y1 int, p Pixel) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		s.SetPixel(x0, y0, p)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawHLine draws a horizontal run of length pixels starting at (x, y).
func (s *Screen) DrawHLine(x, y, length int, p Pixel) {
	for i := 0; i < length; i++ {
		s.SetPixel(x+i, y, p)
	}
}

// DrawVLine draws a vertical run of length pixels starting at (x, y).
func (s *Screen) DrawVLine(x, y, length int, p Pixel) {
	for i := 0; i < length; i++ {
		s.SetPixel(x, y+i, p)
	}
}

// DrawRect fills a rectangular area.
func (s *Screen) DrawRect(r Rect, p Pixel) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			s.SetPixel(x, y, p)
		}
	}
}

// DrawSprite draws a sprite whose non-space characters are lit pixels.
// Drawing the same sprite in Black erases it.
func (s *Screen) DrawSprite(x, y int, sprite []string, p Pixel) {
	for row, line := range sprite {
		for col, ch := range line {
			if ch != ' ' {
				s.SetPixel(x+col, y+row, p)
			}
		}
	}
}

// CopyFrom overwrites this screen with the contents of src.
// Both screens must have the same dimensions; extra pixels are ignored.
func (s *Screen) CopyFrom(src *Screen) {
	copy(s.pix, src.pix)
}

// Clone returns an independent copy of the screen.
func (s *Screen) Clone() *Screen {
	c := NewScreen(s.width, s.height)
	c.CopyFrom(s)
	return c
}

// Lit returns the number of pixels that are not black.
func (s *Screen) Lit() int {
	n := 0
	for _, p := range s.pix {
		if !p.IsBlack() {
			n++
		}
	}
	return n
}

// String renders the buffer as text, '#' for lit pixels and '.' for off.
// Used for screenshots and test diagnostics.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)
	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < s.width; x++ {
			if s.Get(x, y).IsBlack() {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('#')
			}
		}
	}
	return sb.String()
}
