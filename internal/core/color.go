package core

import "fmt"

// Pixel is a 24-bit RGB colour as driven onto the LED matrix.
type Pixel struct {
	R, G, B uint8
}

// Palette used by the scenes.
var (
	Black      = Pixel{0, 0, 0}
	White      = Pixel{255, 255, 255}
	Grey       = Pixel{64, 64, 64}
	Red        = Pixel{255, 0, 0}
	Green      = Pixel{0, 200, 0}
	Blue       = Pixel{55, 14, 237}
	BlueLight  = Pixel{153, 204, 255}
	BlueDark   = Pixel{0, 0, 128}
	PinkDark   = Pixel{112, 0, 145}
	Yellow     = Pixel{255, 255, 0}
	Orange     = Pixel{227, 110, 0}
	Purple     = Pixel{160, 32, 240}
	GreenLight = Pixel{110, 182, 48}
)

// IsBlack reports whether the pixel is fully off.
func (p Pixel) IsBlack() bool {
	return p.R == 0 && p.G == 0 && p.B == 0
}

// Scale dims the pixel to percent of its intensity (0-100).
func (p Pixel) Scale(percent int) Pixel {
	percent = Clamp(percent, 0, 100)
	return Pixel{
		R: uint8(int(p.R) * percent / 100),
		G: uint8(int(p.G) * percent / 100),
		B: uint8(int(p.B) * percent / 100),
	}
}

// Hex returns the colour as #rrggbb.
func (p Pixel) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", p.R, p.G, p.B)
}

// Lerp blends from a towards b by ratio in [0, 1].
func Lerp(a, b Pixel, ratio float64) Pixel {
	ratio = ClampF(ratio, 0, 1)
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*ratio)
	}
	return Pixel{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}
