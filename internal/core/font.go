package core

import "unicode"

// Built-in 3x5 pixel font. Each glyph row is three bits, MSB leftmost.
const (
	GlyphWidth   = 3
	GlyphHeight  = 5
	GlyphAdvance = GlyphWidth + 1
)

var glyphs = map[rune][GlyphHeight]uint8{
	'0': {7, 5, 5, 5, 7}, '1': {2, 6, 2, 2, 7}, '2': {7, 1, 7, 4, 7},
	'3': {7, 1, 7, 1, 7}, '4': {5, 5, 7, 1, 1}, '5': {7, 4, 7, 1, 7},
	'6': {7, 4, 7, 5, 7}, '7': {7, 1, 1, 2, 2}, '8': {7, 5, 7, 5, 7},
	'9': {7, 5, 7, 1, 7},
	'A': {2, 5, 7, 5, 5}, 'B': {6, 5, 6, 5, 6}, 'C': {3, 4, 4, 4, 3},
	'D': {6, 5, 5, 5, 6}, 'E': {7, 4, 6, 4, 7}, 'F': {7, 4, 6, 4, 4},
	'G': {3, 4, 5, 5, 3}, 'H': {5, 5, 7, 5, 5}, 'I': {7, 2, 2, 2, 7},
	'J': {1, 1, 1, 5, 2}, 'K': {5, 5, 6, 5, 5}, 'L': {4, 4, 4, 4, 7},
	'M': {5, 7, 7, 5, 5}, 'N': {6, 5, 5, 5, 5}, 'O': {2, 5, 5, 5, 2},
	'P': {6, 5, 6, 4, 4}, 'Q': {2, 5, 5, 6, 3}, 'R': {6, 5, 6, 5, 5},
	'S': {3, 4, 2, 1, 6}, 'T': {7, 2, 2, 2, 2}, 'U': {5, 5, 5, 5, 7},
	'V': {5, 5, 5, 5, 2}, 'W': {5, 5, 7, 7, 5}, 'X': {5, 5, 2, 5, 5},
	'Y': {5, 5, 2, 2, 2}, 'Z': {7, 1, 2, 4, 7},
	' ': {0, 0, 0, 0, 0}, ':': {0, 2, 0, 2, 0}, '-': {0, 0, 7, 0, 0},
	'+': {0, 2, 7, 2, 0}, '.': {0, 0, 0, 0, 2}, '/': {1, 1, 2, 4, 4},
	'>': {4, 2, 1, 2, 4}, '°': {7, 5, 7, 0, 0}, '%': {5, 1, 2, 4, 5},
	'?': {7, 1, 2, 0, 2},
}

// TextWidth returns the pixel width DrawText would use for text.
func TextWidth(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	return n*GlyphAdvance - 1
}

// DrawText draws text with the built-in font, top-left at (x, y).
// Lower-case letters are drawn upper-case and unknown runes as '?'.
// Returns the pixel width drawn.
func (s *Screen) DrawText(x, y int, text string, p Pixel) int {
	cx := x
	for _, r := range text {
		g, ok := glyphs[unicode.ToUpper(r)]
		if !ok {
			g = glyphs['?']
		}
		for row := 0; row < GlyphHeight; row++ {
			bits := g[row]
			for col := 0; col < GlyphWidth; col++ {
				if bits&(1<<(GlyphWidth-1-col)) != 0 {
					s.SetPixel(cx+col, y+row, p)
				}
			}
		}
		cx += GlyphAdvance
	}
	return TextWidth(text)
}
