package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/skyboard/internal/core"
)

// halfBlock draws the upper pixel as foreground and the lower as background,
// so one terminal row shows two panel rows.
const halfBlock = "▀"

type cellColours struct {
	top, bottom core.Pixel
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colours to minimize ANSI escape sequences.
// A nil renderer uses the lipgloss default.
func RenderScreen(r *lipgloss.Renderer, s *core.Screen) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	styles := make(map[cellColours]lipgloss.Style)
	style := func(c cellColours) lipgloss.Style {
		st, ok := styles[c]
		if !ok {
			st = r.NewStyle().
				Foreground(lipgloss.Color(c.top.Hex())).
				Background(lipgloss.Color(c.bottom.Hex()))
			styles[c] = st
		}
		return st
	}

	rows := (s.Height() + 1) / 2
	var sb strings.Builder
	sb.Grow(s.Width()*rows*4 + rows)

	for row := range rows {
		if row > 0 {
			sb.WriteRune('\n')
		}
		y := row * 2

		x := 0
		for x < s.Width() {
			start := cellAt(s, x, y)
			n := 0
			for x < s.Width() && cellAt(s, x, y) == start {
				n++
				x++
			}
			sb.WriteString(style(start).Render(strings.Repeat(halfBlock, n)))
		}
	}
	return sb.String()
}

// cellAt reads the pixel pair for a terminal cell. Rows past the bottom edge read as black.
func cellAt(s *core.Screen, x, y int) cellColours {
	return cellColours{top: s.Get(x, y), bottom: s.Get(x, y+1)}
}
