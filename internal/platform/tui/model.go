package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// screenshotMsg reports the outcome of a screenshot write.
type screenshotMsg struct {
	path string
	err  error
}

// ViewerModel is the Bubble Tea model showing a hub. It polls the hub on its
// own tick and only re-renders when a new frame has been presented.
type ViewerModel struct {
	hub      *Hub
	renderer *lipgloss.Renderer
	fps      int
	keys     KeyMap

	// ScreenshotDir is where ctrl+s writes frames; empty means
	// ~/.skyboard/screenshots.
	ScreenshotDir string

	version  uint64
	view     string
	status   string
	quitting bool
}

// NewViewerModel creates a viewer over hub. A nil renderer uses the lipgloss default.
func NewViewerModel(hub *Hub, renderer *lipgloss.Renderer, fps int) ViewerModel {
	return ViewerModel{
		hub:      hub,
		renderer: renderer,
		fps:      fps,
		keys:     DefaultKeyMap(),
	}
}

// Init starts the refresh loop.
func (m ViewerModel) Init() tea.Cmd {
	return tickCmd(m.fps)
}

// Update handles messages and updates the model state.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Screenshot):
			return m, m.saveScreenshot()
		}

	case screenshotMsg:
		if msg.err != nil {
			m.status = "screenshot failed: " + msg.err.Error()
		} else {
			m.status = "saved " + msg.path
		}

	case TickMsg:
		m.refresh()
		return m, tickCmd(m.fps)
	}

	return m, nil
}

// refresh re-renders only when the hub has a newer frame.
func (m *ViewerModel) refresh() {
	if m.view != "" && m.hub.Version() == m.version {
		return
	}
	frame, version := m.hub.Frame()
	m.view = RenderScreen(m.renderer, frame)
	m.version = version
}

// saveScreenshot writes the current frame as text.
func (m ViewerModel) saveScreenshot() tea.Cmd {
	frame, _ := m.hub.Frame()
	dir := m.ScreenshotDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return screenshotMsg{err: err}
			}
			dir = filepath.Join(home, ".skyboard", "screenshots")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return screenshotMsg{err: err}
		}
		path := filepath.Join(dir, fmt.Sprintf("skyboard_%s.txt", time.Now().Format("20060102_150405")))
		err := os.WriteFile(path, []byte(frame.String()+"\n"), 0o600)
		return screenshotMsg{path: path, err: err}
	}
}

// View renders the current state to a string for display.
func (m ViewerModel) View() string {
	if m.quitting {
		return ""
	}
	help := make([]string, 0, 2)
	for _, b := range m.keys.ShortHelp() {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}
	status := strings.Join(help, " • ")
	if m.status != "" {
		status += "  " + m.status
	}
	faint := lipgloss.NewStyle().Faint(true)
	if m.renderer != nil {
		faint = m.renderer.NewStyle().Faint(true)
	}
	return m.view + "\n" + faint.Render(status)
}

// RunViewer shows hub in the local terminal until the user quits or ctx is
// cancelled. Quitting returns nil; the caller decides what it means.
func RunViewer(ctx context.Context, hub *Hub, fps int) error {
	p := tea.NewProgram(
		NewViewerModel(hub, nil, fps),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
