package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/skyboard/internal/logger"
)

// MirrorConfig holds configuration for the SSH mirror.
type MirrorConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.skyboard/host_key.
	HostKeyPath string

	// FPS is the viewer refresh rate per session.
	FPS int

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultMirrorConfig returns a config with sensible defaults.
func DefaultMirrorConfig() MirrorConfig {
	return MirrorConfig{
		Address:     ":23234",
		FPS:         10,
		IdleTimeout: 30 * time.Minute,
	}
}

// MirrorServer serves read-only views of a hub over SSH. Every session gets
// its own ViewerModel over the same frames.
type MirrorServer struct {
	config MirrorConfig
	hub    *Hub
	server *ssh.Server
	logger *log.Logger
}

// NewMirrorServer creates an SSH mirror of hub.
func NewMirrorServer(cfg MirrorConfig, hub *Hub) (*MirrorServer, error) {
	if hub == nil {
		return nil, errors.New("tui: mirror needs a hub")
	}
	srv := &MirrorServer{
		config: cfg,
		hub:    hub,
		logger: logger.WithComponent("ssh"),
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".skyboard", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a viewer for each SSH session.
func (s *MirrorServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	if _, _, ok := sess.Pty(); !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}
	model := NewViewerModel(s.hub, bubbletea.MakeRenderer(sess), s.config.FPS)
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events.
func (s *MirrorServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// Serve listens until ctx is cancelled, then shuts the server down.
func (s *MirrorServer) Serve(ctx context.Context) error {
	s.logger.Info("starting SSH mirror", "address", s.config.Address)

	errc := make(chan error, 1)
	go func() {
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("tui: ssh mirror: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Addr returns the server's listen address string.
func (s *MirrorServer) Addr() string {
	return s.config.Address
}
