// Package logger holds the process-wide structured logger.
// Components take a prefixed child with WithComponent so log lines can be
// traced back to the scene, channel or provider that emitted them.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the root logger. It writes to stderr until Configure redirects it.
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "skyboard",
})

func init() {
	// Override from env, e.g. LOG_LEVEL=debug
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if parsed, err := log.ParseLevel(strings.ToLower(level)); err == nil {
			Logger.SetLevel(parsed)
		}
	}
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) *log.Logger {
	return Logger.WithPrefix("skyboard/" + component)
}

// SetLevel parses and applies a level name. Unknown names leave the level unchanged.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	parsed, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	Logger.SetLevel(parsed)
	return nil
}

// SetOutput redirects the root logger and every child created afterwards.
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// OpenFile redirects logging into path, creating parent directories.
// A leading ~ is expanded to the home directory. The caller closes the file.
func OpenFile(path string) (*os.File, error) {
	if path != "" && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[1:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	SetOutput(f)
	return f, nil
}
