// skyboard drives an LED pixel display showing the flights overhead,
// the weather and the time.
//
// Usage:
//
//	skyboard run              - Run the display (terminal viewer unless --headless)
//	skyboard features         - List available features
//	skyboard sightings        - Show recently seen flights
//	skyboard weather          - Fetch and print the current weather once
//
// Global flags:
//
//	--config <path> - Config file (default: search ~/.skyboard, ./configs, embedded)
//	--fps <rate>    - Viewer refresh rate (default: display.viewer_fps)
//	--db <path>     - Sightings database (default: storage.db_path)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/skyboard/internal/config"
	"github.com/vovakirdan/skyboard/internal/logger"

	// Import features to register them
	_ "github.com/vovakirdan/skyboard/internal/scenes/clearscreen"
	_ "github.com/vovakirdan/skyboard/internal/scenes/clock"
	_ "github.com/vovakirdan/skyboard/internal/scenes/date"
	_ "github.com/vovakirdan/skyboard/internal/scenes/day"
	_ "github.com/vovakirdan/skyboard/internal/scenes/flights"
	_ "github.com/vovakirdan/skyboard/internal/scenes/loading"
	_ "github.com/vovakirdan/skyboard/internal/scenes/power"
	_ "github.com/vovakirdan/skyboard/internal/scenes/weather"
)

var (
	// Global flags
	flagConfig string
	flagFPS    int
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skyboard",
	Short: "Skyboard - flights overhead on an LED matrix",
	Long: `Skyboard composes a 64x32 LED display from independent features:
the flights currently overhead, the weather, the time and date.

Available commands:
  run        - Run the display
  features   - Show all available features
  sightings  - Show recently seen flights
  weather    - Fetch the weather once

Examples:
  skyboard run
  skyboard run --headless --ssh :23234
  skyboard features
  skyboard sightings --limit 5`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Viewer refresh rate (0 = config value)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to sightings database (empty = config value)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(sightingsCmd)
	rootCmd.AddCommand(weatherCmd)
}

// loadConfig reads the config and applies the global flag overrides.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagFPS > 0 {
		cfg.Display.ViewerFPS = flagFPS
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: unknown log level %q\n", cfg.Log.Level)
	}
	return cfg
}
