package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/skyboard/internal/app"
	"github.com/vovakirdan/skyboard/internal/config"
	"github.com/vovakirdan/skyboard/internal/logger"
	"github.com/vovakirdan/skyboard/internal/platform/tui"
)

var (
	flagHeadless bool
	flagSSHAddr  string
	flagHostKey  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the display",
	Long: `Run the display until interrupted.

The panel is shown in the terminal unless --headless is set or stdout is
not a terminal. With --ssh, every SSH session gets a live mirror.

Controls (terminal viewer):
  Ctrl+S     - Save a screenshot to ~/.skyboard/screenshots
  Q/Ctrl+C   - Quit

Examples:
  skyboard run
  skyboard run --config ./skyboard.yaml
  skyboard run --headless --ssh :23234
  skyboard run --ssh :2222 --host-key ./host_key`,
	Run: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Run without the terminal viewer")
	runCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "Serve an SSH mirror on this address (host:port)")
	runCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
}

func runRun(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := runDisplay(ctx, cfg)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Exiting")
}

func runDisplay(ctx context.Context, cfg config.Config) error {
	headless := flagHeadless || !term.IsTerminal(int(os.Stdout.Fd()))
	if !headless {
		// The viewer owns the terminal; log lines would tear the frame.
		f, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		defer f.Close()
	}

	hub := tui.NewHub(cfg.Display.Width, cfg.Display.Height)
	var mirror *tui.MirrorServer
	if flagSSHAddr != "" {
		mcfg := tui.DefaultMirrorConfig()
		mcfg.Address = flagSSHAddr
		mcfg.HostKeyPath = flagHostKey
		mcfg.FPS = cfg.Display.ViewerFPS
		srv, err := tui.NewMirrorServer(mcfg, hub)
		if err != nil {
			return err
		}
		mirror = srv
	}

	a, err := app.New(cfg, hub)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log := logger.WithComponent("run")

	var wg conc.WaitGroup
	if mirror != nil {
		srv := mirror
		wg.Go(func() {
			if err := srv.Serve(ctx); err != nil {
				log.Error("ssh mirror stopped", "err", err)
			}
		})
	}
	if !headless {
		wg.Go(func() {
			defer cancel()
			if err := tui.RunViewer(ctx, hub, cfg.Display.ViewerFPS); err != nil {
				log.Error("viewer stopped", "err", err)
			}
		})
	}

	err = a.Run(ctx)
	cancel()
	wg.Wait()
	return err
}
