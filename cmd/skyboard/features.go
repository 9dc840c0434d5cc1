package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/skyboard/internal/registry"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List all available features",
	Long:  `Shows every registered feature and whether the current config enables it.`,
	Run:   runFeatures,
}

func runFeatures(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	features := registry.List()

	if len(features) == 0 {
		fmt.Println("No features available.")
		return
	}

	fmt.Println("Available features:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, f := range features {
		if len(f.ID) > maxIDLen {
			maxIDLen = len(f.ID)
		}
	}

	fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, "ID", "Enabled", "Title")
	fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, "--", "-------", "-----")

	for _, f := range features {
		enabled := ""
		if cfg.Enabled(f.ID) {
			enabled = "yes"
		}
		fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, f.ID, enabled, f.Title)
	}

	fmt.Println()
	fmt.Println("Enable features with the 'features' list in the config file.")
}
