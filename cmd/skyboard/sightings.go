package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/skyboard/internal/storage"
)

var flagLimit int

var sightingsCmd = &cobra.Command{
	Use:   "sightings",
	Short: "Show recently seen flights",
	Long: `Display the latest sightings and the most frequently seen callsigns.

Examples:
  skyboard sightings
  skyboard sightings --limit 50
  skyboard sightings --db ./sightings.db`,
	Run: runSightings,
}

func init() {
	sightingsCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of sightings to show")
}

func runSightings(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	ctx := context.Background()

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sightings database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	recent, err := store.RecentSightings(ctx, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sightings: %v\n", err)
		return
	}

	fmt.Println("Recent sightings")
	fmt.Println()
	if len(recent) == 0 {
		fmt.Println("No flights recorded yet.")
		fmt.Println()
		fmt.Println("Run 'skyboard run' to start recording.")
		return
	}

	fmt.Printf("  %-16s  %-8s  %-6s  %-11s  %7s  %6s\n", "Seen", "Callsign", "Type", "Route", "Alt ft", "km")
	fmt.Printf("  %-16s  %-8s  %-6s  %-11s  %7s  %6s\n", "----", "--------", "----", "-----", "------", "--")
	for _, s := range recent {
		route := ""
		if s.Origin != "" || s.Destination != "" {
			route = s.Origin + " > " + s.Destination
		}
		fmt.Printf("  %-16s  %-8s  %-6s  %-11s  %7d  %6.1f\n",
			s.SeenAt.Local().Format("2006-01-02 15:04"), s.Callsign, s.AircraftType, route, s.Altitude, s.DistanceKm)
	}

	top, err := store.TopCallsigns(ctx, 5)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving callsigns: %v\n", err)
		return
	}
	fmt.Println()
	fmt.Println("Most seen")
	fmt.Println()
	for i, c := range top {
		fmt.Printf("  %d. %-8s  %4d  (last %s)\n", i+1, c.Callsign, c.Count, c.LastSeen.Local().Format("2006-01-02 15:04"))
	}
}
