package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/skyboard/internal/weather"
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Fetch the weather once",
	Long: `Run the weather provider chains once and print what the display would show.
Useful for checking API keys and provider fallbacks.`,
	Run: runWeather,
}

func runWeather(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	svc, err := weather.NewService(cfg.Weather)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Weather.Provider.FetchTimeout)
	defer cancel()
	reports, err := svc.Fetch(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Weather for %s\n", cfg.Weather.Location)
	fmt.Println()

	chains := svc.Providers()
	names := make([]string, 0, len(chains))
	for name := range chains {
		names = append(names, name)
	}
	sort.Strings(names)
	stats := svc.Stats()
	for _, name := range names {
		st := stats[name]
		fmt.Printf("  %-11s  %-24s  attempts %d, failures %d\n",
			name, strings.Join(chains[name], " > "), st.Attempts, st.Failures)
	}
	fmt.Println()

	if len(reports) == 0 {
		fmt.Println("No weather available.")
		return
	}
	r := reports[0]
	unit := "C"
	if cfg.Weather.Units == weather.UnitsImperial {
		unit = "F"
	}
	if r.Current != nil {
		fmt.Printf("  Now:       %.1f°%s (%s)\n", weather.ToUnits(r.Current.Celsius, cfg.Weather.Units), unit, r.Current.Source)
	}
	if r.Forecast != nil {
		fmt.Printf("  +2h:       %.1f°%s at %s, %s\n", weather.ToUnits(r.Forecast.Celsius, cfg.Weather.Units), unit,
			r.Forecast.Time, weather.IconCategory(r.Forecast.Icon))
	}
	if len(r.Hourly) > 0 {
		var total float64
		upcoming := weather.UpcomingHours(r.Hourly, time.Now(), cfg.Weather.RainfallHours)
		for _, h := range upcoming {
			total += h.PrecipMM
		}
		fmt.Printf("  Rainfall:  %.1fmm over the next %d hours\n", total, len(upcoming))
	}
}
