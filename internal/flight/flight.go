// Package flight reads aircraft positions from ADS-B feeds and selects the
// flights overhead.
package flight

import "strings"

// Flight is one aircraft seen by a feed.
type Flight struct {
	Hex          string // ICAO 24-bit address
	Callsign     string
	Registration string
	AircraftType string
	Origin       string // IATA, when the feed knows the route
	Destination  string
	Altitude     int     // Barometric, feet; 0 on the ground
	GroundSpeed  float64 // knots
	Lat          float64
	Lon          float64
	DistanceKm   float64 // From home, set by Filter
	HasPosition  bool
}

// Key identifies the flight across fetches: the callsign, or the hex
// address for aircraft not broadcasting one.
func (f Flight) Key() string {
	if cs := strings.TrimSpace(f.Callsign); cs != "" {
		return strings.ToUpper(cs)
	}
	return strings.ToUpper(strings.TrimSpace(f.Hex))
}

// Journey returns "ORG > DST", or "" when the route is unknown.
func (f Flight) Journey() string {
	if f.Origin == "" && f.Destination == "" {
		return ""
	}
	org, dst := f.Origin, f.Destination
	if org == "" {
		org = "?"
	}
	if dst == "" {
		dst = "?"
	}
	return org + " > " + dst
}
