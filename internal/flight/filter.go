package flight

import (
	"cmp"
	"math"
	"slices"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Filter selects the flights worth showing.
type Filter struct {
	HomeLat     float64
	HomeLon     float64
	RadiusKm    float64
	MinAltitude int
	MaxAltitude int
	MaxFlights  int // 0 keeps every match
}

// Apply drops flights without a position, outside the radius or outside the
// altitude window, and returns the rest nearest first. When a key appears
// more than once the nearest report is kept.
func (f Filter) Apply(flights []Flight) []Flight {
	candidates := make([]Flight, 0, len(flights))
	for _, fl := range flights {
		if !fl.HasPosition || fl.Key() == "" {
			continue
		}
		if fl.Altitude < f.MinAltitude || (f.MaxAltitude > 0 && fl.Altitude > f.MaxAltitude) {
			continue
		}
		fl.DistanceKm = Haversine(f.HomeLat, f.HomeLon, fl.Lat, fl.Lon)
		if f.RadiusKm > 0 && fl.DistanceKm > f.RadiusKm {
			continue
		}
		candidates = append(candidates, fl)
	}

	slices.SortStableFunc(candidates, func(a, b Flight) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, fl := range candidates {
		if seen[fl.Key()] {
			continue
		}
		seen[fl.Key()] = true
		out = append(out, fl)
		if f.MaxFlights > 0 && len(out) == f.MaxFlights {
			break
		}
	}
	return out
}
