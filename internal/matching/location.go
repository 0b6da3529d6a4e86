package matching

import (
	"math"
	"strings"

	"matching-workers/internal/models"
)

// UnknownRegion is reported for any location no configured city or hub
// matches.
const UnknownRegion = "Unknown"

const earthRadiusKm = 6371.0

// Heuristic distances used when either side lacks coordinates.
const (
	sameCityKm    = 5.0
	sameRegionKm  = 25.0
	otherRegionKm = 100.0
)

const (
	distanceWeight  = 0.4
	transportWeight = 0.3
	regionalWeight  = 0.3
)

type ResolvedLocation struct {
	Region       string       `json:"region"`
	City         string       `json:"city"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	TransportHub bool         `json:"transportHub"`
}

type compiledRegion struct {
	name   string
	coords *Coordinates
	cities map[string]string
	hubs   map[string]string
}

// LocationResolver buckets free-text locations into configured regions.
type LocationResolver struct {
	regions []compiledRegion
}

func NewLocationResolver(regions []Region) *LocationResolver {
	r := &LocationResolver{regions: make([]compiledRegion, 0, len(regions))}
	for _, region := range regions {
		cr := compiledRegion{
			name:   region.Name,
			cities: make(map[string]string, len(region.Cities)),
			hubs:   make(map[string]string, len(region.TransportHubs)),
		}
		if region.Coordinates != nil {
			c := *region.Coordinates
			cr.coords = &c
		}
		for _, city := range region.Cities {
			if k := fold(city); k != "" {
				cr.cities[k] = strings.TrimSpace(city)
			}
		}
		for _, hub := range region.TransportHubs {
			if k := fold(hub); k != "" {
				cr.hubs[k] = strings.TrimSpace(hub)
			}
		}
		r.regions = append(r.regions, cr)
	}
	return r
}

// Resolve splits text on commas and returns the first region, in table
// order, with a city or transport hub equal to one of the parts.
func (r *LocationResolver) Resolve(text string) ResolvedLocation {
	var parts []string
	for _, p := range strings.Split(text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ResolvedLocation{Region: UnknownRegion, City: UnknownRegion}
	}

	for _, region := range r.regions {
		for _, part := range parts {
			key := fold(part)
			if city, ok := region.cities[key]; ok {
				_, hub := region.hubs[key]
				return ResolvedLocation{Region: region.name, City: city, Coordinates: region.coords, TransportHub: hub}
			}
			if hub, ok := region.hubs[key]; ok {
				return ResolvedLocation{Region: region.name, City: hub, Coordinates: region.coords, TransportHub: true}
			}
		}
	}

	return ResolvedLocation{Region: UnknownRegion, City: parts[0]}
}

// SameRegion compares resolved region names, so two unresolved locations
// share the Unknown region.
func SameRegion(a, b ResolvedLocation) bool {
	return a.Region == b.Region
}

// Distance returns kilometres between a and b: great-circle when both have
// coordinates, otherwise a city/region heuristic.
func (r *LocationResolver) Distance(a, b ResolvedLocation) float64 {
	if a.Coordinates != nil && b.Coordinates != nil {
		return haversine(*a.Coordinates, *b.Coordinates)
	}
	if SameRegion(a, b) && fold(a.City) != "" && fold(a.City) == fold(b.City) {
		return sameCityKm
	}
	if SameRegion(a, b) {
		return sameRegionKm
	}
	return otherRegionKm
}

func (r *LocationResolver) TransportScore(a, b ResolvedLocation) float64 {
	switch {
	case a.TransportHub && b.TransportHub:
		return 1.0
	case a.TransportHub || b.TransportHub:
		return 0.8
	default:
		return 0.6
	}
}

// DistanceTier maps kilometres to the distance factor of the location score.
func DistanceTier(km float64) float64 {
	switch {
	case km <= 5:
		return 1.0
	case km <= 15:
		return 0.8
	case km <= 30:
		return 0.6
	case km <= 50:
		return 0.4
	default:
		return 0.2
	}
}

// LocationScore blends distance, transport access and regional preference.
func (r *LocationResolver) LocationScore(job, worker ResolvedLocation) models.CategoryScore {
	distance := DistanceTier(r.Distance(job, worker))
	transport := r.TransportScore(job, worker)
	regional := 0.7
	if SameRegion(job, worker) {
		regional = 1.0
	}

	return models.CategoryScore{
		RawScore: clamp01(distance*distanceWeight + transport*transportWeight + regional*regionalWeight),
		Factors: map[string]float64{
			"distance":           distance,
			"transportAccess":    transport,
			"regionalPreference": regional,
		},
	}
}

func haversine(a, b Coordinates) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
