package rag

import "math"

// DefaultRadiusKm is the geo-distance radius applied when the caller supplies
// coordinates without an explicit radius.
const DefaultRadiusKm = 5

// Budget band factors. An exact-budget match is rare, so the price filter
// widens the user's budget to ±30% — trading precision for recall.
const (
	budgetBandLow  = 0.7
	budgetBandHigh = 1.3
)

// GeoDistance restricts results to a radius around a point.
type GeoDistance struct {
	// Lat is the latitude of the centre point.
	Lat float64
	// Lng is the longitude of the centre point.
	Lng float64
	// RadiusKm is the search radius in kilometres.
	RadiusKm float64
}

// PriceRange restricts results to a per-person price band in won.
// Either bound may be nil, meaning unbounded on that side.
type PriceRange struct {
	Min *int
	Max *int
}

// Filter is an ordered set of independent predicate clauses, combined with
// AND semantics by the search backends. It is built fresh per request and
// carries no identity beyond it. A nil *Filter means unfiltered.
type Filter struct {
	// Geo is the optional geo-distance clause.
	Geo *GeoDistance
	// Price is the optional price-range clause.
	Price *PriceRange
	// Category is the optional exact-match category clause ("" = absent).
	Category string
}

// FilterParams are the raw user-supplied constraints the builder works from.
type FilterParams struct {
	// Lat and Lng must both be set or both be nil.
	Lat *float64
	Lng *float64
	// Budget is the user's per-person budget in won.
	Budget *int
	// Category is an optional exact cuisine category.
	Category string
	// RadiusKm overrides the geo radius; 0 means DefaultRadiusKm.
	RadiusKm float64
}

// BuildFilter turns user-supplied geo/budget/category constraints into
// predicate clauses. It is a pure function of its inputs and returns nil when
// no constraint is present.
func BuildFilter(p FilterParams) *Filter {
	f := &Filter{}

	if p.Lat != nil && p.Lng != nil {
		radius := p.RadiusKm
		if radius <= 0 {
			radius = DefaultRadiusKm
		}
		f.Geo = &GeoDistance{Lat: *p.Lat, Lng: *p.Lng, RadiusKm: radius}
	}

	if p.Budget != nil {
		min := int(math.Floor(float64(*p.Budget) * budgetBandLow))
		max := int(math.Floor(float64(*p.Budget) * budgetBandHigh))
		f.Price = &PriceRange{Min: &min, Max: &max}
	}

	f.Category = p.Category

	if f.Geo == nil && f.Price == nil && f.Category == "" {
		return nil
	}
	return f
}
