// Package geospatial holds the pure geometry used by slew workflows:
// great-circle distance, nearest-point search and initial bearing.
//
// orb stores points longitude first; ToOrb and FromOrb are the only places
// where that ordering is converted.
package geospatial

import (
	"github.com/paulmach/orb"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// ToOrb converts a GeoPoint to an orb.Point ([lon, lat]).
func ToOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FromOrb converts an orb.Point ([lon, lat]) back to a GeoPoint.
func FromOrb(p orb.Point) domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
}
