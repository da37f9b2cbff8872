package geospatial

import (
	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// tieTolerance is the distance, in meters, under which two candidates are
// considered equidistant.
const tieTolerance = 1e-9

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b domain.GeoPoint) float64 {
	return geo.DistanceHaversine(ToOrb(a), ToOrb(b))
}

// Nearest is the candidate closest to a reference point.
type Nearest struct {
	Point          domain.GeoPoint
	Index          int
	DistanceMeters float64
}

// FindNearest returns the candidate with the smallest great-circle distance
// to reference. Equidistant candidates resolve to the lowest index. The bool
// is false when candidates is empty.
func FindNearest(reference domain.GeoPoint, candidates domain.CandidateSet) (Nearest, bool) {
	if candidates.IsEmpty() {
		return Nearest{}, false
	}

	ref := ToOrb(reference)
	best := Nearest{Index: -1}
	for i := 0; i < candidates.Len(); i++ {
		p := candidates.At(i)
		d := geo.DistanceHaversine(ref, ToOrb(p))
		if best.Index < 0 || d < best.DistanceMeters-tieTolerance {
			best = Nearest{Point: p, Index: i, DistanceMeters: d}
		}
	}
	return best, true
}
