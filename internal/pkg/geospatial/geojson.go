package geospatial

import (
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// Feature roles set in the "role" property of exported features.
const (
	RoleCamera    = "camera"
	RoleCandidate = "candidate"
	RoleNearest   = "nearest"
)

// FeatureCollection builds a GeoJSON collection with the camera position
// (when known) followed by every candidate. The nearest candidate, if any,
// carries role "nearest" and the azimuth towards it.
func FeatureCollection(reference *domain.GeoPoint, candidates domain.CandidateSet, result *domain.NearestResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if reference != nil {
		f := geojson.NewFeature(ToOrb(*reference))
		f.Properties["role"] = RoleCamera
		fc.Append(f)
	}

	for i, p := range candidates.Points() {
		f := geojson.NewFeature(ToOrb(p))
		f.Properties["index"] = i
		f.Properties["role"] = RoleCandidate
		if result != nil && result.Index == i {
			f.Properties["role"] = RoleNearest
			f.Properties["azimuth"] = FormatAzimuth(result.Azimuth)
			f.Properties["distance_meters"] = result.DistanceMeters
		}
		fc.Append(f)
	}
	return fc
}
