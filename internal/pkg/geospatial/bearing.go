package geospatial

import (
	"math"
	"strconv"

	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// Bearing returns the initial great-circle bearing from origin to
// destination in degrees, in [-180, 180].
func Bearing(origin, destination domain.GeoPoint) float64 {
	return geo.Bearing(ToOrb(origin), ToOrb(destination))
}

// BearingToAzimuth maps a bearing in [-180, 180] to [0, 360).
func BearingToAzimuth(bearing float64) float64 {
	a := math.Mod(bearing, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// RoundAzimuth rounds a to two decimals. A value that rounds up to 360
// wraps to 0.
func RoundAzimuth(a float64) float64 {
	r := math.Round(a*100) / 100
	if r >= 360 {
		r -= 360
	}
	if r == 0 {
		// Normalize -0.
		return 0
	}
	return r
}

// ComputeAzimuth returns the compass azimuth from origin to destination:
// degrees clockwise from true north, rounded to two decimals, in [0, 360).
// Identical points yield 0.
func ComputeAzimuth(origin, destination domain.GeoPoint) float64 {
	if origin == destination {
		return 0
	}
	return RoundAzimuth(BearingToAzimuth(Bearing(origin, destination)))
}

// FormatAzimuth renders an azimuth the way it is stored on a camera record.
func FormatAzimuth(a float64) string {
	return strconv.FormatFloat(a, 'f', 2, 64)
}
