package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// GeoPoint represents a geographic coordinate (WGS 84) in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Field names reported in validation errors for coordinate input.
const (
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
)

// decimalRe matches the accepted text form of one coordinate component:
// an optional sign, digits, and an optional decimal fraction ("24.345", "-3").
var decimalRe = regexp.MustCompile(`^[-+]?\d+(\.\d+)?$`)

// ParsePoint builds a GeoPoint from latitude and longitude text as entered by
// a user or stored on a camera record.
//
// Every field problem is collected; the returned error is a ValidationErrors
// holding the latitude error (if any) before the longitude error. Range is not
// checked here, see Validate.
func ParsePoint(latText, lonText string) (GeoPoint, error) {
	var errs ValidationErrors

	lat, verr := parseCoordinate(FieldLatitude, latText)
	if verr != nil {
		errs = append(errs, *verr)
	}
	lon, verr := parseCoordinate(FieldLongitude, lonText)
	if verr != nil {
		errs = append(errs, *verr)
	}

	if len(errs) > 0 {
		return GeoPoint{}, errs
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}

// IsDecimal reports whether s is a well-formed coordinate component.
func IsDecimal(s string) bool {
	return decimalRe.MatchString(s)
}

func parseCoordinate(field, text string) (float64, *ValidationError) {
	if text == "" {
		return 0, &ValidationError{Field: field, Reason: ReasonRequired}
	}
	if !decimalRe.MatchString(text) {
		return 0, &ValidationError{Field: field, Reason: ReasonInvalidFormat}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Only reachable for magnitudes beyond float64.
		return 0, &ValidationError{Field: field, Reason: ReasonInvalidFormat}
	}
	return v, nil
}

// Validate reports components outside [-90, 90] latitude or [-180, 180] longitude.
func (p GeoPoint) Validate() error {
	var errs ValidationErrors
	if p.Lat < -90 || p.Lat > 90 {
		errs = append(errs, ValidationError{Field: FieldLatitude, Reason: ReasonOutOfRange})
	}
	if p.Lon < -180 || p.Lon > 180 {
		errs = append(errs, ValidationError{Field: FieldLongitude, Reason: ReasonOutOfRange})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("[latitude: %g, longitude: %g]", p.Lat, p.Lon)
}
