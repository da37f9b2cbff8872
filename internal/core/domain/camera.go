package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// Camera form field names, as used by the camera-storage backend.
const (
	FieldCameraID   = "id"
	FieldCameraName = "cameraName"
	FieldCameraType = "cameraType"
	FieldAzimuth    = "azimuth"
)

// CameraType is the mounting/sensor kind of a camera.
type CameraType string

const (
	CameraFront CameraType = "FRONT"
	CameraBack  CameraType = "BACK"
	CameraEO    CameraType = "EO"
	CameraIR    CameraType = "IR"
	Camera360   CameraType = "360"
)

// CameraTypes lists every supported type in display order.
var CameraTypes = []CameraType{CameraFront, CameraBack, CameraEO, CameraIR, Camera360}

func (t CameraType) Valid() bool {
	for _, ct := range CameraTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// numericIDRe matches IDs that are valid JSON integers; "007" stays a string.
var numericIDRe = regexp.MustCompile(`^(0|[1-9]\d*)$`)

// CameraID identifies a camera record. The backend may send it as a JSON
// number or string; it is always carried as text here.
type CameraID string

func (id *CameraID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = CameraID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("camera id: %w", err)
	}
	*id = CameraID(n.String())
	return nil
}

// MarshalJSON writes purely numeric IDs back as numbers so the backend
// receives the same shape it produced.
func (id CameraID) MarshalJSON() ([]byte, error) {
	if numericIDRe.MatchString(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Camera is the record kept by the camera-storage backend. Coordinates and
// azimuth are stored as text exactly as entered.
type Camera struct {
	ID         CameraID   `json:"id,omitempty"`
	CameraName string     `json:"cameraName"`
	CameraType CameraType `json:"cameraType"`
	Latitude   string     `json:"latitude"`
	Longitude  string     `json:"longitude"`
	Azimuth    string     `json:"azimuth"`
}

// Location parses the camera's latitude/longitude text into a GeoPoint.
func (c Camera) Location() (GeoPoint, error) {
	return ParsePoint(c.Latitude, c.Longitude)
}

// Validate checks a camera as submitted from the camera form and returns
// every problem at once. With checkRange set, well-formed coordinates must
// also fall inside the valid latitude/longitude ranges.
func (c Camera) Validate(checkRange bool) error {
	var errs ValidationErrors

	if c.CameraName == "" {
		errs = append(errs, ValidationError{Field: FieldCameraName, Reason: ReasonRequired})
	}
	if c.CameraType != "" && !c.CameraType.Valid() {
		errs = append(errs, ValidationError{Field: FieldCameraType, Reason: ReasonUnknownValue})
	}

	p, err := c.Location()
	if verrs, ok := AsValidationErrors(err); ok {
		errs = append(errs, verrs...)
	} else if checkRange {
		if verrs, ok := AsValidationErrors(p.Validate()); ok {
			errs = append(errs, verrs...)
		}
	}

	if c.Azimuth == "" {
		errs = append(errs, ValidationError{Field: FieldAzimuth, Reason: ReasonRequired})
	} else if !IsDecimal(c.Azimuth) {
		errs = append(errs, ValidationError{Field: FieldAzimuth, Reason: ReasonInvalidFormat})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CameraPatch is a partial update sent to the backend. Empty fields are
// omitted so the backend leaves them unchanged.
type CameraPatch struct {
	ID         CameraID   `json:"id"`
	CameraName string     `json:"cameraName,omitempty"`
	CameraType CameraType `json:"cameraType,omitempty"`
	Latitude   string     `json:"latitude,omitempty"`
	Longitude  string     `json:"longitude,omitempty"`
	Azimuth    string     `json:"azimuth,omitempty"`
}

// PatchFrom builds a full-record patch from c.
func PatchFrom(c Camera) CameraPatch {
	return CameraPatch{
		ID:         c.ID,
		CameraName: c.CameraName,
		CameraType: c.CameraType,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		Azimuth:    c.Azimuth,
	}
}

// Validate checks the fields present on a partial update. The ID is always
// required; every other field is checked only when set.
func (p CameraPatch) Validate(checkRange bool) error {
	var errs ValidationErrors

	if p.ID == "" {
		errs = append(errs, ValidationError{Field: FieldCameraID, Reason: ReasonRequired})
	}
	if p.CameraType != "" && !p.CameraType.Valid() {
		errs = append(errs, ValidationError{Field: FieldCameraType, Reason: ReasonUnknownValue})
	}
	errs = appendCoordinate(errs, FieldLatitude, p.Latitude, 90, checkRange)
	errs = appendCoordinate(errs, FieldLongitude, p.Longitude, 180, checkRange)
	if p.Azimuth != "" && !IsDecimal(p.Azimuth) {
		errs = append(errs, ValidationError{Field: FieldAzimuth, Reason: ReasonInvalidFormat})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p CameraPatch) IsEmpty() bool {
	return p.CameraName == "" && p.CameraType == "" && p.Latitude == "" &&
		p.Longitude == "" && p.Azimuth == ""
}

func appendCoordinate(errs ValidationErrors, field, text string, limit float64, checkRange bool) ValidationErrors {
	if text == "" {
		return errs
	}
	v, verr := parseCoordinate(field, text)
	if verr != nil {
		return append(errs, *verr)
	}
	if checkRange && (v < -limit || v > limit) {
		return append(errs, ValidationError{Field: field, Reason: ReasonOutOfRange})
	}
	return errs
}
