package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionNotFound  = errors.New("slew session not found")
	ErrCameraNotFound   = errors.New("camera not found")
	ErrNoCameraSelected = errors.New("no camera selected for this session")
	ErrNoResult         = errors.New("no nearest-point result to commit")
	// ErrRecordRejected means a store refused a record permanently.
	ErrRecordRejected = errors.New("record rejected by store")
)

// Validation failure reasons.
const (
	ReasonRequired      = "required"
	ReasonInvalidFormat = "invalid_format"
	ReasonOutOfRange    = "out_of_range"
	ReasonUnknownValue  = "unknown_value"
)

var fieldLabels = map[string]string{
	FieldLatitude:   "Latitude",
	FieldLongitude:  "Longitude",
	FieldCameraID:   "Camera id",
	FieldCameraName: "Name",
	FieldCameraType: "Camera type",
	FieldAzimuth:    "Azimuth",
}

// ValidationError describes one invalid input field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Message returns the human-readable text shown next to the field.
func (e ValidationError) Message() string {
	label, ok := fieldLabels[e.Field]
	if !ok {
		label = e.Field
	}
	switch e.Reason {
	case ReasonRequired:
		return label + " is required"
	case ReasonInvalidFormat:
		return "Invalid value. Only decimal format is allowed"
	case ReasonOutOfRange:
		if e.Field == FieldLatitude {
			return "Latitude must be between -90 and 90"
		}
		if e.Field == FieldLongitude {
			return "Longitude must be between -180 and 180"
		}
		return label + " is out of range"
	case ReasonUnknownValue:
		return label + " has an unsupported value"
	default:
		return label + " is invalid"
	}
}

// ValidationErrors collects every field error found in one validation pass.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the error recorded for name, if any.
func (v ValidationErrors) Field(name string) (ValidationError, bool) {
	for _, e := range v {
		if e.Field == name {
			return e, true
		}
	}
	return ValidationError{}, false
}

// AsValidationErrors unwraps err into ValidationErrors when it carries them.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

// IndexError is returned when a candidate index falls outside the set.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("candidate index %d out of range [0, %d)", e.Index, e.Len)
}
