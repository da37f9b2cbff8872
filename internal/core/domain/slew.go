package domain

import "time"

// NearestResult is the outcome of one nearest-point computation: the chosen
// candidate and the azimuth from the camera towards it.
type NearestResult struct {
	Point          GeoPoint  `json:"point"`
	Index          int       `json:"index"`
	DistanceMeters float64   `json:"distance_meters"`
	Azimuth        float64   `json:"azimuth"`
	ComputedAt     time.Time `json:"computed_at"`
}

// SlewSession holds the state of one slew-to-nearest workflow: the selected
// camera, its position, the candidate points, and the latest result.
type SlewSession struct {
	ID         string         `json:"id"`
	Camera     *Camera        `json:"camera,omitempty"`
	Reference  *GeoPoint      `json:"reference,omitempty"`
	Candidates CandidateSet   `json:"candidates"`
	Result     *NearestResult `json:"result,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SlewRecord is an azimuth change committed to a camera.
type SlewRecord struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	CameraID        CameraID  `json:"camera_id"`
	CameraName      string    `json:"camera_name"`
	Reference       GeoPoint  `json:"reference"`
	Target          GeoPoint  `json:"target"`
	PreviousAzimuth string    `json:"previous_azimuth,omitempty"`
	Azimuth         string    `json:"azimuth"`
	Candidates      int       `json:"candidates"`
	DistanceMeters  float64   `json:"distance_meters"`
	CommittedAt     time.Time `json:"committed_at"`
}
