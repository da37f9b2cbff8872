package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used for instrumentation.
const (
	AttrSessionID  = attribute.Key("slew.session_id")
	AttrCameraID   = attribute.Key("camera.id")
	AttrCandidates = attribute.Key("slew.candidates")
	AttrAzimuth    = attribute.Key("slew.azimuth")
	AttrDistance   = attribute.Key("slew.distance_m")
)
