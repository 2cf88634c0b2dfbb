package models

// Reason classifies the outcome of a lookup.
type Reason string

const (
	// ReasonOK means the lookup produced data.
	ReasonOK Reason = "ok"
	// ReasonNoMatch means the upstream answered but nothing matched.
	ReasonNoMatch Reason = "no_match"
	// ReasonInvalidInput means the request was rejected before reaching the upstream.
	ReasonInvalidInput Reason = "invalid_input"
	// ReasonTransport means the upstream could not be reached or answered with an error status.
	ReasonTransport Reason = "transport"
	// ReasonMalformed means the upstream response could not be decoded.
	ReasonMalformed Reason = "malformed"
	// ReasonUnknown covers every other failure.
	ReasonUnknown Reason = "unknown"
)

// Failed reports whether the reason describes a failed lookup.
// A lookup with no matches is not a failure.
func (r Reason) Failed() bool {
	return r != ReasonOK && r != ReasonNoMatch
}

// GeocodeResult is the outcome of geocoding one address.
// Coordinates is nil unless Reason is ReasonOK.
type GeocodeResult struct {
	Address     string
	Coordinates *Coordinates
	Reason      Reason
	Err         error
}

// OK reports whether the address was resolved.
func (r GeocodeResult) OK() bool {
	return r.Reason == ReasonOK && r.Coordinates != nil
}

// POIResult is the outcome of one POI retrieval. POIs is never nil.
type POIResult struct {
	Center      Coordinates
	RadiusKm    float64
	BoundingBox BoundingBox
	POIs        []POI
	Reason      Reason
	Err         error
}

// OK reports whether the retrieval completed, with or without matches.
func (r POIResult) OK() bool {
	return !r.Reason.Failed()
}
