package model

import (
	"database/sql"
	"math"
	"time"
)

// NavStatus is the AIS navigational status code carried on a position report.
type NavStatus int

// AIS navigational status codes (ITU-R M.1371).
const (
	StatusUnderway   NavStatus = 0
	StatusAnchored   NavStatus = 1
	StatusNotUnderCommand NavStatus = 2
	StatusRestricted NavStatus = 3
	StatusConstrainedByDraught NavStatus = 4
	StatusMoored     NavStatus = 5
	StatusAground    NavStatus = 6
	StatusFishing    NavStatus = 7
	StatusSailing    NavStatus = 8
	StatusUndefined  NavStatus = 15
)

// Parked reports whether the status is one of the "parked" codes
// (anchored or moored). Leaving a parked status starts a new trip.
func (s NavStatus) Parked() bool {
	return s == StatusAnchored || s == StatusMoored
}

// PositionReport is a single AIS position report for a vessel, plus the
// derived fields filled in by the segmentation pipeline. Derived fields are
// only meaningful once the vessel's reports have been sorted by time and
// run through the pipeline stages in order.
type PositionReport struct {
	MMSI   string
	Time   time.Time
	Lat    float64
	Lon    float64
	SOG    float64 // knots; NaN when the source field was missing
	Status NavStatus

	// Attrs carries any additional source columns through unmodified.
	Attrs map[string]string

	// Derived fields, in pipeline order.
	TimeSincePrev sql.NullFloat64 // hours since previous retained report; invalid for the first
	GapFlag       bool            // time-since-previous above the reporting-gap threshold
	LowSpeed      bool            // SOG below the low-speed threshold
	Stationary    bool            // member of a low-speed run of sufficient duration
	InRegion      bool            // inside the port-proximity geofence
	TripStart     bool            // this report begins a new trip
	TripID        int             // monotonic per-vessel trip number, first trip = 1
}

// MissingRequired reports whether any field required by the cleaner is
// absent. Missing numeric source fields are represented as NaN, a missing
// timestamp as the zero time.
func (r PositionReport) MissingRequired() bool {
	return r.MMSI == "" ||
		r.Time.IsZero() ||
		math.IsNaN(r.Lat) ||
		math.IsNaN(r.Lon) ||
		math.IsNaN(r.SOG)
}

// Vessel is one unit of work: a vessel identifier and its report sequence.
// Vessels are independent; no derived field depends on another vessel.
type Vessel struct {
	MMSI    string
	Reports []PositionReport
}
