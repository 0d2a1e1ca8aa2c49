package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Trip identifies one activity episode of a vessel: a maximal contiguous
// run of retained reports sharing a trip number.
type Trip struct {
	MMSI          string
	TripID        int
	Start         time.Time
	End           time.Time
	DurationHours float64
	HadStationary bool
	PointCount    int
}

// TrackLine pairs a trip's metrics with its materialized line geometry.
// Trips with fewer than two points carry metrics only: HasLine is false and
// Line is the zero LineString. DistanceNM is valid only when HasDistance is
// set; it is left unset when reprojection of the line fails.
type TrackLine struct {
	Trip

	HasLine bool
	Line    geom.LineString // WGS84 lon/lat

	HasDistance bool
	DistanceNM  float64
}

// DensityCell is one spatial bin of the dwell-time aggregation: the summed
// time-since-previous hours of one vessel's reports falling in one cell.
type DensityCell struct {
	CellToken   string
	MMSI        string
	VesselHours float64
	Boundary    geom.Polygon // WGS84 lon/lat cell outline
}
