// Package segment implements the per-vessel trajectory segmentation core:
// report cleaning, inter-report gap analysis, sustained stationary-run
// detection, and trip boundary assignment. Every function operates on a
// single vessel's report slice; vessels never see each other's state.
//
// Stages must run in order: clean, gaps, stationary, region annotation,
// trips. Each derived field is computed exactly once and depends only on
// the stages before it.
package segment

// Config carries the segmentation thresholds. Values mirror the cleaning
// and trip rules of the source AIS workflow.
type Config struct {
	// MaxSOG is the speed plausibility ceiling in knots; faster reports
	// are dropped.
	MaxSOG float64

	// GapFlagHours marks a report whose time-since-previous exceeds this
	// many hours as a reporting gap. Informational; does not break trips.
	GapFlagHours float64

	// LowSpeedKnots classifies a report as low-speed.
	LowSpeedKnots float64

	// StationaryMinHours is the minimum cumulative low-speed run duration
	// before its members are flagged stationary.
	StationaryMinHours float64

	// TripGapHours breaks a trip when time-since-previous exceeds it.
	TripGapHours float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MaxSOG:             40,
		GapFlagHours:       4,
		LowSpeedKnots:      1.0,
		StationaryMinHours: 1.0,
		TripGapHours:       8,
	}
}

// RegionFilter answers point-in-region queries. Implementations must be
// safe for concurrent readers; geofence.Region satisfies this.
type RegionFilter interface {
	Name() string
	Contains(lon, lat float64) bool
}
