package segment

import "github.com/vesselwatch/aistracks/internal/model"

// FirstTripID is the trip number assigned to a vessel's first retained
// report. Trip numbers count up from here, one per trip-start event.
const FirstTripID = 1

// Segment assigns trip-start flags and monotonic trip identifiers. Three
// independent transitions, each evaluated against the immediately preceding
// retained report, can start a new trip:
//
//   - geofence exit: previous report inside the port mask, current outside
//     (the vessel left the dock)
//   - reporting gap: time-since-previous above gapHours (the vessel went
//     dark)
//   - status release: previous status anchored or moored, current neither
//     (the vessel cast off)
//
// Any one transition suffices; over-segmentation is preferred to a missed
// boundary. A vessel's first retained report always starts trip
// FirstTripID explicitly, carrying no transition state.
//
// Run after ComputeGaps and AnnotateRegion. The walk is a single forward
// pass; no state beyond the previous report is consulted, so re-running on
// identical input always reproduces the same identifiers.
func Segment(reports []model.PositionReport, gapHours float64) {
	tripID := FirstTripID
	for i := range reports {
		if i == 0 {
			reports[i].TripStart = true
			reports[i].TripID = tripID
			continue
		}

		prev := &reports[i-1]
		cur := &reports[i]

		leftRegion := !cur.InRegion && prev.InRegion
		wentDark := cur.TimeSincePrev.Valid && cur.TimeSincePrev.Float64 > gapHours
		castOff := !cur.Status.Parked() && prev.Status.Parked()

		cur.TripStart = leftRegion || wentDark || castOff
		if cur.TripStart {
			tripID++
		}
		cur.TripID = tripID
	}
}

// Run applies the full per-vessel derivation in the required order:
// cleaning and sorting, gap computation, stationary detection, port-region
// annotation, and trip segmentation. exclude (land) and include (ports) may
// each be nil. The returned slice is the retained, fully annotated
// sequence.
func Run(reports []model.PositionReport, exclude, include RegionFilter, cfg Config) ([]model.PositionReport, CleanStats) {
	retained, stats := Clean(reports, exclude, cfg.MaxSOG)
	if len(retained) == 0 {
		return retained, stats
	}
	ComputeGaps(retained, cfg.GapFlagHours)
	MarkStationary(retained, cfg.LowSpeedKnots, cfg.StationaryMinHours)
	AnnotateRegion(retained, include)
	Segment(retained, cfg.TripGapHours)
	return retained, stats
}
