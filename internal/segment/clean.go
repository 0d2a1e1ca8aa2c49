package segment

import (
	"slices"

	"github.com/vesselwatch/aistracks/internal/model"
)

// CleanStats accounts for what the cleaner did with a vessel's input.
type CleanStats struct {
	Input         int
	MissingFields int
	Implausible   int
	InRegion      int
	Retained      int
}

// Clean validates and filters one vessel's raw reports: reports missing a
// required field are dropped, reports faster than maxSOG knots are dropped,
// and reports inside the exclusion region (the land mask) are dropped. The
// survivors come back sorted by timestamp. An empty result is a valid
// terminal state meaning the vessel is skipped downstream, not an error.
//
// exclude may be nil, in which case no spatial filtering is applied.
func Clean(reports []model.PositionReport, exclude RegionFilter, maxSOG float64) ([]model.PositionReport, CleanStats) {
	stats := CleanStats{Input: len(reports)}

	retained := make([]model.PositionReport, 0, len(reports))
	for _, r := range reports {
		if r.MissingRequired() {
			stats.MissingFields++
			continue
		}
		if r.SOG > maxSOG {
			stats.Implausible++
			continue
		}
		if exclude != nil && exclude.Contains(r.Lon, r.Lat) {
			stats.InRegion++
			continue
		}
		retained = append(retained, r)
	}

	slices.SortStableFunc(retained, func(a, b model.PositionReport) int {
		return a.Time.Compare(b.Time)
	})

	stats.Retained = len(retained)
	return retained, stats
}

// AnnotateRegion sets the in-region flag on every report against the
// inclusion region (the port-proximity mask). Nothing is dropped; the flag
// feeds the trip segmenter's geofence-exit transition.
func AnnotateRegion(reports []model.PositionReport, include RegionFilter) {
	if include == nil {
		return
	}
	for i := range reports {
		reports[i].InRegion = include.Contains(reports[i].Lon, reports[i].Lat)
	}
}
