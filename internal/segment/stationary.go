package segment

import "github.com/vesselwatch/aistracks/internal/model"

// MarkStationary classifies each report as low-speed or not, partitions the
// sequence into maximal runs of equal classification, and flags the members
// of low-speed runs whose cumulative duration reaches minRunHours. A lone
// low-speed ping between moving reports never qualifies; the vessel must
// stay slow long enough for the run to accumulate the minimum duration.
//
// Run duration is the sum of member time-since-previous values, so
// ComputeGaps must run first.
func MarkStationary(reports []model.PositionReport, lowSpeedKnots, minRunHours float64) {
	for i := range reports {
		reports[i].LowSpeed = reports[i].SOG < lowSpeedKnots
	}

	for start := 0; start < len(reports); {
		end := start + 1
		for end < len(reports) && reports[end].LowSpeed == reports[start].LowSpeed {
			end++
		}

		if reports[start].LowSpeed {
			var hours float64
			for i := start; i < end; i++ {
				if reports[i].TimeSincePrev.Valid {
					hours += reports[i].TimeSincePrev.Float64
				}
			}
			if hours >= minRunHours {
				for i := start; i < end; i++ {
					reports[i].Stationary = true
				}
			}
		}

		start = end
	}
}
