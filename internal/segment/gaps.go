package segment

import (
	"database/sql"

	"github.com/vesselwatch/aistracks/internal/model"
)

// ComputeGaps fills in time-since-previous (hours) for each report after
// the first; the first report's value stays invalid. Gaps are measured over
// the retained sequence, so this must run after cleaning: removing reports
// changes adjacency. A removed on-land segment therefore shows up as one
// long apparent gap, which is accepted behavior.
//
// Reports whose gap exceeds flagHours get the reporting-gap flag.
func ComputeGaps(reports []model.PositionReport, flagHours float64) {
	for i := range reports {
		if i == 0 {
			reports[i].TimeSincePrev = sql.NullFloat64{}
			reports[i].GapFlag = false
			continue
		}
		hours := reports[i].Time.Sub(reports[i-1].Time).Hours()
		reports[i].TimeSincePrev = sql.NullFloat64{Float64: hours, Valid: true}
		reports[i].GapFlag = hours > flagHours
	}
}
