package segment

import (
	"math"
	"testing"

	"github.com/vesselwatch/aistracks/internal/model"
)

func TestComputeGaps_FirstReportUndefined(t *testing.T) {
	reports := []model.PositionReport{
		rpt(0, 5, model.StatusUnderway),
		rpt(0.5, 5, model.StatusUnderway),
	}
	ComputeGaps(reports, 4)

	if reports[0].TimeSincePrev.Valid {
		t.Error("expected first report's time-since-previous to be invalid")
	}
	if !reports[1].TimeSincePrev.Valid {
		t.Fatal("expected second report's time-since-previous to be valid")
	}
	if got := reports[1].TimeSincePrev.Float64; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected 0.5 hours, got %v", got)
	}
}

func TestComputeGaps_FlagsLongGaps(t *testing.T) {
	reports := []model.PositionReport{
		rpt(0, 5, model.StatusUnderway),
		rpt(2, 5, model.StatusUnderway),
		rpt(7, 5, model.StatusUnderway), // 5h gap > 4h flag threshold
	}
	ComputeGaps(reports, 4)

	if reports[1].GapFlag {
		t.Error("2h gap should not be flagged")
	}
	if !reports[2].GapFlag {
		t.Error("5h gap should be flagged")
	}
}

func TestComputeGaps_MeasuredOverRetainedSequence(t *testing.T) {
	// Simulates cleaning having removed reports between hour 1 and hour 6:
	// the gap is measured across the removal, not against the original
	// neighbors.
	reports := []model.PositionReport{
		rpt(0, 5, model.StatusUnderway),
		rpt(6, 5, model.StatusUnderway),
	}
	ComputeGaps(reports, 4)

	if got := reports[1].TimeSincePrev.Float64; math.Abs(got-6) > 1e-9 {
		t.Errorf("expected 6 hours across removed segment, got %v", got)
	}
	if !reports[1].GapFlag {
		t.Error("expected inflated gap to be flagged")
	}
}

func TestComputeGaps_Recompute(t *testing.T) {
	reports := []model.PositionReport{
		rpt(0, 5, model.StatusUnderway),
		rpt(1, 5, model.StatusUnderway),
		rpt(2, 5, model.StatusUnderway),
	}
	ComputeGaps(reports, 4)

	// Drop the middle report and recompute: adjacency changes.
	reports = append(reports[:1], reports[2])
	ComputeGaps(reports, 4)

	if got := reports[1].TimeSincePrev.Float64; math.Abs(got-2) > 1e-9 {
		t.Errorf("expected 2 hours after recompute, got %v", got)
	}
}
