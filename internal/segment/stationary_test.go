package segment

import (
	"testing"

	"github.com/vesselwatch/aistracks/internal/model"
)

func markAll(reports []model.PositionReport) {
	ComputeGaps(reports, 4)
	MarkStationary(reports, 1.0, 1.0)
}

func TestMarkStationary_SustainedRunFlagged(t *testing.T) {
	reports := []model.PositionReport{
		rpt(0, 8, model.StatusUnderway),
		rpt(1, 0.2, model.StatusAnchored),
		rpt(1.5, 0.1, model.StatusAnchored),
		rpt(2.5, 0.3, model.StatusAnchored), // run duration now 1.5h
		rpt(3, 9, model.StatusUnderway),
	}
	markAll(reports)

	if reports[0].Stationary {
		t.Error("moving report should not be stationary")
	}
	for i := 1; i <= 3; i++ {
		if !reports[i].LowSpeed {
			t.Errorf("report %d should be low-speed", i)
		}
		if !reports[i].Stationary {
			t.Errorf("report %d should be stationary", i)
		}
	}
	if reports[4].Stationary {
		t.Error("trailing moving report should not be stationary")
	}
}

func TestMarkStationary_ShortRunNotFlagged(t *testing.T) {
	// Two low-speed reports 0.3h apart: low-speed but never stationary.
	reports := []model.PositionReport{
		rpt(0, 0.5, model.StatusUnderway),
		rpt(0.3, 0.4, model.StatusUnderway),
	}
	ComputeGaps(reports, 4)
	MarkStationary(reports, 1.0, 1.0)

	for i, r := range reports {
		if !r.LowSpeed {
			t.Errorf("report %d should be low-speed", i)
		}
	}
	if reports[0].Stationary || reports[1].Stationary {
		t.Error("0.3h low-speed run must not be flagged stationary")
	}
}

func TestMarkStationary_SingleNoisyPing(t *testing.T) {
	reports := []model.PositionReport{
		rpt(0, 10, model.StatusUnderway),
		rpt(0.1, 0.2, model.StatusUnderway), // one noisy slow ping
		rpt(0.2, 10, model.StatusUnderway),
	}
	markAll(reports)

	if reports[1].Stationary {
		t.Error("a single low-speed ping must not be flagged stationary")
	}
}

func TestMarkStationary_RunBoundaries(t *testing.T) {
	// Two separate low-speed runs; only the long one qualifies.
	reports := []model.PositionReport{
		rpt(0, 0.5, model.StatusUnderway),  // short run: 0h accumulated
		rpt(0.2, 7, model.StatusUnderway),  // breaks the run
		rpt(0.4, 0.5, model.StatusAnchored),
		rpt(1.6, 0.5, model.StatusAnchored), // second run: 1.4h
	}
	markAll(reports)

	if reports[0].Stationary {
		t.Error("first short run should not be stationary")
	}
	if !reports[2].Stationary || !reports[3].Stationary {
		t.Error("second sustained run should be stationary")
	}
}

func TestMarkStationary_LowSpeedWithoutStationary(t *testing.T) {
	reports := []model.PositionReport{
		rpt(0, 0.3, model.StatusUnderway),
		rpt(0.4, 0.2, model.StatusUnderway),
	}
	markAll(reports)

	for i, r := range reports {
		if r.Stationary && !r.LowSpeed {
			t.Fatalf("report %d stationary without low-speed", i)
		}
	}
}
