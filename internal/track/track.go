// Package track materializes per-trip line geometries and metrics from a
// vessel's segmented report sequence.
package track

import (
	"log/slog"

	"github.com/vesselwatch/aistracks/internal/geo"
	"github.com/vesselwatch/aistracks/internal/model"
)

// Builder turns (vessel, trip) report groups into TrackLines.
type Builder struct {
	tr     *geo.Transformer
	logger *slog.Logger
}

// NewBuilder creates a Builder. logger may be nil.
func NewBuilder(tr *geo.Transformer, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{tr: tr, logger: logger}
}

// Build walks a vessel's segmented reports in order and produces one
// TrackLine per trip. Trips with a single report carry metrics only (start
// equals end, zero duration) and no geometry. Distance is the projected
// line length in nautical miles; if reprojection fails the line is kept
// and only the distance is skipped.
//
// Reports must already be sorted with trip identifiers assigned, so each
// trip is a contiguous run.
func (b *Builder) Build(reports []model.PositionReport) []model.TrackLine {
	if len(reports) == 0 {
		return nil
	}

	var out []model.TrackLine
	for start := 0; start < len(reports); {
		end := start + 1
		for end < len(reports) && reports[end].TripID == reports[start].TripID {
			end++
		}
		out = append(out, b.buildTrip(reports[start:end]))
		start = end
	}
	return out
}

func (b *Builder) buildTrip(group []model.PositionReport) model.TrackLine {
	first, last := group[0], group[len(group)-1]

	line := model.TrackLine{
		Trip: model.Trip{
			MMSI:          first.MMSI,
			TripID:        first.TripID,
			Start:         first.Time,
			End:           last.Time,
			DurationHours: last.Time.Sub(first.Time).Hours(),
			PointCount:    len(group),
		},
	}
	for _, r := range group {
		if r.Stationary {
			line.HadStationary = true
			break
		}
	}

	if len(group) < 2 {
		return line
	}

	ls, err := geo.LineFromReports(group)
	if err != nil {
		// Cannot happen with >=2 points; guard anyway.
		b.logger.Warn("track line construction failed",
			"mmsi", first.MMSI, "trip", first.TripID, "error", err)
		return line
	}
	line.HasLine = true
	line.Line = ls

	nm, err := b.tr.LengthNM(ls)
	if err != nil {
		b.logger.Warn("skipping trip distance, reprojection failed",
			"mmsi", first.MMSI, "trip", first.TripID, "error", err)
		return line
	}
	line.HasDistance = true
	line.DistanceNM = nm
	return line
}
