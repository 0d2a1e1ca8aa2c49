package main

import (
	"context"
	"time"

	"github.com/vesselwatch/aistracks/internal/influx"
	"github.com/vesselwatch/aistracks/internal/model"
	"github.com/vesselwatch/aistracks/internal/storage"
)

// measuredSink forwards every write to the inner backend and mirrors trips
// and density cells to InfluxDB. Measurement failures are logged and never
// fail the pipeline write.
type measuredSink struct {
	inner  storage.Sink
	influx *influx.Manager
}

func newMeasuredSink(inner storage.Sink, im *influx.Manager) storage.Sink {
	return &measuredSink{inner: inner, influx: im}
}

func (s *measuredSink) WriteTrack(ctx context.Context, track model.TrackLine) error {
	if err := s.inner.WriteTrack(ctx, track); err != nil {
		return err
	}
	point := influx.TripPoint(track, time.Now())
	if err := s.influx.WritePoint(ctx, influx.BucketTrips, point); err != nil {
		Logger.Warn("Error writing trip measurement", "mmsi", track.MMSI, "error", err)
	}
	return nil
}

func (s *measuredSink) WritePoints(ctx context.Context, mmsi string, reports []model.PositionReport) error {
	return s.inner.WritePoints(ctx, mmsi, reports)
}

func (s *measuredSink) WriteDensity(ctx context.Context, cells []model.DensityCell) error {
	if err := s.inner.WriteDensity(ctx, cells); err != nil {
		return err
	}
	now := time.Now()
	for _, cell := range cells {
		if err := s.influx.WritePoint(ctx, influx.BucketDensity, influx.DensityPoint(cell, now)); err != nil {
			Logger.Warn("Error writing density measurement", "cell", cell.CellToken, "error", err)
			break
		}
	}
	return nil
}

func (s *measuredSink) Close() error {
	return s.inner.Close()
}
