// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/vesselwatch/aistracks/internal/model"
)

// Source provides raw position reports grouped per vessel.
type Source interface {
	// Vessels lists the vessel identifiers available in the source.
	Vessels(ctx context.Context) ([]string, error)
	// Reports returns all position reports for one vessel, unordered.
	Reports(ctx context.Context, mmsi string) ([]model.PositionReport, error)
}

// Sink receives pipeline outputs. Implementations need not be safe for
// concurrent use; a single writer drains the output queue.
type Sink interface {
	WriteTrack(ctx context.Context, track model.TrackLine) error
	WritePoints(ctx context.Context, mmsi string, reports []model.PositionReport) error
	WriteDensity(ctx context.Context, cells []model.DensityCell) error
	Close() error
}
