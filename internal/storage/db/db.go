// Package db persists pipeline outputs through GORM, preferring Postgres
// and falling back to a local SQLite file when the server is unreachable.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vesselwatch/aistracks/internal/config"
	"github.com/vesselwatch/aistracks/internal/database"
	"github.com/vesselwatch/aistracks/internal/model"
)

// Backend writes tracks, points and density cells to the database.
type Backend struct {
	manager *database.Manager
}

// New connects to the database and migrates the output tables.
func New(cfg config.DBConfig, log zerolog.Logger) (*Backend, error) {
	manager := database.NewManager(log)
	manager.SqliteFilePath = cfg.SqliteFallback

	if err := manager.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDataSource, err)
	}
	if err := manager.Setup(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDataSource, err)
	}

	return &Backend{manager: manager}, nil
}

// WriteTrack stores one trip row.
func (b *Backend) WriteTrack(ctx context.Context, track model.TrackLine) error {
	rec := model.NewTripRecord(track)
	return b.manager.DB.WithContext(ctx).Create(&rec).Error
}

// WritePoints stores the retained reports of one vessel in a single batch.
func (b *Backend) WritePoints(ctx context.Context, mmsi string, reports []model.PositionReport) error {
	if len(reports) == 0 {
		return nil
	}
	recs := make([]model.PointRecord, len(reports))
	for i, r := range reports {
		recs[i] = model.NewPointRecord(r)
	}
	return b.manager.DB.WithContext(ctx).Create(&recs).Error
}

// WriteDensity stores one vessel's density cells in a single batch.
func (b *Backend) WriteDensity(ctx context.Context, cells []model.DensityCell) error {
	if len(cells) == 0 {
		return nil
	}
	recs := make([]model.DensityRecord, len(cells))
	for i, c := range cells {
		recs[i] = model.NewDensityRecord(c)
	}
	return b.manager.DB.WithContext(ctx).Create(&recs).Error
}

// Close persists the in-memory fallback database, if active, and closes
// the underlying connection.
func (b *Backend) Close() error {
	if b.manager.ShouldSaveLocal && b.manager.SqliteFilePath != "" {
		if err := b.manager.DumpMemoryToDisk(); err != nil {
			return err
		}
	}
	if b.manager.SqlDB != nil {
		return b.manager.SqlDB.Close()
	}
	return nil
}
