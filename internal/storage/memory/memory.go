// internal/storage/memory/memory.go
package memory

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vesselwatch/aistracks/internal/config"
	"github.com/vesselwatch/aistracks/internal/model"
)

// Backend accumulates pipeline output in memory and exports GeoJSON files
// on Close.
type Backend struct {
	cfg config.MemoryConfig

	tracks  []model.TrackLine
	density []model.DensityCell
	vessels map[string]*model.Vessel

	mu sync.RWMutex
}

// New creates a new memory backend.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		vessels: make(map[string]*model.Vessel),
	}
}

// WriteTrack records a finished trip.
func (b *Backend) WriteTrack(_ context.Context, track model.TrackLine) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tracks = append(b.tracks, track)
	return nil
}

// WritePoints records a vessel's retained reports.
func (b *Backend) WritePoints(_ context.Context, mmsi string, reports []model.PositionReport) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.vessels[mmsi]
	if !ok {
		rec = &model.Vessel{MMSI: mmsi}
		b.vessels[mmsi] = rec
	}
	rec.Reports = append(rec.Reports, reports...)
	return nil
}

// WriteDensity records a vessel's density cells.
func (b *Backend) WriteDensity(_ context.Context, cells []model.DensityCell) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.density = append(b.density, cells...)
	return nil
}

// Tracks returns the accumulated trips.
func (b *Backend) Tracks() []model.TrackLine {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.TrackLine(nil), b.tracks...)
}

// Density returns the accumulated density cells.
func (b *Backend) Density() []model.DensityCell {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.DensityCell(nil), b.density...)
}

// Reports returns the retained reports of one vessel.
func (b *Backend) Reports(mmsi string) []model.PositionReport {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if rec, ok := b.vessels[mmsi]; ok {
		return append([]model.PositionReport(nil), rec.Reports...)
	}
	return nil
}

// Close exports the accumulated data to the output directory.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("error creating output dir: %s", err)
	}

	if err := b.writeJSON("tracks.geojson", b.trackCollection()); err != nil {
		return err
	}
	return b.writeJSON("density.geojson", b.densityCollection())
}

func (b *Backend) trackCollection() geom.GeoJSONFeatureCollection {
	fc := make(geom.GeoJSONFeatureCollection, 0, len(b.tracks))
	for _, track := range b.tracks {
		if !track.HasLine {
			continue
		}
		props := map[string]interface{}{
			"mmsi":           track.MMSI,
			"trip_id":        track.TripID,
			"start":          track.Start,
			"end":            track.End,
			"duration_hours": track.DurationHours,
			"point_count":    track.PointCount,
			"had_stationary": track.HadStationary,
		}
		if track.HasDistance {
			props["distance_nm"] = track.DistanceNM
		}
		fc = append(fc, geom.GeoJSONFeature{
			Geometry:   track.Line.AsGeometry(),
			Properties: props,
		})
	}
	return fc
}

func (b *Backend) densityCollection() geom.GeoJSONFeatureCollection {
	fc := make(geom.GeoJSONFeatureCollection, 0, len(b.density))
	for _, cell := range b.density {
		fc = append(fc, geom.GeoJSONFeature{
			Geometry: cell.Boundary.AsGeometry(),
			Properties: map[string]interface{}{
				"cell":         cell.CellToken,
				"mmsi":         cell.MMSI,
				"vessel_hours": cell.VesselHours,
			},
		})
	}
	return fc
}

func (b *Backend) writeJSON(name string, v interface{}) error {
	path := filepath.Join(b.cfg.OutputDir, name)

	var out io.Writer
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %s", path, err)
	}
	defer file.Close()
	out = file

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(file)
		defer gz.Close()
		out = gz
	}

	enc := json.NewEncoder(out)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding %s: %s", name, err)
	}
	return nil
}
