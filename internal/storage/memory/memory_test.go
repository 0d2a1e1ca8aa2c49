// internal/storage/memory/memory_test.go
package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vesselwatch/aistracks/internal/config"
	"github.com/vesselwatch/aistracks/internal/model"
)

func testTrack(mmsi string, tripID int) model.TrackLine {
	line := geom.NewLineString(geom.NewSequence([]float64{
		-71.30, 41.10,
		-71.20, 41.12,
	}, geom.DimXY))

	return model.TrackLine{
		Trip: model.Trip{
			MMSI:          mmsi,
			TripID:        tripID,
			Start:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			End:           time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC),
			DurationHours: 2,
			PointCount:    5,
		},
		HasLine:     true,
		Line:        line,
		HasDistance: true,
		DistanceNM:  4.6,
	}
}

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
	}
	b := New(cfg)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if !b.cfg.CompressOutput {
		t.Error("expected CompressOutput=true")
	}
	if b.vessels == nil {
		t.Error("vessels map not initialized")
	}
}

func TestAccumulate(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	ctx := context.Background()

	if err := b.WriteTrack(ctx, testTrack("367001234", 1)); err != nil {
		t.Fatalf("WriteTrack failed: %v", err)
	}
	if err := b.WriteTrack(ctx, testTrack("367001234", 2)); err != nil {
		t.Fatalf("WriteTrack failed: %v", err)
	}

	reports := []model.PositionReport{
		{MMSI: "367001234", Lat: 41.1, Lon: -71.3},
		{MMSI: "367001234", Lat: 41.2, Lon: -71.2},
	}
	if err := b.WritePoints(ctx, "367001234", reports); err != nil {
		t.Fatalf("WritePoints failed: %v", err)
	}

	if got := len(b.Tracks()); got != 2 {
		t.Errorf("expected 2 tracks, got %d", got)
	}
	if got := len(b.Reports("367001234")); got != 2 {
		t.Errorf("expected 2 reports, got %d", got)
	}
	if got := b.Reports("999999999"); got != nil {
		t.Errorf("expected nil reports for unknown vessel, got %v", got)
	}
}

func TestClose_ExportsGeoJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	ctx := context.Background()

	if err := b.WriteTrack(ctx, testTrack("367001234", 1)); err != nil {
		t.Fatalf("WriteTrack failed: %v", err)
	}

	cell := model.DensityCell{CellToken: "89c25a3", MMSI: "367001234", VesselHours: 1.5}
	if err := b.WriteDensity(ctx, []model.DensityCell{cell}); err != nil {
		t.Fatalf("WriteDensity failed: %v", err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "tracks.geojson"))
	if err != nil {
		t.Fatalf("reading tracks.geojson: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &fc); err != nil {
		t.Fatalf("unmarshal tracks.geojson: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection, got %q", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	if got := fc.Features[0].Properties["mmsi"]; got != "367001234" {
		t.Errorf("unexpected mmsi property: %v", got)
	}
	if got := fc.Features[0].Properties["distance_nm"]; got != 4.6 {
		t.Errorf("unexpected distance_nm property: %v", got)
	}

	if _, err := os.Stat(filepath.Join(dir, "density.geojson")); err != nil {
		t.Errorf("density.geojson not written: %v", err)
	}
}

func TestClose_SkipsLinelessTracks(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})

	track := testTrack("367001234", 1)
	track.HasLine = false
	track.Line = geom.LineString{}
	if err := b.WriteTrack(context.Background(), track); err != nil {
		t.Fatalf("WriteTrack failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "tracks.geojson"))
	if err != nil {
		t.Fatalf("reading tracks.geojson: %v", err)
	}
	var fc struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(raw, &fc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(fc.Features) != 0 {
		t.Errorf("expected 0 features, got %d", len(fc.Features))
	}
}
