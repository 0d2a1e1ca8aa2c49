package csvstore

import (
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vesselwatch/aistracks/internal/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func TestWriter_Trips(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	line := geom.NewLineString(geom.NewSequence([]float64{
		-71.30, 41.10,
		-71.20, 41.12,
	}, geom.DimXY))

	track := model.TrackLine{
		Trip: model.Trip{
			MMSI:          "367001234",
			TripID:        3,
			Start:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			End:           time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC),
			DurationHours: 2.5,
			PointCount:    12,
			HadStationary: true,
		},
		HasLine:     true,
		Line:        line,
		HasDistance: true,
		DistanceNM:  4.6,
	}

	if err := w.WriteTrack(context.Background(), track); err != nil {
		t.Fatalf("WriteTrack failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "trips.csv"))
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	row := rows[1]
	if row[0] != "367001234" || row[1] != "3" {
		t.Errorf("unexpected identity columns: %v", row)
	}
	if row[2] != "2024-03-01T00:00:00" || row[3] != "2024-03-01T02:30:00" {
		t.Errorf("unexpected time columns: %v", row)
	}
	if row[4] != "2.5" || row[5] != "12" || row[6] != "true" || row[7] != "4.6" {
		t.Errorf("unexpected metric columns: %v", row)
	}
	if row[8] == "" {
		t.Error("expected WKT geometry column")
	}
}

func TestWriter_TripWithoutLine(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	track := model.TrackLine{
		Trip: model.Trip{MMSI: "367001234", TripID: 1, PointCount: 1},
	}
	if err := w.WriteTrack(context.Background(), track); err != nil {
		t.Fatalf("WriteTrack failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "trips.csv"))
	row := rows[1]
	if row[7] != "" || row[8] != "" {
		t.Errorf("expected empty distance and WKT for single-point trip: %v", row)
	}
}

func TestWriter_Points(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	reports := []model.PositionReport{
		{
			MMSI:   "367001234",
			Time:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Lat:    41.10,
			Lon:    -71.30,
			SOG:    8.5,
			Status: model.StatusUnderway,
			Attrs:  map[string]string{"VesselName": "EVENING STAR", "CallSign": "WDC123"},
			TripID: 1,
		},
		{
			MMSI:          "367001234",
			Time:          time.Date(2024, 3, 1, 0, 10, 0, 0, time.UTC),
			Lat:           41.11,
			Lon:           -71.29,
			SOG:           0.2,
			Status:        model.StatusAnchored,
			Attrs:         map[string]string{"VesselName": "EVENING STAR", "CallSign": "WDC123"},
			TimeSincePrev: sql.NullFloat64{Float64: 0.1666, Valid: true},
			LowSpeed:      true,
			TripID:        1,
		},
	}

	if err := w.WritePoints(context.Background(), "367001234", reports); err != nil {
		t.Fatalf("WritePoints failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "points", "367001234.csv"))
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	header := rows[0]
	// attribute columns follow the fixed columns, sorted
	if header[len(header)-2] != "CallSign" || header[len(header)-1] != "VesselName" {
		t.Errorf("unexpected attribute columns: %v", header)
	}

	first := rows[1]
	if first[6] != "" {
		t.Errorf("first report should have empty TIME_DIFF, got %q", first[6])
	}
	second := rows[2]
	if second[6] != "0.1666" {
		t.Errorf("unexpected TIME_DIFF: %q", second[6])
	}
	if second[8] != "true" {
		t.Errorf("expected LOW_SPEED true: %v", second)
	}
	if second[len(second)-1] != "EVENING STAR" {
		t.Errorf("attribute value not written: %v", second)
	}
}

func TestWriter_EmptyPoints(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	defer w.Close()

	if err := w.WritePoints(context.Background(), "367001234", nil); err != nil {
		t.Fatalf("WritePoints failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "points", "367001234.csv")); !os.IsNotExist(err) {
		t.Error("no file should be written for an empty report set")
	}
}

func TestWriter_Density(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	cells := []model.DensityCell{
		{CellToken: "89c25a3", MMSI: "367001234", VesselHours: 1.5},
		{CellToken: "89c25a7", MMSI: "367001234", VesselHours: 0.25},
	}
	if err := w.WriteDensity(context.Background(), cells); err != nil {
		t.Fatalf("WriteDensity failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "density.csv"))
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "89c25a3" || rows[1][2] != "1.5" {
		t.Errorf("unexpected density row: %v", rows[1])
	}
}
