package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/vesselwatch/aistracks/internal/model"
)

var pointHeader = []string{
	"MMSI", "BaseDateTime", "LAT", "LON", "SOG", "Status",
	"TIME_DIFF", "GAP_FLAG", "LOW_SPEED", "STATIONARY", "IN_REGION",
	"TRIP_START", "TRIP_ID",
}

var tripHeader = []string{
	"MMSI", "TRIP_ID", "START", "END", "DURATION_HOURS",
	"POINT_COUNT", "HAD_STATIONARY", "DISTANCE_NM", "WKT",
}

var densityHeader = []string{"CELL", "MMSI", "VESSEL_HOURS", "WKT"}

// Writer exports pipeline output as CSV: one points file per vessel under
// points/, plus merged trips.csv and density.csv.
type Writer struct {
	outputDir string

	tripsFile   *os.File
	trips       *csv.Writer
	densityFile *os.File
	density     *csv.Writer
}

// NewWriter creates the output directory layout and the merged files.
func NewWriter(outputDir string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Join(outputDir, "points"), 0755); err != nil {
		return nil, fmt.Errorf("error creating output dir: %s", err)
	}

	w := &Writer{outputDir: outputDir}

	var err error
	w.tripsFile, err = os.Create(filepath.Join(outputDir, "trips.csv"))
	if err != nil {
		return nil, fmt.Errorf("error creating trips.csv: %s", err)
	}
	w.trips = csv.NewWriter(w.tripsFile)
	if err := w.trips.Write(tripHeader); err != nil {
		return nil, err
	}

	w.densityFile, err = os.Create(filepath.Join(outputDir, "density.csv"))
	if err != nil {
		return nil, fmt.Errorf("error creating density.csv: %s", err)
	}
	w.density = csv.NewWriter(w.densityFile)
	if err := w.density.Write(densityHeader); err != nil {
		return nil, err
	}

	return w, nil
}

// WriteTrack appends one trip row to the merged trips file.
func (w *Writer) WriteTrack(_ context.Context, track model.TrackLine) error {
	distance := ""
	if track.HasDistance {
		distance = formatFloat(track.DistanceNM)
	}
	wkt := ""
	if track.HasLine {
		wkt = track.Line.AsText()
	}
	return w.trips.Write([]string{
		track.MMSI,
		strconv.Itoa(track.TripID),
		track.Start.Format(timeLayout),
		track.End.Format(timeLayout),
		formatFloat(track.DurationHours),
		strconv.Itoa(track.PointCount),
		strconv.FormatBool(track.HadStationary),
		distance,
		wkt,
	})
}

// WritePoints writes one vessel's retained reports to its own file. Extra
// source columns come after the fixed header, in sorted order.
func (w *Writer) WritePoints(_ context.Context, mmsi string, reports []model.PositionReport) error {
	if len(reports) == 0 {
		return nil
	}

	file, err := os.Create(filepath.Join(w.outputDir, "points", mmsi+".csv"))
	if err != nil {
		return fmt.Errorf("error creating points file for %s: %s", mmsi, err)
	}
	defer file.Close()

	attrNames := make([]string, 0, len(reports[0].Attrs))
	for name := range reports[0].Attrs {
		attrNames = append(attrNames, name)
	}
	sort.Strings(attrNames)

	cw := csv.NewWriter(file)
	if err := cw.Write(append(append([]string{}, pointHeader...), attrNames...)); err != nil {
		return err
	}

	for _, r := range reports {
		row := []string{
			r.MMSI,
			r.Time.Format(timeLayout),
			formatFloat(r.Lat),
			formatFloat(r.Lon),
			formatFloat(r.SOG),
			strconv.Itoa(int(r.Status)),
			formatNullFloat(r.TimeSincePrev.Valid, r.TimeSincePrev.Float64),
			strconv.FormatBool(r.GapFlag),
			strconv.FormatBool(r.LowSpeed),
			strconv.FormatBool(r.Stationary),
			strconv.FormatBool(r.InRegion),
			strconv.FormatBool(r.TripStart),
			strconv.Itoa(r.TripID),
		}
		for _, name := range attrNames {
			row = append(row, r.Attrs[name])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDensity appends one vessel's cells to the merged density file.
func (w *Writer) WriteDensity(_ context.Context, cells []model.DensityCell) error {
	for _, cell := range cells {
		err := w.density.Write([]string{
			cell.CellToken,
			cell.MMSI,
			formatFloat(cell.VesselHours),
			cell.Boundary.AsText(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the merged files.
func (w *Writer) Close() error {
	w.trips.Flush()
	w.density.Flush()

	if err := w.trips.Error(); err != nil {
		return err
	}
	if err := w.density.Error(); err != nil {
		return err
	}
	if err := w.tripsFile.Close(); err != nil {
		return err
	}
	return w.densityFile.Close()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNullFloat(valid bool, v float64) string {
	if !valid {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
