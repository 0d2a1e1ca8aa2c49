// Package csvstore reads raw AIS broadcast CSV files and writes pipeline
// outputs back out as CSV.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vesselwatch/aistracks/internal/model"
)

// timeLayout is the BaseDateTime format of AIS broadcast extracts.
const timeLayout = "2006-01-02T15:04:05"

// Required source columns. Everything else passes through as attributes.
var requiredColumns = []string{"MMSI", "BaseDateTime", "LAT", "LON", "SOG"}

// Source reads all CSV files in a directory and serves reports per vessel.
// Files are loaded once, on first use. A file that cannot be read or is
// missing required columns is logged and skipped; the rest still load.
type Source struct {
	dir string
	log zerolog.Logger

	once    sync.Once
	loadErr error
	vessels map[string][]model.PositionReport
}

// NewSource creates a source over all .csv files under dir.
func NewSource(dir string, log zerolog.Logger) *Source {
	return &Source{dir: dir, log: log, vessels: make(map[string][]model.PositionReport)}
}

// Vessels lists the vessel identifiers present in the files, sorted.
func (s *Source) Vessels(ctx context.Context) ([]string, error) {
	s.once.Do(s.load)
	if s.loadErr != nil {
		return nil, s.loadErr
	}

	out := make([]string, 0, len(s.vessels))
	for mmsi := range s.vessels {
		out = append(out, mmsi)
	}
	sort.Strings(out)
	return out, nil
}

// Reports returns all reports for one vessel, unordered.
func (s *Source) Reports(ctx context.Context, mmsi string) ([]model.PositionReport, error) {
	s.once.Do(s.load)
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.vessels[mmsi], nil
}

func (s *Source) load() {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.csv"))
	if err != nil {
		s.loadErr = fmt.Errorf("%w: listing %s: %v", model.ErrDataSource, s.dir, err)
		return
	}
	if len(paths) == 0 {
		s.loadErr = fmt.Errorf("%w: no csv files in %s", model.ErrDataSource, s.dir)
		return
	}

	loaded := 0
	var lastErr error
	for _, path := range paths {
		if err := s.loadFile(path); err != nil {
			s.log.Warn().Err(err).Str("file", path).Msg("Skipping unreadable CSV file")
			lastErr = err
			continue
		}
		loaded++
	}
	if loaded == 0 {
		s.loadErr = fmt.Errorf("%w: no loadable csv files in %s: %w", model.ErrDataSource, s.dir, lastErr)
	}
}

func (s *Source) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDataSource, err)
	}
	defer file.Close()

	r := csv.NewReader(file)

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("%w: reading header of %s: %v", model.ErrDataSource, path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%w: %s missing column %s", model.ErrSchema, path, name)
		}
	}

	// Status is absent in some extracts; those reports count as active.
	statusIdx, hasStatus := cols["Status"]

	attrCols := make(map[string]int)
	for name, i := range cols {
		switch name {
		case "MMSI", "BaseDateTime", "LAT", "LON", "SOG", "Status":
		default:
			attrCols[name] = i
		}
	}

	// Buffer rows and merge only on success, so a malformed row midway
	// through a file does not leave a partial load behind.
	rows := make(map[string][]model.PositionReport)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", model.ErrDataSource, path, err)
		}

		rpt := model.PositionReport{
			MMSI:   row[cols["MMSI"]],
			Time:   parseTime(row[cols["BaseDateTime"]]),
			Lat:    parseFloat(row[cols["LAT"]]),
			Lon:    parseFloat(row[cols["LON"]]),
			SOG:    parseFloat(row[cols["SOG"]]),
			Status: model.StatusUndefined,
		}
		if hasStatus {
			if code, err := strconv.Atoi(row[statusIdx]); err == nil {
				rpt.Status = model.NavStatus(code)
			}
		}
		if len(attrCols) > 0 {
			rpt.Attrs = make(map[string]string, len(attrCols))
			for name, i := range attrCols {
				rpt.Attrs[name] = row[i]
			}
		}

		rows[rpt.MMSI] = append(rows[rpt.MMSI], rpt)
	}

	for mmsi, rpts := range rows {
		s.vessels[mmsi] = append(s.vessels[mmsi], rpts...)
	}
	return nil
}

// parseTime returns the zero time for malformed timestamps; the cleaner
// drops those reports.
func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseFloat returns NaN for empty or malformed values; the cleaner
// treats NaN as a missing field.
func parseFloat(v string) float64 {
	if v == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
