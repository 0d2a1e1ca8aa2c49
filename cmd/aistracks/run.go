package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/spf13/viper"

	"github.com/vesselwatch/aistracks/internal/boundary"
	"github.com/vesselwatch/aistracks/internal/config"
	"github.com/vesselwatch/aistracks/internal/density"
	"github.com/vesselwatch/aistracks/internal/geo"
	"github.com/vesselwatch/aistracks/internal/geofence"
	"github.com/vesselwatch/aistracks/internal/influx"
	"github.com/vesselwatch/aistracks/internal/model"
	"github.com/vesselwatch/aistracks/internal/monitor"
	"github.com/vesselwatch/aistracks/internal/segment"
	"github.com/vesselwatch/aistracks/internal/storage"
	"github.com/vesselwatch/aistracks/internal/worker"
)

// runPipeline executes the full segmentation pipeline: clean, segment and
// build tracks for every vessel in the input, then write points, trips and
// density cells to the configured backend.
func runPipeline(ctx context.Context) error {
	start := time.Now()

	tr, err := geo.NewTransformer(viper.GetInt("epsg.metric"))
	if err != nil {
		return fmt.Errorf("creating transformer: %w", err)
	}

	landMask, err := buildLandMask(ctx, tr)
	if err != nil {
		return fmt.Errorf("building land mask: %w", err)
	}
	portRegion, err := buildPortRegion(tr)
	if err != nil {
		return fmt.Errorf("building port region: %w", err)
	}

	source, err := storage.NewSource(viper.GetString("input.type"), viper.GetString("input.csvDir"), ZLogger)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}

	sink, err := storage.NewSink(config.GetStorageConfig(), ZLogger)
	if err != nil {
		return fmt.Errorf("opening storage backend: %w", err)
	}
	if InfluxManager != nil {
		sink = newMeasuredSink(sink, InfluxManager)
	}

	deps := worker.Dependencies{
		LogManager:   SlogManager,
		Transformer:  tr,
		Segment:      config.GetSegmentConfig(),
		DensityLevel: viper.GetInt("density.level"),
	}
	// Typed nils must not reach the interface fields.
	if landMask != nil {
		deps.Exclude = landMask
	}
	if portRegion != nil {
		deps.Include = portRegion
	}

	mgr, err := worker.NewManager(deps, sink)
	if err != nil {
		return fmt.Errorf("creating worker manager: %w", err)
	}

	statusMonitor := monitor.NewService(monitor.Dependencies{
		LogManager: SlogManager,
		Workers:    mgr,
		StatusPath: filepath.Join(viper.GetString("logsDir"), "status.json"),
	})
	if err := statusMonitor.Start(); err != nil {
		Logger.Warn("Failed to start status monitor", "error", err)
	}

	totals, runErr := mgr.Run(ctx, source, viper.GetInt("workers"))
	statusMonitor.Stop()

	if err := sink.Close(); err != nil {
		Logger.Error("Error closing storage backend", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	elapsed := time.Since(start)
	if InfluxManager != nil {
		point := influx.RunPoint(totals.Vessels, totals.Failed, totals.Trips, elapsed, time.Now())
		if err := InfluxManager.WritePoint(ctx, influx.BucketRuns, point); err != nil {
			Logger.Warn("Error writing run measurement", "error", err)
		}
	}

	Logger.Info("Pipeline finished",
		"vessels", totals.Vessels,
		"failed", totals.Failed,
		"skipped", totals.Skipped,
		"reportsIn", totals.ReportsIn,
		"reportsRetained", totals.ReportsRetained,
		"trips", totals.Trips,
		"cells", totals.Cells,
		"elapsed", elapsed.Round(time.Millisecond).String(),
	)

	return runErr
}

// runDensity aggregates occupancy cells from an existing point layer
// without re-running cleaning or segmentation.
func runDensity(ctx context.Context) error {
	start := time.Now()
	level := viper.GetInt("density.level")

	source, err := storage.NewSource(viper.GetString("input.type"), viper.GetString("input.csvDir"), ZLogger)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}

	sink, err := storage.NewSink(config.GetStorageConfig(), ZLogger)
	if err != nil {
		return fmt.Errorf("opening storage backend: %w", err)
	}
	if InfluxManager != nil {
		sink = newMeasuredSink(sink, InfluxManager)
	}

	vessels, err := source.Vessels(ctx)
	if err != nil {
		return fmt.Errorf("listing vessels: %w", err)
	}

	var vesselCount, cellCount int
	for _, mmsi := range vessels {
		if err := ctx.Err(); err != nil {
			_ = sink.Close()
			return err
		}

		reports, err := source.Reports(ctx, mmsi)
		if err != nil {
			Logger.Error("Failed to read vessel reports", "mmsi", mmsi, "error", err)
			continue
		}

		cells := density.Aggregate(densityInput(reports), level)
		if len(cells) == 0 {
			continue
		}
		if err := sink.WriteDensity(ctx, cells); err != nil {
			Logger.Error("Failed to write density cells", "mmsi", mmsi, "error", err)
			continue
		}
		vesselCount++
		cellCount += len(cells)
	}

	if err := sink.Close(); err != nil {
		return fmt.Errorf("closing storage backend: %w", err)
	}

	Logger.Info("Density aggregation finished",
		"vessels", vesselCount,
		"cells", cellCount,
		"level", level,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	return nil
}

// densityInput orders one vessel's reports by timestamp and fills in the
// time-since-previous hours the dwell-time aggregation sums. Raw input
// carries no inter-report timing, so it has to be derived here.
func densityInput(reports []model.PositionReport) []model.PositionReport {
	out := make([]model.PositionReport, len(reports))
	copy(out, reports)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	segment.ComputeGaps(out, viper.GetFloat64("clean.gapFlagHours"))
	return out
}

// buildLandMask loads the land/state boundary polygons from a local file
// or a remote feature service and erodes them by the configured buffer.
// Returns nil when no boundary source is configured.
func buildLandMask(ctx context.Context, tr *geo.Transformer) (*geofence.Region, error) {
	var (
		polys []geom.Polygon
		err   error
	)

	switch {
	case viper.GetString("land.file") != "":
		path := viper.GetString("land.file")
		Logger.Info("Loading land boundary from file", "path", path)
		polys, err = boundary.LoadFile(path)
	case viper.GetString("land.url") != "":
		url := viper.GetString("land.url")
		Logger.Info("Fetching land boundary", "url", url)
		client := boundary.NewClient(viper.GetDuration("land.fetchTimeout"))
		polys, err = client.FetchPolygons(ctx, url)
	default:
		Logger.Info("No land boundary configured, skipping land filter")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	region, err := geofence.New("land", polys, viper.GetFloat64("land.bufferMeters"), tr)
	if err != nil {
		return nil, err
	}
	Logger.Info("Land mask built",
		"polygons", len(region.Polygons()),
		"bufferMeters", viper.GetFloat64("land.bufferMeters"),
	)
	return region, nil
}

// buildPortRegion builds the port-proximity inclusion region from the
// configured harbor centers. Returns nil when no ports are configured.
func buildPortRegion(tr *geo.Transformer) (*geofence.Region, error) {
	ports := config.GetPorts()
	if len(ports) == 0 {
		Logger.Info("No ports configured, skipping port region")
		return nil, nil
	}

	region, err := geofence.FromPorts("ports", ports, viper.GetFloat64("ports.bufferMeters"), tr)
	if err != nil {
		return nil, err
	}
	Logger.Info("Port region built",
		"ports", len(ports),
		"radiusMeters", viper.GetFloat64("ports.bufferMeters"),
	)
	return region, nil
}
