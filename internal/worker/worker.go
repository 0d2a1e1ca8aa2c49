// Package worker runs the per-vessel segmentation pipeline over a pool of
// goroutines. Vessels are independent, so they fan out freely; outputs
// funnel through a queue drained by a single writer so sinks never see
// concurrent writes.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/vesselwatch/aistracks/internal/channel"
	"github.com/vesselwatch/aistracks/internal/density"
	"github.com/vesselwatch/aistracks/internal/geo"
	"github.com/vesselwatch/aistracks/internal/logging"
	"github.com/vesselwatch/aistracks/internal/model"
	"github.com/vesselwatch/aistracks/internal/queue"
	"github.com/vesselwatch/aistracks/internal/segment"
	"github.com/vesselwatch/aistracks/internal/storage"
	"github.com/vesselwatch/aistracks/internal/track"
)

// flushInterval is how often the writer drains the result queue.
const flushInterval = 250 * time.Millisecond

// Dependencies holds all dependencies for the worker manager.
type Dependencies struct {
	LogManager   *logging.Manager
	Transformer  *geo.Transformer
	Exclude      segment.RegionFilter // land mask, may be nil
	Include      segment.RegionFilter // port proximity, may be nil
	Segment      segment.Config
	DensityLevel int
}

// Result is one vessel's pipeline output, ready for the writer.
type Result struct {
	MMSI    string
	Reports []model.PositionReport
	Tracks  []model.TrackLine
	Cells   []model.DensityCell
	Stats   segment.CleanStats
	Err     error
}

// Totals summarizes a whole run.
type Totals struct {
	Vessels         int
	Failed          int
	Skipped         int // vessels with no retained reports
	ReportsIn       int
	ReportsRetained int
	Trips           int
	Cells           int
}

// Progress is a point-in-time snapshot of a run, read by the status
// monitor while workers are busy.
type Progress struct {
	Total     int
	Processed int
	Failed    int
	Queued    int
}

// Manager manages the pipeline worker pool.
type Manager struct {
	deps    Dependencies
	sink    storage.Sink
	builder *track.Builder
	results *queue.Queue[Result]

	total     atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64

	// OTEL metrics
	vesselsProcessed metric.Int64Counter
	vesselsFailed    metric.Int64Counter
	reportsRetained  metric.Int64Counter
	reportsDropped   metric.Int64Counter
	tripsBuilt       metric.Int64Counter
	queuedResults    metric.Int64ObservableGauge
}

// NewManager creates a new worker manager writing to sink.
func NewManager(deps Dependencies, sink storage.Sink) (*Manager, error) {
	mgr := &Manager{
		deps:    deps,
		sink:    sink,
		builder: track.NewBuilder(deps.Transformer, deps.LogManager.Logger()),
		results: queue.New[Result](),
	}

	// Get meter from global OTel provider (returns no-op if not configured)
	m := meter()

	var err error

	mgr.vesselsProcessed, err = m.Int64Counter(
		"pipeline.vessels.processed",
		metric.WithDescription("Vessels run through the pipeline"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating vessels counter: %w", err)
	}

	mgr.vesselsFailed, err = m.Int64Counter(
		"pipeline.vessels.failed",
		metric.WithDescription("Vessels whose pipeline or write failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	mgr.reportsRetained, err = m.Int64Counter(
		"pipeline.reports.retained",
		metric.WithDescription("Reports surviving the cleaner"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retained counter: %w", err)
	}

	mgr.reportsDropped, err = m.Int64Counter(
		"pipeline.reports.dropped",
		metric.WithDescription("Reports dropped by the cleaner"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	mgr.tripsBuilt, err = m.Int64Counter(
		"pipeline.trips.built",
		metric.WithDescription("Trips produced by the segmenter"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trips counter: %w", err)
	}

	mgr.queuedResults, err = m.Int64ObservableGauge(
		"pipeline.results.queued",
		metric.WithDescription("Vessel results waiting for the writer"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(mgr.queuedResults, int64(mgr.results.Len()))
			return nil
		},
		mgr.queuedResults,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	return mgr, nil
}

// Run processes every vessel in the source with the given number of
// workers and writes the outputs. A vessel failure is isolated: it is
// counted and logged, and the run continues.
func (m *Manager) Run(ctx context.Context, source storage.Source, workers int) (Totals, error) {
	if workers < 1 {
		workers = 1
	}

	logger := m.deps.LogManager.Logger()

	vessels, err := source.Vessels(ctx)
	if err != nil {
		return Totals{}, fmt.Errorf("listing vessels: %w", err)
	}
	logger.Info("Starting pipeline", "vessels", len(vessels), "workers", workers)

	m.total.Store(int64(len(vessels)))
	m.processed.Store(0)
	m.failed.Store(0)

	jobs := channel.New[string](len(vessels))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for mmsi := range jobs.Receive() {
				m.results.Push(m.processVessel(ctx, source, mmsi))
			}
		}()
	}

	go func() {
		defer jobs.Close()
		for _, mmsi := range vessels {
			if ctx.Err() != nil {
				return
			}
			jobs.Send(mmsi)
		}
	}()

	workersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(workersDone)
	}()

	var totals Totals
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	running := true
	for running {
		if err := ctx.Err(); err != nil {
			return totals, err
		}
		select {
		case <-ctx.Done():
			return totals, ctx.Err()
		case <-workersDone:
			running = false
		case <-ticker.C:
		}

		for _, res := range m.results.GetAndEmpty() {
			m.writeResult(ctx, res, &totals)
		}
	}

	logger.Info("Pipeline finished",
		"vessels", totals.Vessels,
		"failed", totals.Failed,
		"skipped", totals.Skipped,
		"retained", totals.ReportsRetained,
		"trips", totals.Trips)
	return totals, nil
}

// Progress returns a snapshot of the current run. Safe to call from any
// goroutine while Run is in flight.
func (m *Manager) Progress() Progress {
	return Progress{
		Total:     int(m.total.Load()),
		Processed: int(m.processed.Load()),
		Failed:    int(m.failed.Load()),
		Queued:    m.results.Len(),
	}
}

// processVessel runs the whole per-vessel derivation. Results carry the
// error instead of aborting the pool.
func (m *Manager) processVessel(ctx context.Context, source storage.Source, mmsi string) Result {
	res := Result{MMSI: mmsi}

	raw, err := source.Reports(ctx, mmsi)
	if err != nil {
		res.Err = fmt.Errorf("reading reports: %w", err)
		return res
	}

	res.Reports, res.Stats = segment.Run(raw, m.deps.Exclude, m.deps.Include, m.deps.Segment)
	if len(res.Reports) == 0 {
		return res
	}

	res.Tracks = m.builder.Build(res.Reports)
	res.Cells = density.Aggregate(res.Reports, m.deps.DensityLevel)
	return res
}

func (m *Manager) writeResult(ctx context.Context, res Result, totals *Totals) {
	logger := m.deps.LogManager.Logger()
	totals.Vessels++
	m.processed.Add(1)
	m.vesselsProcessed.Add(ctx, 1)

	if res.Err != nil {
		totals.Failed++
		m.failed.Add(1)
		m.vesselsFailed.Add(ctx, 1)
		logger.Error("Vessel pipeline failed", "mmsi", res.MMSI, "error", res.Err)
		return
	}

	totals.ReportsIn += res.Stats.Input
	totals.ReportsRetained += res.Stats.Retained
	m.reportsRetained.Add(ctx, int64(res.Stats.Retained))
	m.reportsDropped.Add(ctx, int64(res.Stats.Input-res.Stats.Retained))

	if len(res.Reports) == 0 {
		totals.Skipped++
		logger.Debug("Vessel skipped, no retained reports", "mmsi", res.MMSI)
		return
	}

	if err := m.sink.WritePoints(ctx, res.MMSI, res.Reports); err != nil {
		totals.Failed++
		m.failed.Add(1)
		m.vesselsFailed.Add(ctx, 1)
		logger.Error("Writing points failed", "mmsi", res.MMSI, "error", err)
		return
	}
	for _, trk := range res.Tracks {
		if err := m.sink.WriteTrack(ctx, trk); err != nil {
			totals.Failed++
			m.failed.Add(1)
			m.vesselsFailed.Add(ctx, 1)
			logger.Error("Writing track failed", "mmsi", res.MMSI, "trip", trk.TripID, "error", err)
			return
		}
	}
	if err := m.sink.WriteDensity(ctx, res.Cells); err != nil {
		totals.Failed++
		m.failed.Add(1)
		m.vesselsFailed.Add(ctx, 1)
		logger.Error("Writing density failed", "mmsi", res.MMSI, "error", err)
		return
	}

	totals.Trips += len(res.Tracks)
	totals.Cells += len(res.Cells)
	m.tripsBuilt.Add(ctx, int64(len(res.Tracks)))
}
