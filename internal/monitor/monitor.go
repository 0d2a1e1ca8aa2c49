// Package monitor periodically reports pipeline progress while a run is
// in flight: a status file rewritten in place plus a log line per tick.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vesselwatch/aistracks/internal/logging"
	"github.com/vesselwatch/aistracks/internal/worker"
)

// DefaultInterval is the tick between status snapshots.
const DefaultInterval = 1000 * time.Millisecond

// Progressor reports pipeline progress counters.
type Progressor interface {
	Progress() worker.Progress
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager *logging.Manager
	Workers    Progressor

	// StatusPath is the file rewritten with the latest snapshot.
	// Empty disables the file and keeps only the log output.
	StatusPath string

	// Interval between snapshots. Zero means DefaultInterval.
	Interval time.Duration
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// snapshot is the status file payload.
type snapshot struct {
	Time      time.Time `json:"time"`
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	Queued    int       `json:"queued"`
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	logger := s.deps.LogManager.Logger()

	var statusFile *os.File
	if s.deps.StatusPath != "" {
		var err error
		statusFile, err = os.Create(s.deps.StatusPath)
		if err != nil {
			logger.Error("Error creating status file", "error", err, "path", s.deps.StatusPath)
			statusFile = nil
		}
	}

	go func() {
		// Stop owns the running flag; this goroutine only exits when
		// stopChan closes, so it just releases its own resources.
		defer func() {
			if statusFile != nil {
				statusFile.Close()
			}
		}()

		logger.Debug("Starting status monitor goroutine")

		for {
			select {
			case <-s.stopChan:
				return
			default:
				time.Sleep(s.deps.Interval)

				prog := s.deps.Workers.Progress()
				if prog.Total == 0 {
					continue
				}

				logger.Debug("Pipeline progress",
					"processed", prog.Processed,
					"total", prog.Total,
					"failed", prog.Failed,
					"queued", prog.Queued,
				)

				if statusFile != nil {
					snap := snapshot{
						Time:      time.Now(),
						Total:     prog.Total,
						Processed: prog.Processed,
						Failed:    prog.Failed,
						Queued:    prog.Queued,
					}
					data, err := json.MarshalIndent(snap, "", "  ")
					if err != nil {
						data = []byte(fmt.Sprintf(`{"error": %q}`, err.Error()))
					}
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					statusFile.Write(append(data, '\n'))
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		// Clear the flag here rather than waiting for the goroutine's
		// deferred cleanup, so a second Stop never re-closes the channel.
		s.isRunning = false
		close(s.stopChan)
	}
}
