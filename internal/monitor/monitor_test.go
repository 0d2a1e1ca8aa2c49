package monitor

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vesselwatch/aistracks/internal/logging"
	"github.com/vesselwatch/aistracks/internal/worker"
)

type stubProgress struct {
	prog worker.Progress
}

func (s stubProgress) Progress() worker.Progress { return s.prog }

func quietLogManager() *logging.Manager {
	m := logging.NewManager()
	m.Setup(io.Discard, "error", nil)
	return m
}

func TestService_StartStop(t *testing.T) {
	svc := NewService(Dependencies{
		LogManager: quietLogManager(),
		Workers:    stubProgress{},
		Interval:   5 * time.Millisecond,
	})

	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !svc.IsRunning() {
		t.Error("expected IsRunning after Start")
	}
	svc.Stop()
	if svc.IsRunning() {
		t.Error("expected not running after Stop")
	}
}

func TestService_StopTwice(t *testing.T) {
	svc := NewService(Dependencies{
		LogManager: quietLogManager(),
		Workers:    stubProgress{},
		Interval:   5 * time.Millisecond,
	})

	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.Stop()
	// A second Stop must be a no-op, not a close of a closed channel.
	svc.Stop()
}

func TestService_WritesStatusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	svc := NewService(Dependencies{
		LogManager: quietLogManager(),
		Workers: stubProgress{prog: worker.Progress{
			Total:     10,
			Processed: 7,
			Failed:    1,
			Queued:    2,
		}},
		StatusPath: path,
		Interval:   5 * time.Millisecond,
	})

	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			var snap snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				t.Fatalf("parsing status file: %v", err)
			}
			if snap.Total != 10 || snap.Processed != 7 || snap.Failed != 1 || snap.Queued != 2 {
				t.Fatalf("unexpected snapshot: %+v", snap)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("status file never written")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_StartTwiceIsNoop(t *testing.T) {
	svc := NewService(Dependencies{
		LogManager: quietLogManager(),
		Workers:    stubProgress{},
		Interval:   5 * time.Millisecond,
	})

	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	svc.Stop()
}
