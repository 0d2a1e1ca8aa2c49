package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Indirection for tests that need to capture console output.
var (
	osStdout io.Writer = os.Stdout
	osPipe             = os.Pipe
)

// Manager owns the process-wide slog configuration. A single logger fans
// out to console or file, an optional GELF endpoint, and an optional
// OTel log provider.
type Manager struct {
	logger *slog.Logger

	gelf io.Writer

	// OTel provider, kept for flushing on shutdown
	logProvider *sdklog.LoggerProvider
}

// NewManager creates an unconfigured logging manager. Call Setup before
// using the logger.
func NewManager() *Manager {
	return &Manager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetGelfWriter attaches a GELF endpoint. Takes effect on the next Setup.
func (m *Manager) SetGelfWriter(w io.Writer) {
	m.gelf = w
}

// Setup initializes the logging system. When file is non-nil all text
// output goes to the file and the console stays quiet; otherwise the
// console receives the text output. If provider is nil, OTel logging is
// disabled.
func (m *Manager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	lvl := parseLevel(level)
	m.logProvider = provider

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(osStdout, handlerOpts))
	}

	if m.gelf != nil {
		// GELF expects one JSON document per write
		handlers = append(handlers, slog.NewJSONHandler(m.gelf, handlerOpts))
	}

	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler("aistracks", otelslog.WithLoggerProvider(provider)))
	}

	m.logger = slog.New(NewMultiHandler(handlers...))
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger, or slog.Default before Setup.
func (m *Manager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of buffered OTel logs if a provider is attached.
func (m *Manager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
