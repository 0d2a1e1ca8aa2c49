package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/vesselwatch/aistracks/internal/config"
	"github.com/vesselwatch/aistracks/internal/influx"
	"github.com/vesselwatch/aistracks/internal/logging"
	intOtel "github.com/vesselwatch/aistracks/internal/otel"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	AppName string = "aistracks"
)

// global variables
var (
	SessionStartTime time.Time = time.Now()

	// SlogManager handles all slog-based logging
	SlogManager *logging.Manager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger is the zerolog logger used by the database and influx layers
	ZLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// InfluxManager ships run measurements, nil when influx is disabled
	InfluxManager *influx.Manager

	RunLogFilePath string
	RunLogFile     *os.File
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	configDir := "."
	if len(args) > 1 {
		configDir = args[1]
	}

	if err := setup(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch strings.ToLower(args[0]) {
	case "run":
		err = runPipeline(ctx)
	case "density":
		err = runDensity(ctx)
	case "version":
		fmt.Printf("%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
	default:
		usage()
		err = fmt.Errorf("unknown command %q", args[0])
	}

	teardown(ctx)

	if err != nil {
		Logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <run|density|version> [configDir]\n", AppName)
}

// setup loads configuration and brings up logging, OTel and the optional
// influx sink, in that order. Early log lines go to the console until the
// run log file is open.
func setup(configDir string) error {
	SlogManager = logging.NewManager()
	SlogManager.Setup(nil, viper.GetString("logLevel"), nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("creating logs dir: %w", err)
		}
	}

	RunLogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	var err error
	RunLogFile, err = os.OpenFile(RunLogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("creating log file %s: %w", RunLogFilePath, err)
	}

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    RunLogFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else if otelCfg.Endpoint != "" {
			Logger.Info("OTel provider initialized", "file", RunLogFilePath, "endpoint", otelCfg.Endpoint)
		} else {
			Logger.Info("OTel provider initialized", "file", RunLogFilePath)
		}
	}

	if viper.GetBool("graylog.enabled") {
		addr := viper.GetString("graylog.address")
		gelfWriter, err := logging.DialGelf(addr)
		if err != nil {
			Logger.Warn("Failed to connect GELF writer", "error", err, "address", addr)
		} else {
			SlogManager.SetGelfWriter(gelfWriter)
			Logger.Info("GELF writer connected", "address", addr)
		}
	}

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(RunLogFile, viper.GetString("logLevel"), otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", RunLogFilePath)

	ZLogger = zerolog.New(RunLogFile).With().Timestamp().Logger()

	if viper.GetBool("influx.enabled") {
		InfluxManager = influx.NewManager(
			ZLogger,
			filepath.Join(logsDir, "influx_backup.log.gzip"),
		)
		if err := InfluxManager.Connect(); err != nil {
			Logger.Warn("Failed to connect to InfluxDB", "error", err)
			InfluxManager = nil
		}
	}

	return nil
}

// teardown flushes and closes everything setup opened.
func teardown(ctx context.Context) {
	if InfluxManager != nil {
		if err := InfluxManager.Close(); err != nil {
			Logger.Warn("Error closing InfluxDB manager", "error", err)
		}
	}

	if OTelProvider != nil {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := OTelProvider.Flush(flushCtx); err != nil {
			Logger.Warn("Error flushing OTel provider", "error", err)
		}
		if err := OTelProvider.Shutdown(flushCtx); err != nil {
			Logger.Warn("Error shutting down OTel provider", "error", err)
		}
	}

	if RunLogFile != nil {
		_ = RunLogFile.Close()
	}
}
