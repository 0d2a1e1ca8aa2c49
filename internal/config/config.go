package config

import (
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/vesselwatch/aistracks/internal/geofence"
	"github.com/vesselwatch/aistracks/internal/segment"
)

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// DBConfig holds database storage backend settings
type DBConfig struct {
	Host           string `json:"host" mapstructure:"host"`
	Port           string `json:"port" mapstructure:"port"`
	Username       string `json:"username" mapstructure:"username"`
	Password       string `json:"password" mapstructure:"password"`
	Database       string `json:"database" mapstructure:"database"`
	SqliteFallback string `json:"sqliteFallback" mapstructure:"sqliteFallback"`
}

// CSVConfig holds CSV output backend settings
type CSVConfig struct {
	OutputDir string `json:"outputDir" mapstructure:"outputDir"`
}

// StorageConfig selects and configures the output backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	CSV    CSVConfig    `json:"csv" mapstructure:"csv"`
	DB     DBConfig     `json:"db" mapstructure:"db"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds InfluxDB metrics sink settings
type InfluxConfig struct {
	Enabled  bool
	Protocol string
	Host     string
	Port     string
	Token    string
	Org      string
	Bucket   string
}

// defaultPorts are the harbor geofence centers of the study area, lon/lat.
// Declared as map[string]any so viper can cast the default back out of its
// settings store; a concrete slice map comes back empty from GetStringMap.
var defaultPorts = map[string]any{
	"ProvPort":        []float64{-71.391, 41.802},
	"New_London":      []float64{-72.093, 41.354},
	"Point_Judith":    []float64{-71.488, 41.363},
	"Quonset":         []float64{-71.415, 41.585},
	"Montauk":         []float64{-71.931, 41.074},
	"New_Bedford":     []float64{-70.923, 41.636},
	"Bridgeport":      []float64{-73.181, 41.173},
	"Shinnecock":      []float64{-72.476, 40.842},
	"Fall_River":      []float64{-71.164, 41.704},
	"Fairhaven":       []float64{-70.906, 41.624},
	"Newport_RI":      []float64{-71.328, 41.484},
	"Sakonnet_Harbor": []float64{-71.193, 41.464},
	"Brooklyn_NY":     []float64{-74.015, 40.672},
	"Charleston_SC":   []float64{-79.927, 32.818},
	"Corpus_Christi":  []float64{-97.395, 27.800},
	"Millville_NJ":    []float64{-75.044, 39.213},
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("workers", runtime.NumCPU())

	viper.SetDefault("epsg.metric", 32618)

	viper.SetDefault("clean.maxSOG", 40.0)
	viper.SetDefault("clean.gapFlagHours", 4.0)
	viper.SetDefault("segment.lowSpeedKnots", 1.0)
	viper.SetDefault("segment.stationaryMinHours", 1.0)
	viper.SetDefault("segment.tripGapHours", 8.0)

	viper.SetDefault("land.url", "")
	viper.SetDefault("land.file", "")
	viper.SetDefault("land.bufferMeters", -200.0)
	viper.SetDefault("land.fetchTimeout", "30s")

	viper.SetDefault("ports.bufferMeters", 1000.0)
	viper.SetDefault("ports.locations", defaultPorts)

	viper.SetDefault("density.level", 13)

	viper.SetDefault("input.type", "csv")
	viper.SetDefault("input.csvDir", "./data-raw")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./data")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.csv.outputDir", "./data")
	viper.SetDefault("storage.db.host", "localhost")
	viper.SetDefault("storage.db.port", "5432")
	viper.SetDefault("storage.db.username", "postgres")
	viper.SetDefault("storage.db.password", "postgres")
	viper.SetDefault("storage.db.database", "aistracks")
	viper.SetDefault("storage.db.sqliteFallback", "./aistracks.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "aistracks-metrics")
	viper.SetDefault("influx.bucket", "pipeline_runs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "aistracks")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("aistracks.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float64 config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetSegmentConfig returns the segmentation thresholds.
func GetSegmentConfig() segment.Config {
	return segment.Config{
		MaxSOG:             viper.GetFloat64("clean.maxSOG"),
		GapFlagHours:       viper.GetFloat64("clean.gapFlagHours"),
		LowSpeedKnots:      viper.GetFloat64("segment.lowSpeedKnots"),
		StationaryMinHours: viper.GetFloat64("segment.stationaryMinHours"),
		TripGapHours:       viper.GetFloat64("segment.tripGapHours"),
	}
}

// GetPorts returns the configured port geofence centers.
func GetPorts() []geofence.Port {
	raw := viper.GetStringMap("ports.locations")
	ports := make([]geofence.Port, 0, len(raw))
	for name, v := range raw {
		lonlat, ok := toFloatPair(v)
		if !ok {
			continue
		}
		ports = append(ports, geofence.Port{Name: name, Lon: lonlat[0], Lat: lonlat[1]})
	}
	return ports
}

func toFloatPair(v any) ([2]float64, bool) {
	var out [2]float64
	switch vals := v.(type) {
	case []float64:
		if len(vals) != 2 {
			return out, false
		}
		out[0], out[1] = vals[0], vals[1]
		return out, true
	case []any:
		if len(vals) != 2 {
			return out, false
		}
		for i, item := range vals {
			f, ok := toFloat(item)
			if !ok {
				return out, false
			}
			out[i] = f
		}
		return out, true
	default:
		return out, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	var cfg StorageConfig
	cfg.Type = viper.GetString("storage.type")
	_ = viper.UnmarshalKey("storage.memory", &cfg.Memory)
	_ = viper.UnmarshalKey("storage.csv", &cfg.CSV)
	_ = viper.UnmarshalKey("storage.db", &cfg.DB)
	return cfg
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB sink configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}
