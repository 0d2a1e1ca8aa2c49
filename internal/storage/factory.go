// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vesselwatch/aistracks/internal/config"
	"github.com/vesselwatch/aistracks/internal/storage/csvstore"
	"github.com/vesselwatch/aistracks/internal/storage/db"
	"github.com/vesselwatch/aistracks/internal/storage/memory"
)

// NewSink creates an output backend based on configuration.
func NewSink(cfg config.StorageConfig, log zerolog.Logger) (Sink, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Memory), nil
	case "csv":
		return csvstore.NewWriter(cfg.CSV.OutputDir)
	case "db":
		return db.New(cfg.DB, log)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewSource creates an input source based on configuration.
func NewSource(inputType, csvDir string, log zerolog.Logger) (Source, error) {
	switch inputType {
	case "csv":
		return csvstore.NewSource(csvDir, log), nil
	default:
		return nil, fmt.Errorf("unknown input type: %s", inputType)
	}
}
