package source

import (
	"context"
	"log/slog"

	"github.com/decibelcooper/hgcalhistory"
	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/geometry"
)

// StorageFromConfiguration returns the object store settings of config.
func StorageFromConfiguration(config hgcalhistory.Configuration) StorageConfig {
	return StorageConfig{
		Endpoint:  config.StorageEndpoint,
		AccessKey: config.StorageAccessKey,
		SecretKey: config.StorageSecretKey,
		Secure:    config.StorageSecure,
		CacheDir:  config.CacheDir,
	}
}

// FromConfiguration lists config.Inputs and opens them as one source. det
// assigns layers to hits of formats that do not store them.
func FromConfiguration(ctx context.Context, config hgcalhistory.Configuration, det *geometry.Detector, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reg := NewRegistry(StorageFromConfiguration(config), logger)
	files, err := ListInputs(ctx, config.Inputs, reg, logger)
	if err != nil {
		return nil, err
	}
	return OpenAll(files, OpenOptions{
		Format:   config.Format,
		TreeName: config.TreeName,
		Detector: det,
		Event:    []event.Option{event.WithLogger(logger)},
	})
}
