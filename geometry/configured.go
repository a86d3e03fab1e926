package geometry

import (
	"context"
	"log/slog"

	"github.com/decibelcooper/hgcalhistory"
)

// FromConfiguration loads the detector named by the geometry settings of
// config, or the built-in HGCAL tables when no database is configured.
func FromConfiguration(ctx context.Context, config hgcalhistory.Configuration, logger *slog.Logger) (*Detector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.GeometryDSN == "" {
		logger.Debug("Using built-in HGCAL layer tables", "module", "geometry")
		return HGCal()
	}

	db, err := Connect(config.GeometryDriver, config.GeometryDSN)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	det, err := LoadFromDB(ctx, db, config.GeometryTag)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded layer tables for tag "+config.GeometryTag, "module", "geometry")
	return det, nil
}
