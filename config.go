package hgcalhistory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override of Configuration.
const EnvPrefix = "HGCAL_"

type Configuration struct {
	Inputs     []string `json:"inputs" env:"INPUTS" envSeparator:","`
	Format     string   `json:"format" env:"FORMAT"`
	TreeName   string   `json:"tree_name" env:"TREE_NAME"`
	MaxEvents  int      `json:"max_events" env:"MAX_EVENTS"`
	Skip       int      `json:"skip" env:"SKIP"`
	Verbosity  int      `json:"verbosity" env:"VERBOSITY"`
	NumWorkers int      `json:"num_workers" env:"NUM_WORKERS"`

	DropZeroOrigin    bool `json:"drop_zero_origin" env:"DROP_ZERO_ORIGIN"`
	GeometryFilter    bool `json:"geometry_filter" env:"GEOMETRY_FILTER"`
	HitEnvelopeFilter bool `json:"hit_envelope_filter" env:"HIT_ENVELOPE_FILTER"`

	GeometryDriver string `json:"geometry_driver" env:"GEOMETRY_DRIVER"`
	GeometryDSN    string `json:"geometry_dsn" env:"GEOMETRY_DSN"`
	GeometryTag    string `json:"geometry_tag" env:"GEOMETRY_TAG"`

	StorageEndpoint  string `json:"storage_endpoint" env:"STORAGE_ENDPOINT"`
	StorageAccessKey string `json:"storage_access_key" env:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `json:"storage_secret_key" env:"STORAGE_SECRET_KEY"`
	StorageSecure    bool   `json:"storage_secure" env:"STORAGE_SECURE"`
	CacheDir         string `json:"cache_dir" env:"CACHE_DIR"`

	Output           string `json:"output" env:"OUTPUT"`
	CompressionLevel int    `json:"compression_level" env:"COMPRESSION_LEVEL"`

	XEdges     []float64 `json:"x_edges" env:"X_EDGES" envSeparator:","`
	YEdges     []float64 `json:"y_edges" env:"Y_EDGES" envSeparator:","`
	Labels     string    `json:"labels" env:"LABELS"`
	Projection string    `json:"projection" env:"PROJECTION"`
}

// DefaultConfiguration returns the settings used when neither a file nor the
// environment say otherwise.
func DefaultConfiguration() Configuration {
	return Configuration{
		Format:           "auto",
		TreeName:         "Events",
		MaxEvents:        1000000000,
		NumWorkers:       1,
		DropZeroOrigin:   true,
		GeometryFilter:   true,
		GeometryDriver:   "mysql",
		GeometryTag:      "default",
		StorageEndpoint:  "localhost:9000",
		CacheDir:         os.TempDir(),
		Output:           "out.h5",
		CompressionLevel: 4,
		Labels:           "pdgid",
		Projection:       "zx",
	}
}

// LoadConfiguration applies, in order, the defaults, the JSON file (skipped
// when filename is empty) and the HGCAL_* environment variables.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return config, fmt.Errorf("read configuration: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("decode configuration %s: %w", filename, err)
		}
	}

	if err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix}); err != nil {
		return config, fmt.Errorf("parse env: %w", err)
	}
	return config, nil
}

func (c Configuration) Log(logger *slog.Logger) {
	logger.Info(fmt.Sprintf("Inputs: %v", c.Inputs), "module", "config")
	logger.Info(fmt.Sprintf("Format: %s", c.Format), "module", "config")
	logger.Info(fmt.Sprintf("Tree name: %s", c.TreeName), "module", "config")
	logger.Info(fmt.Sprintf("Max events: %d", c.MaxEvents), "module", "config")
	logger.Info(fmt.Sprintf("Skip: %d", c.Skip), "module", "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", c.Verbosity), "module", "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", c.NumWorkers), "module", "config")
	logger.Info(fmt.Sprintf("Drop zero origin: %t", c.DropZeroOrigin), "module", "config")
	logger.Info(fmt.Sprintf("Geometry filter: %t", c.GeometryFilter), "module", "config")
	logger.Info(fmt.Sprintf("Hit envelope filter: %t", c.HitEnvelopeFilter), "module", "config")
	logger.Info(fmt.Sprintf("Geometry DB: %s (%s), tag %s", c.GeometryDriver, redact(c.GeometryDSN), c.GeometryTag), "module", "config")
	logger.Info(fmt.Sprintf("Storage endpoint: %s (secure %t)", c.StorageEndpoint, c.StorageSecure), "module", "config")
	logger.Info(fmt.Sprintf("Cache dir: %s", c.CacheDir), "module", "config")
	logger.Info(fmt.Sprintf("Output: %s", c.Output), "module", "config")
	logger.Info(fmt.Sprintf("Compression level: %d", c.CompressionLevel), "module", "config")
	logger.Info(fmt.Sprintf("X edges: %v", c.XEdges), "module", "config")
	logger.Info(fmt.Sprintf("Y edges: %v", c.YEdges), "module", "config")
	logger.Info(fmt.Sprintf("Labels: %s", c.Labels), "module", "config")
	logger.Info(fmt.Sprintf("Projection: %s", c.Projection), "module", "config")
}

func redact(dsn string) string {
	if dsn == "" {
		return "none"
	}
	return "set"
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
