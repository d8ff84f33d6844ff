package config

import (
	"os"
	"strconv"

	"goeda/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
	Data     DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds settings for the SQL ingestion source
type DatabaseConfig struct {
	URL string
}

// DataConfig holds data processing settings
type DataConfig struct {
	DefaultSource string
}

// AnalysisConfig holds the engine's parameter choices and seeds
type AnalysisConfig struct {
	Seed               int64   // pinned seed for all randomized steps
	NormalitySampleCap int     // max rows per column for the normality test
	StrongCorrelation  float64 // |r| threshold for reporting a pair
	VeryStrong         float64 // |r| threshold for the "very strong" label
	Alpha              float64 // significance level
	MaxSweepK          int     // upper cluster-count candidate (exclusive of rows cap)
	KMeansRestarts     int
	KMeansMaxIter      int
	DBSCANEps          float64
	DBSCANMinPts       int
	ForestTrees        int
	TestFraction       float64
	AttributionCap     int // max held-out rows fed to the attribution step
	TopFeatures        int
}

// DefaultAnalysisConfig returns the engine defaults.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Seed:               42,
		NormalitySampleCap: 5000,
		StrongCorrelation:  0.70,
		VeryStrong:         0.90,
		Alpha:              0.05,
		MaxSweepK:          11,
		KMeansRestarts:     10,
		KMeansMaxIter:      300,
		DBSCANEps:          0.5,
		DBSCANMinPts:       5,
		ForestTrees:        100,
		TestFraction:       0.2,
		AttributionCap:     100,
		TopFeatures:        10,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    envOr("PORT", "8080"),
			GinMode: envOr("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Data: DataConfig{
			DefaultSource: os.Getenv("DATA_SOURCE"),
		},
		Analysis: DefaultAnalysisConfig(),
	}

	if v := os.Getenv("ANALYSIS_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("ANALYSIS_SEED must be an integer")
		}
		cfg.Analysis.Seed = seed
	}
	if v := os.Getenv("ANALYSIS_FOREST_TREES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, errors.ConfigInvalid("ANALYSIS_FOREST_TREES must be a positive integer")
		}
		cfg.Analysis.ForestTrees = n
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
