// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir    string // Directory holding <molecule>.msgpack files (always absolute)
	NormsFile  string // Norm table, relative to DataDir unless absolute
	LedgerPath string // sqlite run ledger, empty disables recording
	LogLevel   string
	LogPretty  bool
	S3         S3Config
	Defaults   RunDefaults
}

// S3Config selects a bucket to read parameter files and the norm table from
// instead of DataDir.
type S3Config struct {
	Bucket          string
	Prefix          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// RunDefaults are the estimate parameters used when neither a flag nor a preset sets them.
type RunDefaults struct {
	ModeBits  int     `yaml:"mode_bits"`  // k, qubits per mode
	CoeffBits int     `yaml:"coeff_bits"` // b, coefficient precision
	Time      float64 `yaml:"time"`       // simulated time
	ReqError  float64 `yaml:"req_error"`  // target Trotter error
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("VIBRONIC_DATA_DIR", "data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:    absDataDir,
		NormsFile:  getEnv("VIBRONIC_NORMS_FILE", "trotter_norms.csv"),
		LedgerPath: getEnv("VIBRONIC_LEDGER_PATH", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogPretty:  getEnvAsBool("LOG_PRETTY", true),
		S3: S3Config{
			Bucket:          getEnv("VIBRONIC_S3_BUCKET", ""),
			Prefix:          getEnv("VIBRONIC_S3_PREFIX", ""),
			Endpoint:        getEnv("VIBRONIC_S3_ENDPOINT", ""),
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Defaults: RunDefaults{
			ModeBits:  getEnvAsInt("VIBRONIC_MODE_BITS", 4),
			CoeffBits: getEnvAsInt("VIBRONIC_COEFF_BITS", 20),
			Time:      getEnvAsFloat("VIBRONIC_TIME", 152),
			ReqError:  getEnvAsFloat("VIBRONIC_REQ_ERROR", 0.01),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.NormsFile == "" {
		return fmt.Errorf("VIBRONIC_NORMS_FILE must not be empty")
	}
	return c.Defaults.Validate()
}

// Validate checks that the defaults describe a runnable estimate
func (d RunDefaults) Validate() error {
	if d.ModeBits < 1 || d.ModeBits > 16 {
		return fmt.Errorf("mode bits must be in [1, 16], got %d", d.ModeBits)
	}
	if d.CoeffBits < 1 || d.CoeffBits > 62 {
		return fmt.Errorf("coefficient bits must be in [1, 62], got %d", d.CoeffBits)
	}
	if d.Time < 0 || math.IsNaN(d.Time) || math.IsInf(d.Time, 0) {
		return fmt.Errorf("time must be a non-negative number, got %v", d.Time)
	}
	if d.ReqError <= 0 || math.IsNaN(d.ReqError) || math.IsInf(d.ReqError, 0) {
		return fmt.Errorf("required error must be positive, got %v", d.ReqError)
	}
	return nil
}

// NormsPath resolves NormsFile against DataDir
func (c *Config) NormsPath() string {
	if filepath.IsAbs(c.NormsFile) {
		return c.NormsFile
	}
	return filepath.Join(c.DataDir, c.NormsFile)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
