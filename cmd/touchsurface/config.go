package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionConfig carries non-calibration session defaults that would
// otherwise have to be repeated as flags on every invocation. The
// calibration grid itself is never stored here; it has its own file
// format and loader in internal/calib. The subcommands read only
// SensorTimeout (for their own direct frame reads) and DiagnosticDir;
// DisplayWidth, DisplayHeight and CalibrationFile are loaded but do not
// replace the --display or --calibration flag values.
type SessionConfig struct {
	SensorTimeout   time.Duration `yaml:"sensor_timeout"`
	DisplayWidth    int           `yaml:"display_width"`
	DisplayHeight   int           `yaml:"display_height"`
	DiagnosticDir   string        `yaml:"diagnostic_dir"`
	CalibrationFile string        `yaml:"calibration_file"`
}

// defaultSessionConfig mirrors the flag defaults used when no --config
// file is given.
func defaultSessionConfig() SessionConfig {
	return SessionConfig{
		SensorTimeout: 10 * time.Second,
		DisplayWidth:  1920,
		DisplayHeight: 1080,
		DiagnosticDir: "./diagnostics",
	}
}

// loadSessionConfig reads a YAML config file, overlaying its values on
// top of the defaults. A missing path is not an error; callers pass
// the --config flag's value, which is empty unless set.
func loadSessionConfig(path string) (SessionConfig, error) {
	cfg := defaultSessionConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
