package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/egruenh-co/lakner-inflation/internal/errors"
	"github.com/egruenh-co/lakner-inflation/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// AnalysisConfig controls what is computed and how inputs are read
type AnalysisConfig struct {
	BasePeriod        int           `yaml:"base_period" envconfig:"BASE_PERIOD" validate:"gte=1900,lte=2100"`
	NominalFile       string        `yaml:"nominal_file" envconfig:"NOMINAL_FILE" validate:"required,filename"`
	RealFile          string        `yaml:"real_file" envconfig:"REAL_FILE" validate:"required,filename"`
	ReferenceFile     string        `yaml:"reference_file" envconfig:"REFERENCE_FILE" validate:"required,filename"`
	Separator         string        `yaml:"csv_separator" envconfig:"CSV_SEPARATOR" validate:"required,separator"`
	ReferenceRateUnit string        `yaml:"reference_rate_unit" envconfig:"REFERENCE_RATE_UNIT" validate:"oneof=fraction percent"`
	DecimalPlaces     int           `yaml:"decimal_places" envconfig:"DECIMAL_PLACES" validate:"gte=0,lte=10"`
	Charts            bool          `yaml:"charts" envconfig:"CHARTS"`
	Workbook          bool          `yaml:"workbook" envconfig:"WORKBOOK"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
}

// PathsConfig contains file system locations. Relative paths are resolved
// against the working directory.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
	ChartsDir  string `yaml:"charts_dir" envconfig:"CHARTS_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls the trace and metrics files written per run
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceFile      string `yaml:"trace_file" envconfig:"TRACE_FILE" validate:"required_if=TracingEnabled true"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	MetricsFile    string `yaml:"metrics_file" envconfig:"METRICS_FILE" validate:"required_if=MetricsEnabled true"`
}

// Load builds the configuration from defaults, the YAML file found at
// $LAKNER_CONFIG, config.yaml or configs/config.yaml, and LAKNER_*
// environment variables, in increasing order of precedence
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the
// file layer.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("config_file", path)
		}
	}

	// Fields without a matching variable keep the value set above
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every section against its struct tags
func (c *Config) Validate() error {
	if err := validation.NewStructValidator("yaml").Validate(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// ReferenceRateScale is the factor that turns a rate read from the
// reference file into percent
func (c *Config) ReferenceRateScale() float64 {
	if c.Analysis.ReferenceRateUnit == RateUnitPercent {
		return 1
	}
	return 100
}

func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvConfigFile); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			BasePeriod:        2020,
			NominalFile:       NominalSalesFile,
			RealFile:          RealSalesFile,
			ReferenceFile:     ReferenceRateFile,
			Separator:         ";",
			ReferenceRateUnit: RateUnitFraction,
			DecimalPlaces:     4,
			Charts:            true,
			Workbook:          true,
			Timeout:           2 * time.Minute,
		},
		Paths: PathsConfig{
			DataDir:    ".",
			ReportsDir: "output",
			ChartsDir:  "output",
			LogsDir:    "logs",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   LogOutputConsole,
			FilePath: "lakner-inflation.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TracingEnabled: false,
			TraceFile:      "traces.jsonl",
			MetricsEnabled: true,
			MetricsFile:    "lakner_inflation.prom",
		},
	}
}
