// Package config provides configuration management for the inflation
// analysis. It loads configuration from several sources, validates it and
// resolves every file location a run needs.
//
// # Configuration Sources
//
// Configuration is layered in order of increasing precedence:
//
//  1. Default values (Default)
//  2. A YAML file: $LAKNER_CONFIG, config.yaml or configs/config.yaml
//  3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern LAKNER_<SECTION>_<FIELD>:
//
//	LAKNER_ANALYSIS_BASE_PERIOD=2020
//	LAKNER_ANALYSIS_CSV_SEPARATOR=;
//	LAKNER_ANALYSIS_REFERENCE_RATE_UNIT=percent
//	LAKNER_PATHS_DATA_DIR=/srv/bio
//	LAKNER_LOGGING_LEVEL=debug
//	LAKNER_TELEMETRY_TRACING_ENABLED=true
//
// # YAML File
//
//	analysis:
//	  base_period: 2020
//	  csv_separator: ";"
//	paths:
//	  data_dir: data
//	  reports_dir: output
//
// Unknown keys are rejected.
//
// # Validation
//
// The merged configuration is checked with go-playground/validator struct
// tags. Errors come back as an *errors.AppError of type CONFIG listing every
// failed field.
//
// # Path Management
//
// Config.ResolvePaths turns the configured directories into a Paths value
// with absolute input, output and telemetry file locations:
//
//	paths, err := cfg.ResolvePaths("")
//	if err != nil {
//	    return err
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//	    return err
//	}
package config
