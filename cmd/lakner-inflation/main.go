// Command lakner-inflation derives the food price inflation implied by
// nominal and real organic sales and compares it with official rates.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/egruenh-co/lakner-inflation/internal/app"
	"github.com/egruenh-co/lakner-inflation/internal/config"
	apperrors "github.com/egruenh-co/lakner-inflation/internal/errors"
	"github.com/egruenh-co/lakner-inflation/internal/infrastructure"
)

// options are the command line overrides applied on top of the config
type options struct {
	configFile string
	dataDir    string
	outDir     string
	basePeriod int
	noCharts   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to $LAKNER_CONFIG, config.yaml or configs/config.yaml)")
	fs.StringVar(&opts.dataDir, "data", "", "directory containing the input tables")
	fs.StringVar(&opts.outDir, "out", "", "directory for reports and charts")
	fs.IntVar(&opts.basePeriod, "base", 0, "base period of the price index (overrides config)")
	fs.BoolVar(&opts.noCharts, "no-charts", false, "skip PNG charts and workbook charts")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.dataDir != "" {
		cfg.Paths.DataDir = opts.dataDir
	}
	if opts.outDir != "" {
		cfg.Paths.ReportsDir = opts.outDir
		cfg.Paths.ChartsDir = opts.outDir
	}
	if opts.basePeriod != 0 {
		cfg.Analysis.BasePeriod = opts.basePeriod
	}
	if opts.noCharts {
		cfg.Analysis.Charts = false
	}

	// Flags bypass the YAML and env layers, so check again
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run executes one analysis and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return apperrors.ExitOK
		}
		fmt.Fprintln(stderr, err)
		return apperrors.ExitFailure
	}

	bootstrap := slog.New(slog.NewJSONHandler(stderr, nil))

	cfg, err := loadConfig(opts)
	if err != nil {
		return apperrors.NewHandler(bootstrap, false).Handle(ctx, err)
	}

	paths, err := cfg.ResolvePaths("")
	if err != nil {
		return apperrors.NewHandler(bootstrap, false).Handle(ctx, apperrors.NewConfigError("failed to resolve paths", err))
	}
	if err := paths.EnsureDirectories(); err != nil {
		return apperrors.NewHandler(bootstrap, false).Handle(ctx, apperrors.NewStorageError("failed to create output directories", err))
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, paths.LogFile, stderr)
	if err != nil {
		bootstrap.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = bootstrap
	}
	defer infrastructure.CloseLogFile()
	paths.LogPathResolution(logger)

	ctx = infrastructure.WithRunID(ctx, infrastructure.NewRunID())

	handler := apperrors.NewHandler(logger, strings.EqualFold(cfg.Logging.Level, "debug"))
	handler.SetHint(apperrors.ErrTypeNotFound, missingInputHint(paths))
	handler.SetHint(apperrors.ErrTypeParsing, fmt.Sprintf(
		"input tables need a header row and %q as separator; decimal commas are accepted", cfg.Analysis.Separator))

	defer func() {
		if r := recover(); r != nil {
			code = handler.HandlePanic(ctx, r)
		}
	}()

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, paths), logger)
	if err != nil {
		logger.WarnContext(ctx, "Telemetry disabled", slog.String("error", err.Error()))
		otelProviders = nil
	}
	defer func() {
		if otelProviders == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProviders.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	application, err := app.NewApplication(cfg, paths, logger, otelProviders)
	if err != nil {
		return handler.Handle(ctx, err)
	}
	application.Stdout = stdout

	if _, err := application.Run(ctx); err != nil {
		return handler.Handle(ctx, err)
	}
	return apperrors.ExitOK
}

func missingInputHint(paths *config.Paths) string {
	names := make([]string, 0, 3)
	for _, f := range paths.InputFiles() {
		names = append(names, filepath.Base(f))
	}
	return fmt.Sprintf("place %s in %s (.xlsx siblings are accepted) or pass -data",
		strings.Join(names, ", "), paths.DataDir)
}
