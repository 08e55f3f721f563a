// Command osgrid projects WGS84 latitude/longitude CSV rows onto a
// national grid.
//
//	osgrid [flags] [input.csv]
//
// Input rows are "lat,long", optionally preceded by a header row. Output rows
// are "easting,northing" and, with --gridref-digits, a lettered grid
// reference. Settings default from OSGRID_* environment variables.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/internal/config"
	"github.com/tzneal/geodesy/internal/observability"
	"github.com/tzneal/geodesy/internal/runner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("osgrid failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	var (
		output  string
		radians bool
	)
	fs := pflag.NewFlagSet("osgrid", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&cfg.Grid, "grid", "g", cfg.Grid, "grid to project onto")
	fs.StringVar(&cfg.DefinitionsFile, "definitions", cfg.DefinitionsFile, "YAML file of extra ellipsoids, datums and grids")
	fs.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "concurrent projection workers")
	fs.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "points per worker chunk")
	fs.IntVar(&cfg.GridRefDigits, "gridref-digits", cfg.GridRefDigits, "add a grid reference column with this many digits (0 to omit)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	fs.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "write run metrics to this file")
	fs.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	fs.BoolVar(&radians, "radians", false, "input angles are radians")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return errors.Errorf("expected at most one input file, got %d", fs.NArg())
	}

	logger := observability.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	registry := config.NewRegistry()
	if cfg.DefinitionsFile != "" {
		defs, err := config.LoadDefinitions(cfg.DefinitionsFile)
		if err != nil {
			return err
		}
		if err := registry.Add(defs); err != nil {
			return errors.Wrap(err, "building definitions")
		}
		logger.Debug("loaded definitions", "file", cfg.DefinitionsFile, "grids", registry.GridNames())
	}
	grid, err := registry.Grid(cfg.Grid)
	if err != nil {
		return err
	}

	in := stdin
	if fs.NArg() == 1 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return errors.Wrap(err, "opening input")
		}
		defer f.Close()
		in = f
	}
	out := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer f.Close()
		out = f
	}

	unit := geodesy.Degrees
	if radians {
		unit = geodesy.Radians
	}
	r := runner.New(grid, runner.Options{
		Batch:         geodesy.BatchOptions{Workers: cfg.Workers, ChunkSize: cfg.ChunkSize},
		GridRefDigits: cfg.GridRefDigits,
		Unit:          unit,
	}, logger, metrics)

	logger.Info("projecting", "grid", cfg.Grid, "unit", unit, "workers", cfg.Workers)
	_, runErr := r.Run(ctx, in, out)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("writing metrics", "file", cfg.MetricsTextfile, "error", err)
		}
	}
	return runErr
}
