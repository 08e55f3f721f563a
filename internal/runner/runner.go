package runner

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/internal/observability"
)

// Projector projects batches of latitude/longitude pairs to grid coordinates.
type Projector interface {
	ProjectParallel(ctx context.Context, lat, long []float64, unit geodesy.AngleUnit, opts geodesy.BatchOptions) (easting, northing []float64, err error)
}

// Options configures a Runner.
type Options struct {
	Batch geodesy.BatchOptions
	// BatchRows is the number of input rows buffered before projecting.
	// Defaults to Workers*ChunkSize.
	BatchRows int
	// GridRefDigits adds a lettered grid reference column when non-zero.
	GridRefDigits int
	Unit          geodesy.AngleUnit
	Clock         clockwork.Clock
}

// Summary describes a completed run.
type Summary struct {
	Rows       int
	Degenerate int
	Batches    int
	Duration   time.Duration
}

// Runner reads "lat,long" CSV rows, projects them and writes
// "easting,northing" rows in the same order.
type Runner struct {
	projector Projector
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Runner.
func New(p Projector, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Batch.ChunkSize <= 0 {
		opts.Batch.ChunkSize = geodesy.DefaultChunkSize
	}
	if opts.BatchRows <= 0 {
		opts.BatchRows = max(opts.Batch.Workers, 1) * opts.Batch.ChunkSize
	}
	return &Runner{projector: p, opts: opts, logger: logger, metrics: metrics}
}

// Run projects every row of in and writes the results to out. A first row
// whose latitude is not a number is treated as a header. Parse errors stop
// the run and name the offending line.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	start := r.opts.Clock.Now()
	var sum Summary

	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	cw := csv.NewWriter(out)
	header := []string{"easting", "northing"}
	if r.opts.GridRefDigits > 0 {
		header = append(header, "gridref")
	}
	if err := cw.Write(header); err != nil {
		return sum, errors.Wrap(err, "writing header")
	}

	lat := make([]float64, 0, r.opts.BatchRows)
	long := make([]float64, 0, r.opts.BatchRows)
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, errors.Wrap(err, "reading input")
		}
		line, _ := cr.FieldPos(0)

		la, lo, err := parseRow(rec)
		if err != nil && first && isHeader(rec) {
			first = false
			r.logger.Debug("skipping header", "line", line)
			continue
		}
		first = false
		r.metrics.RowsRead.Inc()
		if err != nil {
			r.metrics.RowsRejected.Inc()
			return sum, errors.Wrapf(err, "line %d", line)
		}

		lat = append(lat, la)
		long = append(long, lo)
		if len(lat) == r.opts.BatchRows {
			if err := r.flush(ctx, cw, lat, long, &sum); err != nil {
				return sum, err
			}
			lat, long = lat[:0], long[:0]
		}
	}
	if len(lat) > 0 {
		if err := r.flush(ctx, cw, lat, long, &sum); err != nil {
			return sum, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return sum, errors.Wrap(err, "writing output")
	}

	sum.Duration = r.opts.Clock.Since(start)
	r.logger.Info("projection complete",
		"rows", sum.Rows,
		"degenerate", sum.Degenerate,
		"batches", sum.Batches,
		"duration", sum.Duration,
	)
	return sum, nil
}

func (r *Runner) flush(ctx context.Context, cw *csv.Writer, lat, long []float64, sum *Summary) error {
	batchStart := r.opts.Clock.Now()
	easting, northing, err := r.projector.ProjectParallel(ctx, lat, long, r.opts.Unit, r.opts.Batch)
	if err != nil {
		return errors.Wrapf(err, "projecting rows %d-%d", sum.Rows+1, sum.Rows+len(lat))
	}
	elapsed := r.opts.Clock.Since(batchStart)

	r.metrics.BatchSize.Observe(float64(len(lat)))
	r.metrics.BatchDuration.Observe(elapsed.Seconds())

	row := make([]string, 0, 3)
	for i := range easting {
		row = row[:0]
		row = append(row, formatMeters(easting[i]), formatMeters(northing[i]))
		degenerate := !isFinite(easting[i]) || !isFinite(northing[i])
		if degenerate {
			sum.Degenerate++
			r.metrics.RowsDegenerate.Inc()
			r.logger.Warn("degenerate projection", "row", sum.Rows+i+1, "lat", lat[i], "long", long[i])
		}
		if r.opts.GridRefDigits > 0 {
			row = append(row, r.gridRef(easting[i], northing[i], degenerate))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing output")
		}
	}

	sum.Rows += len(easting)
	sum.Batches++
	r.metrics.RowsProjected.Add(float64(len(easting)))
	r.logger.Debug("batch projected", "rows", len(easting), "elapsed", elapsed)
	return nil
}

// gridRef is empty for points outside the lettered squares.
func (r *Runner) gridRef(e, n float64, degenerate bool) string {
	if degenerate {
		return ""
	}
	ref, err := geodesy.FormatGridRef(geodesy.GridCoord{Easting: e, Northing: n}, r.opts.GridRefDigits)
	if err != nil {
		return ""
	}
	return ref
}

func parseRow(rec []string) (lat, long float64, err error) {
	if len(rec) < 2 {
		return 0, 0, errors.Errorf("expected latitude and longitude, got %d fields", len(rec))
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "latitude")
	}
	long, err = strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "longitude")
	}
	return lat, long, nil
}

func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	return err != nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatMeters(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
