package geodesy

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is the number of points each worker projects at a time
// when BatchOptions leaves ChunkSize unset.
const DefaultChunkSize = 1024

// BatchOptions controls ProjectParallel.
type BatchOptions struct {
	Workers   int // defaults to GOMAXPROCS
	ChunkSize int // defaults to DefaultChunkSize
}

// ProjectParallel is Project with the batch split into chunks that are
// projected concurrently. Points are independent, so the result is
// identical to Project. Cancelling ctx stops scheduling further chunks.
func (g *NationalGrid) ProjectParallel(ctx context.Context, lat, long []float64, unit AngleUnit, opts BatchOptions) (easting, northing []float64, err error) {
	if len(lat) != len(long) {
		return nil, nil, fmt.Errorf("%w: %d latitudes, %d longitudes", ErrShapeMismatch, len(lat), len(long))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	easting = make([]float64, len(lat))
	northing = make([]float64, len(lat))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for start := 0; start < len(lat); start += chunk {
		if egCtx.Err() != nil {
			break
		}
		end := min(start+chunk, len(lat))
		start := start
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			e, n, err := g.Project(lat[start:end], long[start:end], unit)
			if err != nil {
				return err
			}
			copy(easting[start:end], e)
			copy(northing[start:end], n)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return easting, northing, nil
}
