package news2

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome of one reading in a batch. Exactly one of Result
// and Err is set.
type BatchItem struct {
	Index  int
	Result *Result
	Err    error
}

// CalculateBatch scores readings on up to parallel workers. Results keep the
// input order. Invalid readings are reported per item and do not stop the
// batch; only context cancellation returns an error.
func (s *Scorer) CalculateBatch(ctx context.Context, readings []Measurements, parallel int) ([]BatchItem, error) {
	if parallel < 1 {
		parallel = 1
	}
	items := make([]BatchItem, len(readings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, m := range readings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Calculate(gctx, m)
			items[i] = BatchItem{Index: i, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.Info("batch scored", "readings", len(readings), "workers", parallel)
	return items, nil
}
