package demo

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DecodeFiles decodes independent demo files concurrently, at most limit at
// a time (no limit when limit <= 0). Results are returned in the order of
// paths. The first failure cancels the files not yet started and is
// returned.
func (d *Decoder) DecodeFiles(ctx context.Context, paths []string, limit int) ([]*Demo, error) {
	out := make([]*Demo, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dem, err := d.DecodeFile(path)
			if err != nil {
				return fmt.Errorf("demo: %s: %w", path, err)
			}
			out[i] = dem
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
