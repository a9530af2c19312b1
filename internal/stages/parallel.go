package stages

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelRows runs fn over disjoint row bands. Band boundaries must not
// influence results: fn may read anywhere in the input but writes only its
// own output rows, so the split is a throughput detail, not a semantic one.
func parallelRows(height int, fn func(y0, y1 int) error) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > height {
		workers = height
	}
	if workers <= 1 {
		return fn(0, height)
	}

	chunk := (height + workers - 1) / workers
	var g errgroup.Group
	for y0 := 0; y0 < height; y0 += chunk {
		y1 := y0 + chunk
		if y1 > height {
			y1 = height
		}
		y0 := y0
		g.Go(func() error {
			return fn(y0, y1)
		})
	}
	return g.Wait()
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
