package attendance

import (
	"context"
	"errors"
	"math"
	"time"

	"backend-fieldops/internal/logger"
	"backend-fieldops/internal/routing"

	"golang.org/x/sync/errgroup"
)

type Result struct {
	KM         float64 `json:"km"`
	Legs       int     `json:"legs"`
	FailedLegs int     `json:"failed_legs"`
}

// Accumulator sums the road distance of consecutive waypoint pairs.
type Accumulator struct {
	router     routing.Router
	limit      int
	legTimeout time.Duration
}

func NewAccumulator(router routing.Router, maxConcurrency int, legTimeout time.Duration) *Accumulator {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Accumulator{router: router, limit: maxConcurrency, legTimeout: legTimeout}
}

// Accumulate never fails. A leg the router cannot resolve counts as zero and
// is reported in FailedLegs.
func (a *Accumulator) Accumulate(ctx context.Context, wps []Waypoint) Result {
	if len(wps) < 2 {
		return Result{}
	}

	legs := len(wps) - 1
	dists := make([]float64, legs)
	failed := make([]bool, legs)

	var g errgroup.Group
	g.SetLimit(a.limit)
	for i := 0; i < legs; i++ {
		i := i
		g.Go(func() error {
			km, err := a.leg(ctx, wps[i], wps[i+1])
			if err != nil {
				failed[i] = true
				logger.Ctx(ctx).Warn("leg distance unavailable",
					logger.Int("leg", i),
					logger.String("origin", wps[i].Coordinate.String()),
					logger.String("dest", wps[i+1].Coordinate.String()),
					logger.Err(err),
				)
				return nil
			}
			dists[i] = km
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Legs: legs}
	for i := range dists {
		if failed[i] {
			res.FailedLegs++
			continue
		}
		res.KM += dists[i]
	}
	return res
}

func (a *Accumulator) leg(ctx context.Context, from, to Waypoint) (float64, error) {
	if a.legTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.legTimeout)
		defer cancel()
	}
	km, err := a.router.LegDistance(ctx, from.Coordinate, to.Coordinate)
	if err != nil {
		return 0, errors.Join(ErrUpstreamDegraded, err)
	}
	if km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return 0, ErrUpstreamDegraded
	}
	return km, nil
}
