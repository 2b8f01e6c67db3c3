// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Package recommend selects shows for a person using two tiers. The
// collaborative tier ranks shows liked by people who share a like with
// the target. When it comes back empty, a fallback tier widens an age
// band around the target until it finds likes or the band hits its
// ceiling.
package recommend

import (
	"context"

	"github.com/skazis/showgraph/internal/domain"
	"github.com/skazis/showgraph/internal/metrics"
)

const (
	// DefaultLimit caps result rows when the caller does not ask for a
	// specific count.
	DefaultLimit = 10

	// InitialDelta is the first age band half-width tried by the
	// fallback tier.
	InitialDelta = 2

	// DeltaStep widens the band between attempts.
	DeltaStep = 2

	// MaxDelta is the exclusive ceiling: the band stops widening once
	// the next half-width would reach it, so the widest band actually
	// queried is MaxDelta-DeltaStep.
	MaxDelta = 50
)

// Strategy names the tier that produced a result.
type Strategy string

const (
	// StrategyCoLike marks collaborative results.
	StrategyCoLike Strategy = "co-like"

	// StrategyAgeBand marks fallback results.
	StrategyAgeBand Strategy = "age-band"

	// StrategyNone marks an exhausted search with nothing to suggest.
	StrategyNone Strategy = "none"
)

// Querier answers the two ranked aggregations the engine needs.
// domain.Service satisfies it.
type Querier interface {
	CoLike(ctx context.Context, mail string, limit int) ([]domain.Recommendation, error)
	AgeBand(ctx context.Context, mail string, limit, delta int) ([]domain.Recommendation, error)
}

// Result is the outcome of one recommendation run.
type Result struct {
	Shows    []domain.Recommendation
	Strategy Strategy

	// AgeDelta is the band half-width that produced the shows. Zero
	// unless Strategy is age-band.
	AgeDelta int

	// Exhausted is set when the fallback widened to its ceiling
	// without finding anything.
	Exhausted bool
}

// Recommend runs the collaborative tier and, when it yields nothing,
// walks the widening fallback. A non-positive limit falls back to
// DefaultLimit.
func Recommend(ctx context.Context, q Querier, mail string, limit int) (Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	shows, err := q.CoLike(ctx, mail, limit)
	if err != nil {
		return Result{}, err
	}
	if len(shows) > 0 {
		metrics.RecordRecommendation(string(StrategyCoLike), 0)
		return Result{Shows: shows, Strategy: StrategyCoLike}, nil
	}

	for delta := InitialDelta; delta < MaxDelta; delta += DeltaStep {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		shows, err := q.AgeBand(ctx, mail, limit, delta)
		if err != nil {
			return Result{}, err
		}
		if len(shows) > 0 {
			metrics.RecordRecommendation(string(StrategyAgeBand), delta)
			return Result{Shows: shows, Strategy: StrategyAgeBand, AgeDelta: delta}, nil
		}
	}

	metrics.RecordRecommendation(string(StrategyNone), 0)
	return Result{Strategy: StrategyNone, Exhausted: true}, nil
}
