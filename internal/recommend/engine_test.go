// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/skazis/showgraph/internal/domain"
)

// fakeQuerier scripts both tiers and records the deltas the fallback
// actually asked for.
type fakeQuerier struct {
	coLike    []domain.Recommendation
	coLikeErr error

	// ageBandAt maps delta to the rows returned at that width.
	ageBandAt  map[int][]domain.Recommendation
	ageBandErr error

	coLikeLimit int
	deltasSeen  []int
}

func (f *fakeQuerier) CoLike(_ context.Context, _ string, limit int) ([]domain.Recommendation, error) {
	f.coLikeLimit = limit
	return f.coLike, f.coLikeErr
}

func (f *fakeQuerier) AgeBand(_ context.Context, _ string, _ int, delta int) ([]domain.Recommendation, error) {
	f.deltasSeen = append(f.deltasSeen, delta)
	if f.ageBandErr != nil {
		return nil, f.ageBandErr
	}
	return f.ageBandAt[delta], nil
}

func TestRecommendCoLikeWins(t *testing.T) {
	q := &fakeQuerier{
		coLike: []domain.Recommendation{{Title: "Foo", Likes: 3}},
		ageBandAt: map[int][]domain.Recommendation{
			2: {{Title: "ShouldNotAppear", Likes: 1}},
		},
	}

	res, err := Recommend(context.Background(), q, "a@b.com", 10)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if res.Strategy != StrategyCoLike {
		t.Errorf("strategy = %q, want co-like", res.Strategy)
	}
	if res.AgeDelta != 0 {
		t.Errorf("age delta = %d, want 0", res.AgeDelta)
	}
	if len(res.Shows) != 1 || res.Shows[0].Title != "Foo" {
		t.Errorf("shows = %+v, want [{Foo 3}]", res.Shows)
	}
	if len(q.deltasSeen) != 0 {
		t.Errorf("fallback ran despite collaborative hits: %v", q.deltasSeen)
	}
}

func TestRecommendFallbackWidens(t *testing.T) {
	q := &fakeQuerier{
		ageBandAt: map[int][]domain.Recommendation{
			6: {{Title: "Bar", Likes: 2}},
		},
	}

	res, err := Recommend(context.Background(), q, "a@b.com", 10)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if res.Strategy != StrategyAgeBand {
		t.Errorf("strategy = %q, want age-band", res.Strategy)
	}
	if res.AgeDelta != 6 {
		t.Errorf("age delta = %d, want 6", res.AgeDelta)
	}
	want := []int{2, 4, 6}
	if len(q.deltasSeen) != len(want) {
		t.Fatalf("deltas seen = %v, want %v", q.deltasSeen, want)
	}
	for i := range want {
		if q.deltasSeen[i] != want[i] {
			t.Fatalf("deltas seen = %v, want %v", q.deltasSeen, want)
		}
	}
}

func TestRecommendExhaustsAtCeiling(t *testing.T) {
	q := &fakeQuerier{}

	res, err := Recommend(context.Background(), q, "a@b.com", 10)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !res.Exhausted {
		t.Error("exhausted not set")
	}
	if res.Strategy != StrategyNone {
		t.Errorf("strategy = %q, want none", res.Strategy)
	}
	if len(res.Shows) != 0 {
		t.Errorf("shows = %+v, want none", res.Shows)
	}

	// Widths 2,4,...,48: the ceiling itself is never queried.
	if len(q.deltasSeen) != 24 {
		t.Fatalf("fallback ran %d times, want 24", len(q.deltasSeen))
	}
	if first := q.deltasSeen[0]; first != InitialDelta {
		t.Errorf("first delta = %d, want %d", first, InitialDelta)
	}
	if last := q.deltasSeen[len(q.deltasSeen)-1]; last != MaxDelta-DeltaStep {
		t.Errorf("last delta = %d, want %d", last, MaxDelta-DeltaStep)
	}
	for _, d := range q.deltasSeen {
		if d >= MaxDelta {
			t.Errorf("queried delta %d at or beyond ceiling", d)
		}
	}
}

func TestRecommendDefaultLimit(t *testing.T) {
	q := &fakeQuerier{coLike: []domain.Recommendation{{Title: "Foo", Likes: 1}}}
	if _, err := Recommend(context.Background(), q, "a@b.com", 0); err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if q.coLikeLimit != DefaultLimit {
		t.Errorf("limit = %d, want %d", q.coLikeLimit, DefaultLimit)
	}
}

func TestRecommendPropagatesErrors(t *testing.T) {
	wantErr := errors.New("store down")

	q := &fakeQuerier{coLikeErr: wantErr}
	if _, err := Recommend(context.Background(), q, "a@b.com", 10); !errors.Is(err, wantErr) {
		t.Errorf("collaborative error not propagated: %v", err)
	}

	q = &fakeQuerier{ageBandErr: wantErr}
	if _, err := Recommend(context.Background(), q, "a@b.com", 10); !errors.Is(err, wantErr) {
		t.Errorf("fallback error not propagated: %v", err)
	}
}

func TestRecommendHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := &fakeQuerier{}
	if _, err := Recommend(ctx, q, "a@b.com", 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
