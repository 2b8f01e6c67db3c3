// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveStoreOp(t *testing.T) {
	tests := []struct {
		name      string
		backend   string
		operation string
		err       error
	}{
		{"successful view", "badger", "view", nil},
		{"successful aggregate", "neo4j", "aggregate", nil},
		{"failed update", "badger", "update", errors.New("conflict")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CollectAndCount(StoreOpDuration)
			errsBefore := testutil.ToFloat64(StoreOpErrors.WithLabelValues(tt.backend, tt.operation))

			ObserveStoreOp(tt.backend, tt.operation, time.Now().Add(-5*time.Millisecond), tt.err)

			if after := testutil.CollectAndCount(StoreOpDuration); after < before {
				t.Errorf("histogram series count decreased: %d -> %d", before, after)
			}
			errsAfter := testutil.ToFloat64(StoreOpErrors.WithLabelValues(tt.backend, tt.operation))
			wantDelta := 0.0
			if tt.err != nil {
				wantDelta = 1.0
			}
			if got := errsAfter - errsBefore; got != wantDelta {
				t.Errorf("error counter delta = %v, want %v", got, wantDelta)
			}
		})
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/people/{mail}/likes", "200"))
	ObserveHTTPRequest("GET", "/api/v1/people/{mail}/likes", 200, 3*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/people/{mail}/likes", "200"))
	if after-before != 1 {
		t.Errorf("request counter delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(HTTPActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(HTTPActiveRequests); got != base+1 {
		t.Errorf("gauge after inc = %v, want %v", got, base+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(HTTPActiveRequests); got != base {
		t.Errorf("gauge after dec = %v, want %v", got, base)
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsServed.WithLabelValues("age-band"))
	RecordRecommendation("age-band", 6)
	after := testutil.ToFloat64(RecommendationsServed.WithLabelValues("age-band"))
	if after-before != 1 {
		t.Errorf("strategy counter delta = %v, want 1", after-before)
	}
}

func TestRecordGCRun(t *testing.T) {
	tests := []struct {
		name      string
		rewritten bool
		err       error
		outcome   string
	}{
		{"rewritten", true, nil, "rewritten"},
		{"noop", false, nil, "noop"},
		{"error", false, errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(StoreGCRuns.WithLabelValues(tt.outcome))
			RecordGCRun(tt.rewritten, tt.err)
			after := testutil.ToFloat64(StoreGCRuns.WithLabelValues(tt.outcome))
			if after-before != 1 {
				t.Errorf("outcome %q delta = %v, want 1", tt.outcome, after-before)
			}
		})
	}
}
