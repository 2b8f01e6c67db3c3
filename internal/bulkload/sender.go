// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package bulkload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/skazis/showgraph/internal/logging"
	"github.com/skazis/showgraph/internal/metrics"
	"github.com/skazis/showgraph/internal/validation"
)

// apiEnvelope is the server's response envelope.
type apiEnvelope struct {
	StatusOk   bool        `json:"statusOk"`
	StatusCode int         `json:"statusCode"`
	Message    interface{} `json:"message"`
}

// Stats summarizes one import run. Rejected counts rows refused either
// locally before sending or by the server (validation failures,
// duplicates, repeated likes); Failed counts transport errors and
// server faults.
type Stats struct {
	Sent     int
	Accepted int
	Rejected int
	Failed   int
}

// SenderOptions configure an import run.
type SenderOptions struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string

	// RequestsPerSecond throttles the import. Zero means 50.
	RequestsPerSecond float64

	// Timeout bounds each HTTP request. Zero means 10s.
	Timeout time.Duration
}

// Sender posts CSV records to the API, rate limited and wrapped in a
// circuit breaker so a struggling server stops the flood early.
type Sender struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*apiEnvelope]
}

// NewSender builds a sender for the given server.
func NewSender(opts SenderOptions) *Sender {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 50
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*apiEnvelope](gobreaker.Settings{
		Name:        "showgraph-import",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("import circuit breaker state change")
		},
	})

	return &Sender{
		baseURL: opts.BaseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: breaker,
	}
}

// post sends one JSON payload through the limiter and breaker.
func (s *Sender) post(ctx context.Context, path string, payload interface{}) (*apiEnvelope, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return s.breaker.Execute(func() (*apiEnvelope, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("server error: %s", resp.Status)
		}

		env := &apiEnvelope{}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(env); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return env, nil
	})
}

// rejectInvalid checks a record against its validate tags. Invalid
// rows are counted as rejected without an HTTP round trip.
func rejectInvalid(record interface{}, kind string, stats *Stats) bool {
	verr := validation.ValidateStruct(record)
	if verr == nil {
		return false
	}
	stats.Rejected++
	metrics.RecordImport(kind, "rejected")
	logging.Warn().Err(verr).Str("kind", kind).Msg("import record rejected before send")
	return true
}

// send posts one record and folds the outcome into stats.
func (s *Sender) send(ctx context.Context, path, kind string, payload interface{}, stats *Stats) error {
	stats.Sent++

	env, err := s.post(ctx, path, payload)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.Failed++
		metrics.RecordImport(kind, "failed")
		logging.Error().Err(err).Str("kind", kind).Msg("import request failed")
		return nil
	}

	if env.StatusOk {
		stats.Accepted++
		metrics.RecordImport(kind, "accepted")
	} else {
		stats.Rejected++
		metrics.RecordImport(kind, "rejected")
		logging.Warn().
			Str("kind", kind).
			Int("status", env.StatusCode).
			Interface("message", env.Message).
			Msg("import record rejected")
	}
	return nil
}

// ImportShows reads a title;aired;ended file and posts each show.
func (s *Sender) ImportShows(ctx context.Context, r io.Reader) (Stats, error) {
	shows, err := ReadShows(r)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, show := range shows {
		if rejectInvalid(show, "show", &stats) {
			continue
		}
		payload := map[string]string{
			"title":       show.Title,
			"releaseDate": show.ReleaseDate,
			"endDate":     show.EndDate,
		}
		if err := s.send(ctx, "/api/v1/shows", "show", payload, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// ImportPeople reads an email;age;gender file and posts each person.
func (s *Sender) ImportPeople(ctx context.Context, r io.Reader) (Stats, error) {
	people, err := ReadPeople(r)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, person := range people {
		if rejectInvalid(person, "person", &stats) {
			continue
		}
		payload := map[string]string{
			"mail":   person.Mail,
			"age":    person.Age,
			"gender": person.Gender,
		}
		if err := s.send(ctx, "/api/v1/people", "person", payload, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// ImportLikes reads an email;title file and posts each like.
func (s *Sender) ImportLikes(ctx context.Context, r io.Reader) (Stats, error) {
	likes, err := ReadLikes(r)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, like := range likes {
		if rejectInvalid(like, "like", &stats) {
			continue
		}
		payload := map[string]string{
			"mail":  like.Mail,
			"title": like.Title,
		}
		if err := s.send(ctx, "/api/v1/likes", "like", payload, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
