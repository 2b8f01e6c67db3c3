// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Package badgerstore implements the graph store contract on BadgerDB.
//
// Layout (fields separated by 0x1f; the validation rules keep it out of
// key fields: mails and dates match patterns that exclude it, and
// titles reject control characters):
//
//	n <label> <key>                          -> JSON property set
//	i <label> <prop> <value> <key>           -> nil (secondary index)
//	e <type> <fromLabel> <fromKey> <toLabel> <toKey> -> nil
//	r <type> <toLabel> <toKey> <fromLabel> <fromKey> -> nil
//
// Every unit of work is one Badger transaction; Badger's SSI detects
// write conflicts at commit and the resulting error propagates opaquely.
package badgerstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/skazis/showgraph/internal/graph"
	"github.com/skazis/showgraph/internal/metrics"
)

// Options configures the store.
type Options struct {
	// Path is the on-disk database directory. Ignored when InMemory.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// Logger receives Badger's own log output.
	Logger zerolog.Logger
}

// Store is a Badger-backed graph store.
type Store struct {
	db *badger.DB
}

var _ graph.Store = (*Store)(nil)

// Open opens (creating if needed) a Badger graph store.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(badgerLogger{logger: opts.Logger})

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// View runs a read-only unit of work.
func (s *Store) View(ctx context.Context, fn func(graph.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := s.db.View(func(t *badger.Txn) error {
		return fn(&txn{t: t})
	})
	metrics.ObserveStoreOp("badger", "view", start, err)
	return err
}

// Update runs a read-write unit of work, committing on nil return.
func (s *Store) Update(ctx context.Context, fn func(graph.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := s.db.Update(func(t *badger.Txn) error {
		return fn(&txn{t: t})
	})
	metrics.ObserveStoreOp("badger", "update", start, err)
	return err
}

// RunGC runs one round of Badger value-log garbage collection.
// badger.ErrNoRewrite (nothing to collect) is reported as done=false.
func (s *Store) RunGC() (done bool, err error) {
	err = s.db.RunValueLogGC(0.5)
	if err == badger.ErrNoRewrite {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// badgerLogger adapts zerolog to badger.Logger.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
