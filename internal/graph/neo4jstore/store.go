// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Package neo4jstore implements the graph store contract on a Neo4j
// server via the official Bolt driver. Node labels and the LIKES
// relationship mirror the property names used by the Badger backend, so
// the two backends are interchangeable behind graph.Store.
package neo4jstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/skazis/showgraph/internal/graph"
	"github.com/skazis/showgraph/internal/metrics"
)

// Options configure the Neo4j connection.
type Options struct {
	URI      string
	Username string
	Password string

	// Database selects the target database. Empty means the server default.
	Database string

	// ConnectTimeout bounds driver connection attempts. Zero means 10s.
	ConnectTimeout time.Duration

	Logger zerolog.Logger
}

// Store is a Neo4j-backed graph store.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	logger   zerolog.Logger
}

var _ graph.Store = (*Store)(nil)

// Open connects to the server and verifies connectivity before
// returning.
func Open(ctx context.Context, opts Options) (*Store, error) {
	timeout := opts.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.Username, opts.Password, ""), func(cfg *neo4j.Config) {
		cfg.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4jstore: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4jstore: verify connectivity: %w", err)
	}

	s := &Store{driver: driver, database: opts.Database, logger: opts.Logger}
	if err := s.ensureSchema(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return s, nil
}

// ensureSchema creates uniqueness constraints on the natural keys.
// Constraint creation may be denied for restricted users; that is
// logged and tolerated because CreateNode re-checks inside its
// transaction.
func (s *Store) ensureSchema(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT person_mail_unique IF NOT EXISTS FOR (p:person) REQUIRE p.mail IS UNIQUE`,
		`CREATE CONSTRAINT show_title_unique IF NOT EXISTS FOR (s:show) REQUIRE s.title IS UNIQUE`,
	}
	for _, stmt := range stmts {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			s.logger.Warn().Err(err).Msg("schema init failed, continuing")
			continue
		}
		if _, err := res.Consume(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("schema init failed, continuing")
		}
	}
	return nil
}

// Close releases the driver and its connection pool.
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

// View runs a read-only unit of work.
func (s *Store) View(ctx context.Context, fn func(graph.Txn) error) error {
	start := time.Now()
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(mt neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&txn{ctx: ctx, t: mt})
	})
	metrics.ObserveStoreOp("neo4j", "view", start, err)
	return err
}

// Update runs a read-write unit of work, committing on nil return.
func (s *Store) Update(ctx context.Context, fn func(graph.Txn) error) error {
	start := time.Now()
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(mt neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&txn{ctx: ctx, t: mt})
	})
	metrics.ObserveStoreOp("neo4j", "update", start, err)
	return err
}

// Aggregate pushes recommendation queries down to the server as Cypher.
func (s *Store) Aggregate(ctx context.Context, q graph.Query, fn func(graph.Row) error) error {
	start := time.Now()
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	var cypher string
	var params map[string]any
	switch query := q.(type) {
	case graph.CoLikeQuery:
		cypher = coLikeCypher
		params = map[string]any{"mail": query.Mail, "limit": int64(query.Limit)}
	case graph.AgeBandQuery:
		cypher = ageBandCypher
		params = map[string]any{"mail": query.Mail, "limit": int64(query.Limit), "delta": int64(query.Delta)}
	default:
		return fmt.Errorf("unsupported query type %T", q)
	}

	_, err := session.ExecuteRead(ctx, func(mt neo4j.ManagedTransaction) (any, error) {
		if err := requirePerson(ctx, mt, params["mail"].(string)); err != nil {
			return nil, err
		}
		res, err := mt.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			title, _ := rec.Get("title")
			likes, _ := rec.Get("likes")
			row := graph.Row{}
			if t, ok := title.(string); ok {
				row.Title = t
			}
			if l, ok := likes.(int64); ok {
				row.Likes = l
			}
			if err := fn(row); err != nil {
				return nil, err
			}
		}
		return nil, res.Err()
	})
	metrics.ObserveStoreOp("neo4j", "aggregate", start, err)
	return err
}

// Aggregation rows exclude shows the target already likes and count
// distinct likers, ordered by likes descending then title ascending.
const coLikeCypher = `
MATCH (mainuser:person {mail: $mail})-[:LIKES]->(:show)<-[:LIKES]-(others:person)-[:LIKES]->(tvshows:show)
WHERE others.mail <> mainuser.mail
  AND NOT (mainuser)-[:LIKES]->(tvshows)
RETURN tvshows.title AS title, count(DISTINCT others) AS likes
ORDER BY likes DESC, title ASC
LIMIT $limit`

const ageBandCypher = `
MATCH (mainuser:person {mail: $mail})
MATCH (others:person)-[:LIKES]->(tvshows:show)
WHERE others.mail <> mainuser.mail
  AND toInteger(others.age) >= toInteger(mainuser.age) - $delta
  AND toInteger(others.age) <= toInteger(mainuser.age) + $delta
  AND NOT (mainuser)-[:LIKES]->(tvshows)
RETURN tvshows.title AS title, count(DISTINCT others) AS likes
ORDER BY likes DESC, title ASC
LIMIT $limit`

func requirePerson(ctx context.Context, mt neo4j.ManagedTransaction, mail string) error {
	res, err := mt.Run(ctx, `MATCH (p:person {mail: $mail}) RETURN p.mail LIMIT 1`, map[string]any{"mail": mail})
	if err != nil {
		return err
	}
	if res.Next(ctx) {
		return nil
	}
	if err := res.Err(); err != nil {
		return err
	}
	return fmt.Errorf("person %q: %w", mail, graph.ErrNotFound)
}
