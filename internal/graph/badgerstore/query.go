// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package badgerstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/skazis/showgraph/internal/graph"
	"github.com/skazis/showgraph/internal/metrics"
)

// Aggregate executes a declarative recommendation query in-process.
// Rows stream ordered by likes descending, then title ascending.
func (s *Store) Aggregate(ctx context.Context, q graph.Query, fn func(graph.Row) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := s.db.View(func(bt *badger.Txn) error {
		tx := &txn{t: bt}
		var rows []graph.Row
		var qerr error
		switch query := q.(type) {
		case graph.CoLikeQuery:
			rows, qerr = coLikeRows(tx, query)
		case graph.AgeBandQuery:
			rows, qerr = ageBandRows(tx, query)
		default:
			qerr = fmt.Errorf("unsupported query type %T", q)
		}
		if qerr != nil {
			return qerr
		}
		return streamRows(rows, fn)
	})
	metrics.ObserveStoreOp("badger", "aggregate", start, err)
	return err
}

// likedShowKeys returns the set of show keys the person likes.
func likedShowKeys(tx *txn, person graph.NodeRef) (map[string]struct{}, error) {
	liked := make(map[string]struct{})
	err := tx.Outgoing(graph.EdgeLikes, person, func(show *graph.Node) error {
		liked[show.Ref.Key] = struct{}{}
		return nil
	})
	return liked, err
}

// coLikeRows aggregates shows liked by co-like neighbors of the target,
// excluding shows the target already likes. Each (neighbor, show) edge
// counts once, so Likes is the number of distinct neighbor-like edges.
func coLikeRows(tx *txn, q graph.CoLikeQuery) ([]graph.Row, error) {
	target, err := tx.FindNode(graph.LabelPerson, graph.PropMail, q.Mail)
	if err != nil {
		return nil, err
	}

	targetLikes, err := likedShowKeys(tx, target.Ref)
	if err != nil {
		return nil, err
	}

	// Neighbors: every other person liking at least one of the target's shows.
	neighbors := make(map[string]struct{})
	for showKey := range targetLikes {
		showRef := graph.NodeRef{Label: graph.LabelShow, Key: showKey}
		err := tx.incoming(graph.EdgeLikes, showRef, func(person *graph.Node) error {
			if person.Ref.Key != target.Ref.Key {
				neighbors[person.Ref.Key] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	counts := make(map[string]int64)
	for neighborKey := range neighbors {
		neighborRef := graph.NodeRef{Label: graph.LabelPerson, Key: neighborKey}
		err := tx.Outgoing(graph.EdgeLikes, neighborRef, func(show *graph.Node) error {
			if _, alreadyLiked := targetLikes[show.Ref.Key]; !alreadyLiked {
				counts[show.Ref.Key]++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return rankRows(counts, q.Limit), nil
}

// ageBandRows aggregates shows liked by people whose age falls within
// [target-Delta, target+Delta], excluding shows the target already likes.
func ageBandRows(tx *txn, q graph.AgeBandQuery) ([]graph.Row, error) {
	target, err := tx.FindNode(graph.LabelPerson, graph.PropMail, q.Mail)
	if err != nil {
		return nil, err
	}

	targetAge, err := nodeAge(target)
	if err != nil {
		return nil, err
	}

	targetLikes, err := likedShowKeys(tx, target.Ref)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	err = tx.nodesByLabel(graph.LabelPerson, func(person *graph.Node) error {
		if person.Ref.Key == target.Ref.Key {
			return nil
		}
		age, ageErr := nodeAge(person)
		if ageErr != nil {
			return ageErr
		}
		if age < targetAge-q.Delta || age > targetAge+q.Delta {
			return nil
		}
		return tx.Outgoing(graph.EdgeLikes, person.Ref, func(show *graph.Node) error {
			if _, alreadyLiked := targetLikes[show.Ref.Key]; !alreadyLiked {
				counts[show.Ref.Key]++
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return rankRows(counts, q.Limit), nil
}

func nodeAge(person *graph.Node) (int, error) {
	raw, ok := person.Prop(graph.PropAge)
	if !ok {
		return 0, fmt.Errorf("person %q has no age property", person.Ref.Key)
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("person %q has non-numeric age %q", person.Ref.Key, raw)
	}
	return age, nil
}

// rankRows orders by likes descending then title ascending and truncates
// to limit. Show keys are titles, so the map key doubles as the row title.
func rankRows(counts map[string]int64, limit int) []graph.Row {
	rows := make([]graph.Row, 0, len(counts))
	for title, likes := range counts {
		rows = append(rows, graph.Row{Title: title, Likes: likes})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Likes != rows[j].Likes {
			return rows[i].Likes > rows[j].Likes
		}
		return rows[i].Title < rows[j].Title
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func streamRows(rows []graph.Row, fn func(graph.Row) error) error {
	for _, row := range rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}
