// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Package graph defines the storage contract the domain layer consumes:
// transactional units of work over labeled nodes and typed directed edges,
// exact-match lookups, outgoing-edge enumeration, and declarative
// aggregation queries that stream (title, likes) rows.
//
// Two implementations exist: badgerstore (embedded, default) and
// neo4jstore (remote). The domain layer never sees which one is wired.
package graph

import (
	"context"
	"errors"
)

// Label classifies a node.
type Label string

// Node labels.
const (
	LabelPerson Label = "person"
	LabelShow   Label = "show"
)

// EdgeType classifies a directed edge.
type EdgeType string

// EdgeLikes is the person -> show "likes" relation.
const EdgeLikes EdgeType = "likes"

// Property names shared by every backend.
const (
	PropMail        = "mail"
	PropAge         = "age"
	PropGender      = "gender"
	PropTitle       = "title"
	PropReleaseDate = "releaseDate"
	PropEndDate     = "endDate"
)

// Sentinel failures surfaced by every backend.
var (
	// ErrNotFound reports that no node matches a lookup.
	ErrNotFound = errors.New("graph: node not found")

	// ErrDuplicateKey reports a natural-key collision on node creation.
	// Uniqueness is enforced by the store, not by a separate existence
	// pre-check, so concurrent writers cannot race two nodes onto the
	// same key.
	ErrDuplicateKey = errors.New("graph: duplicate natural key")
)

// NodeRef identifies a node by its label and natural key. Two refs are
// the same node exactly when they compare equal; entity identity is key
// identity.
type NodeRef struct {
	Label Label
	Key   string
}

// Node is a materialized node: its ref plus a flat property set.
type Node struct {
	Ref   NodeRef
	Props map[string]string
}

// Prop returns a property value, with ok reporting presence.
func (n *Node) Prop(name string) (string, bool) {
	v, ok := n.Props[name]
	return v, ok
}

// Txn is one unit of work. All reads and writes inside the closure passed
// to View or Update see a consistent snapshot and commit or abort as a
// whole; no partial mutation is ever visible outside the closure.
type Txn interface {
	// CreateNode stores a new node under its natural key. It fails with
	// ErrDuplicateKey when a node with the same (label, key) exists.
	CreateNode(label Label, key string, props map[string]string) (NodeRef, error)

	// FindNode looks a node up by an exact property match, returning
	// ErrNotFound when nothing matches. For the natural-key property
	// this is a direct key lookup.
	FindNode(label Label, property, value string) (*Node, error)

	// FindNodes returns every node whose property exactly matches value.
	// An empty result is not an error.
	FindNodes(label Label, property, value string) ([]*Node, error)

	// CreateEdge stores a typed directed edge. Duplicate suppression for
	// LIKES happens at the entity layer, which scans outgoing edges
	// before calling this.
	CreateEdge(t EdgeType, from, to NodeRef) error

	// Outgoing streams the other endpoint of every outgoing edge of the
	// given type. Iteration stops on the first callback error.
	Outgoing(t EdgeType, from NodeRef, fn func(other *Node) error) error
}

// Row is one streamed result of an aggregation query.
type Row struct {
	Title string
	Likes int64
}

// Query is a declarative traversal/aggregation query executed by the
// store. Rows always come back ordered by likes descending, then title
// ascending, truncated to the query limit, so results are deterministic
// across backends.
type Query interface {
	isQuery()
}

// CoLikeQuery finds shows liked by co-like neighbors of the target person
// (people sharing at least one liked show), excluding shows the target
// already likes. Likes counts distinct neighbor-like edges per show.
type CoLikeQuery struct {
	Mail  string
	Limit int
}

func (CoLikeQuery) isQuery() {}

// AgeBandQuery finds shows liked by any person whose age lies within
// [target-Delta, target+Delta], excluding shows the target already likes.
type AgeBandQuery struct {
	Mail  string
	Limit int
	Delta int
}

func (AgeBandQuery) isQuery() {}

// Store is the full storage capability set the domain layer consumes.
type Store interface {
	// View runs a read-only unit of work.
	View(ctx context.Context, fn func(Txn) error) error

	// Update runs a read-write unit of work, committing on nil return
	// and aborting otherwise.
	Update(ctx context.Context, fn func(Txn) error) error

	// Aggregate executes a declarative query, streaming rows to fn.
	// A target person that does not resolve fails with ErrNotFound.
	Aggregate(ctx context.Context, q Query, fn func(Row) error) error

	// Close releases the backing resources.
	Close() error
}
