// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package neo4jstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/skazis/showgraph/internal/graph"
)

// txn adapts a managed Bolt transaction to graph.Txn. Labels and
// property names come from the graph package constants, never from
// request input, so interpolating them into Cypher is safe.
type txn struct {
	ctx context.Context
	t   neo4j.ManagedTransaction
}

var _ graph.Txn = (*txn)(nil)

// keyProp is the natural-key property for a label.
func keyProp(label graph.Label) string {
	if label == graph.LabelPerson {
		return graph.PropMail
	}
	return graph.PropTitle
}

func (tx *txn) CreateNode(label graph.Label, key string, props map[string]string) (graph.NodeRef, error) {
	ref := graph.NodeRef{Label: label, Key: key}

	check := fmt.Sprintf(`MATCH (n:%s {%s: $key}) RETURN n LIMIT 1`, label, keyProp(label))
	res, err := tx.t.Run(tx.ctx, check, map[string]any{"key": key})
	if err != nil {
		return ref, err
	}
	if res.Next(tx.ctx) {
		return ref, fmt.Errorf("%s %q: %w", label, key, graph.ErrDuplicateKey)
	}
	if err := res.Err(); err != nil {
		return ref, err
	}

	params := make(map[string]any, len(props))
	for k, v := range props {
		params[k] = v
	}
	create := fmt.Sprintf(`CREATE (n:%s $props)`, label)
	res, err = tx.t.Run(tx.ctx, create, map[string]any{"props": params})
	if err != nil {
		return ref, err
	}
	if _, err := res.Consume(tx.ctx); err != nil {
		return ref, err
	}
	return ref, nil
}

func (tx *txn) FindNode(label graph.Label, property, value string) (*graph.Node, error) {
	query := fmt.Sprintf(`MATCH (n:%s {%s: $value}) RETURN properties(n) AS props LIMIT 1`, label, property)
	res, err := tx.t.Run(tx.ctx, query, map[string]any{"value": value})
	if err != nil {
		return nil, err
	}
	if !res.Next(tx.ctx) {
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s with %s=%q: %w", label, property, value, graph.ErrNotFound)
	}
	return recordToNode(label, res.Record())
}

func (tx *txn) FindNodes(label graph.Label, property, value string) ([]*graph.Node, error) {
	query := fmt.Sprintf(
		`MATCH (n:%s {%s: $value}) RETURN properties(n) AS props ORDER BY n.%s ASC`,
		label, property, keyProp(label),
	)
	res, err := tx.t.Run(tx.ctx, query, map[string]any{"value": value})
	if err != nil {
		return nil, err
	}

	var nodes []*graph.Node
	for res.Next(tx.ctx) {
		node, err := recordToNode(label, res.Record())
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, res.Err()
}

func (tx *txn) CreateEdge(t graph.EdgeType, from, to graph.NodeRef) error {
	query := fmt.Sprintf(
		`MATCH (a:%s {%s: $from}) MATCH (b:%s {%s: $to}) CREATE (a)-[:%s]->(b)`,
		from.Label, keyProp(from.Label), to.Label, keyProp(to.Label), edgeTypeName(t),
	)
	res, err := tx.t.Run(tx.ctx, query, map[string]any{"from": from.Key, "to": to.Key})
	if err != nil {
		return err
	}
	summary, err := res.Consume(tx.ctx)
	if err != nil {
		return err
	}
	if summary.Counters().RelationshipsCreated() == 0 {
		return fmt.Errorf("edge %s: endpoint missing: %w", t, graph.ErrNotFound)
	}
	return nil
}

func (tx *txn) Outgoing(t graph.EdgeType, from graph.NodeRef, fn func(other *graph.Node) error) error {
	otherLabel := graph.LabelShow
	if from.Label == graph.LabelShow {
		otherLabel = graph.LabelPerson
	}
	query := fmt.Sprintf(
		`MATCH (a:%s {%s: $from})-[:%s]->(b:%s) RETURN properties(b) AS props ORDER BY b.%s ASC`,
		from.Label, keyProp(from.Label), edgeTypeName(t), otherLabel, keyProp(otherLabel),
	)
	res, err := tx.t.Run(tx.ctx, query, map[string]any{"from": from.Key})
	if err != nil {
		return err
	}
	for res.Next(tx.ctx) {
		node, err := recordToNode(otherLabel, res.Record())
		if err != nil {
			return err
		}
		if err := fn(node); err != nil {
			return err
		}
	}
	return res.Err()
}

// edgeTypeName maps the edge constant to the relationship type stored
// on the server.
func edgeTypeName(t graph.EdgeType) string {
	if t == graph.EdgeLikes {
		return "LIKES"
	}
	return string(t)
}

func recordToNode(label graph.Label, rec *neo4j.Record) (*graph.Node, error) {
	raw, ok := rec.Get("props")
	if !ok {
		return nil, fmt.Errorf("record has no props column")
	}
	rawProps, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected props shape %T", raw)
	}

	props := make(map[string]string, len(rawProps))
	for k, v := range rawProps {
		if s, ok := v.(string); ok {
			props[k] = s
		} else {
			props[k] = fmt.Sprint(v)
		}
	}

	key, ok := props[keyProp(label)]
	if !ok {
		return nil, fmt.Errorf("%s node missing key property %q", label, keyProp(label))
	}
	return &graph.Node{
		Ref:   graph.NodeRef{Label: label, Key: key},
		Props: props,
	}, nil
}
