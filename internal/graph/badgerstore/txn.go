// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package badgerstore

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/skazis/showgraph/internal/graph"
)

// sep separates key fields. 0x1f (unit separator) cannot appear in
// validated mails, titles or dates.
const sep = "\x1f"

// Key prefixes.
const (
	nodePrefix    = "n"
	indexPrefix   = "i"
	edgePrefix    = "e"
	reversePrefix = "r"
)

func nodeKey(label graph.Label, key string) []byte {
	return []byte(nodePrefix + sep + string(label) + sep + key)
}

func indexKey(label graph.Label, prop, value, key string) []byte {
	return []byte(indexPrefix + sep + string(label) + sep + prop + sep + value + sep + key)
}

func indexScanPrefix(label graph.Label, prop, value string) []byte {
	return []byte(indexPrefix + sep + string(label) + sep + prop + sep + value + sep)
}

func edgeKey(t graph.EdgeType, from, to graph.NodeRef) []byte {
	return []byte(edgePrefix + sep + string(t) +
		sep + string(from.Label) + sep + from.Key +
		sep + string(to.Label) + sep + to.Key)
}

func reverseEdgeKey(t graph.EdgeType, from, to graph.NodeRef) []byte {
	return []byte(reversePrefix + sep + string(t) +
		sep + string(to.Label) + sep + to.Key +
		sep + string(from.Label) + sep + from.Key)
}

func edgeScanPrefix(t graph.EdgeType, from graph.NodeRef) []byte {
	return []byte(edgePrefix + sep + string(t) +
		sep + string(from.Label) + sep + from.Key + sep)
}

func reverseScanPrefix(t graph.EdgeType, to graph.NodeRef) []byte {
	return []byte(reversePrefix + sep + string(t) +
		sep + string(to.Label) + sep + to.Key + sep)
}

// splitRef parses "<label> sep <key>" remainder of an edge key.
func splitRef(suffix []byte) (graph.NodeRef, error) {
	parts := bytes.SplitN(suffix, []byte(sep), 2)
	if len(parts) != 2 {
		return graph.NodeRef{}, fmt.Errorf("malformed edge key suffix %q", suffix)
	}
	return graph.NodeRef{Label: graph.Label(parts[0]), Key: string(parts[1])}, nil
}

// txn adapts one badger transaction to graph.Txn.
type txn struct {
	t *badger.Txn
}

var _ graph.Txn = (*txn)(nil)

// CreateNode stores a node and its property index entries, rejecting
// duplicates of the natural key.
func (tx *txn) CreateNode(label graph.Label, key string, props map[string]string) (graph.NodeRef, error) {
	nk := nodeKey(label, key)

	_, err := tx.t.Get(nk)
	switch {
	case err == nil:
		return graph.NodeRef{}, fmt.Errorf("%w: %s %q", graph.ErrDuplicateKey, label, key)
	case !errors.Is(err, badger.ErrKeyNotFound):
		return graph.NodeRef{}, fmt.Errorf("check node %s %q: %w", label, key, err)
	}

	data, err := json.Marshal(props)
	if err != nil {
		return graph.NodeRef{}, fmt.Errorf("marshal node props: %w", err)
	}
	if err := tx.t.Set(nk, data); err != nil {
		return graph.NodeRef{}, fmt.Errorf("set node %s %q: %w", label, key, err)
	}

	for prop, value := range props {
		if err := tx.t.Set(indexKey(label, prop, value, key), nil); err != nil {
			return graph.NodeRef{}, fmt.Errorf("set index %s.%s: %w", label, prop, err)
		}
	}

	return graph.NodeRef{Label: label, Key: key}, nil
}

// getNode loads a node by ref.
func (tx *txn) getNode(ref graph.NodeRef) (*graph.Node, error) {
	item, err := tx.t.Get(nodeKey(ref.Label, ref.Key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s %q", graph.ErrNotFound, ref.Label, ref.Key)
	}
	if err != nil {
		return nil, fmt.Errorf("get node %s %q: %w", ref.Label, ref.Key, err)
	}

	node := &graph.Node{Ref: ref}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &node.Props)
	})
	if err != nil {
		return nil, fmt.Errorf("decode node %s %q: %w", ref.Label, ref.Key, err)
	}
	return node, nil
}

// FindNode returns the first node whose property matches value exactly.
func (tx *txn) FindNode(label graph.Label, property, value string) (*graph.Node, error) {
	nodes, err := tx.findNodes(label, property, value, 1)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s with %s=%q", graph.ErrNotFound, label, property, value)
	}
	return nodes[0], nil
}

// FindNodes returns every node whose property matches value exactly,
// ordered by natural key.
func (tx *txn) FindNodes(label graph.Label, property, value string) ([]*graph.Node, error) {
	return tx.findNodes(label, property, value, 0)
}

func (tx *txn) findNodes(label graph.Label, property, value string, limit int) ([]*graph.Node, error) {
	prefix := indexScanPrefix(label, property, value)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := tx.t.NewIterator(opts)
	defer it.Close()

	var nodes []*graph.Node
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key()[len(prefix):])
		node, err := tx.getNode(graph.NodeRef{Label: label, Key: key})
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		if limit > 0 && len(nodes) == limit {
			break
		}
	}
	return nodes, nil
}

// CreateEdge stores a directed edge and its reverse-lookup twin.
func (tx *txn) CreateEdge(t graph.EdgeType, from, to graph.NodeRef) error {
	if err := tx.t.Set(edgeKey(t, from, to), nil); err != nil {
		return fmt.Errorf("set edge %s: %w", t, err)
	}
	if err := tx.t.Set(reverseEdgeKey(t, from, to), nil); err != nil {
		return fmt.Errorf("set reverse edge %s: %w", t, err)
	}
	return nil
}

// Outgoing streams the other endpoint of each outgoing edge.
func (tx *txn) Outgoing(t graph.EdgeType, from graph.NodeRef, fn func(other *graph.Node) error) error {
	return tx.scanEdges(edgeScanPrefix(t, from), fn)
}

// incoming streams the other endpoint of each incoming edge. Used by the
// aggregation queries to walk from a show to the people who like it.
func (tx *txn) incoming(t graph.EdgeType, to graph.NodeRef, fn func(other *graph.Node) error) error {
	return tx.scanEdges(reverseScanPrefix(t, to), fn)
}

func (tx *txn) scanEdges(prefix []byte, fn func(other *graph.Node) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := tx.t.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		ref, err := splitRef(it.Item().Key()[len(prefix):])
		if err != nil {
			return err
		}
		node, err := tx.getNode(ref)
		if err != nil {
			return err
		}
		if err := fn(node); err != nil {
			return err
		}
	}
	return nil
}

// nodesByLabel streams every node with the given label. Used by the
// age-band aggregation.
func (tx *txn) nodesByLabel(label graph.Label, fn func(node *graph.Node) error) error {
	prefix := []byte(nodePrefix + sep + string(label) + sep)

	opts := badger.DefaultIteratorOptions
	it := tx.t.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		node := &graph.Node{Ref: graph.NodeRef{
			Label: label,
			Key:   string(item.Key()[len(prefix):]),
		}}
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &node.Props)
		})
		if err != nil {
			return fmt.Errorf("decode node %s %q: %w", label, node.Ref.Key, err)
		}
		if err := fn(node); err != nil {
			return err
		}
	}
	return nil
}
