// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

// UpdateSource is anything Map.Update or Draft.Update can merge in.
// Map itself, Pairs, and RawPairs all implement it.
type UpdateSource[V any] interface {
	updateInto(apply func(Key, V) error) error
}

// updateInto lets a Map be used directly as an UpdateSource, merging
// every binding of m into the target.
func (m *Map[V]) updateInto(apply func(Key, V) error) error {
	it := m.Iterate()
	for {
		k, v, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := apply(k, v); err != nil {
			return err
		}
	}
}

// Pairs is a literal sequence of bindings, the statically typed way to
// seed or merge a Map from a fixed list of key/value pairs.
type Pairs[V any] []KV[V]

func (p Pairs[V]) updateInto(apply func(Key, V) error) error {
	for i, kv := range p {
		if kv.Key == nil {
			return &BadItem{Index: i}
		}
		if err := apply(kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

// RawPairs is a dynamically typed sequence of bindings, for callers that
// only have `any` values in hand (decoded JSON, a scripting bridge, and
// so on) rather than a Pairs[V] literal. Each element must itself be a
// [2]any of the form [Key, V]; anything else fails the merge with
// BadItem (not pair-shaped at all) or BadPair (pair-shaped but carrying
// the wrong element types).
type RawPairs[V any] []any

func (r RawPairs[V]) updateInto(apply func(Key, V) error) error {
	for i, item := range r {
		seq, ok := item.([2]any)
		if !ok {
			return &BadItem{Index: i}
		}
		k, ok := seq[0].(Key)
		if !ok {
			return &BadPair{Index: i}
		}
		v, ok := seq[1].(V)
		if !ok {
			return &BadPair{Index: i}
		}
		if err := apply(k, v); err != nil {
			return err
		}
	}
	return nil
}
