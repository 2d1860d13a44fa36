// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
)

// Map is a persistent, immutable associative map backed by a
// hash-array-mapped trie. Every mutating method returns a new Map that
// shares unmodified structure with its receiver rather than altering it
// in place; the only in-place mutation path is through a Draft opened
// with Mutate.
type Map[V any] struct {
	root  node[V]
	count int

	hashOnce sync.Once
	hashVal  uint64
	hashErr  error
}

// KV is a single key/value binding, used to seed a Map or Draft from a
// literal sequence of pairs.
type KV[V any] struct {
	Key   Key
	Value V
}

// New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{root: emptyBitmap[V]()}
}

// NewFrom builds a Map by merging src into an empty Map.
func NewFrom[V any](src UpdateSource[V]) (*Map[V], error) {
	return New[V]().Update(src)
}

// Len returns the number of bindings in m.
func (m *Map[V]) Len() int { return m.count }

// Find looks up key, reporting whether it is present.
func (m *Map[V]) Find(key Key) (V, bool, error) {
	var zero V
	h, err := hash32(key)
	if err != nil {
		return zero, false, err
	}
	return m.root.find(0, h, key)
}

// Get looks up key, returning def if it is absent.
func (m *Map[V]) Get(key Key, def V) (V, error) {
	v, found, err := m.Find(key)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return v, nil
}

// MustFind looks up key, failing with a KeyMissing error if it is absent.
func (m *Map[V]) MustFind(key Key) (V, error) {
	var zero V
	v, found, err := m.Find(key)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, &KeyMissing{Key: key}
	}
	return v, nil
}

// Contains reports whether key is present in m.
func (m *Map[V]) Contains(key Key) (bool, error) {
	_, found, err := m.Find(key)
	return found, err
}

// Assoc returns a new Map with key bound to value, sharing every subtree
// untouched by the write with m. If key already maps to an equal value
// Assoc returns m itself.
func (m *Map[V]) Assoc(key Key, value V) (*Map[V], error) {
	h, err := hash32(key)
	if err != nil {
		return nil, err
	}
	newRoot, added, err := m.root.assoc(0, h, key, value, 0)
	if err != nil {
		return nil, err
	}
	if newRoot == m.root {
		return m, nil
	}
	count := m.count
	if added {
		count++
	}
	return &Map[V]{root: newRoot, count: count}, nil
}

// Without returns a new Map with key removed, failing with a KeyMissing
// error if key is absent.
func (m *Map[V]) Without(key Key) (*Map[V], error) {
	h, err := hash32(key)
	if err != nil {
		return nil, err
	}
	newRoot, empty, ok, err := m.root.without(0, h, key, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &KeyMissing{Key: key}
	}
	root := newRoot
	if empty {
		root = emptyBitmap[V]()
	}
	return &Map[V]{root: root, count: m.count - 1}, nil
}

// Iterate returns a fresh depth-first Iterator over m's bindings.
func (m *Map[V]) Iterate() *Iterator[V] {
	return newIterator[V](m.root)
}

// Eq reports whether m and other hold exactly the same set of bindings,
// independent of how each trie happens to be shaped.
func (m *Map[V]) Eq(other *Map[V]) (bool, error) {
	if m == other {
		return true, nil
	}
	if m.count != other.count {
		return false, nil
	}
	it := m.Iterate()
	for {
		k, v, ok, err := it.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			return true, nil
		}
		ov, found, err := other.Find(k)
		if err != nil {
			return false, err
		}
		if !found || !valuesEqual(v, ov) {
			return false, nil
		}
	}
}

// Hash returns an order-independent content hash of m's bindings. Every
// value must implement Hashable; if one doesn't, Hash fails with a
// HashError. The result is memoized on first computation.
func (m *Map[V]) Hash() (uint64, error) {
	m.hashOnce.Do(func() {
		m.hashVal, m.hashErr = m.computeHash()
	})
	return m.hashVal, m.hashErr
}

func (m *Map[V]) computeHash() (uint64, error) {
	var acc uint64
	it := m.Iterate()
	for {
		k, v, ok, err := it.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return acc, nil
		}
		kh, err := k.Hash()
		if err != nil {
			return 0, &HashError{Subject: k, Err: err}
		}
		hv, isHashable := any(v).(Hashable)
		if !isHashable {
			return 0, &HashError{Subject: v, Err: fmt.Errorf("value of type %T does not implement Hashable", v)}
		}
		vh, err := hv.Hash()
		if err != nil {
			return 0, &HashError{Subject: v, Err: err}
		}
		acc ^= mixEntry(kh, vh)
	}
}

// mixEntry combines a key/value hash pair into a single entry digest
// that is then XOR-folded across every binding, so Hash doesn't depend
// on iteration order.
func mixEntry(kh, vh uint64) uint64 {
	h := kh*0x9E3779B97F4A7C15 + vh
	h ^= h >> 32
	return h
}

// ContentDigest returns a SHA-256 digest of m's bindings in trie order.
// Unlike Hash, it depends on how bindings happen to be laid out across
// the trie, not just on the set of bindings, so equal Maps with
// differently shaped tries may produce different digests. It exists for
// change detection (e.g. "did this subtree change" between two drafts)
// rather than for set-equality comparisons, where Hash and Eq apply.
func (m *Map[V]) ContentDigest() ([]byte, error) {
	h := sha256.New()
	it := m.Iterate()
	var khBuf [8]byte
	for {
		k, v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return h.Sum(nil), nil
		}
		kh, err := k.Hash()
		if err != nil {
			return nil, &HashError{Subject: k, Err: err}
		}
		binary.BigEndian.PutUint64(khBuf[:], kh)
		h.Write(khBuf[:])
		if err := encodeCanonical(h, v); err != nil {
			return nil, err
		}
	}
}

// Mutate opens a Draft over m for batched in-place mutation. The Draft
// shares m's structure until touched; m itself is never modified.
func (m *Map[V]) Mutate() *Draft[V] {
	return &Draft[V]{mutid: nextMutid(), root: m.root, count: m.count}
}

// Update merges src into m, returning a new Map. It is shorthand for
// opening a Draft, applying src, and finishing it.
func (m *Map[V]) Update(src UpdateSource[V]) (*Map[V], error) {
	d := m.Mutate()
	if err := d.Update(src); err != nil {
		return nil, err
	}
	return d.Finish(), nil
}

// Dump renders m's trie as a human-readable tree for debugging. The
// format carries no compatibility guarantee.
func (m *Map[V]) Dump() string {
	return m.root.dump("")
}

// WithDraft runs fn against a fresh Draft of m and always finishes the
// draft, whether fn succeeds or fails, mirroring a scoped mutation block
// that can never leave a draft dangling.
func WithDraft[V any](m *Map[V], fn func(*Draft[V]) error) (*Map[V], error) {
	d := m.Mutate()
	err := fn(d)
	result := d.Finish()
	if err != nil {
		return nil, err
	}
	return result, nil
}
