// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import (
	"fmt"
	"strings"
)

// pair is a (key, value) binding held directly by a collisionNode.
type pair[V any] struct {
	key   Key
	value V
}

// collisionNode holds every binding whose keys hash identically across
// all 32 bits. It only ever arises from a genuine full-hash tie — the
// bitmap/array recursion that would otherwise keep splitting two leaves
// into deeper levels is guaranteed to terminate in a plain split once
// their hashes differ anywhere in the 7 five-bit windows that cover the
// whole 32-bit space, so a collisionNode node is the terminal case where
// that guarantee doesn't apply. Lookup, insert, and delete are a linear
// scan; there is no further hash structure left to exploit.
type collisionNode[V any] struct {
	mutid uint64
	hash  uint32
	pairs []pair[V]
}

func (n *collisionNode[V]) mutationToken() uint64 { return n.mutid }

func (n *collisionNode[V]) find(shift uint, h uint32, key Key) (V, bool, error) {
	var zero V
	for _, p := range n.pairs {
		eq, err := key.Equal(p.key)
		if err != nil {
			return zero, false, &EqualityError{Left: key, Right: p.key, Err: err}
		}
		if eq {
			return p.value, true, nil
		}
	}
	return zero, false, nil
}

func (n *collisionNode[V]) assoc(shift uint, h uint32, key Key, value V, mutid uint64) (node[V], bool, error) {
	if h != n.hash {
		wrapper := &bitmapNode[V]{mutid: mutid, bitmap: bitpos(n.hash, shift), entries: []bitmapEntry[V]{{child: n}}}
		return wrapper.assoc(shift, h, key, value, mutid)
	}
	for i, p := range n.pairs {
		eq, err := key.Equal(p.key)
		if err != nil {
			return nil, false, &EqualityError{Left: key, Right: p.key, Err: err}
		}
		if eq {
			if valuesEqual(p.value, value) {
				return n, false, nil
			}
			return n.withPair(i, pair[V]{key: p.key, value: value}, mutid), false, nil
		}
	}
	return n.withAppended(pair[V]{key: key, value: value}, mutid), true, nil
}

func (n *collisionNode[V]) without(shift uint, h uint32, key Key, mutid uint64) (node[V], bool, bool, error) {
	if h != n.hash {
		return nil, false, false, nil
	}
	for i, p := range n.pairs {
		eq, err := key.Equal(p.key)
		if err != nil {
			return nil, false, false, &EqualityError{Left: key, Right: p.key, Err: err}
		}
		if !eq {
			continue
		}
		if len(n.pairs) <= 2 {
			survivor := n.pairs[1-i]
			hv, err := hash32(survivor.key)
			if err != nil {
				return nil, false, false, err
			}
			bm := &bitmapNode[V]{
				mutid:   mutid,
				bitmap:  bitpos(hv, shift),
				entries: []bitmapEntry[V]{{key: survivor.key, value: survivor.value}},
			}
			return bm, false, true, nil
		}
		return n.withoutIndex(i, mutid), false, true, nil
	}
	return nil, false, false, nil
}

func (n *collisionNode[V]) withPair(i int, p pair[V], mutid uint64) *collisionNode[V] {
	if ownedBy(n.mutid, mutid) {
		n.pairs[i] = p
		return n
	}
	cloned := make([]pair[V], len(n.pairs))
	copy(cloned, n.pairs)
	cloned[i] = p
	return &collisionNode[V]{mutid: mutid, hash: n.hash, pairs: cloned}
}

func (n *collisionNode[V]) withAppended(p pair[V], mutid uint64) *collisionNode[V] {
	if ownedBy(n.mutid, mutid) {
		n.pairs = append(n.pairs, p)
		return n
	}
	grown := make([]pair[V], len(n.pairs)+1)
	copy(grown, n.pairs)
	grown[len(n.pairs)] = p
	return &collisionNode[V]{mutid: mutid, hash: n.hash, pairs: grown}
}

func (n *collisionNode[V]) withoutIndex(i int, mutid uint64) *collisionNode[V] {
	if ownedBy(n.mutid, mutid) {
		n.pairs = append(n.pairs[:i], n.pairs[i+1:]...)
		return n
	}
	shrunk := make([]pair[V], len(n.pairs)-1)
	copy(shrunk[:i], n.pairs[:i])
	copy(shrunk[i:], n.pairs[i+1:])
	return &collisionNode[V]{mutid: mutid, hash: n.hash, pairs: shrunk}
}

func (n *collisionNode[V]) dump(indent string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%sCollision[%d] hash=%08x mutid=%d\n", indent, len(n.pairs), n.hash, n.mutid)
	for _, p := range n.pairs {
		fmt.Fprintf(&sb, "%s  %v: %v\n", indent, p.key, p.value)
	}
	return sb.String()
}
