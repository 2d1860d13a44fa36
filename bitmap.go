// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import (
	"fmt"
	"strings"
)

// bitmapEntry is a slot in a bitmapNode: exactly one of child or key is
// set. child!=nil means the slot holds a subtree (the (∅, child) pairing);
// otherwise the slot holds a leaf (key, value) binding.
type bitmapEntry[V any] struct {
	key   Key
	value V
	child node[V]
}

// bitmapNode is the sparse, popcount-addressed node variant used while a
// level holds at most 16 occupied slots out of 32. entries is kept dense
// and ordered by bit position; bitindex maps a bit back to its slot.
type bitmapNode[V any] struct {
	mutid   uint64
	bitmap  uint32
	entries []bitmapEntry[V]
}

func (n *bitmapNode[V]) mutationToken() uint64 { return n.mutid }

func (n *bitmapNode[V]) find(shift uint, h uint32, key Key) (V, bool, error) {
	var zero V
	b := bitpos(h, shift)
	if n.bitmap&b == 0 {
		return zero, false, nil
	}
	e := n.entries[bitindex(n.bitmap, b)]
	if e.child != nil {
		return e.child.find(shift+bitsPerStep, h, key)
	}
	eq, err := key.Equal(e.key)
	if err != nil {
		return zero, false, &EqualityError{Left: key, Right: e.key, Err: err}
	}
	if !eq {
		return zero, false, nil
	}
	return e.value, true, nil
}

func (n *bitmapNode[V]) assoc(shift uint, h uint32, key Key, value V, mutid uint64) (node[V], bool, error) {
	if shift > maxShift+bitsPerStep {
		panic("himap: bitmap recursion exceeded the maximum trie depth")
	}
	b := bitpos(h, shift)
	i := bitindex(n.bitmap, b)

	if n.bitmap&b != 0 {
		e := n.entries[i]
		if e.child != nil {
			newChild, added, err := e.child.assoc(shift+bitsPerStep, h, key, value, mutid)
			if err != nil {
				return nil, false, err
			}
			if newChild == e.child {
				return n, false, nil
			}
			return n.withEntry(i, bitmapEntry[V]{child: newChild}, mutid), added, nil
		}

		eq, err := key.Equal(e.key)
		if err != nil {
			return nil, false, &EqualityError{Left: key, Right: e.key, Err: err}
		}
		if eq {
			if valuesEqual(e.value, value) {
				return n, false, nil
			}
			return n.withEntry(i, bitmapEntry[V]{key: e.key, value: value}, mutid), false, nil
		}

		child, err := makeBitmapOrCollision[V](e.key, e.value, key, value, shift+bitsPerStep, mutid)
		if err != nil {
			return nil, false, err
		}
		return n.withEntry(i, bitmapEntry[V]{child: child}, mutid), true, nil
	}

	if len(n.entries) < 16 {
		return n.withInserted(i, b, bitmapEntry[V]{key: key, value: value}, mutid), true, nil
	}
	arr, err := n.promote(shift, h, key, value, mutid)
	if err != nil {
		return nil, false, err
	}
	return arr, true, nil
}

func (n *bitmapNode[V]) without(shift uint, h uint32, key Key, mutid uint64) (node[V], bool, bool, error) {
	b := bitpos(h, shift)
	if n.bitmap&b == 0 {
		return nil, false, false, nil
	}
	i := bitindex(n.bitmap, b)
	e := n.entries[i]

	if e.child != nil {
		childRepl, childEmpty, ok, err := e.child.without(shift+bitsPerStep, h, key, mutid)
		if err != nil {
			return nil, false, false, err
		}
		if !ok {
			return nil, false, false, nil
		}
		if childEmpty {
			panic("himap: invariant violation: a child subtree vanished under a Bitmap parent")
		}
		if leaf, ok := asSingleLeaf[V](childRepl); ok {
			return n.withEntry(i, leaf, mutid), false, true, nil
		}
		return n.withEntry(i, bitmapEntry[V]{child: childRepl}, mutid), false, true, nil
	}

	eq, err := key.Equal(e.key)
	if err != nil {
		return nil, false, false, &EqualityError{Left: key, Right: e.key, Err: err}
	}
	if !eq {
		return nil, false, false, nil
	}
	if len(n.entries) == 1 {
		return nil, true, true, nil
	}
	return n.withRemoved(i, b, mutid), false, true, nil
}

// asSingleLeaf reports whether repl is a Bitmap node holding exactly one
// leaf binding, returning that binding so the caller can inline it into
// its own entries instead of keeping a single-leaf Bitmap child around.
func asSingleLeaf[V any](repl node[V]) (bitmapEntry[V], bool) {
	bn, ok := repl.(*bitmapNode[V])
	if !ok || len(bn.entries) != 1 || bn.entries[0].child != nil {
		return bitmapEntry[V]{}, false
	}
	return bn.entries[0], true
}

// withEntry replaces the entry at slot i, mutating in place when this
// node is already owned by mutid and cloning otherwise.
func (n *bitmapNode[V]) withEntry(i int, e bitmapEntry[V], mutid uint64) *bitmapNode[V] {
	if ownedBy(n.mutid, mutid) {
		n.entries[i] = e
		return n
	}
	cloned := make([]bitmapEntry[V], len(n.entries))
	copy(cloned, n.entries)
	cloned[i] = e
	return &bitmapNode[V]{mutid: mutid, bitmap: n.bitmap, entries: cloned}
}

// withInserted grows the node by one entry at slot i, setting bit b.
func (n *bitmapNode[V]) withInserted(i int, b uint32, e bitmapEntry[V], mutid uint64) *bitmapNode[V] {
	if ownedBy(n.mutid, mutid) {
		n.entries = append(n.entries, bitmapEntry[V]{})
		copy(n.entries[i+1:], n.entries[i:])
		n.entries[i] = e
		n.bitmap |= b
		return n
	}
	grown := make([]bitmapEntry[V], len(n.entries)+1)
	copy(grown[:i], n.entries[:i])
	grown[i] = e
	copy(grown[i+1:], n.entries[i:])
	return &bitmapNode[V]{mutid: mutid, bitmap: n.bitmap | b, entries: grown}
}

// withRemoved shrinks the node by one entry at slot i, clearing bit b.
func (n *bitmapNode[V]) withRemoved(i int, b uint32, mutid uint64) *bitmapNode[V] {
	if ownedBy(n.mutid, mutid) {
		n.entries = append(n.entries[:i], n.entries[i+1:]...)
		n.bitmap &^= b
		return n
	}
	shrunk := make([]bitmapEntry[V], len(n.entries)-1)
	copy(shrunk[:i], n.entries[:i])
	copy(shrunk[i:], n.entries[i+1:])
	return &bitmapNode[V]{mutid: mutid, bitmap: n.bitmap &^ b, entries: shrunk}
}

// promote rebuilds this node's 16 occupied slots plus the incoming entry
// as a 32-slot Array node, wrapping each surviving leaf in a single-entry
// Bitmap child addressed one level deeper.
func (n *bitmapNode[V]) promote(shift uint, h uint32, key Key, value V, mutid uint64) (node[V], error) {
	arr := &arrayNode[V]{mutid: mutid}
	for j := 0; j < 32; j++ {
		bitJ := uint32(1) << uint(j)
		if n.bitmap&bitJ == 0 {
			continue
		}
		e := n.entries[bitindex(n.bitmap, bitJ)]
		if e.child != nil {
			arr.slots[j] = e.child
		} else {
			hj, err := hash32(e.key)
			if err != nil {
				return nil, err
			}
			arr.slots[j] = &bitmapNode[V]{
				mutid:   mutid,
				bitmap:  bitpos(hj, shift+bitsPerStep),
				entries: []bitmapEntry[V]{{key: e.key, value: e.value}},
			}
		}
		arr.count++
	}
	slot := mask(h, shift)
	arr.slots[slot] = &bitmapNode[V]{
		mutid:   mutid,
		bitmap:  bitpos(h, shift+bitsPerStep),
		entries: []bitmapEntry[V]{{key: key, value: value}},
	}
	arr.count++
	return arr, nil
}

func (n *bitmapNode[V]) dump(indent string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%sBitmap[%d] %032b mutid=%d\n", indent, len(n.entries), n.bitmap, n.mutid)
	for _, e := range n.entries {
		if e.child != nil {
			sb.WriteString(e.child.dump(indent + "  "))
		} else {
			fmt.Fprintf(&sb, "%s  %v: %v\n", indent, e.key, e.value)
		}
	}
	return sb.String()
}

// ownedBy reports whether a node carrying token is exclusively owned by
// the in-flight operation running under mutid: mutid 0 means no draft is
// active, so nothing is ever owned in that mode and every touched node
// is cloned, matching Map's persistent, always-allocate behavior.
func ownedBy(token, mutid uint64) bool {
	return mutid != 0 && token == mutid
}

// makeBitmapOrCollision builds the subtree holding two leaves whose hash
// masks matched one level up: a Collision node if their full hashes are
// equal, otherwise a nested Bitmap built by assoc'ing both leaves in at
// shift — which recurses again on a further mask match, and is
// guaranteed to terminate because two distinct 32-bit hashes must differ
// within the 7 five-bit windows that cover all 32 bits.
func makeBitmapOrCollision[V any](k1 Key, v1 V, k2 Key, v2 V, shift uint, mutid uint64) (node[V], error) {
	h1, err := hash32(k1)
	if err != nil {
		return nil, err
	}
	h2, err := hash32(k2)
	if err != nil {
		return nil, err
	}
	if h1 == h2 {
		return &collisionNode[V]{mutid: mutid, hash: h1, pairs: []pair[V]{{k1, v1}, {k2, v2}}}, nil
	}
	base := &bitmapNode[V]{mutid: mutid}
	n1, _, err := base.assoc(shift, h1, k1, v1, mutid)
	if err != nil {
		return nil, err
	}
	n2, _, err := n1.assoc(shift, h2, k2, v2, mutid)
	if err != nil {
		return nil, err
	}
	return n2, nil
}
