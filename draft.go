// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import "sync/atomic"

// mutationCounter hands out the monotonically increasing mutation tokens
// that tag which Draft exclusively owns a given node. 0 is reserved to
// mean "no draft, persistent node" and is never handed out.
var mutationCounter atomic.Uint64

func nextMutid() uint64 {
	for {
		v := mutationCounter.Add(1)
		if v != 0 {
			return v
		}
	}
}

// Draft is a scope for batched in-place mutation of a trie. Nodes
// created or touched while the Draft is live carry its mutation token
// and may be mutated without cloning; every other node is cloned on
// first touch and the clone is stamped with the Draft's token. Finish
// ends the scope and hands back an ordinary persistent Map.
type Draft[V any] struct {
	mutid    uint64
	root     node[V]
	count    int
	finished bool
}

func (d *Draft[V]) checkLive() error {
	if d.finished {
		return &MutationAfterFinish{}
	}
	return nil
}

// Len returns the number of bindings currently in the draft.
func (d *Draft[V]) Len() int { return d.count }

// Get looks up key within the draft's current state.
func (d *Draft[V]) Get(key Key) (V, bool, error) {
	var zero V
	if err := d.checkLive(); err != nil {
		return zero, false, err
	}
	h, err := hash32(key)
	if err != nil {
		return zero, false, err
	}
	return d.root.find(0, h, key)
}

// Contains reports whether key is present in the draft's current state.
func (d *Draft[V]) Contains(key Key) (bool, error) {
	_, found, err := d.Get(key)
	return found, err
}

// Set binds key to value in place.
func (d *Draft[V]) Set(key Key, value V) error {
	if err := d.checkLive(); err != nil {
		return err
	}
	h, err := hash32(key)
	if err != nil {
		return err
	}
	newRoot, added, err := d.root.assoc(0, h, key, value, d.mutid)
	if err != nil {
		return err
	}
	d.root = newRoot
	if added {
		d.count++
	}
	return nil
}

// Delete removes key in place, failing with a KeyMissing error if it is
// absent.
func (d *Draft[V]) Delete(key Key) error {
	if err := d.checkLive(); err != nil {
		return err
	}
	h, err := hash32(key)
	if err != nil {
		return err
	}
	newRoot, empty, ok, err := d.root.without(0, h, key, d.mutid)
	if err != nil {
		return err
	}
	if !ok {
		return &KeyMissing{Key: key}
	}
	if empty {
		d.root = emptyBitmap[V]()
	} else {
		d.root = newRoot
	}
	d.count--
	return nil
}

// Pop removes key and returns its value, or returns def without error
// if key is absent.
func (d *Draft[V]) Pop(key Key, def V) (V, error) {
	v, found, err := d.Get(key)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	if err := d.Delete(key); err != nil {
		return def, err
	}
	return v, nil
}

// Update merges src into the draft in place.
func (d *Draft[V]) Update(src UpdateSource[V]) error {
	if err := d.checkLive(); err != nil {
		return err
	}
	return src.updateInto(d.Set)
}

// Finish ends the draft's mutation scope and returns a persistent Map
// holding its final state. After Finish, Get, Contains, Set, Delete, Pop
// and Update fail with MutationAfterFinish; Len still reports the final
// count, and a repeated Finish returns another Map over the same state.
func (d *Draft[V]) Finish() *Map[V] {
	d.finished = true
	return &Map[V]{root: d.root, count: d.count}
}
