// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import "github.com/cespare/xxhash/v2"

// plainIntKey hashes to its own numeric value, so tests can place a key
// in an exact bitmap slot (mask(h,0) == uint32(k)&0x1F) without needing
// to reverse-engineer a real hash function's output.
type plainIntKey uint32

func (k plainIntKey) Hash() (uint64, error) { return uint64(k), nil }

func (k plainIntKey) Equal(other Key) (bool, error) {
	o, ok := other.(plainIntKey)
	return ok && o == k, nil
}

// collidingKey hashes to a fixed value regardless of its name, letting
// tests force a genuine full-hash collision on demand.
type collidingKey struct {
	name string
}

func (k collidingKey) Hash() (uint64, error) { return 7, nil }

func (k collidingKey) Equal(other Key) (bool, error) {
	o, ok := other.(collidingKey)
	return ok && o.name == k.name, nil
}

// testValue is a Hashable string value used wherever a test needs
// Map.Hash to succeed.
type testValue string

func (v testValue) Hash() (uint64, error) { return xxhash.Sum64String(string(v)), nil }

// failingKey always fails its Hash or Equal call, so tests can assert
// that himap surfaces host failures instead of swallowing them.
type failingKey struct {
	hashErr  error
	equalErr error
}

func (k failingKey) Hash() (uint64, error) {
	if k.hashErr != nil {
		return 0, k.hashErr
	}
	return 0, nil
}

func (k failingKey) Equal(other Key) (bool, error) {
	if k.equalErr != nil {
		return false, k.equalErr
	}
	return false, nil
}
