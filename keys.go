// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Key is the host contract a map key must satisfy. Hash must be
// consistent with Equal: equal keys must hash equal. Either method may
// fail, in which case the library surfaces the failure unchanged to the
// caller as a HashError or EqualityError rather than swallowing it.
type Key interface {
	Hash() (uint64, error)
	Equal(other Key) (bool, error)
}

// Hashable is the optional contract a Map's values satisfy when the Map
// itself is hashed via Map.Hash. A value that does not implement
// Hashable makes Map.Hash fail with a HashError.
type Hashable interface {
	Hash() (uint64, error)
}

// BytesKey is a reference Key implementation over a byte slice, hashed
// with xxhash.
type BytesKey []byte

func (k BytesKey) Hash() (uint64, error) {
	return xxhash.Sum64(k), nil
}

func (k BytesKey) Equal(other Key) (bool, error) {
	o, ok := other.(BytesKey)
	if !ok {
		return false, nil
	}
	if len(k) != len(o) {
		return false, nil
	}
	for i := range k {
		if k[i] != o[i] {
			return false, nil
		}
	}
	return true, nil
}

func (k BytesKey) String() string { return fmt.Sprintf("BytesKey(%x)", []byte(k)) }

// StringKey is a reference Key implementation over a string.
type StringKey string

func (k StringKey) Hash() (uint64, error) {
	return xxhash.Sum64String(string(k)), nil
}

func (k StringKey) Equal(other Key) (bool, error) {
	o, ok := other.(StringKey)
	return ok && o == k, nil
}

func (k StringKey) String() string { return string(k) }

// Int64Key is a reference Key implementation over a 64-bit signed integer.
type Int64Key int64

func (k Int64Key) Hash() (uint64, error) {
	var buf [8]byte
	v := uint64(k)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return xxhash.Sum64(buf[:]), nil
}

func (k Int64Key) Equal(other Key) (bool, error) {
	o, ok := other.(Int64Key)
	return ok && o == k, nil
}

func (k Int64Key) String() string { return fmt.Sprintf("%d", int64(k)) }
