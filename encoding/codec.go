// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

// Package encoding provides a canonical CBOR round-trip for himap.Map,
// the library's analogue of a reduce/pickle cycle: a Map is flattened to
// a depth-first list of (key, value) bindings rather than serializing
// its trie shape, then rebuilt from that list on the way back in.
package encoding

import himap "github.com/orbitmap/himap"

// Entry is the canonical on-wire shape of a single binding: both the key
// and the value have already been reduced to bytes by the caller's
// codec before reaching here.
type Entry struct {
	Key   []byte `cbor:"k"`
	Value []byte `cbor:"v"`
}

// Snapshot is the canonical CBOR-encodable form of a Map.
type Snapshot struct {
	Entries []Entry `cbor:"entries"`
}

// Marshal encodes a Snapshot as canonical CBOR (canonical ordering,
// shortest big.Int form, RFC3339 tagged times), the same options
// ContentDigest uses internally so a Snapshot and a Map's digest never
// disagree over how a value is serialized.
func Marshal(s *Snapshot) ([]byte, error) {
	return himap.MarshalCanonical(s)
}

// Unmarshal decodes canonical CBOR produced by Marshal back into a
// Snapshot.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := himap.UnmarshalCanonical(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
