// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package encoding

import (
	"fmt"

	himap "github.com/orbitmap/himap"
)

// KeyCodec reduces a concrete Key implementation to bytes and back.
// Export/Import take an explicit codec rather than discovering one by
// reflection, since himap.Key is deliberately an open interface — there
// is no single canonical byte encoding for "any Key", only one the
// caller's own key type can provide.
type KeyCodec[K himap.Key] struct {
	Marshal   func(K) ([]byte, error)
	Unmarshal func([]byte) (K, error)
}

// ValueCodec does the same job for a Map's values.
type ValueCodec[V any] struct {
	Marshal   func(V) ([]byte, error)
	Unmarshal func([]byte) (V, error)
}

// Export walks m depth-first and reduces it to a Snapshot. Every key
// actually stored in m must be of the concrete type K the codec expects;
// a mismatch fails the export rather than silently dropping a binding.
func Export[K himap.Key, V any](m *himap.Map[V], kc KeyCodec[K], vc ValueCodec[V]) (*Snapshot, error) {
	var entries []Entry
	it := m.Iterate()
	for {
		k, v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		typedKey, ok := k.(K)
		if !ok {
			return nil, fmt.Errorf("himap/encoding: key %v is not of the expected type", k)
		}
		kb, err := kc.Marshal(typedKey)
		if err != nil {
			return nil, err
		}
		vb, err := vc.Marshal(v)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: kb, Value: vb})
	}
	return &Snapshot{Entries: entries}, nil
}

// Import rebuilds a Map from a Snapshot produced by Export.
func Import[K himap.Key, V any](s *Snapshot, kc KeyCodec[K], vc ValueCodec[V]) (*himap.Map[V], error) {
	d := himap.New[V]().Mutate()
	for _, e := range s.Entries {
		k, err := kc.Unmarshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := vc.Unmarshal(e.Value)
		if err != nil {
			return nil, err
		}
		if err := d.Set(k, v); err != nil {
			return nil, err
		}
	}
	return d.Finish(), nil
}
