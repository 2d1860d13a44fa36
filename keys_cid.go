// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import (
	"github.com/cespare/xxhash/v2"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDKey is a Key implementation addressed by content rather than by an
// application-chosen identifier: two CIDKeys compare equal exactly when
// they wrap the same content identifier.
type CIDKey struct {
	c cid.Cid
}

// NewCIDKey hashes data with SHA-256 and wraps the result as a CIDv1 raw
// multihash key.
func NewCIDKey(data []byte) (CIDKey, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return CIDKey{}, err
	}
	return CIDKey{c: cid.NewCidV1(cid.Raw, mh)}, nil
}

// WrapCID builds a CIDKey from an already-computed content identifier.
func WrapCID(c cid.Cid) CIDKey { return CIDKey{c: c} }

// CID returns the underlying content identifier.
func (k CIDKey) CID() cid.Cid { return k.c }

func (k CIDKey) Hash() (uint64, error) {
	return xxhash.Sum64(k.c.Bytes()), nil
}

func (k CIDKey) Equal(other Key) (bool, error) {
	o, ok := other.(CIDKey)
	if !ok {
		return false, nil
	}
	return k.c.Equals(o.c), nil
}

func (k CIDKey) String() string { return k.c.String() }
