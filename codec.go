// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import (
	"bytes"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// canonicalDecMode and canonicalEncMode fix one pair of CBOR options for
// every encode/decode himap performs, whether that's ContentDigest
// hashing a value or the encoding package round-tripping a Snapshot:
// canonical (deterministic) field ordering, big.Int shortened to a plain
// integer where it fits, and RFC3339-tagged time values. Sharing one
// mode means two Maps holding equal values always digest identically,
// regardless of which path produced the bytes.
var (
	canonicalEncMode = mustEncMode()
	canonicalDecMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.BigIntConvert = cbor.BigIntConvertShortest
	opts.Time = cbor.TimeRFC3339
	opts.TimeTag = cbor.EncTagRequired
	mode, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}

func mustDecMode() cbor.DecMode {
	opts := cbor.DecOptions{BinaryUnmarshaler: cbor.BinaryUnmarshalerByteString}
	opts.TimeTag = cbor.DecTagRequired
	mode, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}

// encodeCanonical writes v to w using himap's canonical CBOR options. It
// is used both by ContentDigest, which streams a value straight into a
// hash, and by MarshalCanonical below.
func encodeCanonical(w io.Writer, v any) error {
	return canonicalEncMode.NewEncoder(w).Encode(v)
}

// MarshalCanonical encodes v as canonical CBOR. It is exported so
// packages outside himap (such as encoding) can produce bytes that
// round-trip identically with UnmarshalCanonical.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalCanonical decodes CBOR produced by MarshalCanonical into v.
func UnmarshalCanonical(data []byte, v any) error {
	return canonicalDecMode.NewDecoder(bytes.NewReader(data)).Decode(v)
}
