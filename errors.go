// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import "fmt"

// HashError reports that a Key's or value's Hash method failed.
type HashError struct {
	// Subject is the key or value whose hashing failed.
	Subject any
	Err     error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("himap: hash failed for %v: %v", e.Subject, e.Err)
}

func (e *HashError) Unwrap() error { return e.Err }

// EqualityError reports that a Key's Equal method failed during find,
// assoc, without, eq, or a collision scan.
type EqualityError struct {
	Left, Right Key
	Err         error
}

func (e *EqualityError) Error() string {
	return fmt.Sprintf("himap: equality failed for %v == %v: %v", e.Left, e.Right, e.Err)
}

func (e *EqualityError) Unwrap() error { return e.Err }

// KeyMissing reports that a key was not present for an operation that
// requires it: subscript, without, delete, and pop without a default.
type KeyMissing struct {
	Key Key
}

func (e *KeyMissing) Error() string {
	return fmt.Sprintf("himap: key missing: %v", e.Key)
}

// MutationAfterFinish reports a draft operation attempted after the draft
// was finished or its scope exited.
type MutationAfterFinish struct{}

func (e *MutationAfterFinish) Error() string {
	return "himap: mutation attempted on a finished draft"
}

// ConstructionFromDraft reports an attempt to build a Map directly from a
// live Draft. Drafts must be finished first.
type ConstructionFromDraft struct{}

func (e *ConstructionFromDraft) Error() string {
	return "himap: cannot construct a Map directly from a Draft; call Finish first"
}

// BadPair reports that a sequence-update element at index Index was
// pair-shaped but did not hold a Key and a value of the Map's value type.
type BadPair struct {
	Index int
}

func (e *BadPair) Error() string {
	return fmt.Sprintf("himap: update source element %d is not a valid key/value pair", e.Index)
}

// BadItem reports that a sequence-update element at index Index was not
// usable as a pair at all: in RawPairs, anything other than a [2]any; in
// Pairs, a KV with a nil Key.
type BadItem struct {
	Index int
}

func (e *BadItem) Error() string {
	return fmt.Sprintf("himap: update source element %d is not a key/value pair", e.Index)
}
