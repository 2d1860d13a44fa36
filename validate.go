// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

package himap

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// KeyError pairs a binding's Key with the error its value failed with.
type KeyError struct {
	Key Key
	Err error
}

// ValidationError aggregates every per-binding validation failure found
// by Map.Validate, keyed by the offending Key, rather than stopping at
// the first bad entry.
type ValidationError struct {
	Failures []KeyError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "himap: %d binding(s) failed validation:", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&sb, "\n  %v: %v", f.Key, f.Err)
	}
	return sb.String()
}

// Validate runs v.Struct against every value held in m, collecting every
// failure rather than stopping at the first, and returns nil if every
// value passes.
func (m *Map[V]) Validate(v *validator.Validate) error {
	var failures []KeyError
	it := m.Iterate()
	for {
		k, val, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if verr := v.Struct(val); verr != nil {
			failures = append(failures, KeyError{Key: k, Err: verr})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &ValidationError{Failures: failures}
}

// DefaultValidator returns a validator with required-struct mode
// enabled, so a zero-value struct field tagged validate:"required"
// doesn't silently pass.
func DefaultValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
