// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

// Package himap implements a persistent, immutable associative map on
// top of a 32-way-branching hash-array-mapped trie (HAMT). Every
// mutating operation — Assoc, Without, Update — returns a new Map that
// shares every untouched subtree with its receiver, so older Maps
// remain valid and unaffected by later writes.
//
// Keys are anything implementing the Key interface (hashable and
// comparable on the host's own terms, not Go's built-in comparable
// constraint), which lets heterogeneous key types coexist in a single
// Map. BytesKey, StringKey, Int64Key, and CIDKey are ready-made
// implementations.
//
// For batches of writes, Mutate opens a Draft: a scope in which nodes
// created or touched by the draft are mutated in place rather than
// cloned on every step, while anything reachable from outside the draft
// is left untouched. Finish ends the scope and hands back an ordinary
// persistent Map.
package himap
