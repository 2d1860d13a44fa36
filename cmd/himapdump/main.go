// SPDX-FileCopyrightText: 2025 himap authors
//
// SPDX-License-Identifier: MIT

// Command himapdump builds a Map from a sequence of "key=value" pairs
// given on the command line and prints its trie structure. It is a
// debugging aid, not a stable format or a persistence layer: this
// library has no wire, file, or network surface of its own.
package main

import (
	"fmt"
	"os"
	"strings"

	himap "github.com/orbitmap/himap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: himapdump key=value [key=value ...]")
		os.Exit(1)
	}

	m := himap.New[string]()
	for _, arg := range os.Args[1:] {
		k, v, err := parsePair(arg)
		check(err)
		m, err = m.Assoc(himap.StringKey(k), v)
		check(err)
	}

	fmt.Printf("%d binding(s)\n", m.Len())
	fmt.Print(m.Dump())
}

func parsePair(arg string) (key, value string, err error) {
	k, v, ok := strings.Cut(arg, "=")
	if !ok {
		return "", "", fmt.Errorf("himapdump: %q is not a key=value pair", arg)
	}
	return k, v, nil
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "himapdump:", err)
		os.Exit(1)
	}
}
