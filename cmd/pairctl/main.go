// Command pairctl generates word-pair distances from an occurrence index
// file without any of the streaming infrastructure.
//
// Usage:
//
//	pairctl generate --input index.csv --max-distance 5 --sort
//	pairctl lookup --dir data/segments this is
//	pairctl normalize Apple iPhone
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
