// Command generate-golden writes the reference table used by the fibonacci
// golden tests: one "<n> <F(n) mod 2^128>" line per index.
//
//	go run ./cmd/generate-golden -n 300 -o internal/fibonacci/testdata/golden.txt
package main

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/spf13/pflag"
)

var modulus = new(big.Int).Lsh(big.NewInt(1), 128)

// fibBig computes F(n) exactly with the linear recurrence.
func fibBig(n uint64) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	for i := uint64(0); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return a
}

func writeGolden(w io.Writer, last uint64) error {
	bw := bufio.NewWriter(w)
	a, b := big.NewInt(0), big.NewInt(1)
	r := new(big.Int)
	for n := uint64(0); n <= last; n++ {
		if _, err := fmt.Fprintf(bw, "%d %s\n", n, r.Mod(a, modulus)); err != nil {
			return err
		}
		a.Add(a, b)
		a, b = b, a
	}
	return bw.Flush()
}

func main() {
	last := pflag.Uint64P("n", "n", 300, "last index to write")
	out := pflag.StringP("output", "o", "", "output file (stdout when empty)")
	pflag.Parse()

	if err := run(*out, *last); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run writes the table to path, or stdout when path is empty. A failed
// Close is reported, since it may be the first sign of a short write.
func run(path string, last uint64) (err error) {
	if path == "" {
		return writeGolden(os.Stdout, last)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return writeGolden(f, last)
}
