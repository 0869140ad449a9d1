package cli

import (
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/agbru/fibdev/internal/errors"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// SweepOutputPath returns the file a sweep of engine writes to. A single
// engine uses base unchanged; several engines get base.<engine> each, one
// two-column file per series.
func SweepOutputPath(base, engine string, multi bool) string {
	if !multi {
		return base
	}
	return base + "." + engine
}

// OpenOutput creates path (and its directory). An empty path returns
// fallback wrapped with a no-op Close.
func OpenOutput(path string, fallback io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{fallback}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.WrapError(err, "create output directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, apperrors.WrapError(err, "create output file")
	}
	return f, nil
}
