package app

import (
	"fmt"
	"io"
	"runtime"
	"slices"
)

// Build metadata, set with -ldflags "-X github.com/agbru/fibdev/internal/app.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args ask for the version.
func HasVersionFlag(args []string) bool {
	return slices.Contains(args, "--version") || slices.Contains(args, "-V")
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "fibdev %s (commit %s, built %s, %s %s/%s)\n",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
