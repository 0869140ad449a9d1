// Package cli implements the line-oriented front ends of the device: the
// interactive REPL and the timing sweep.
//
// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//   - Format* functions return a string without performing I/O.
//   - Open*/Write* functions touch the filesystem.
package cli
