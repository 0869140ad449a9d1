// Package logging provides a unified logging interface for the Fibonacci
// device. It abstracts the underlying logging implementation so the session
// core, the HTTP front and the CLI log consistently while the backend (zerolog
// or the standard library logger) is chosen by the composition root.
package logging
