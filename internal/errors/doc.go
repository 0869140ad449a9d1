// Package apperrors defines the application's error taxonomy: sentinel
// errors for the session states callers must react to, typed errors for
// configuration and validation problems, and the mapping from errors to
// process exit codes.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Typed errors that carry a cause implement Unwrap() so errors.Is() and
// errors.As() see through them.
package apperrors
