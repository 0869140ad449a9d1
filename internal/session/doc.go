// Package session implements the compute session: an exclusively held handle
// with a movable cursor that evaluates F(cursor) on demand and returns its
// decimal digits.
//
// A Device owns the exclusivity lock. It is an ordinary value created by the
// composition root and passed to whoever needs it; there is no package-level
// state. At most one Session per Device is open at any time, and Acquire
// never blocks: a caller finding the device busy gets apperrors.ErrBusy
// immediately.
package session
