// Package device exposes a session.Device through a file-like API: open,
// seek, read into a caller buffer, write and close. It is the boundary a
// front end (REPL, TUI, HTTP) drives, mirroring the character-device
// operations the compute session was designed for.
package device

import (
	"fmt"
	"io"
	"time"

	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/format"
	"github.com/agbru/fibdev/internal/session"
)

const (
	// WriteAck is the value every Write returns, regardless of its input.
	WriteAck = 1
	// BufferSize always fits a Read: the longest 128-bit value plus the NUL.
	BufferSize = format.MaxDigits + 1
)

// Node is an openable handle on a device.
type Node struct {
	dev *session.Device
}

// NewNode wraps dev.
func NewNode(dev *session.Device) *Node {
	return &Node{dev: dev}
}

// Device returns the underlying device.
func (n *Node) Device() *session.Device { return n.dev }

// Open acquires the device. When another file is open it returns an error
// matching apperrors.ErrBusy; the device observer reports the refusal.
func (n *Node) Open() (*File, error) {
	s, err := n.dev.Acquire()
	if err != nil {
		return nil, apperrors.DeviceError{Op: "open", Cause: err}
	}
	return &File{s: s}, nil
}

// File is an open device. It is not an io.Reader: reads never advance the
// cursor, so io.ReadAll on a File would not terminate.
type File struct {
	s *session.Session
}

// Seek moves the cursor. whence takes the io.Seek* constants: io.SeekStart
// is absolute, io.SeekCurrent relative to the cursor and io.SeekEnd relative
// to the device maximum (the result is max - offset). Any other whence
// targets position 0. Out-of-range targets are clamped; the returned error
// is always nil.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.s.Seek(offset, toWhence(whence)), nil
}

// Read computes F(cursor) and copies its digits into p followed by a NUL
// terminator. It returns the number of digits, excluding the terminator.
// If p cannot hold the digits and the terminator, nothing is copied and the
// error matches io.ErrShortBuffer.
func (f *File) Read(p []byte) (int, error) {
	r, err := f.s.ReadCurrent()
	if err != nil {
		return 0, apperrors.DeviceError{Op: "read", Cause: err}
	}
	if len(p) < len(r.Digits)+1 {
		return 0, apperrors.DeviceError{
			Op:    "read",
			Cause: fmt.Errorf("need %d bytes, have %d: %w", len(r.Digits)+1, len(p), io.ErrShortBuffer),
		}
	}
	n := copy(p, r.Digits)
	p[n] = 0
	return n, nil
}

// ReadValue computes F(cursor) and returns the reading without a buffer
// round-trip.
func (f *File) ReadValue() (session.Reading, error) {
	r, err := f.s.ReadCurrent()
	if err != nil {
		return session.Reading{}, apperrors.DeviceError{Op: "read", Cause: err}
	}
	return r, nil
}

// Write discards p and returns WriteAck.
func (f *File) Write(p []byte) (int, error) {
	f.s.AcceptWrite(p)
	return WriteAck, nil
}

// Close releases the device. Closing twice returns an error matching
// apperrors.ErrSessionReleased.
func (f *File) Close() error {
	if err := f.s.Release(); err != nil {
		return apperrors.DeviceError{Op: "close", Cause: err}
	}
	return nil
}

// Cursor returns the current position.
func (f *File) Cursor() int64 { return f.s.Cursor() }

// LastComputeDuration returns the engine time of the most recent read.
func (f *File) LastComputeDuration() (time.Duration, bool) {
	return f.s.LastComputeDuration()
}

// MaxIndex returns the device's cursor ceiling.
func (f *File) MaxIndex() int64 { return f.s.Device().MaxIndex() }

func toWhence(whence int) session.Whence {
	switch whence {
	case io.SeekStart:
		return session.Absolute
	case io.SeekCurrent:
		return session.RelativeToCursor
	case io.SeekEnd:
		return session.RelativeToMax
	}
	return session.Whence(-1)
}

// ParseWhence maps "set", "cur" and "end" (and their SEEK_* spellings) to
// io.Seek* constants.
func ParseWhence(s string) (int, error) {
	switch s {
	case "", "set", "start", "SEEK_SET":
		return io.SeekStart, nil
	case "cur", "current", "SEEK_CUR":
		return io.SeekCurrent, nil
	case "end", "SEEK_END":
		return io.SeekEnd, nil
	}
	return 0, fmt.Errorf("unknown whence %q (want set, cur or end)", s)
}
