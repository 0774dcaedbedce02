// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotReadable indicates reading from a dead or write-only stream.
	ErrNotReadable = errors.New("stream is not readable")

	// ErrNotWritable indicates writing to a dead or read-only stream.
	ErrNotWritable = errors.New("stream is not writable")

	// ErrNotSeekable indicates seeking a dead or non-seekable stream, or a
	// seek the [Resource] rejected.
	ErrNotSeekable = errors.New("stream is not seekable")

	// ErrSeek indicates a seek that cannot be performed or emulated.
	ErrSeek = errors.New("cannot seek")

	// ErrIO indicates that the underlying [Resource] call failed.
	ErrIO = errors.New("i/o failure")

	// ErrInvalidArgument indicates an invalid argument (e.g., adding a
	// non-readable stream to an [*Aggregate]).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedOperation indicates an operation that the stream
	// does not implement (e.g., writing to an [*Aggregate]).
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Error is the error returned by all the operations of this package.
//
// Use [errors.Is] with the Err* sentinels to check the kind of failure and
// with the underlying cause (e.g., [io.ErrUnexpectedEOF]) to inspect it.
type Error struct {
	// Op is the operation that failed (e.g., "read", "seek").
	Op string

	// Kind is one of the Err* sentinels.
	Kind error

	// Index is the offending member index of an [*Aggregate] or -1.
	Index int

	// Offset is the attempted offset or -1.
	Offset int64

	// Err is the underlying cause or nil.
	Err error
}

// newError constructs an [*Error] with no index and no offset.
func newError(op string, kind error, cause error) *Error {
	return &Error{Op: op, Kind: kind, Index: -1, Offset: -1, Err: cause}
}

// Error implements error.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Index >= 0 {
		fmt.Fprintf(&sb, " (stream #%d)", e.Index)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&sb, " (offset %d)", e.Offset)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Kind.Error())
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the sentinel and the cause, if any.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
