// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import "io"

// Resource is the opaque byte-stream handle wrapped by a [*Stream].
//
// A Resource may be a file, a socket, a memory buffer or anything else
// satisfying this capability set. The composition layer treats it as a
// black box: it never opens Resources, and it closes one only through the
// [*Stream] owning it.
//
// Read may return fewer bytes than requested. Seek fails when the
// Resource is not seekable. Size returns false when the size is unknown.
type Resource interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Tell returns the current offset.
	Tell() (int64, error)

	// EOF reports whether the Resource is positioned at its end.
	EOF() bool

	// Readable reports whether reading is allowed.
	Readable() bool

	// Writable reports whether writing is allowed.
	Writable() bool

	// Seekable reports whether seeking is allowed.
	Seekable() bool

	// Alive reports whether the Resource is still usable (not closed and
	// not timed out).
	Alive() bool

	// Local reports whether the Resource is local (e.g., a file) rather
	// than remote (e.g., a socket).
	Local() bool

	// Size returns the size in bytes, if known.
	Size() (int64, bool)

	// LocalName returns the local name (e.g., a path or the local address).
	LocalName() string

	// RemoteName returns the remote name or the empty string.
	RemoteName() string
}
