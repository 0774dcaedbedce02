// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// Checksum returns the hex-encoded BLAKE3 digest of the whole content of s.
//
// Checksum reads s from its start and restores the previous offset, so s
// must be seekable.
func Checksum(s Streamable) (string, error) {
	return PartialChecksum(s, 0, Unbounded)
}

// PartialChecksum is like [Checksum] but only digests the [offset, offset+limit)
// range of s. A limit equal to [Unbounded] extends the range to the end.
func PartialChecksum(s Streamable, offset, limit int64) (string, error) {
	if offset < 0 {
		return "", &Error{Op: "checksum", Kind: ErrInvalidArgument, Index: -1, Offset: offset}
	}
	saved, err := s.Offset()
	if err != nil {
		return "", err
	}
	seg, err := NewSegment(s, limit, offset)
	if err != nil {
		return "", err
	}
	hasher := blake3.New()
	_, err = io.Copy(hasher, NewReader(seg))
	if _, serr := s.Seek(saved, io.SeekStart); err == nil {
		err = serr
	}
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
