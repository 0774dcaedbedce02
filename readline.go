// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import "bytes"

// DefaultLineEnding is the ending used by ReadLine when none is given.
const DefaultLineEnding = "\n"

// scanLine consumes data through next, one step at a time, until ending
// is matched, limit bytes have been consumed (no limit when negative), or
// next returns no data. The ending is not included in the returned line.
//
// A nil line means that no data at all was available.
func scanLine(next func() ([]byte, error), ending string, limit int) (line []byte, consumed int, err error) {
	if ending == "" {
		ending = DefaultLineEnding
	}
	suffix := []byte(ending)
	for limit < 0 || consumed < limit {
		chunk, err := next()
		consumed += len(chunk)
		line = append(line, chunk...)
		if err != nil {
			return line, consumed, err
		}
		if len(chunk) <= 0 {
			break
		}
		if bytes.HasSuffix(line, suffix) {
			return line[:len(line)-len(suffix)], consumed, nil
		}
	}
	return line, consumed, nil
}
