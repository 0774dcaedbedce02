// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"net"
	"time"
)

// DefaultBufferSize is the buffer size set by [NewConfig].
const DefaultBufferSize = 64 * 1024

// Config holds common configuration for opening and wrapping resources.
//
// Pass this to constructor functions to pre-wire dependencies.
// All fields have sensible defaults set by [NewConfig].
type Config struct {
	// BufferSize is the default chunk size of streams built by [*StreamFunc].
	//
	// Set by [NewConfig] to [DefaultBufferSize]. Zero means "read everything".
	BufferSize int

	// Dialer is used by [*DialFunc].
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		BufferSize:    DefaultBufferSize,
		Dialer:        &net.Dialer{},
		ErrClassifier: DefaultErrClassifier,
		TimeNow:       time.Now,
	}
}
