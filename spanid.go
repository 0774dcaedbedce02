// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 identifying a span.
//
// [*ObserveResourceFunc] tags every observed resource with a fresh span ID
// so that all the events of a resource share the same resourceID field.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
