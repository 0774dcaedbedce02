// SPDX-License-Identifier: GPL-3.0-or-later

package stream

// NewDecorator returns a [*Decorator] forwarding every call to s.
func NewDecorator(s Streamable) *Decorator {
	return &Decorator{Streamable: s}
}

// Decorator is a transparent forwarding [Streamable].
//
// Embed it to write decorators that override only some methods. Closing a
// Decorator closes the wrapped stream, which in turn releases its
// [Resource] exactly once no matter how many decorators wrap it.
type Decorator struct {
	Streamable
}

// Unwrap returns the wrapped [Streamable].
func (d *Decorator) Unwrap() Streamable {
	return d.Streamable
}
