// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import "context"

// Func is a generic operation that accepts an input and returns a result.
//
// Funcs build pipelines that open, observe and wrap resources, for example:
//
//	open := Compose3(NewDialFunc(cfg, "tcp", logger), NewObserveResourceFunc(cfg, logger), NewStreamFunc(cfg))
//
// Resource cleanup contract: when a Func receives a [Resource] as input and
// returns an error, it closes that Resource before returning, so composed
// pipelines do not leak resources on partial failure.
type Func[A, B any] interface {
	Call(ctx context.Context, input A) (B, error)
}

// FuncAdapter wraps a function as a [Func] implementation.
type FuncAdapter[A, B any] func(ctx context.Context, input A) (B, error)

// Call implements [Func].
func (f FuncAdapter[A, B]) Call(ctx context.Context, input A) (B, error) {
	return f(ctx, input)
}
