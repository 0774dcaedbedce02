// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import "context"

// NewCancelWatchFunc returns a new [*CancelWatchFunc].
func NewCancelWatchFunc() *CancelWatchFunc {
	return &CancelWatchFunc{}
}

// CancelWatchFunc arranges for a [Resource] to be closed when the context
// is done (cancelled or deadline exceeded).
//
// The streams in this package have no cancellation of their own: a
// blocking read returns only when the Resource returns. Closing the
// Resource makes such a read fail, after which the Resource reports it is
// not alive and the streams above it fail with [ErrNotReadable].
//
// Closing the returned Resource unregisters the watcher and closes the
// wrapped Resource, so no goroutine leaks if the context is never done.
//
// Do not use this primitive when the Resource may outlive the context.
type CancelWatchFunc struct{}

var _ Func[Resource, Resource] = &CancelWatchFunc{}

// Call registers a context watcher using [context.AfterFunc].
func (op *CancelWatchFunc) Call(ctx context.Context, res Resource) (Resource, error) {
	stop := context.AfterFunc(ctx, func() {
		res.Close()
	})
	return &cancelWatchedResource{Resource: res, stop: stop}, nil
}

// cancelWatchedResource wraps a [Resource] with a context cancellation watcher.
type cancelWatchedResource struct {
	Resource
	stop func() bool
}

// Close unregisters the context watcher and closes the wrapped Resource.
func (r *cancelWatchedResource) Close() error {
	r.stop()
	return r.Resource.Close()
}
