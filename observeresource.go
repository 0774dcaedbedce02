//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/ooni/probe-cli/blob/v3.20.1/internal/measurexlite/conn.go
//

package stream

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// NewObserveResourceFunc returns a new [*ObserveResourceFunc].
//
// The cfg argument contains the common configuration.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewObserveResourceFunc(cfg *Config, logger SLogger) *ObserveResourceFunc {
	return &ObserveResourceFunc{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		NewID:         NewSpanID,
		TimeNow:       cfg.TimeNow,
	}
}

// ObserveResourceFunc wraps a [Resource] to log its I/O operations.
//
// Reads, writes and seeks are logged at [slog.LevelDebug]; close is
// logged at [slog.LevelInfo]. Every event carries a resourceID field
// shared by all events of the same resource.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type ObserveResourceFunc struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewObserveResourceFunc] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	//
	// Set by [NewObserveResourceFunc] to the user-provided logger.
	Logger SLogger

	// NewID returns the resourceID of each observed resource.
	//
	// Set by [NewObserveResourceFunc] to [NewSpanID].
	NewID func() string

	// TimeNow is the function to get the current time (configurable for testing).
	//
	// Set by [NewObserveResourceFunc] from [Config.TimeNow].
	TimeNow func() time.Time
}

var _ Func[Resource, Resource] = &ObserveResourceFunc{}

// Call wraps res. It never fails.
func (op *ObserveResourceFunc) Call(ctx context.Context, res Resource) (Resource, error) {
	observed := &observedResource{
		Resource:  res,
		closeonce: sync.Once{},
		id:        op.NewID(),
		lname:     res.LocalName(),
		op:        op,
		rname:     res.RemoteName(),
	}
	return observed, nil
}

// observedResource observes a [Resource].
type observedResource struct {
	Resource
	closeonce sync.Once
	id        string
	lname     string
	op        *ObserveResourceFunc
	rname     string
}

// Close implements [Resource].
//
// Subsequent calls return [os.ErrClosed].
func (r *observedResource) Close() (err error) {
	err = os.ErrClosed
	r.closeonce.Do(func() {
		t0 := r.op.TimeNow()
		r.op.Logger.Info(
			"closeStart",
			slog.String("localName", r.lname),
			slog.String("remoteName", r.rname),
			slog.String("resourceID", r.id),
			slog.Time("t", t0),
		)

		err = r.Resource.Close()

		r.op.Logger.Info(
			"closeDone",
			slog.Any("err", err),
			slog.String("errClass", r.op.ErrClassifier.Classify(err)),
			slog.String("localName", r.lname),
			slog.String("remoteName", r.rname),
			slog.String("resourceID", r.id),
			slog.Time("t0", t0),
			slog.Time("t", r.op.TimeNow()),
		)
	})
	return
}

// Read implements [Resource].
func (r *observedResource) Read(buf []byte) (int, error) {
	t0 := r.op.TimeNow()
	r.op.Logger.Debug(
		"readStart",
		slog.Int("ioBufferSize", len(buf)),
		slog.String("resourceID", r.id),
		slog.Time("t", t0),
	)

	count, err := r.Resource.Read(buf)

	r.op.Logger.Debug(
		"readDone",
		slog.Int("ioBytesCount", count),
		slog.Any("err", err),
		slog.String("errClass", r.op.ErrClassifier.Classify(err)),
		slog.String("resourceID", r.id),
		slog.Time("t0", t0),
		slog.Time("t", r.op.TimeNow()),
	)

	return count, err
}

// Write implements [Resource].
func (r *observedResource) Write(data []byte) (int, error) {
	t0 := r.op.TimeNow()
	r.op.Logger.Debug(
		"writeStart",
		slog.Int("ioBufferSize", len(data)),
		slog.String("resourceID", r.id),
		slog.Time("t", t0),
	)

	count, err := r.Resource.Write(data)

	r.op.Logger.Debug(
		"writeDone",
		slog.Int("ioBytesCount", count),
		slog.Any("err", err),
		slog.String("errClass", r.op.ErrClassifier.Classify(err)),
		slog.String("resourceID", r.id),
		slog.Time("t0", t0),
		slog.Time("t", r.op.TimeNow()),
	)

	return count, err
}

// Seek implements [Resource].
func (r *observedResource) Seek(offset int64, whence int) (int64, error) {
	position, err := r.Resource.Seek(offset, whence)
	r.op.Logger.Debug(
		"seek",
		slog.Int64("offset", offset),
		slog.Int("whence", whence),
		slog.Int64("position", position),
		slog.Any("err", err),
		slog.String("errClass", r.op.ErrClassifier.Classify(err)),
		slog.String("resourceID", r.id),
		slog.Time("t", r.op.TimeNow()),
	)
	return position, err
}
