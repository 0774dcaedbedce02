// SPDX-License-Identifier: GPL-3.0-or-later

// Package stream provides composable byte streams over files, memory
// buffers and sockets.
//
// # Core Abstraction
//
// A [Resource] is the lowest level: a raw handle (an [*os.File], a
// [net.Conn], a growable byte slice) plus capability queries such as
// Readable, Seekable and Alive. A [*Stream] owns exactly one Resource and
// implements [Streamable], the interface every caller programs against:
//
//	type Streamable interface {
//		Read(n int) ([]byte, error)
//		ReadLine(ending string, n int) ([]byte, error)
//		Write(data []byte, n int) (int, error)
//		PipeTo(dest Streamable, maxBytes int, offset int64) error
//		Seek(offset int64, whence int) (int64, error)
//		// ...
//	}
//
// Streams are composed by wrapping one Streamable inside another. Every
// decorator embeds [Decorator], which forwards all the calls it does not
// override.
//
// # Available Decorators
//
//   - [*Segment]: a bounded window [offset, offset+limit) with its own
//     logical offsets; forward seeks over non-seekable streams are emulated
//   - [*Aggregate]: an ordered list of readable streams read as one
//   - [*UpstreamCache]: mirrors a one-shot upstream (e.g., a socket) into a
//     seekable buffer so that already fetched bytes can be replayed
//
// # Resources
//
//   - [*MemoryResource] and [NewTemporary]: in-memory buffers
//   - [*FileResource] and [OpenFile]: local files
//   - [*ConnResource] and [DialFunc]: TCP and UDP sockets
//   - [*ReaderResource]: any one-shot [io.Reader]
//
// A [*Registry] maps URL schemes ("file", "memory", "tcp", "udp") to the
// [Func] opening them, and [NewReader] exposes any Streamable as an
// [io.ReadSeekCloser] for use with the standard library.
//
// # Pipelines
//
// Opening a resource is expressed as a [Func] pipeline, chained with
// [Compose2], [Compose3] and [Compose4]:
//
//	pipeline := Compose3(
//		FuncAdapter[string, Resource](registry.Open),
//		NewObserveResourceFunc(cfg, logger),
//		NewStreamFunc(cfg),
//	)
//
// [NewCancelWatchFunc] closes the Resource when the context is done, which
// is the only way to interrupt a blocking read.
//
// # Errors
//
// All operations return [*Error], which carries the failed operation, one
// of the Err* sentinels (use [errors.Is]), the offending [*Aggregate]
// member index and the attempted offset when relevant.
//
// # Observability
//
// [ObserveResourceFunc] logs the I/O of a Resource using [SLogger]
// (compatible with [log/slog]). Read, write and seek events are emitted at
// [slog.LevelDebug]; close events at [slog.LevelInfo]. Errors are
// classified using [ErrClassifier]. By default, logging is disabled.
//
// # Concurrency
//
// Streams are not safe for concurrent use. A [*Registry] is.
package stream
