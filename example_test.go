// SPDX-License-Identifier: GPL-3.0-or-later

package stream_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bassosimone/runtimex"
	"github.com/bassosimone/stream"
)

// This example shows how to concatenate streams and read a window of
// the result through a segment.
func Example_aggregateSegment() {
	agg := runtimex.PanicOnError1(stream.NewAggregate(
		stream.NewTemporary([]byte("Hello ")),
		stream.NewTemporary([]byte("World")),
	))
	defer agg.Close()

	seg := runtimex.PanicOnError1(stream.NewSegment(agg, 5, 3))
	data := runtimex.PanicOnError1(seg.Read(stream.All))
	fmt.Printf("%q\n", data)

	position := runtimex.PanicOnError1(agg.Seek(6, io.SeekStart))
	runtimex.Assert(position == 6)
	data = runtimex.PanicOnError1(agg.Read(stream.All))
	fmt.Printf("%q\n", data)

	// Output:
	// "lo Wo"
	// "World"
}

// This example shows how to make a one-shot body seekable.
func Example_upstreamCache() {
	body := strings.NewReader("first line\nsecond line\n")
	upstream := stream.NewStream(stream.NewReaderResource(body, "body"))
	cache := stream.NewUpstreamCache(upstream, nil)
	defer cache.Close()

	line := runtimex.PanicOnError1(cache.ReadLine("\n", stream.All))
	fmt.Printf("%s\n", line)

	runtimex.Assert(cache.Rewind() == nil)
	data := runtimex.PanicOnError1(io.ReadAll(stream.NewReader(cache)))
	fmt.Printf("%q\n", data)

	// Output:
	// first line
	// "first line\nsecond line\n"
}

// This example shows how to open an observed stream from a URL.
func Example_registry() {
	cfg := stream.NewConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg := stream.NewDefaultRegistry(cfg, logger)
	pipeline := stream.Compose3[string, stream.Resource, stream.Resource, *stream.Stream](
		stream.FuncAdapter[string, stream.Resource](reg.Open),
		stream.NewObserveResourceFunc(cfg, logger),
		stream.NewStreamFunc(cfg),
	)

	s := runtimex.PanicOnError1(pipeline.Call(context.Background(), "memory:"))
	defer s.Close()

	runtimex.PanicOnError1(s.Write([]byte("hello"), stream.All))
	runtimex.Assert(s.Rewind() == nil)
	sum := runtimex.PanicOnError1(stream.Checksum(s))
	fmt.Println(len(sum), runtimex.PanicOnError1(s.Offset()))

	// Output:
	// 64 0
}
