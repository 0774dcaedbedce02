// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"context"
	"log/slog"
	"net"
	"strings"

	"github.com/bassosimone/netstub"
	"github.com/bassosimone/slogstub"
)

// newCapturingLogger returns a logger that captures all log records into the
// returned slice. The caller can inspect the slice after exercising the code
// under test to verify which events were emitted.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}
	return slog.New(handler), &records
}

// messages returns the messages of the captured records.
func messages(records []slog.Record) []string {
	var out []string
	for _, record := range records {
		out = append(out, record.Message)
	}
	return out
}

// newMinimalConn returns a [*netstub.FuncConn] with only LocalAddrFunc and
// RemoteAddrFunc set. This is the minimum needed for code that calls
// [safeconn.LocalAddr], [safeconn.RemoteAddr], and [safeconn.Network]
// during construction.
func newMinimalConn() *netstub.FuncConn {
	return &netstub.FuncConn{
		LocalAddrFunc:  func() net.Addr { return &net.TCPAddr{} },
		RemoteAddrFunc: func() net.Addr { return &net.TCPAddr{} },
	}
}

// stubResource is a [*MemoryResource] whose capabilities and failures
// are controlled by the test.
type stubResource struct {
	*MemoryResource
	alive      bool
	closeCount int
	readErr    error
	readable   bool
	seekErr    error
	seekable   bool
	tellErr    error
	writeErr   error
	writable   bool
}

// newStubResource returns a fully capable [*stubResource] holding data.
func newStubResource(data string) *stubResource {
	return &stubResource{
		MemoryResource: NewMemoryResource([]byte(data)),
		alive:          true,
		readable:       true,
		seekable:       true,
		writable:       true,
	}
}

func (r *stubResource) Read(buf []byte) (int, error) {
	if r.readErr != nil {
		return 0, r.readErr
	}
	return r.MemoryResource.Read(buf)
}

func (r *stubResource) Write(data []byte) (int, error) {
	if r.writeErr != nil {
		return 0, r.writeErr
	}
	return r.MemoryResource.Write(data)
}

func (r *stubResource) Seek(offset int64, whence int) (int64, error) {
	if r.seekErr != nil {
		return 0, r.seekErr
	}
	return r.MemoryResource.Seek(offset, whence)
}

func (r *stubResource) Tell() (int64, error) {
	if r.tellErr != nil {
		return 0, r.tellErr
	}
	return r.MemoryResource.Tell()
}

func (r *stubResource) Close() error {
	r.closeCount++
	return nil
}

func (r *stubResource) Alive() bool    { return r.alive }
func (r *stubResource) Readable() bool { return r.readable }
func (r *stubResource) Writable() bool { return r.writable }
func (r *stubResource) Seekable() bool { return r.seekable }

// countingResource counts the Read calls reaching the wrapped [Resource].
type countingResource struct {
	Resource
	reads int
}

func (r *countingResource) Read(buf []byte) (int, error) {
	r.reads++
	return r.Resource.Read(buf)
}

// newOneShot returns a non-seekable [*Stream] over data along with the
// [*countingResource] observing its reads.
func newOneShot(data string) (*Stream, *countingResource) {
	res := &countingResource{Resource: NewReaderResource(strings.NewReader(data), "upstream")}
	return NewStream(res), res
}
