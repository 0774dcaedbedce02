// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// NewRegistry returns an empty [*Registry].
func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]Func[*url.URL, Resource])}
}

// NewDefaultRegistry returns a [*Registry] with openers for the "file",
// "memory", "tcp" and "udp" schemes.
func NewDefaultRegistry(cfg *Config, logger SLogger) *Registry {
	reg := NewRegistry()
	reg.MustRegister("file", NewOpenFileFunc())
	reg.MustRegister("memory", FuncAdapter[*url.URL, Resource](
		func(ctx context.Context, u *url.URL) (Resource, error) {
			return NewMemoryResource(nil), nil
		}))
	reg.MustRegister("tcp", NewDialFunc(cfg, "tcp", logger))
	reg.MustRegister("udp", NewDialFunc(cfg, "udp", logger))
	return reg
}

// Registry maps URL schemes to the [Func] opening resources for them.
//
// Create a Registry once, when the program starts, and pass it to the code
// that needs to open resources. A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	openers map[string]Func[*url.URL, Resource]
}

// Register associates scheme with opener. Registering a scheme twice
// fails with [ErrInvalidArgument].
func (r *Registry) Register(scheme string, opener Func[*url.URL, Resource]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.openers[scheme]; found {
		return newError("register", ErrInvalidArgument, fmt.Errorf("duplicate scheme: %q", scheme))
	}
	r.openers[scheme] = opener
	return nil
}

// MustRegister is like Register but panics on failure.
func (r *Registry) MustRegister(scheme string, opener Func[*url.URL, Resource]) {
	if err := r.Register(scheme, opener); err != nil {
		panic(err)
	}
}

// Lookup returns the opener registered for scheme.
func (r *Registry) Lookup(scheme string) (Func[*url.URL, Resource], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	opener, found := r.openers[scheme]
	return opener, found
}

// Schemes returns the registered schemes, sorted.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := make([]string, 0, len(r.openers))
	for scheme := range r.openers {
		schemes = append(schemes, scheme)
	}
	slices.Sort(schemes)
	return schemes
}

// Open parses rawURL and opens it with the opener of its scheme.
func (r *Registry) Open(ctx context.Context, rawURL string) (Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, newError("open", ErrInvalidArgument, err)
	}
	opener, found := r.Lookup(u.Scheme)
	if !found {
		return nil, newError("open", ErrUnsupportedOperation, fmt.Errorf("unsupported scheme: %q", u.Scheme))
	}
	return opener.Call(ctx, u)
}

// OpenStream is like Open but wraps the [Resource] into a [*Stream] whose
// buffer size is cfg.BufferSize.
func (r *Registry) OpenStream(ctx context.Context, cfg *Config, rawURL string) (*Stream, error) {
	res, err := r.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return NewStreamFunc(cfg).Call(ctx, res)
}

// NewOpenFileFunc returns a new [*OpenFileFunc].
func NewOpenFileFunc() *OpenFileFunc {
	return &OpenFileFunc{Perm: 0644}
}

// OpenFileFunc opens file:// URLs as [*FileResource].
//
// The "mode" query parameter selects the access mode: "r" (the default),
// "w" (create and truncate), "rw" (create if missing) or "a" (append).
type OpenFileFunc struct {
	// Perm is the permission used when creating files.
	//
	// Set by [NewOpenFileFunc] to 0644.
	Perm os.FileMode
}

var _ Func[*url.URL, Resource] = &OpenFileFunc{}

// Call opens the file named by u.
func (op *OpenFileFunc) Call(ctx context.Context, u *url.URL) (Resource, error) {
	path := u.Path
	if u.Host != "" {
		// file://host/path
		path = filepath.Join(u.Host, u.Path)
	}
	if path == "" {
		return nil, newError("open", ErrInvalidArgument, errors.New("empty file path"))
	}
	var flag int
	switch mode := u.Query().Get("mode"); mode {
	case "", "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "rw":
		flag = os.O_RDWR | os.O_CREATE
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return nil, newError("open", ErrInvalidArgument, fmt.Errorf("invalid mode: %q", mode))
	}
	return OpenFile(path, flag, op.Perm)
}
