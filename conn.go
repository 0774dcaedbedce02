// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/bassosimone/safeconn"
)

// errNoSeek is returned by the Seek method of non-seekable resources.
var errNoSeek = errors.New("resource does not support seeking")

// NewConnResource returns a [*ConnResource] owning conn.
func NewConnResource(conn net.Conn) *ConnResource {
	return &ConnResource{
		closeonce: sync.Once{},
		conn:      conn,
		laddr:     safeconn.LocalAddr(conn),
		protocol:  safeconn.Network(conn),
		raddr:     safeconn.RemoteAddr(conn),
	}
}

// ConnResource is a non-seekable remote [Resource] backed by a [net.Conn].
//
// Tell returns the number of bytes consumed so far. A read returning
// [io.EOF] sets EOF; a close or a timeout makes the resource not alive,
// which is how a timed-out socket surfaces to the streams above it.
type ConnResource struct {
	closeonce sync.Once
	conn      net.Conn
	consumed  int64
	dead      atomic.Bool
	eof       bool
	laddr     string
	protocol  string
	raddr     string
}

var _ Resource = &ConnResource{}

// Conn returns the underlying [net.Conn].
func (c *ConnResource) Conn() net.Conn {
	return c.conn
}

// Protocol returns the network protocol (e.g., "tcp").
func (c *ConnResource) Protocol() string {
	return c.protocol
}

// Read implements [Resource].
func (c *ConnResource) Read(buf []byte) (int, error) {
	count, err := c.conn.Read(buf)
	c.consumed += int64(count)
	c.observe(err)
	return count, err
}

// Write implements [Resource].
func (c *ConnResource) Write(data []byte) (int, error) {
	count, err := c.conn.Write(data)
	c.observe(err)
	return count, err
}

func (c *ConnResource) observe(err error) {
	var netErr net.Error
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		c.eof = true
	case errors.Is(err, net.ErrClosed):
		c.dead.Store(true)
	case errors.As(err, &netErr) && netErr.Timeout():
		c.dead.Store(true)
	}
}

// Seek implements [Resource]. It always fails.
func (c *ConnResource) Seek(offset int64, whence int) (int64, error) {
	return 0, errNoSeek
}

// Close implements [Resource].
//
// Subsequent calls return [net.ErrClosed], consistent with Go's standard
// library behavior for closed connections.
func (c *ConnResource) Close() (err error) {
	err = net.ErrClosed
	c.closeonce.Do(func() {
		c.dead.Store(true)
		err = c.conn.Close()
	})
	return
}

// Tell implements [Resource].
func (c *ConnResource) Tell() (int64, error) {
	return c.consumed, nil
}

// EOF implements [Resource].
func (c *ConnResource) EOF() bool { return c.eof }

// Readable implements [Resource].
func (c *ConnResource) Readable() bool { return true }

// Writable implements [Resource].
func (c *ConnResource) Writable() bool { return true }

// Seekable implements [Resource].
func (c *ConnResource) Seekable() bool { return false }

// Alive implements [Resource].
func (c *ConnResource) Alive() bool { return !c.dead.Load() }

// Local implements [Resource].
func (c *ConnResource) Local() bool { return false }

// Size implements [Resource]. The size of a socket is never known.
func (c *ConnResource) Size() (int64, bool) { return 0, false }

// LocalName implements [Resource].
func (c *ConnResource) LocalName() string { return c.laddr }

// RemoteName implements [Resource].
func (c *ConnResource) RemoteName() string { return c.raddr }
