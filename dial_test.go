// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/bassosimone/errclass"
	"github.com/bassosimone/netstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewDialFunc populates all fields from Config and the provided logger.
func TestNewDialFunc(t *testing.T) {
	cfg := NewConfig()
	logger := DefaultSLogger()

	fn := NewDialFunc(cfg, "tcp", logger)

	require.NotNil(t, fn)
	assert.Equal(t, "tcp", fn.Network)
	assert.NotNil(t, fn.Dialer)
	assert.NotNil(t, fn.Logger)
	assert.NotNil(t, fn.TimeNow)
	assert.NotNil(t, fn.ErrClassifier)
}

// Call dials the URL host and returns a Resource or an error.
func TestDialFunc(t *testing.T) {
	tests := []struct {
		// name describes what this test case verifies.
		name string

		// dialer is the mock dialer to use.
		dialer *netstub.FuncDialer

		// network is the network type.
		network string

		// rawURL is the URL to dial.
		rawURL string

		// wantErr indicates whether we expect an error.
		wantErr bool
	}{
		{
			name: "successful TCP dial",
			dialer: &netstub.FuncDialer{
				DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
					conn := newMinimalConn()
					conn.CloseFunc = func() error { return nil }
					conn.LocalAddrFunc = func() net.Addr {
						return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321}
					}
					conn.RemoteAddrFunc = func() net.Addr {
						return &net.TCPAddr{IP: net.IPv4(93, 184, 216, 34), Port: 443}
					}
					return conn, nil
				},
			},
			network: "tcp",
			rawURL:  "tcp://93.184.216.34:443",
			wantErr: false,
		},

		{
			name: "dial error",
			dialer: &netstub.FuncDialer{
				DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
					return nil, errors.New("connection refused")
				},
			},
			network: "tcp",
			rawURL:  "tcp://93.184.216.34:443",
			wantErr: true,
		},

		{
			name: "successful UDP dial",
			dialer: &netstub.FuncDialer{
				DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
					conn := newMinimalConn()
					conn.CloseFunc = func() error { return nil }
					conn.LocalAddrFunc = func() net.Addr {
						return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321}
					}
					conn.RemoteAddrFunc = func() net.Addr {
						return &net.UDPAddr{IP: net.IPv4(8, 8, 8, 8), Port: 53}
					}
					return conn, nil
				},
			},
			network: "udp",
			rawURL:  "udp://8.8.8.8:53",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Dialer = tt.dialer

			fn := NewDialFunc(cfg, tt.network, DefaultSLogger())
			res, err := fn.Call(context.Background(), mustParseURL(t, tt.rawURL))

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, res)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, res)
			assert.False(t, res.Seekable())
			assert.False(t, res.Local())
			res.Close()
		})
	}
}

// Call passes the network and the URL host to the dialer.
func TestDialFuncPassesNetworkAndAddress(t *testing.T) {
	var gotNetwork, gotAddress string
	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			gotNetwork, gotAddress = network, address
			return newMinimalConn(), nil
		},
	}

	_, err := NewDialFunc(cfg, "udp", DefaultSLogger()).Call(
		context.Background(), mustParseURL(t, "udp://[::1]:53"))

	require.NoError(t, err)
	assert.Equal(t, "udp", gotNetwork)
	assert.Equal(t, "[::1]:53", gotAddress)
}

// Call emits connectStart/connectDone log events.
func TestDialFuncLogging(t *testing.T) {
	logger, records := newCapturingLogger()
	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, context.DeadlineExceeded
		},
	}

	_, err := NewDialFunc(cfg, "tcp", logger).Call(
		context.Background(), mustParseURL(t, "tcp://127.0.0.1:1"))

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"connectStart", "connectDone"}, messages(*records))
	assert.Equal(t, errclass.ETIMEDOUT, attrOf((*records)[1], "errClass").String())
}

// mustParseURL parses rawURL or fails the test.
func mustParseURL(t *testing.T, rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u
}
