// Package tapo is a client for the Tapo-family smart-device control
// protocol: an authenticated, encrypted RPC channel layered on plain HTTP.
//
// A device requires an RSA key handshake establishing a shared AES session
// key, followed by a password login that yields a session token. Every
// subsequent command travels as an encrypted, token-authenticated
// securePassthrough envelope with bounded retry on transient failures.
//
//	client := tapo.New()
//	session, err := client.Authenticate(ctx, "192.168.1.40", user, pass)
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	brightness, hue, saturation := 50, 200, 80
//	err = session.SetColor(ctx, tapo.ColorState{
//	    Brightness: &brightness,
//	    Hue:        &hue,
//	    Saturation: &saturation,
//	})
//
// Sessions for different devices share nothing and may be used concurrently
// without coordination.
package tapo

import (
	"strings"

	"github.com/rs/zerolog"
)

// Client authenticates against devices and mints Sessions. The zero-cost
// default logs nothing; inject a logger with WithLogger to see protocol
// steps at debug level.
type Client struct {
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a structured logger to the client. All events carry
// the device address and a per-session correlation id.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// deviceBaseURL normalizes a device address into the base URL of its RPC
// endpoint. Devices only speak plain HTTP.
func deviceBaseURL(address string) string {
	address = strings.TrimRight(address, "/")
	if strings.Contains(address, "://") {
		return address
	}
	return "http://" + address
}
