// Package control implements the client side of the resolverd remote-control
// channel: a mutually-authenticated TLS connection carrying one opaque
// command and its streamed response.
package control

import (
	"context"
	"io"

	"github.com/resolverd/resolvctl/config"
	"go.uber.org/zap"
)

// Client performs one control exchange with a resolverd server. It holds no
// connection state; every Run resolves, connects, and tears down a fresh
// channel.
type Client struct {
	logger *zap.SugaredLogger
	cfg    *config.Config
}

type Option func(c *Client)

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l.Named("control_client").Sugar()
	}
}

func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		logger: zap.NewNop().Sugar(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run contacts the server and performs the command exchange, writing the raw
// response bytes to out as they arrive. serverSpec optionally overrides the
// configured control interface, as "addr" or "addr@port". The sequence is
// resolve, build trust context, connect and handshake, exchange, close; any
// failure aborts the invocation with one of the stage error types.
func (c *Client) Run(ctx context.Context, serverSpec string, command []byte, out io.Writer) error {
	rc := c.cfg.RemoteControl
	if !rc.Enable {
		c.logger.Warn("remote control is not enabled in the config file")
	}

	ep, err := ResolveEndpoint(serverSpec, rc.Interfaces, rc.Port)
	if err != nil {
		return err
	}
	c.logger.Debugw("resolved control endpoint", "endpoint", ep.String())

	tlsCfg, err := ClientTLSConfig(CredentialPaths{
		ServerCertFile: rc.ServerCertFile,
		ClientKeyFile:  rc.ControlKeyFile,
		ClientCertFile: rc.ControlCertFile,
	}, rc.ServerCertName)
	if err != nil {
		return err
	}

	conn, err := establish(ctx, ep, tlsCfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.logger.Debugw("control channel established", "endpoint", ep.String())

	return exchange(conn, command, out)
}
