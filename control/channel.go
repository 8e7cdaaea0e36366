package control

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/netip"
)

// establish opens the single outbound TCP connection to the control endpoint
// and runs the client side of the TLS handshake over it. No timeout is
// imposed here; callers that need a bounded wait put a deadline on ctx.
//
// The returned connection is established: the handshake completed, the
// server's chain verified against the trust anchor, and the server presented
// a certificate. On any failure the transport is closed before returning.
func establish(ctx context.Context, ep netip.AddrPort, cfg *tls.Config) (*tls.Conn, error) {
	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", ep.String())
	if err != nil {
		return nil, &ConnectError{Addr: ep.String(), Err: err}
	}

	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, &HandshakeError{Err: err}
	}
	if err := verifyPeer(conn.ConnectionState()); err != nil {
		conn.Close()
		return nil, &HandshakeError{Err: err}
	}
	return conn, nil
}

// verifyPeer checks the post-handshake conditions required before the channel
// may carry data. Chain verification already happened during the handshake;
// the peer-certificate presence check is independent of it and fails even
// when verification trivially passed.
func verifyPeer(cs tls.ConnectionState) error {
	if !cs.HandshakeComplete {
		return errors.New("handshake did not complete")
	}
	if len(cs.PeerCertificates) == 0 {
		return errors.New("server presented no certificate")
	}
	return nil
}
