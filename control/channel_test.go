package control

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/netip"
	"testing"

	"github.com/resolverd/resolvctl/internal/netutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPeer(t *testing.T) {
	peer := []*x509.Certificate{{}}

	err := verifyPeer(tls.ConnectionState{HandshakeComplete: true, PeerCertificates: peer})
	assert.NoError(t, err)

	// A completed handshake is not enough on its own: the peer must have
	// presented a certificate.
	err = verifyPeer(tls.ConnectionState{HandshakeComplete: true})
	assert.ErrorContains(t, err, "no certificate")

	err = verifyPeer(tls.ConnectionState{PeerCertificates: peer})
	assert.ErrorContains(t, err, "did not complete")
}

func TestEstablishConnectionRefused(t *testing.T) {
	port, err := netutil.GetEphemeralTCPPort()
	require.NoError(t, err)
	ep := netip.MustParseAddrPort(fmt.Sprintf("127.0.0.1:%d", port))

	certs, err := GenerateCerts("resolverd")
	require.NoError(t, err)
	tlsCfg, err := ClientTLSConfig(writeCreds(t, certs), "resolverd")
	require.NoError(t, err)

	_, err = establish(context.Background(), ep, tlsCfg)
	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
}

func TestEstablishUntrustedServer(t *testing.T) {
	serverCerts, err := GenerateCerts("resolverd")
	require.NoError(t, err)
	clientCerts, err := GenerateCerts("resolverd")
	require.NoError(t, err)

	ep := startControlServer(t, serverCerts, func(conn net.Conn) {
		buf := make([]byte, 64)
		_, _ = conn.Read(buf)
	})

	// The client trusts a different server certificate, so chain
	// verification must reject the handshake.
	tlsCfg, err := ClientTLSConfig(writeCreds(t, clientCerts), "resolverd")
	require.NoError(t, err)

	_, err = establish(context.Background(), ep, tlsCfg)
	var hsErr *HandshakeError
	require.ErrorAs(t, err, &hsErr)
}

func TestEstablishSuccess(t *testing.T) {
	certs, err := GenerateCerts("resolverd")
	require.NoError(t, err)

	ep := startControlServer(t, certs, func(conn net.Conn) {
		buf := make([]byte, 64)
		_, _ = conn.Read(buf)
	})

	tlsCfg, err := ClientTLSConfig(writeCreds(t, certs), "resolverd")
	require.NoError(t, err)

	conn, err := establish(context.Background(), ep, tlsCfg)
	require.NoError(t, err)
	defer conn.Close()

	state := conn.ConnectionState()
	assert.True(t, state.HandshakeComplete)
	assert.NotEmpty(t, state.PeerCertificates)
}
