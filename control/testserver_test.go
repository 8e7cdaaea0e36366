package control

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func serverTLSConfig(t *testing.T, certs *ControlCerts) *tls.Config {
	t.Helper()
	pool := x509.NewCertPool()
	require.True(t, pool.AppendCertsFromPEM(certs.Server.CertPEM))
	cert, err := tls.X509KeyPair(certs.Server.CertPEM, certs.Server.KeyPEM)
	require.NoError(t, err)
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
	}
}

// startControlServer runs a one-connection control server on a loopback
// port and hands the accepted connection to handler.
func startControlServer(t *testing.T, certs *ControlCerts, handler func(conn net.Conn)) netip.AddrPort {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", serverTLSConfig(t, certs))
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}()

	return ln.Addr().(*net.TCPAddr).AddrPort()
}
