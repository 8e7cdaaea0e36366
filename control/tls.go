package control

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// CredentialPaths holds the three PEM files needed for mutual TLS with the
// resolverd control port: the server certificate acting as trust anchor, and
// the client's own key pair.
type CredentialPaths struct {
	ServerCertFile string
	ClientKeyFile  string
	ClientCertFile string
}

// ClientTLSConfig builds the TLS config used for exactly one control
// connection. Verification policy is fixed: legacy protocol versions are
// disabled and the server's chain and name are always verified against the
// trusted server certificate. Failures are reported as *CredentialError and
// happen before any network I/O.
func ClientTLSConfig(paths CredentialPaths, serverName string) (*tls.Config, error) {
	serverCertPEM, err := os.ReadFile(paths.ServerCertFile)
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("reading server cert: %w", err)}
	}
	clientCertPEM, err := os.ReadFile(paths.ClientCertFile)
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("reading client cert: %w", err)}
	}
	clientKeyPEM, err := os.ReadFile(paths.ClientKeyFile)
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("reading client key: %w", err)}
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(serverCertPEM) {
		return nil, &CredentialError{
			Err: fmt.Errorf("no certificates found in %s", paths.ServerCertFile),
		}
	}

	cert, err := tls.X509KeyPair(clientCertPEM, clientKeyPEM)
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("parsing client key pair: %w", err)}
	}

	if serverName == "" {
		return nil, &CredentialError{Err: errors.New("server certificate name required")}
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
		ServerName:   serverName,
	}, nil
}
