package control

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"
)

// certValidity matches the long-lived control certificates the daemon's
// setup tooling has always produced.
const certValidity = 20 // years

// Keypair is one PEM-encoded certificate and its private key.
type Keypair struct {
	CertPEM []byte
	KeyPEM  []byte
}

// ControlCerts is the credential material for one server/client pair. The
// server certificate is self-signed and doubles as the trust anchor on both
// sides; the client certificate is signed by the server key.
type ControlCerts struct {
	Server Keypair
	Client Keypair
}

// GenerateCerts mints a fresh set of control credentials. serverName becomes
// the server certificate's subject and DNS name and must match the
// server-cert-name the client is configured to verify.
func GenerateCerts(serverName string) (*ControlCerts, error) {
	serialLimit := new(big.Int).Lsh(big.NewInt(1), 128)

	serverSerial, err := rand.Int(rand.Reader, serialLimit)
	if err != nil {
		return nil, fmt.Errorf("getting random serial number: %w", err)
	}
	serverTmpl := &x509.Certificate{
		SerialNumber:          serverSerial,
		Subject:               pkix.Name{CommonName: serverName},
		DNSNames:              []string{serverName},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().AddDate(certValidity, 0, 0),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	serverKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generating server private key: %w", err)
	}
	serverDER, err := x509.CreateCertificate(rand.Reader, serverTmpl, serverTmpl, &serverKey.PublicKey, serverKey)
	if err != nil {
		return nil, fmt.Errorf("creating server cert: %w", err)
	}
	serverCert, err := x509.ParseCertificate(serverDER)
	if err != nil {
		return nil, fmt.Errorf("parsing server cert: %w", err)
	}

	clientSerial, err := rand.Int(rand.Reader, serialLimit)
	if err != nil {
		return nil, fmt.Errorf("getting random serial number: %w", err)
	}
	clientTmpl := &x509.Certificate{
		SerialNumber: clientSerial,
		Subject:      pkix.Name{CommonName: serverName + "-control"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().AddDate(certValidity, 0, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	clientKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating client private key: %w", err)
	}
	clientDER, err := x509.CreateCertificate(rand.Reader, clientTmpl, serverCert, &clientKey.PublicKey, serverKey)
	if err != nil {
		return nil, fmt.Errorf("creating client cert: %w", err)
	}

	clientKeyDER, err := x509.MarshalPKCS8PrivateKey(clientKey)
	if err != nil {
		return nil, fmt.Errorf("marshaling client key: %w", err)
	}

	serverCertPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: serverDER})
	clientCertPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: clientDER})
	serverKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(serverKey),
	})
	clientKeyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: clientKeyDER})
	if serverCertPEM == nil || clientCertPEM == nil || serverKeyPEM == nil || clientKeyPEM == nil {
		return nil, errors.New("unable to encode credentials to PEM")
	}

	return &ControlCerts{
		Server: Keypair{CertPEM: serverCertPEM, KeyPEM: serverKeyPEM},
		Client: Keypair{CertPEM: clientCertPEM, KeyPEM: clientKeyPEM},
	}, nil
}

// WriteFiles writes the generated credentials to the given paths, keys with
// owner-only permissions. Existing files are overwritten.
func (c *ControlCerts) WriteFiles(serverCertFile, serverKeyFile, clientCertFile, clientKeyFile string) error {
	files := []struct {
		path string
		data []byte
		mode os.FileMode
	}{
		{serverCertFile, c.Server.CertPEM, 0644},
		{serverKeyFile, c.Server.KeyPEM, 0600},
		{clientCertFile, c.Client.CertPEM, 0644},
		{clientKeyFile, c.Client.KeyPEM, 0600},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, f.mode); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
	}
	return nil
}
