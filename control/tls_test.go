package control

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCreds lays the client-side credential files out in a temp dir.
func writeCreds(t *testing.T, certs *ControlCerts) CredentialPaths {
	t.Helper()
	dir := t.TempDir()
	paths := CredentialPaths{
		ServerCertFile: filepath.Join(dir, "server.pem"),
		ClientKeyFile:  filepath.Join(dir, "control.key"),
		ClientCertFile: filepath.Join(dir, "control.pem"),
	}
	require.NoError(t, os.WriteFile(paths.ServerCertFile, certs.Server.CertPEM, 0644))
	require.NoError(t, os.WriteFile(paths.ClientKeyFile, certs.Client.KeyPEM, 0600))
	require.NoError(t, os.WriteFile(paths.ClientCertFile, certs.Client.CertPEM, 0644))
	return paths
}

func TestClientTLSConfig(t *testing.T) {
	certs, err := GenerateCerts("resolverd")
	require.NoError(t, err)

	cfg, err := ClientTLSConfig(writeCreds(t, certs), "resolverd")
	require.NoError(t, err)

	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.Equal(t, "resolverd", cfg.ServerName)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.NotNil(t, cfg.RootCAs)
	assert.Len(t, cfg.Certificates, 1)
}

func TestClientTLSConfigKeyMismatch(t *testing.T) {
	certsA, err := GenerateCerts("resolverd")
	require.NoError(t, err)
	certsB, err := GenerateCerts("resolverd")
	require.NoError(t, err)

	// Client cert from one set, private key from another.
	certsA.Client.KeyPEM = certsB.Client.KeyPEM
	_, err = ClientTLSConfig(writeCreds(t, certsA), "resolverd")

	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestClientTLSConfigUnreadableFiles(t *testing.T) {
	certs, err := GenerateCerts("resolverd")
	require.NoError(t, err)
	paths := writeCreds(t, certs)
	paths.ClientKeyFile = filepath.Join(t.TempDir(), "missing.key")

	_, err = ClientTLSConfig(paths, "resolverd")
	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestClientTLSConfigMalformedTrustAnchor(t *testing.T) {
	certs, err := GenerateCerts("resolverd")
	require.NoError(t, err)
	paths := writeCreds(t, certs)
	require.NoError(t, os.WriteFile(paths.ServerCertFile, []byte("not a pem file"), 0644))

	_, err = ClientTLSConfig(paths, "resolverd")
	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestGeneratedCertsMatchName(t *testing.T) {
	certs, err := GenerateCerts("resolverd")
	require.NoError(t, err)

	// The generated pair must parse as a usable keypair on both sides.
	_, err = tls.X509KeyPair(certs.Server.CertPEM, certs.Server.KeyPEM)
	require.NoError(t, err)
	_, err = tls.X509KeyPair(certs.Client.CertPEM, certs.Client.KeyPEM)
	require.NoError(t, err)
}
