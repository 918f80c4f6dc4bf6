package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/ContentAI/internal/client/api"
)

func TestIssueServer_SANs(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	require.NoError(t, err)
	assert.True(t, ca.Cert.IsCA)

	certPEM, keyPEM, err := ca.IssueServer([]string{"localhost", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)

	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cert.Subject.CommonName)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", cert.IPAddresses[0].String())
	assert.NoError(t, cert.CheckSignatureFrom(ca.Cert))

	_, err = tls.X509KeyPair(certPEM, keyPEM)
	assert.NoError(t, err)
}

func TestIssueServer_NoHosts(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	require.NoError(t, err)
	_, _, err = ca.IssueServer(nil, time.Hour)
	assert.Error(t, err)
}

func TestWriteBundle(t *testing.T) {
	b, err := NewBundle([]string{"localhost"}, time.Hour)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "certs")
	require.NoError(t, WriteBundle(dir, b))

	for _, name := range []string{CAFile, ServerCertFile, ServerKeyFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	info, err := os.Stat(filepath.Join(dir, ServerKeyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = tls.LoadX509KeyPair(filepath.Join(dir, ServerCertFile), filepath.Join(dir, ServerKeyFile))
	assert.NoError(t, err)
}

// The client trusts a backend serving the generated pair once it is given
// the generated CA, and rejects it otherwise.
func TestBundle_ClientTrustsGeneratedCA(t *testing.T) {
	b, err := NewBundle([]string{"127.0.0.1"}, time.Hour)
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, WriteBundle(dir, b))

	pair, err := tls.X509KeyPair(b.ServerCert, b.ServerKey)
	require.NoError(t, err)
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{pair}, MinVersion: tls.VersionTLS12}
	srv.StartTLS()
	defer srv.Close()

	trusted, err := api.NewHTTPClient(filepath.Join(dir, CAFile), 5*time.Second)
	require.NoError(t, err)
	resp, err := trusted.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	untrusted, err := api.NewHTTPClient("", 5*time.Second)
	require.NoError(t, err)
	_, err = untrusted.Get(srv.URL)
	assert.Error(t, err)
}
