package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSSEDigest(t *testing.T) {
	// 32 zero bytes
	out, err := run(t, "sse-digest", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")
	require.NoError(t, err)
	assert.Equal(t, "cLyPS3KoaSFGi/joRB3OUQ==\n", out)

	_, err = run(t, "sse-digest", "%%%")
	assert.Error(t, err)
}

func TestRSA_WritesLoadableKeys(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "rsa", "--out", dir, "--name", "j_bank")
	require.NoError(t, err)

	privPEM, err := os.ReadFile(filepath.Join(dir, "j_bank.key.pem"))
	require.NoError(t, err)
	priv, err := envelope.ParsePrivateKeyPEM(privPEM)
	require.NoError(t, err)

	pub, err := envelope.LoadPublicKeyFromPEMFile(filepath.Join(dir, "j_bank.pub.pem"))
	require.NoError(t, err)
	assert.True(t, priv.PublicKey.Equal(pub))
}

func TestRSA_RejectsWeakKeys(t *testing.T) {
	_, err := run(t, "rsa", "--bits", "1024")
	assert.ErrorContains(t, err, "2048")
}

func TestSigner(t *testing.T) {
	out, err := run(t, "signer")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "address: 0x"))
}
