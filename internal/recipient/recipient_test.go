package recipient

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	vaultApi "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

const jBankAddress = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

func generateKey(t *testing.T) (*rsa.PrivateKey, string, string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privPEM, err := envelope.MarshalPrivateKeyPEM(priv)
	require.NoError(t, err)
	pubPEM, err := envelope.MarshalPublicKeyPEM(&priv.PublicKey)
	require.NoError(t, err)
	return priv, string(privPEM), string(pubPEM)
}

func TestDirectory_Resolve(t *testing.T) {
	priv, _, pubPEM := generateKey(t)

	dir, err := NewDirectory([]Corridor{{Code: "j_bank", Address: jBankAddress, PublicKeyPEM: pubPEM}})
	require.NoError(t, err)

	r, err := dir.Resolve("J_BANK")
	require.NoError(t, err)
	assert.Equal(t, "J_BANK", r.CorridorCode)
	assert.Equal(t, jBankAddress, r.Identity.Hex())
	assert.True(t, priv.PublicKey.Equal(r.PublicKey))
	assert.Equal(t, []string{"J_BANK"}, dir.Codes())

	_, err = dir.Resolve("X_BANK")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestNewDirectory_RejectsBadCorridors(t *testing.T) {
	_, _, pubPEM := generateKey(t)

	tests := []struct {
		name     string
		corridor Corridor
	}{
		{"empty code", Corridor{Code: " ", Address: jBankAddress, PublicKeyPEM: pubPEM}},
		{"bad address", Corridor{Code: "J_BANK", Address: "not-an-address", PublicKeyPEM: pubPEM}},
		{"zero address", Corridor{Code: "J_BANK", Address: "0x0000000000000000000000000000000000000000", PublicKeyPEM: pubPEM}},
		{"bad key", Corridor{Code: "J_BANK", Address: jBankAddress, PublicKeyPEM: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDirectory([]Corridor{tt.corridor})
			require.Error(t, err)
		})
	}
}

type fakeKV struct {
	secrets map[string]map[string]any
	err     error
	paths   []string
}

func (f *fakeKV) Get(_ context.Context, secretPath string) (*vaultApi.KVSecret, error) {
	f.paths = append(f.paths, secretPath)
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.secrets[secretPath]
	if !ok {
		return nil, vaultApi.ErrSecretNotFound
	}
	return &vaultApi.KVSecret{Data: data}, nil
}

func TestVaultKeyring_PrivateKey(t *testing.T) {
	priv, privPEM, _ := generateKey(t)
	kv := &fakeKV{secrets: map[string]map[string]any{
		"railx/recipients/0x8ba1f109551bd432803012645ac136ddd64dba72": {"private_key_pem": privPEM},
	}}
	keyring := newVaultKeyring(kv, "railx/recipients")

	key, err := keyring.PrivateKey(context.Background(), jBankAddress)
	require.NoError(t, err)
	assert.True(t, priv.Equal(key))
}

func TestVaultKeyring_Failures(t *testing.T) {
	t.Run("vault unavailable", func(t *testing.T) {
		keyring := newVaultKeyring(&fakeKV{err: errors.New("connection refused")}, "railx/recipients")
		_, err := keyring.PrivateKey(context.Background(), jBankAddress)
		assert.True(t, apperr.IsKind(err, apperr.KindStorage))
	})

	t.Run("not provisioned", func(t *testing.T) {
		keyring := newVaultKeyring(&fakeKV{}, "railx/recipients")
		_, err := keyring.PrivateKey(context.Background(), jBankAddress)
		assert.True(t, apperr.IsKind(err, apperr.KindStorage))
	})

	t.Run("missing field", func(t *testing.T) {
		kv := &fakeKV{secrets: map[string]map[string]any{
			"railx/recipients/0x8ba1f109551bd432803012645ac136ddd64dba72": {"other": "x"},
		}}
		_, err := newVaultKeyring(kv, "railx/recipients").PrivateKey(context.Background(), jBankAddress)
		assert.True(t, apperr.IsKind(err, apperr.KindStorage))
	})

	t.Run("malformed pem", func(t *testing.T) {
		kv := &fakeKV{secrets: map[string]map[string]any{
			"railx/recipients/0x8ba1f109551bd432803012645ac136ddd64dba72": {"private_key_pem": "garbage"},
		}}
		_, err := newVaultKeyring(kv, "railx/recipients").PrivateKey(context.Background(), jBankAddress)
		assert.True(t, apperr.IsKind(err, apperr.KindKeyImport))
	})
}
