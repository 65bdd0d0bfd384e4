package envelope_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

func TestEncrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		dataSize int
	}{
		{"empty", 0},
		{"small (10 bytes)", 10},
		{"medium (1 KB)", 1024},
		{"large (1 MB)", 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, tt.dataSize)
			_, err := rand.Read(data)
			require.NoError(t, err)

			blob, key, err := envelope.Encrypt(data)
			require.NoError(t, err)
			require.Len(t, key, 32)
			// nonce + ciphertext + tag
			require.Len(t, blob, 12+tt.dataSize+16)

			plaintext, err := envelope.Decrypt(blob, key)
			require.NoError(t, err)
			require.True(t, bytes.Equal(data, plaintext))
		})
	}
}

func TestEncrypt_FreshKeyAndNonce(t *testing.T) {
	data := []byte(`{"amountKRW":10000}`)

	blob1, key1, err := envelope.Encrypt(data)
	require.NoError(t, err)
	blob2, key2, err := envelope.Encrypt(data)
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2)
	assert.NotEqual(t, blob1[:12], blob2[:12], "nonces must differ")
	assert.NotEqual(t, blob1, blob2)
}

func TestDecrypt_DetectsTampering(t *testing.T) {
	blob, key, err := envelope.Encrypt([]byte("remittance payload"))
	require.NoError(t, err)

	for i := range blob {
		tampered := bytes.Clone(blob)
		tampered[i] ^= 0x01

		plaintext, err := envelope.Decrypt(tampered, key)
		require.Error(t, err, "byte %d", i)
		require.Nil(t, plaintext)
		require.True(t, apperr.IsKind(err, apperr.KindAuthentication), "byte %d", i)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	blob, _, err := envelope.Encrypt([]byte("remittance payload"))
	require.NoError(t, err)

	other := make([]byte, 32)
	_, err = rand.Read(other)
	require.NoError(t, err)

	plaintext, err := envelope.Decrypt(blob, other)
	require.Nil(t, plaintext)
	require.True(t, apperr.IsKind(err, apperr.KindAuthentication))
}

func TestDecrypt_KeyLength(t *testing.T) {
	blob, _, err := envelope.Encrypt([]byte("payload"))
	require.NoError(t, err)

	for _, size := range []int{0, 1, 15, 31, 33, 64} {
		_, err := envelope.Decrypt(blob, make([]byte, size))
		require.True(t, apperr.IsKind(err, apperr.KindKeyFormat), "size %d", size)
	}

	// AES-128 and AES-192 keys are accepted, they just fail authentication here.
	for _, size := range []int{16, 24} {
		_, err := envelope.Decrypt(blob, make([]byte, size))
		require.True(t, apperr.IsKind(err, apperr.KindAuthentication), "size %d", size)
	}
}

func TestDecrypt_ShortBlob(t *testing.T) {
	_, err := envelope.Decrypt(make([]byte, 20), make([]byte, 32))
	require.True(t, apperr.IsKind(err, apperr.KindAuthentication))
}
