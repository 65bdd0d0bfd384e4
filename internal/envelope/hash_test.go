package envelope_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

func TestKeccak256_KnownVector(t *testing.T) {
	// keccak256("") as used by the EVM
	d := envelope.Keccak256.Sum(nil)
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", d.Hex())
}

func TestCommit_PureAndFresh(t *testing.T) {
	plaintext := []byte(`{"amountKRW":10000}`)

	blob, _, err := envelope.Encrypt(plaintext)
	require.NoError(t, err)
	wrapped := []byte("wrapped-key")

	c1 := envelope.Commit(envelope.Keccak256, blob, wrapped)
	c2 := envelope.Commit(envelope.Keccak256, blob, wrapped)
	assert.Equal(t, c1, c2, "commitments must be pure functions of their input")
	assert.NotEqual(t, c1.BlobHash, c1.KeyCommitment)

	blob2, _, err := envelope.Encrypt(plaintext)
	require.NoError(t, err)
	c3 := envelope.Commit(envelope.Keccak256, blob2, wrapped)
	assert.NotEqual(t, c1.BlobHash, c3.BlobHash, "fresh key and nonce must change the blob hash")
}

func TestParseDigest(t *testing.T) {
	valid := envelope.Keccak256.Sum([]byte("x"))

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"prefixed", valid.Hex(), true},
		{"bare", strings.TrimPrefix(valid.Hex(), "0x"), true},
		{"upper", "0x" + strings.ToUpper(strings.TrimPrefix(valid.Hex(), "0x")), true},
		{"not hex", "not-hex", false},
		{"empty", "", false},
		{"short", "0xabcd", false},
		{"bad chars", "0x" + strings.Repeat("zz", 32), false},
		{"too long", valid.Hex() + "00", false},
		{"upper prefix", "0X" + strings.TrimPrefix(valid.Hex(), "0x"), true},
		{"doubled prefix", "0x0X" + strings.TrimPrefix(valid.Hex(), "0x"), false},
		{"repeated prefix", "0x0x" + strings.TrimPrefix(valid.Hex(), "0x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := envelope.ParseDigest(tt.input)
			if !tt.ok {
				require.True(t, apperr.IsKind(err, apperr.KindValidation))
				return
			}
			require.NoError(t, err)
			require.Equal(t, valid, d)
		})
	}
}
