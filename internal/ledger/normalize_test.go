package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

func TestNormalizeCommitment_Shapes(t *testing.T) {
	o := sampleOrder(7, kBank, jBank)
	want := Commitment{
		BlobHash:      envelope.Digest{7},
		KeyCommitment: envelope.Digest{7, 0xff},
		Amount:        big.NewInt(10000),
		Source:        kBank,
		Destination:   jBank,
	}

	shapes := map[string]any{
		"positional":         []any{o.MetaHash, o.EncKeyWrapHash, o.Amount, o.SrcBank, o.DstBank, o.Expiry},
		"struct":             o,
		"struct pointer":     &o,
		"wrapped struct":     []any{o},
		"wrapped positional": []any{[]any{o.MetaHash, o.EncKeyWrapHash, o.Amount, o.SrcBank, o.DstBank, o.Expiry}},
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			got, err := normalizeCommitment(shape)
			require.NoError(t, err)
			assert.Equal(t, want.BlobHash, got.BlobHash)
			assert.Equal(t, want.KeyCommitment, got.KeyCommitment)
			assert.Equal(t, 0, want.Amount.Cmp(got.Amount))
			assert.Equal(t, want.Source, got.Source)
			assert.Equal(t, want.Destination, got.Destination)
			assert.Equal(t, int64(1_740_000_000), got.Expiry.Unix())
		})
	}
}

func TestNormalizeCommitment_Rejects(t *testing.T) {
	o := sampleOrder(7, kBank, jBank)

	shapes := map[string]any{
		"short tuple":     []any{o.MetaHash, o.EncKeyWrapHash},
		"wrong hash type": []any{"0x07", o.EncKeyWrapHash, o.Amount, o.SrcBank, o.DstBank, o.Expiry},
		"wrong address":   []any{o.MetaHash, o.EncKeyWrapHash, o.Amount, "kbank", o.DstBank, o.Expiry},
		"nil pointer":     (*order)(nil),
		"scalar":          common.Address{},
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			_, err := normalizeCommitment(shape)
			assert.Error(t, err)
		})
	}
}
