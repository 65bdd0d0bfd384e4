package ledger

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

// order is the named form of the orders(uint256) tuple.
type order struct {
	MetaHash       [32]byte
	EncKeyWrapHash [32]byte
	Amount         *big.Int
	SrcBank        common.Address
	DstBank        common.Address
	Expiry         *big.Int
}

// normalizeCommitment accepts the orders(uint256) result either as a
// positional tuple or as a named struct and returns one canonical shape.
func normalizeCommitment(v any) (Commitment, error) {
	switch t := v.(type) {
	case order:
		return t.commitment(), nil
	case *order:
		if t == nil {
			return Commitment{}, fmt.Errorf("empty order")
		}
		return t.commitment(), nil
	case []any:
		if len(t) == 1 {
			return normalizeCommitment(t[0])
		}
		return positional(t)
	default:
		return Commitment{}, fmt.Errorf("unexpected order shape %T", v)
	}
}

func positional(values []any) (Commitment, error) {
	if len(values) != 6 {
		return Commitment{}, fmt.Errorf("order tuple has %d fields, want 6", len(values))
	}
	var (
		o  order
		ok bool
	)
	if o.MetaHash, ok = values[0].([32]byte); !ok {
		return Commitment{}, fieldError(0, values[0])
	}
	if o.EncKeyWrapHash, ok = values[1].([32]byte); !ok {
		return Commitment{}, fieldError(1, values[1])
	}
	if o.Amount, ok = values[2].(*big.Int); !ok {
		return Commitment{}, fieldError(2, values[2])
	}
	if o.SrcBank, ok = values[3].(common.Address); !ok {
		return Commitment{}, fieldError(3, values[3])
	}
	if o.DstBank, ok = values[4].(common.Address); !ok {
		return Commitment{}, fieldError(4, values[4])
	}
	if o.Expiry, ok = values[5].(*big.Int); !ok {
		return Commitment{}, fieldError(5, values[5])
	}
	return o.commitment(), nil
}

func fieldError(index int, value any) error {
	return fmt.Errorf("order field %d has unexpected type %T", index, value)
}

func (o order) commitment() Commitment {
	c := Commitment{
		BlobHash:      envelope.Digest(o.MetaHash),
		KeyCommitment: envelope.Digest(o.EncKeyWrapHash),
		Amount:        o.Amount,
		Source:        o.SrcBank,
		Destination:   o.DstBank,
	}
	if o.Expiry != nil && o.Expiry.IsInt64() {
		c.Expiry = time.Unix(o.Expiry.Int64(), 0).UTC()
	}
	return c
}
