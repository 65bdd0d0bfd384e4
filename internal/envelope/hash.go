package envelope

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
)

// Digest is a 32-byte commitment as anchored on the ledger (bytes32).
type Digest [32]byte

func (d Digest) Hex() string { return hexutil.Encode(d[:]) }

func (d Digest) String() string { return d.Hex() }

// ParseDigest accepts a 0x-prefixed or bare 64 character hex string.
func ParseDigest(s string) (Digest, error) {
	raw := s
	if len(raw) >= 2 && (raw[:2] == "0x" || raw[:2] == "0X") {
		raw = raw[2:]
	}
	if len(raw) != 64 {
		return Digest{}, apperr.Validation("commitment hash must be 32 bytes of hex")
	}
	var d Digest
	if _, err := hex.Decode(d[:], []byte(raw)); err != nil {
		return Digest{}, apperr.Validation("commitment hash must be 32 bytes of hex")
	}
	return d, nil
}

// Hasher derives commitments. Every implementation must be a pure function
// of its input; production code must use the function the ledger verifies
// against.
type Hasher interface {
	Sum(data []byte) Digest
}

type HasherFunc func(data []byte) Digest

func (f HasherFunc) Sum(data []byte) Digest { return f(data) }

// Keccak256 is the EVM's hash and the one used for every anchored commitment.
var Keccak256 Hasher = HasherFunc(func(data []byte) Digest {
	return Digest(crypto.Keccak256Hash(data))
})

// Commitments are the two on-chain visible identifiers of an envelope.
type Commitments struct {
	// BlobHash = H(blob). Primary lookup key of the envelope record.
	BlobHash Digest
	// KeyCommitment = H(wrapped key). Binds the specific RSA wrapping, not the
	// raw data key, so it can be recomputed from stored data during an audit.
	KeyCommitment Digest
}

func Commit(h Hasher, blob, wrappedKey []byte) Commitments {
	return Commitments{
		BlobHash:      h.Sum(blob),
		KeyCommitment: h.Sum(wrappedKey),
	}
}
