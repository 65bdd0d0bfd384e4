// Package recipient resolves who an envelope is sealed for and where the
// matching private key lives.
package recipient

import (
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

// Recipient is a receiving bank reachable through a corridor.
type Recipient struct {
	CorridorCode string
	// Identity is the bank's ledger address; commitment events are routed to it.
	Identity  common.Address
	PublicKey *rsa.PublicKey
}

// Corridor is the unparsed configuration of one corridor.
type Corridor struct {
	Code         string
	Address      string
	PublicKeyPEM string
}

type Directory struct {
	recipients map[string]Recipient
}

// NewDirectory validates every corridor up front so a bad key or address is
// a startup error rather than a failed request.
func NewDirectory(corridors []Corridor) (*Directory, error) {
	d := &Directory{recipients: make(map[string]Recipient, len(corridors))}
	for _, c := range corridors {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if code == "" {
			return nil, fmt.Errorf("corridor code cannot be empty")
		}
		if !common.IsHexAddress(c.Address) {
			return nil, fmt.Errorf("corridor %s: invalid destination address %q", code, c.Address)
		}
		address := common.HexToAddress(c.Address)
		if address == (common.Address{}) {
			return nil, fmt.Errorf("corridor %s: destination address cannot be the zero address", code)
		}
		key, err := envelope.ParsePublicKeyPEM([]byte(c.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("corridor %s: %w", code, err)
		}
		d.recipients[code] = Recipient{CorridorCode: code, Identity: address, PublicKey: key}
	}
	return d, nil
}

// Resolve returns the recipient for a corridor bank code. Unknown corridors
// are rejected instead of being routed to the zero address.
func (d *Directory) Resolve(corridorCode string) (Recipient, error) {
	r, ok := d.recipients[strings.ToUpper(strings.TrimSpace(corridorCode))]
	if !ok {
		return Recipient{}, apperr.Validation(fmt.Sprintf("unknown corridorBankCode %q", corridorCode))
	}
	return r, nil
}

func (d *Directory) Codes() []string {
	codes := make([]string, 0, len(d.recipients))
	for code := range d.recipients {
		codes = append(codes, code)
	}
	return codes
}
