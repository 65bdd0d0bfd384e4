// Package ledger anchors envelope commitments on the remittance order
// contract and discovers the commitments addressed to a bank.
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

// Submission is what the sending bank anchors after sealing an envelope.
type Submission struct {
	BlobHash      envelope.Digest
	KeyCommitment envelope.Digest
	Amount        *big.Int
	Destination   common.Address
	Expiry        time.Time
}

// Commitment is the on-chain record of one envelope.
type Commitment struct {
	BlobHash      envelope.Digest
	KeyCommitment envelope.Digest
	Amount        *big.Int
	Source        common.Address
	Destination   common.Address
	Expiry        time.Time
}

// Submitted is one commitment announcement addressed to a destination.
type Submitted struct {
	ID          *big.Int
	Source      common.Address
	Destination common.Address
	TxHash      common.Hash
	BlockNumber uint64
}

// InboxEntry pairs an announcement with the commitment it points at.
type InboxEntry struct {
	Submitted
	Commitment Commitment
}

// Backend is the chain access the client needs; *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
}

type Client struct {
	address  common.Address
	abi      abi.ABI
	backend  Backend
	contract *bind.BoundContract
}

// Dial connects to an RPC endpoint and binds the contract at address.
func Dial(rpcURL, address string) (*Client, *ethclient.Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial ledger rpc: %w", err)
	}
	client, err := NewClient(address, eth)
	if err != nil {
		eth.Close()
		return nil, nil, err
	}
	return client, eth, nil
}

func NewClient(address string, backend Backend) (*Client, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}
	contractAddress := common.HexToAddress(address)
	if contractAddress == (common.Address{}) {
		return nil, fmt.Errorf("contract address cannot be the zero address")
	}
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	return &Client{
		address:  contractAddress,
		abi:      parsed,
		backend:  backend,
		contract: bind.NewBoundContract(contractAddress, parsed, backend, backend, backend),
	}, nil
}

// SubmitCommitment sends requestOrder and returns the transaction hash. It
// does not wait for the transaction to be mined.
func (c *Client) SubmitCommitment(ctx context.Context, signer *bind.TransactOpts, s Submission) (common.Hash, error) {
	if s.Amount == nil || s.Amount.Sign() <= 0 {
		return common.Hash{}, fmt.Errorf("amount must be positive")
	}
	if s.Destination == (common.Address{}) {
		return common.Hash{}, fmt.Errorf("destination cannot be the zero address")
	}

	opts := *signer
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, methodRequestOrder,
		[32]byte(s.BlobHash),
		[32]byte(s.KeyCommitment),
		s.Amount,
		s.Destination,
		big.NewInt(s.Expiry.Unix()),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to submit commitment: %w", err)
	}
	log.Info().
		Str("tx_hash", tx.Hash().Hex()).
		Str("blob_hash", s.BlobHash.Hex()).
		Str("destination", s.Destination.Hex()).
		Msg("commitment submitted")
	return tx.Hash(), nil
}

// Commitments lists the announcements addressed to destination between
// fromBlock and toBlock. A nil toBlock means the latest block.
func (c *Client) Commitments(ctx context.Context, destination common.Address, fromBlock uint64, toBlock *uint64) ([]Submitted, error) {
	event := c.abi.Events[eventSubmitted]
	topics, err := abi.MakeTopics([]any{event.ID}, nil, nil, []any{destination})
	if err != nil {
		return nil, fmt.Errorf("build event filter: %w", err)
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{c.address},
		Topics:    topics,
	}
	if toBlock != nil {
		query.ToBlock = new(big.Int).SetUint64(*toBlock)
	}

	logs, err := c.backend.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter %s events: %w", eventSubmitted, err)
	}

	out := make([]Submitted, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}
		var decoded struct {
			TokenId *big.Int
			SrcBank common.Address
			DstBank common.Address
		}
		if err := c.contract.UnpackLog(&decoded, eventSubmitted, l); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", eventSubmitted, err)
		}
		out = append(out, Submitted{
			ID:          decoded.TokenId,
			Source:      decoded.SrcBank,
			Destination: decoded.DstBank,
			TxHash:      l.TxHash,
			BlockNumber: l.BlockNumber,
		})
	}
	return out, nil
}

// ReadCommitment reads orders(id) and normalizes the result.
func (c *Client) ReadCommitment(ctx context.Context, id *big.Int) (Commitment, error) {
	var results []any
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &results, methodOrders, id); err != nil {
		return Commitment{}, fmt.Errorf("failed to read commitment %s: %w", id, err)
	}
	commitment, err := normalizeCommitment(results)
	if err != nil {
		return Commitment{}, fmt.Errorf("commitment %s: %w", id, err)
	}
	return commitment, nil
}

// Inbox lists every commitment addressed to destination since fromBlock,
// newest first.
func (c *Client) Inbox(ctx context.Context, destination common.Address, fromBlock uint64) ([]InboxEntry, error) {
	announced, err := c.Commitments(ctx, destination, fromBlock, nil)
	if err != nil {
		return nil, err
	}

	entries := make([]InboxEntry, 0, len(announced))
	for _, a := range announced {
		commitment, err := c.ReadCommitment(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, InboxEntry{Submitted: a, Commitment: commitment})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID.Cmp(entries[j].ID) > 0
	})
	return entries, nil
}
