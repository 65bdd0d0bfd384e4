package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/mirzahilmi/railx-envelope/internal/common/logger"
	"github.com/mirzahilmi/railx-envelope/internal/envelope"
	"github.com/mirzahilmi/railx-envelope/internal/ledger"
)

// submissions stay claimable for an hour unless told otherwise
const defaultExpiry = time.Hour

type globalFlags struct {
	rpcURL   string
	contract string
}

func main() {
	logger.Setup(os.Getenv("DEVELOPMENT") == "true")
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "ledger",
		Short:        "Anchor and discover envelope commitments on the remittance ledger",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.rpcURL, "rpc", os.Getenv("LEDGER_RPC_URL"), "JSON-RPC endpoint")
	root.PersistentFlags().StringVar(&flags.contract, "contract", os.Getenv("LEDGER_CONTRACT_ADDRESS"), "order contract address")

	root.AddCommand(newInboxCommand(flags), newSubmitCommand(flags))
	return root
}

func newInboxCommand(flags *globalFlags) *cobra.Command {
	var (
		destination string
		fromBlock   uint64
	)
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List commitments addressed to a bank, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !common.IsHexAddress(destination) {
				return fmt.Errorf("--destination must be a ledger address")
			}
			client, eth, err := ledger.Dial(flags.rpcURL, flags.contract)
			if err != nil {
				return err
			}
			defer eth.Close()

			entries, err := client.Inbox(cmd.Context(), common.HexToAddress(destination), fromBlock)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range entries {
				if err := encoder.Encode(map[string]any{
					"id":            e.ID.String(),
					"source":        e.Source.Hex(),
					"txHash":        e.TxHash.Hex(),
					"blockNumber":   e.BlockNumber,
					"blobHash":      e.Commitment.BlobHash.Hex(),
					"keyCommitment": e.Commitment.KeyCommitment.Hex(),
					"amount":        e.Commitment.Amount.String(),
					"expiry":        e.Commitment.Expiry,
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&destination, "destination", os.Getenv("RECIPIENT_IDENTITY"), "receiving bank address")
	cmd.Flags().Uint64Var(&fromBlock, "from-block", 0, "first block to scan")
	return cmd
}

type submitFlags struct {
	blobHash      string
	keyCommitment string
	amount        string
	destination   string
	expiresIn     time.Duration
	signerKey     string
}

func (f submitFlags) submission(now time.Time) (ledger.Submission, error) {
	blobHash, err := envelope.ParseDigest(f.blobHash)
	if err != nil {
		return ledger.Submission{}, fmt.Errorf("--blob-hash: %w", err)
	}
	keyCommitment, err := envelope.ParseDigest(f.keyCommitment)
	if err != nil {
		return ledger.Submission{}, fmt.Errorf("--key-commitment: %w", err)
	}
	amount, ok := new(big.Int).SetString(f.amount, 10)
	if !ok || amount.Sign() <= 0 {
		return ledger.Submission{}, fmt.Errorf("--amount must be a positive integer")
	}
	if !common.IsHexAddress(f.destination) {
		return ledger.Submission{}, fmt.Errorf("--destination must be a ledger address")
	}
	if f.expiresIn <= 0 {
		return ledger.Submission{}, fmt.Errorf("--expires-in must be positive")
	}
	return ledger.Submission{
		BlobHash:      blobHash,
		KeyCommitment: keyCommitment,
		Amount:        amount,
		Destination:   common.HexToAddress(f.destination),
		Expiry:        now.Add(f.expiresIn),
	}, nil
}

func newSubmitCommand(flags *globalFlags) *cobra.Command {
	f := submitFlags{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Anchor a sealed envelope's commitments with requestOrder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			submission, err := f.submission(time.Now())
			if err != nil {
				return err
			}
			key, err := crypto.HexToECDSA(strings.TrimPrefix(f.signerKey, "0x"))
			if err != nil {
				return fmt.Errorf("invalid signer key: %w", err)
			}

			client, eth, err := ledger.Dial(flags.rpcURL, flags.contract)
			if err != nil {
				return err
			}
			defer eth.Close()

			chainID, err := eth.ChainID(cmd.Context())
			if err != nil {
				return fmt.Errorf("read chain id: %w", err)
			}
			signer, err := bind.NewKeyedTransactorWithChainID(key, chainID)
			if err != nil {
				return err
			}

			txHash, err := client.SubmitCommitment(cmd.Context(), signer, submission)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), txHash.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.blobHash, "blob-hash", "", "blobHash returned by the seal call")
	cmd.Flags().StringVar(&f.keyCommitment, "key-commitment", "", "keyCommitment returned by the seal call")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount in KRW")
	cmd.Flags().StringVar(&f.destination, "destination", "", "destinationIdentity returned by the seal call")
	cmd.Flags().DurationVar(&f.expiresIn, "expires-in", defaultExpiry, "time until the order expires")
	cmd.Flags().StringVar(&f.signerKey, "signer-key", os.Getenv("LEDGER_SIGNER_KEY"), "hex secp256k1 private key of the sending bank")
	for _, name := range []string{"blob-hash", "key-commitment", "amount", "destination"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}
