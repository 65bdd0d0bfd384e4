package main

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "keygen",
		Short:        "Key material helpers for RailX envelope deployments",
		SilenceUsage: true,
	}
	root.AddCommand(newRSACommand(), newSSEDigestCommand(), newSSEKeyCommand(), newSignerCommand())
	return root
}

func newRSACommand() *cobra.Command {
	var (
		bits int
		out  string
		name string
	)
	cmd := &cobra.Command{
		Use:   "rsa",
		Short: "Generate a recipient RSA key pair (PKCS#8 private, PKIX public)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bits < constant.MIN_RSA_KEY_BITS {
				return fmt.Errorf("key size must be at least %d bits", constant.MIN_RSA_KEY_BITS)
			}
			key, err := rsa.GenerateKey(rand.Reader, bits)
			if err != nil {
				return err
			}
			privPEM, err := envelope.MarshalPrivateKeyPEM(key)
			if err != nil {
				return err
			}
			pubPEM, err := envelope.MarshalPublicKeyPEM(&key.PublicKey)
			if err != nil {
				return err
			}

			if out == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(pubPEM))
				fmt.Fprint(cmd.OutOrStdout(), string(privPEM))
				return nil
			}
			if err := os.MkdirAll(out, 0o700); err != nil {
				return err
			}
			privPath := filepath.Join(out, name+".key.pem")
			pubPath := filepath.Join(out, name+".pub.pem")
			if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
				return err
			}
			if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privPath, pubPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&bits, "bits", 2048, "RSA modulus size")
	cmd.Flags().StringVar(&out, "out", "", "directory to write the key pair to, stdout when empty")
	cmd.Flags().StringVar(&name, "name", "recipient", "file name prefix")
	return cmd
}

// sse-digest prints the base64 MD5 digest S3 expects alongside an SSE-C key.
func newSSEDigestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sse-digest <base64-key>",
		Short: "Print the SSE-C key MD5 digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := base64.StdEncoding.DecodeString(args[0])
			if err != nil {
				return err
			}
			digest := md5.Sum(key)
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(digest[:]))
			return nil
		},
	}
}

func newSSEKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sse-key",
		Short: "Generate a random base64 SSE-C key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := make([]byte, constant.DEK_SIZE)
			if _, err := rand.Read(key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}
}

func newSignerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signer",
		Short: "Generate a ledger signing key and print its address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\nprivate key: %x\n",
				crypto.PubkeyToAddress(key.PublicKey).Hex(),
				crypto.FromECDSA(key),
			)
			return nil
		},
	}
}
