package envelope

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
)

// Parse failures below are reported with one fixed message per key type. The
// underlying x509 error stays in the chain for server-side logs only.
const (
	publicKeyImportMessage  = "recipient public key is not a valid RSA PEM key"
	privateKeyImportMessage = "private key is not a valid RSA PEM key"
)

// ParsePublicKeyPEM parses an RSA public key from a "PUBLIC KEY" (PKIX) or
// "RSA PUBLIC KEY" (PKCS#1) PEM block.
func ParsePublicKeyPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, apperr.New(apperr.KindKeyImport, publicKeyImportMessage)
	}

	var key *rsa.PublicKey
	switch block.Type {
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.KindKeyImport, publicKeyImportMessage)
		}
		rsaKey, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, apperr.Wrap(fmt.Errorf("got %T", pub), apperr.KindKeyImport, publicKeyImportMessage)
		}
		key = rsaKey
	case "RSA PUBLIC KEY":
		rsaKey, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.KindKeyImport, publicKeyImportMessage)
		}
		key = rsaKey
	default:
		return nil, apperr.Wrap(fmt.Errorf("unsupported PEM block type %q", block.Type), apperr.KindKeyImport, publicKeyImportMessage)
	}

	if err := checkKeySize(key); err != nil {
		return nil, err
	}
	return key, nil
}

// ParsePrivateKeyPEM parses an RSA private key from a "PRIVATE KEY" (PKCS#8)
// or "RSA PRIVATE KEY" (PKCS#1) PEM block.
func ParsePrivateKeyPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, apperr.New(apperr.KindKeyImport, privateKeyImportMessage)
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.KindKeyImport, privateKeyImportMessage)
		}
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, apperr.Wrap(fmt.Errorf("got %T", parsed), apperr.KindKeyImport, privateKeyImportMessage)
		}
		key = rsaKey
	case "RSA PRIVATE KEY":
		rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.KindKeyImport, privateKeyImportMessage)
		}
		key = rsaKey
	default:
		return nil, apperr.Wrap(fmt.Errorf("unsupported PEM block type %q", block.Type), apperr.KindKeyImport, privateKeyImportMessage)
	}

	if err := checkKeySize(&key.PublicKey); err != nil {
		return nil, err
	}
	return key, nil
}

// LoadPublicKeyFromPEMFile reads and parses an RSA public key from a PEM file.
func LoadPublicKeyFromPEMFile(path string) (*rsa.PublicKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PEM file: %w", err)
	}
	return ParsePublicKeyPEM(pemBytes)
}

// MarshalPrivateKeyPEM encodes key as a PKCS#8 "PRIVATE KEY" block.
func MarshalPrivateKeyPEM(key *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// MarshalPublicKeyPEM encodes key as a PKIX "PUBLIC KEY" block.
func MarshalPublicKeyPEM(key *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

func checkKeySize(key *rsa.PublicKey) error {
	if bits := key.N.BitLen(); bits < constant.MIN_RSA_KEY_BITS {
		return apperr.New(apperr.KindKeyImport, fmt.Sprintf("RSA key size must be at least %d bits, got %d bits", constant.MIN_RSA_KEY_BITS, bits))
	}
	return nil
}

// DestroyPrivateKey overwrites the private exponent, the primes and the CRT
// values of key. Copies crypto/rsa keeps internally are out of reach.
func DestroyPrivateKey(key *rsa.PrivateKey) {
	if key == nil {
		return
	}
	wipe := func(n *big.Int) {
		if n == nil {
			return
		}
		clear(n.Bits())
		n.SetInt64(0)
	}
	wipe(key.D)
	for _, p := range key.Primes {
		wipe(p)
	}
	wipe(key.Precomputed.Dp)
	wipe(key.Precomputed.Dq)
	wipe(key.Precomputed.Qinv)
}
