package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
)

// Wrap encrypts a data key for the recipient with RSA-OAEP-SHA256.
func Wrap(key []byte, recipient *rsa.PublicKey) ([]byte, error) {
	if recipient == nil {
		return nil, apperr.New(apperr.KindKeyImport, "recipient public key is required")
	}
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, recipient, key, nil)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "failed to wrap data key")
	}
	return wrapped, nil
}

// Unwrap recovers a data key with the recipient's private key. A wrong key
// and a corrupted wrapping are indistinguishable to the caller.
func Unwrap(wrapped []byte, recipient *rsa.PrivateKey) ([]byte, error) {
	if recipient == nil {
		return nil, apperr.New(apperr.KindKeyImport, "private key is required")
	}
	key, err := rsa.DecryptOAEP(sha256.New(), nil, recipient, wrapped, nil)
	if err != nil {
		return nil, apperr.Authentication(err)
	}
	return key, nil
}
