package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
)

// Encrypt seals plaintext under a freshly generated data key. The returned
// blob is nonce || ciphertext || tag. The caller owns the key and must wrap
// and discard it.
func Encrypt(plaintext []byte) (blob, key []byte, err error) {
	key = make([]byte, constant.DEK_SIZE)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, apperr.Wrap(err, apperr.KindInternal, "failed to generate data key")
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	// NB: a nonce must never repeat under one key. Every key here encrypts
	// exactly one message, so a random 96-bit nonce is sufficient.
	nonce := make([]byte, constant.NONCE_SIZE, constant.NONCE_SIZE+len(plaintext)+gcm.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, apperr.Wrap(err, apperr.KindInternal, "failed to generate nonce")
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), key, nil
}

// Decrypt opens a blob produced by Encrypt. The key length is checked before
// anything else; any tag failure is reported as an authentication error and
// no plaintext is returned.
func Decrypt(blob, key []byte) ([]byte, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, apperr.New(apperr.KindKeyFormat, fmt.Sprintf("data key must be 16, 24 or 32 bytes, got %d", len(key)))
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(blob) < constant.NONCE_SIZE+gcm.Overhead() {
		return nil, apperr.Authentication(fmt.Errorf("blob too short: %d bytes", len(blob)))
	}

	nonce, ciphertext := blob[:constant.NONCE_SIZE], blob[constant.NONCE_SIZE:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, apperr.Authentication(err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindKeyFormat, "invalid data key")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "failed to create GCM cipher")
	}
	return gcm, nil
}
