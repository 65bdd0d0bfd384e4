package recipient

import (
	"context"
	"crypto/rsa"
	"fmt"
	"path"
	"strings"

	vaultApi "github.com/hashicorp/vault/api"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

// SecretReader is the KV v2 read used by the keyring; *vaultApi.KVv2
// satisfies it.
type SecretReader interface {
	Get(ctx context.Context, secretPath string) (*vaultApi.KVSecret, error)
}

// VaultKeyring reads recipient private keys from a KV v2 mount. Keys are read
// on every call and handed to the caller; nothing is cached here.
type VaultKeyring struct {
	kv       SecretReader
	basePath string
}

func NewVaultKeyring(client *vaultApi.Client, mount, basePath string) *VaultKeyring {
	return &VaultKeyring{kv: client.KVv2(mount), basePath: basePath}
}

func newVaultKeyring(kv SecretReader, basePath string) *VaultKeyring {
	return &VaultKeyring{kv: kv, basePath: basePath}
}

// PrivateKey loads the PEM stored at <basePath>/<identity> under the
// private_key_pem field.
func (k *VaultKeyring) PrivateKey(ctx context.Context, identity string) (*rsa.PrivateKey, error) {
	secretPath := path.Join(k.basePath, strings.ToLower(identity))
	secret, err := k.kv.Get(ctx, secretPath)
	if err != nil {
		return nil, apperr.Storage(err, "failed to read recipient key from vault")
	}
	if secret == nil || secret.Data == nil {
		return nil, apperr.Storage(fmt.Errorf("secret %s is empty", secretPath), "recipient key is not provisioned")
	}

	pemValue, ok := secret.Data[constant.VAULT_PRIVATE_KEY_FIELD].(string)
	if !ok || pemValue == "" {
		return nil, apperr.Storage(fmt.Errorf("secret %s has no %s field", secretPath, constant.VAULT_PRIVATE_KEY_FIELD), "recipient key is not provisioned")
	}
	return envelope.ParsePrivateKeyPEM([]byte(pemValue))
}
