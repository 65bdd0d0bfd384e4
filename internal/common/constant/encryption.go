package constant

const (
	// AES-256; decryption still accepts AES-128/192 keys
	DEK_SIZE   = 32
	NONCE_SIZE = 12

	MIN_RSA_KEY_BITS = 2048

	PAYLOAD_VERSION = "railx-omp-v0.1"
	BLOB_PREFIX     = "orders/"
	BLOB_SUFFIX     = ".bin"
	BLOB_MIME       = "application/octet-stream"

	VAULT_PRIVATE_KEY_FIELD = "private_key_pem"
)
