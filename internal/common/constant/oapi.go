package constant

const (
	OAPI_TITLE            = "RailX Envelope"
	OAPI_VERSION          = "0.1.0"
	OAPI_SECURITY_SCHEME  = "Bearer"
	OAPI_TAG_MISC         = "Miscellaneous"
	OAPI_TAG_REMITTANCE   = "Remittance Envelope"
	OAPI_TAG_LEDGER       = "Ledger"
	OAPI_SPEC_UI          = `<!doctypehtml><title>API Reference</title><meta charset=utf-8><meta content="width=device-width,initial-scale=1"name=viewport><body><script data-url=/openapi.json id=api-reference></script><script src=https://cdn.jsdelivr.net/npm/@scalar/api-reference></script>`
	OAPI_SPEC_DESCRIPTION = `
Encrypted remittance envelopes for the RailX corridor.

Write path: the sending bank submits originator/beneficiary data. The
service builds the canonical payload (ISO 20022 pacs.008 view, IVMS101
travel-rule view, sanctions attestation), seals it with a fresh AES-256-GCM
key, wraps that key with the destination bank's RSA public key (OAEP,
SHA-256) and returns two Keccak-256 commitments to be anchored on-chain.

Every submission produces NEW commitments, even for an identical body:
retries are not idempotent and create distinct records.

Read path: the destination bank resolves a commitment hash from the ledger
and opens the envelope with its private key.
`
)
