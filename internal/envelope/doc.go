// Package envelope implements the cryptographic core of a remittance envelope.
//
// A payload is sealed with a random AES-256-GCM data key and the data key is
// wrapped with the recipient's RSA public key (OAEP, SHA-256). The stored blob
// is nonce || ciphertext || tag. Two Keccak-256 commitments are derived from
// the result: one over the blob and one over the wrapped key. Those digests,
// not the blob, are what the ledger records.
//
// Nothing in this package holds key material between calls. Private keys are
// always passed in by the caller.
package envelope
