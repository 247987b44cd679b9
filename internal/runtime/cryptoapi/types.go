// Package cryptoapi declares the crypto capability the host bridge depends on.
package cryptoapi

// CryptoVerifier defines the interface for crypto verification operations
type CryptoVerifier interface {
	// Secp256k1Verify verifies a secp256k1 signature
	Secp256k1Verify(hash, signature, publicKey []byte) (bool, error)

	// Secp256k1RecoverPubkey recovers a public key from a signature
	Secp256k1RecoverPubkey(hash, signature []byte, recovery byte) ([]byte, error)

	// Ed25519Verify verifies an ed25519 signature
	Ed25519Verify(message, signature, publicKey []byte) (bool, error)

	// Ed25519BatchVerify verifies multiple ed25519 signatures
	Ed25519BatchVerify(messages, signatures, publicKeys [][]byte) (bool, error)
}
