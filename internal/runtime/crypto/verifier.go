// Package crypto implements the signature checks contracts can request.
// Every function is pure: the same input always gives the same answer.
package crypto

import (
	"github.com/scrtlabs/hostbridge/internal/runtime/cryptoapi"
)

// Input sizes accepted by the verifier.
const (
	MessageHashLen           = 32
	Secp256k1SignatureLen    = 64
	Secp256k1CompressedLen   = 33
	Secp256k1UncompressedLen = 65
	Ed25519SignatureLen      = 64
	Ed25519PubkeyLen         = 32
)

// Verifier is the default cryptoapi.CryptoVerifier.
type Verifier struct{}

var _ cryptoapi.CryptoVerifier = Verifier{}

func (Verifier) Secp256k1Verify(hash, signature, publicKey []byte) (bool, error) {
	return Secp256k1Verify(hash, signature, publicKey)
}

func (Verifier) Secp256k1RecoverPubkey(hash, signature []byte, recovery byte) ([]byte, error) {
	return Secp256k1RecoverPubkey(hash, signature, recovery)
}

func (Verifier) Ed25519Verify(message, signature, publicKey []byte) (bool, error) {
	return Ed25519Verify(message, signature, publicKey)
}

func (Verifier) Ed25519BatchVerify(messages, signatures, publicKeys [][]byte) (bool, error) {
	return Ed25519BatchVerify(messages, signatures, publicKeys)
}
