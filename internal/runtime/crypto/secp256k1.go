package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// compactHeaderBase is the header byte of an uncompressed compact signature
// with recovery id 0.
const compactHeaderBase = 27

// Secp256k1Verify checks a 64 byte (r, s) signature over a 32 byte hash.
// Only wrong input lengths are errors, anything else that does not verify
// returns false.
func Secp256k1Verify(hash, signature, publicKey []byte) (bool, error) {
	if len(hash) != MessageHashLen {
		return false, fmt.Errorf("%w: hash must be %d bytes, got %d", ErrInvalidHashFormat, MessageHashLen, len(hash))
	}
	if len(signature) != Secp256k1SignatureLen {
		return false, fmt.Errorf("%w: signature must be %d bytes, got %d", ErrInvalidSignatureFormat, Secp256k1SignatureLen, len(signature))
	}
	if len(publicKey) != Secp256k1CompressedLen && len(publicKey) != Secp256k1UncompressedLen {
		return false, fmt.Errorf("%w: public key must be %d or %d bytes, got %d", ErrInvalidPubkeyFormat, Secp256k1CompressedLen, Secp256k1UncompressedLen, len(publicKey))
	}

	pubKey, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return false, nil
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
		return false, nil
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
		return false, nil
	}
	return ecdsa.NewSignature(&r, &s).Verify(hash, pubKey), nil
}

// Secp256k1RecoverPubkey recovers the uncompressed 65 byte public key that
// produced signature over hash.
func Secp256k1RecoverPubkey(hash, signature []byte, recovery byte) ([]byte, error) {
	if len(hash) != MessageHashLen {
		return nil, fmt.Errorf("%w: hash must be %d bytes, got %d", ErrInvalidHashFormat, MessageHashLen, len(hash))
	}
	if len(signature) != Secp256k1SignatureLen {
		return nil, fmt.Errorf("%w: signature must be %d bytes, got %d", ErrInvalidSignatureFormat, Secp256k1SignatureLen, len(signature))
	}
	if recovery > 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRecoveryParam, recovery)
	}

	compact := make([]byte, 1+Secp256k1SignatureLen)
	compact[0] = compactHeaderBase + recovery
	copy(compact[1:], signature)

	pubKey, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecoveryFailed, err)
	}
	return pubKey.SerializeUncompressed(), nil
}
