package crypto

import (
	"crypto/ed25519"
	"fmt"
)

// Ed25519Verify checks an ed25519 signature over message of any length.
func Ed25519Verify(message, signature, publicKey []byte) (bool, error) {
	if len(signature) != Ed25519SignatureLen {
		return false, fmt.Errorf("%w: signature must be %d bytes, got %d", ErrInvalidSignatureFormat, Ed25519SignatureLen, len(signature))
	}
	if len(publicKey) != Ed25519PubkeyLen {
		return false, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidPubkeyFormat, Ed25519PubkeyLen, len(publicKey))
	}
	return ed25519.Verify(publicKey, message, signature), nil
}

// Ed25519BatchVerify succeeds only if every (message, signature, key) triple
// verifies.
//
// The three lists must have the same length, with two exceptions: a single
// message is checked against every signature/key pair, and a single key is
// checked against every message/signature pair. Any other mismatch is
// ErrInvalidBatchFormat. An empty batch verifies.
func Ed25519BatchVerify(messages, signatures, publicKeys [][]byte) (bool, error) {
	messages, publicKeys, err := broadcast(messages, signatures, publicKeys)
	if err != nil {
		return false, err
	}

	// check shapes first so a bad entry late in the batch is an error, not false
	for i := range signatures {
		if len(signatures[i]) != Ed25519SignatureLen {
			return false, fmt.Errorf("%w: signature %d must be %d bytes, got %d", ErrInvalidSignatureFormat, i, Ed25519SignatureLen, len(signatures[i]))
		}
		if len(publicKeys[i]) != Ed25519PubkeyLen {
			return false, fmt.Errorf("%w: public key %d must be %d bytes, got %d", ErrInvalidPubkeyFormat, i, Ed25519PubkeyLen, len(publicKeys[i]))
		}
	}
	for i := range signatures {
		if !ed25519.Verify(publicKeys[i], messages[i], signatures[i]) {
			return false, nil
		}
	}
	return true, nil
}

func broadcast(messages, signatures, publicKeys [][]byte) ([][]byte, [][]byte, error) {
	n := len(signatures)
	switch {
	case len(messages) == n && len(publicKeys) == n:
		return messages, publicKeys, nil
	case len(messages) == 1 && len(publicKeys) == n:
		return repeat(messages[0], n), publicKeys, nil
	case len(publicKeys) == 1 && len(messages) == n:
		return messages, repeat(publicKeys[0], n), nil
	default:
		return nil, nil, fmt.Errorf("%w: %d messages, %d signatures, %d public keys", ErrInvalidBatchFormat, len(messages), n, len(publicKeys))
	}
}

func repeat(b []byte, n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
