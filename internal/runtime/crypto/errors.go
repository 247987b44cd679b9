package crypto

import (
	"errors"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
)

var (
	// ErrInvalidHashFormat is returned when a hash has an invalid format
	ErrInvalidHashFormat = errors.New("invalid hash format")
	// ErrInvalidSignatureFormat is returned when a signature has an invalid format
	ErrInvalidSignatureFormat = errors.New("invalid signature format")
	// ErrInvalidPubkeyFormat is returned when a public key has an invalid format
	ErrInvalidPubkeyFormat = errors.New("invalid public key format")
	// ErrInvalidRecoveryParam is returned for a recovery id other than 0 or 1
	ErrInvalidRecoveryParam = errors.New("invalid recovery parameter")
	// ErrRecoveryFailed is returned when no public key can be recovered from the inputs
	ErrRecoveryFailed = errors.New("public key recovery failed")
	// ErrInvalidBatchFormat is returned when batch verification inputs have mismatched lengths
	ErrInvalidBatchFormat = errors.New("invalid batch format: mismatched input lengths")
)

// Code maps a verifier error to the code the guest sees.
func Code(err error) rterrors.ErrorCode {
	switch {
	case errors.Is(err, ErrInvalidHashFormat):
		return rterrors.CodeInvalidHashFormat
	case errors.Is(err, ErrInvalidSignatureFormat):
		return rterrors.CodeInvalidSignatureFormat
	case errors.Is(err, ErrInvalidPubkeyFormat):
		return rterrors.CodeInvalidPubkeyFormat
	case errors.Is(err, ErrInvalidRecoveryParam):
		return rterrors.CodeInvalidRecoveryParam
	case errors.Is(err, ErrInvalidBatchFormat):
		return rterrors.CodeBatchErr
	default:
		return rterrors.CodeCryptoGeneric
	}
}
