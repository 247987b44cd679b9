// Package address converts between human readable bech32 addresses and the
// fixed length canonical form contracts store.
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
)

var (
	ErrEmptyAddress     = errors.New("empty address")
	ErrMalformedAddress = errors.New("malformed address")
	ErrWrongPrefix      = errors.New("wrong address prefix")
	ErrInvalidCanonical = errors.New("invalid canonical address")
	ErrNotNormalized    = errors.New("address not normalized")
)

// Codec validates and converts addresses of a single network.
type Codec struct {
	prefix          string
	canonicalLength int
}

// NewCodec creates a codec for addresses with the given bech32 prefix and
// canonical byte length.
func NewCodec(prefix string, canonicalLength int) *Codec {
	return &Codec{prefix: strings.ToLower(prefix), canonicalLength: canonicalLength}
}

// Prefix returns the human readable part addresses must carry.
func (c *Codec) Prefix() string {
	return c.prefix
}

// Canonicalize decodes a human address. Upper case input is accepted and
// yields the same canonical address as its lower case form.
func (c *Codec) Canonicalize(human string) ([]byte, error) {
	if strings.TrimSpace(human) == "" {
		return nil, ErrEmptyAddress
	}
	hrp, data, err := bech32.Decode(human)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if hrp != c.prefix {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrWrongPrefix, c.prefix, hrp)
	}
	canonical, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if len(canonical) != c.canonicalLength {
		return nil, fmt.Errorf("%w: payload of %d bytes, expected %d", ErrMalformedAddress, len(canonical), c.canonicalLength)
	}
	return canonical, nil
}

// Humanize encodes a canonical address.
func (c *Codec) Humanize(canonical []byte) (string, error) {
	if len(canonical) != c.canonicalLength {
		return "", fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidCanonical, len(canonical), c.canonicalLength)
	}
	data, err := bech32.ConvertBits(canonical, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCanonical, err)
	}
	human, err := bech32.Encode(c.prefix, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCanonical, err)
	}
	return human, nil
}

// Validate accepts only addresses in their normalized form, the one
// Humanize produces.
func (c *Codec) Validate(human string) error {
	canonical, err := c.Canonicalize(human)
	if err != nil {
		return err
	}
	normalized, err := c.Humanize(canonical)
	if err != nil {
		return err
	}
	if normalized != human {
		return fmt.Errorf("%w: %q, expected %q", ErrNotNormalized, human, normalized)
	}
	return nil
}

// Code maps a codec error to the code the guest sees.
func Code(err error) rterrors.ErrorCode {
	switch {
	case err == nil:
		return rterrors.CodeOK
	case errors.Is(err, ErrEmptyAddress):
		return rterrors.CodeEmptyAddress
	case errors.Is(err, ErrMalformedAddress):
		return rterrors.CodeMalformedAddress
	case errors.Is(err, ErrWrongPrefix):
		return rterrors.CodeWrongPrefix
	case errors.Is(err, ErrInvalidCanonical):
		return rterrors.CodeInvalidCanonical
	case errors.Is(err, ErrNotNormalized):
		return rterrors.CodeNotNormalized
	default:
		return rterrors.CodeUnknown
	}
}
