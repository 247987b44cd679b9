package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ChecksumLen is the length of a contract checksum in bytes.
const ChecksumLen = 32

// Checksum identifies a Wasm blob. It is the SHA-256 hash of the bytecode.
type Checksum [ChecksumLen]byte

// NewChecksum hashes the given bytecode.
func NewChecksum(code []byte) Checksum {
	return Checksum(sha256.Sum256(code))
}

func (cs Checksum) String() string {
	return hex.EncodeToString(cs[:])
}

// MarshalJSON implements the json.Marshaler interface for Checksum.
// It converts the checksum to a hex-encoded string.
func (cs Checksum) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(cs[:]))
}

// UnmarshalJSON implements the json.Unmarshaler interface for Checksum.
// It parses a hex-encoded string into a checksum.
func (cs *Checksum) UnmarshalJSON(input []byte) error {
	var hexString string
	err := json.Unmarshal(input, &hexString)
	if err != nil {
		return err
	}
	parsed, err := ParseChecksum(hexString)
	if err != nil {
		return err
	}
	*cs = parsed
	return nil
}

// ParseChecksum decodes a hex-encoded checksum.
func ParseChecksum(s string) (Checksum, error) {
	var cs Checksum
	data, err := hex.DecodeString(s)
	if err != nil {
		return cs, err
	}
	if len(data) != ChecksumLen {
		return cs, fmt.Errorf("got wrong number of bytes for checksum")
	}
	copy(cs[:], data)
	return cs, nil
}
