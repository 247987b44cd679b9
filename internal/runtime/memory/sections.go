package memory

import (
	"encoding/binary"
	"fmt"
)

// DecodeSections splits data into the sections it encodes. Each section is
// followed by its length as a 4 byte big-endian integer.
func DecodeSections(data []byte) ([][]byte, error) {
	var sections [][]byte
	rest := data
	for len(rest) > 0 {
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidSections, len(rest))
		}
		tail := len(rest) - 4
		length := binary.BigEndian.Uint32(rest[tail:])
		if uint64(length) > uint64(tail) {
			return nil, fmt.Errorf("%w: section of %d bytes in %d remaining", ErrInvalidSections, length, tail)
		}
		start := tail - int(length)
		sections = append(sections, rest[start:tail])
		rest = rest[:start]
	}
	// collected back to front
	for i, j := 0, len(sections)-1; i < j; i, j = i+1, j-1 {
		sections[i], sections[j] = sections[j], sections[i]
	}
	return sections, nil
}

// EncodeSections is the inverse of DecodeSections.
func EncodeSections(sections [][]byte) []byte {
	var size int
	for _, s := range sections {
		size += len(s) + 4
	}
	out := make([]byte, 0, size)
	for _, s := range sections {
		out = append(out, s...)
		out = binary.BigEndian.AppendUint32(out, uint32(len(s)))
	}
	return out
}
