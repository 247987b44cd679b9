// Package memory is the only place that interprets guest linear memory.
// Every read and write is bounds-checked against the live memory size.
package memory

import (
	"encoding/binary"

	"github.com/tetratelabs/wazero/api"
)

// Memory is the view of guest linear memory the bridge works through.
// wazero's api.Memory satisfies it.
type Memory interface {
	Size() uint32
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

var _ Memory = (api.Memory)(nil)

// RegionSize is the size of an encoded Region struct in bytes (3x4 bytes)
const RegionSize = 12

// Region describes data allocated in Wasm's linear memory.
// Encoded little-endian as offset, capacity, length.
type Region struct {
	Offset   uint32
	Capacity uint32
	Length   uint32
}

func decodeRegion(b []byte) Region {
	return Region{
		Offset:   binary.LittleEndian.Uint32(b[0:4]),
		Capacity: binary.LittleEndian.Uint32(b[4:8]),
		Length:   binary.LittleEndian.Uint32(b[8:12]),
	}
}

// Encode returns the 12 byte wire form of the region.
func (r Region) Encode() []byte {
	b := make([]byte, RegionSize)
	binary.LittleEndian.PutUint32(b[0:4], r.Offset)
	binary.LittleEndian.PutUint32(b[4:8], r.Capacity)
	binary.LittleEndian.PutUint32(b[8:12], r.Length)
	return b
}

// validate performs plausibility checks on a Region
func (r Region) validate() error {
	if r.Offset == 0 {
		return ErrNullPointer
	}
	if r.Length > r.Capacity {
		return ErrInvalidRegion
	}
	if uint64(r.Offset)+uint64(r.Capacity) > uint64(^uint32(0)) {
		return ErrInvalidRegion
	}
	return nil
}
