// Package memtest provides a slice backed guest memory with a bump
// allocator, for exercising the bridge without a Wasm module.
package memtest

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/scrtlabs/hostbridge/internal/runtime/memory"
)

// PageSize matches the Wasm page size.
const PageSize = 65536

// Memory is a fixed size guest memory. Offset 0 is never handed out.
type Memory struct {
	buf  []byte
	next uint32
	// Allocations counts successful Allocate calls
	Allocations int
	// FailAllocate makes every Allocate call fail
	FailAllocate bool
	// AllocateErr, when set, is returned by every Allocate call
	AllocateErr error
}

var (
	_ memory.Memory    = (*Memory)(nil)
	_ memory.Allocator = (*Memory)(nil)
)

// New returns a memory of the given number of pages.
func New(pages uint32) *Memory {
	return &Memory{buf: make([]byte, pages*PageSize), next: 8}
}

func (m *Memory) Size() uint32 {
	return uint32(len(m.buf))
}

func (m *Memory) Read(offset, byteCount uint32) ([]byte, bool) {
	if uint64(offset)+uint64(byteCount) > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[offset : offset+byteCount], true
}

func (m *Memory) Write(offset uint32, v []byte) bool {
	if uint64(offset)+uint64(len(v)) > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[offset:], v)
	return true
}

func (m *Memory) reserve(n uint32) (uint32, error) {
	// keep 8 byte alignment like a real allocator would
	start := (m.next + 7) &^ 7
	if uint64(start)+uint64(n) > uint64(len(m.buf)) {
		return 0, errors.New("out of memory")
	}
	m.next = start + n
	return start, nil
}

// Allocate reserves a data buffer of size bytes plus its Region header and
// returns the header pointer, like a contract's allocate export.
func (m *Memory) Allocate(_ context.Context, size uint32) (uint32, error) {
	if m.AllocateErr != nil {
		return 0, m.AllocateErr
	}
	if m.FailAllocate {
		return 0, errors.New("allocator disabled")
	}
	data, err := m.reserve(size)
	if err != nil {
		return 0, err
	}
	ptr, err := m.reserve(memory.RegionSize)
	if err != nil {
		return 0, err
	}
	m.Write(ptr, memory.Region{Offset: data, Capacity: size}.Encode())
	m.Allocations++
	return ptr, nil
}

// Region places data into memory and returns its region pointer.
func (m *Memory) Region(data []byte) uint32 {
	ptr, err := m.Allocate(context.Background(), uint32(len(data)))
	if err != nil {
		panic(err)
	}
	region := m.header(ptr)
	m.Write(region.Offset, data)
	region.Length = uint32(len(data))
	m.Write(ptr, region.Encode())
	return ptr
}

// Output returns an empty region with the given capacity, for imports that
// write their result into a guest provided buffer.
func (m *Memory) Output(capacity uint32) uint32 {
	ptr, err := m.Allocate(context.Background(), capacity)
	if err != nil {
		panic(err)
	}
	return ptr
}

// Raw writes a region header with arbitrary fields, for malformed input tests.
func (m *Memory) Raw(region memory.Region) uint32 {
	ptr, err := m.reserve(memory.RegionSize)
	if err != nil {
		panic(err)
	}
	m.Write(ptr, region.Encode())
	return ptr
}

// Data returns the bytes the region at ptr currently holds.
func (m *Memory) Data(ptr uint32) []byte {
	region := m.header(ptr)
	out := make([]byte, region.Length)
	copy(out, m.buf[region.Offset:region.Offset+region.Length])
	return out
}

func (m *Memory) header(ptr uint32) memory.Region {
	b := m.buf[ptr : ptr+memory.RegionSize]
	return memory.Region{
		Offset:   binary.LittleEndian.Uint32(b[0:4]),
		Capacity: binary.LittleEndian.Uint32(b[4:8]),
		Length:   binary.LittleEndian.Uint32(b[8:12]),
	}
}
