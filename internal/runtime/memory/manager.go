package memory

import (
	"context"
	"encoding/binary"
	"fmt"
)

// Allocator reserves guest memory through the contract's own allocator.
// Allocate returns a pointer to a fresh Region with the requested capacity.
type Allocator interface {
	Allocate(ctx context.Context, size uint32) (uint32, error)
}

// Manager is the checked accessor for one guest memory instance.
type Manager struct {
	memory Memory
	alloc  Allocator
}

// NewManager creates a manager over the given memory. alloc may be nil if
// the caller never needs to hand data to the guest.
func NewManager(memory Memory, alloc Allocator) *Manager {
	return &Manager{
		memory: memory,
		alloc:  alloc,
	}
}

// Size returns the current memory size in bytes.
func (m *Manager) Size() uint32 {
	return m.memory.Size()
}

// ReadBytes copies length bytes starting at offset out of guest memory.
func (m *Manager) ReadBytes(offset uint32, length uint32) ([]byte, error) {
	size := m.memory.Size()
	if uint64(offset)+uint64(length) > uint64(size) {
		return nil, &MemoryAccessError{Op: "read", Ptr: offset, Length: uint64(length), Size: size, Err: ErrInvalidMemoryAccess}
	}
	view, ok := m.memory.Read(offset, length)
	if !ok {
		return nil, &MemoryAccessError{Op: "read", Ptr: offset, Length: uint64(length), Size: size, Err: ErrMemoryReadFailed}
	}
	// the view aliases guest memory, hand out a copy
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

// WriteBytes copies data into guest memory starting at offset.
func (m *Manager) WriteBytes(offset uint32, data []byte) error {
	size := m.memory.Size()
	if uint64(offset)+uint64(len(data)) > uint64(size) {
		return &MemoryAccessError{Op: "write", Ptr: offset, Length: uint64(len(data)), Size: size, Err: ErrInvalidMemoryAccess}
	}
	if !m.memory.Write(offset, data) {
		return &MemoryAccessError{Op: "write", Ptr: offset, Length: uint64(len(data)), Size: size, Err: ErrMemoryWriteFailed}
	}
	return nil
}

// region loads and validates the Region header stored at ptr.
func (m *Manager) region(op string, ptr uint32) (Region, error) {
	if ptr == 0 {
		return Region{}, &MemoryAccessError{Op: op, Ptr: ptr, Length: RegionSize, Size: m.memory.Size(), Err: ErrNullPointer}
	}
	raw, err := m.ReadBytes(ptr, RegionSize)
	if err != nil {
		return Region{}, err
	}
	r := decodeRegion(raw)
	if err := r.validate(); err != nil {
		return Region{}, &MemoryAccessError{Op: op, Ptr: ptr, Length: uint64(r.Length), Size: m.memory.Size(), Err: fmt.Errorf("%w: offset %d, capacity %d, length %d", err, r.Offset, r.Capacity, r.Length)}
	}
	return r, nil
}

// CheckRegion validates the Region header at ptr without touching its data.
func (m *Manager) CheckRegion(ptr uint32) error {
	_, err := m.region("check region", ptr)
	return err
}

// ReadRegion returns a copy of the data the Region at ptr points to.
// maxLength bounds the accepted data length.
func (m *Manager) ReadRegion(ptr uint32, maxLength uint32) ([]byte, error) {
	r, err := m.region("read region", ptr)
	if err != nil {
		return nil, err
	}
	if r.Length > maxLength {
		return nil, &RegionLengthTooBigError{Length: r.Length, Max: maxLength}
	}
	return m.ReadBytes(r.Offset, r.Length)
}

// WriteRegion copies data into the Region at ptr and updates its length.
func (m *Manager) WriteRegion(ptr uint32, data []byte) error {
	r, err := m.region("write region", ptr)
	if err != nil {
		return err
	}
	if uint64(len(data)) > uint64(r.Capacity) {
		return &RegionTooSmallError{Needed: uint32(len(data)), Capacity: r.Capacity}
	}
	if err := m.WriteBytes(r.Offset, data); err != nil {
		return err
	}
	lengthField := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthField, uint32(len(data)))
	return m.WriteBytes(ptr+8, lengthField)
}

// Allocate asks the guest for a region big enough for data, fills it and
// returns the region pointer.
func (m *Manager) Allocate(ctx context.Context, data []byte) (uint32, error) {
	if m.alloc == nil {
		return 0, fmt.Errorf("%w: no allocator", ErrAllocationFailed)
	}
	if uint64(len(data)) > uint64(^uint32(0)) {
		return 0, fmt.Errorf("%w: %d bytes", ErrAllocationFailed, len(data))
	}
	ptr, err := m.alloc.Allocate(ctx, uint32(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}
	if ptr == 0 {
		return 0, fmt.Errorf("%w: guest returned null region", ErrAllocationFailed)
	}
	if err := m.WriteRegion(ptr, data); err != nil {
		return 0, err
	}
	return ptr, nil
}
