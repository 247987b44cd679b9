package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrNullPointer is returned when the guest passes 0 where a region pointer is required
	ErrNullPointer = errors.New("null pointer")
	// ErrInvalidMemoryAccess is returned when trying to access invalid memory regions
	ErrInvalidMemoryAccess = errors.New("invalid memory access")
	// ErrMemoryReadFailed is returned when memory read operation fails
	ErrMemoryReadFailed = errors.New("memory read failed")
	// ErrMemoryWriteFailed is returned when memory write operation fails
	ErrMemoryWriteFailed = errors.New("memory write failed")
	// ErrInvalidRegion is returned when a region header is not plausible
	ErrInvalidRegion = errors.New("invalid region")
	// ErrAllocationFailed is returned when the guest allocator does not hand out a usable region
	ErrAllocationFailed = errors.New("allocation failed")
	// ErrInvalidSections is returned for a malformed section list
	ErrInvalidSections = errors.New("invalid section encoding")
)

// MemoryAccessError describes an access to guest memory that was refused.
// Any operation failing with it must not continue to use guest memory.
type MemoryAccessError struct {
	Op     string
	Ptr    uint32
	Length uint64
	Size   uint32
	Err    error
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("%s at 0x%x (length %d, memory size %d): %v", e.Op, e.Ptr, e.Length, e.Size, e.Err)
}

func (e *MemoryAccessError) Unwrap() error {
	return e.Err
}

// RegionTooSmallError is returned when a guest region cannot hold the data
// the host wants to write into it.
type RegionTooSmallError struct {
	Needed   uint32
	Capacity uint32
}

func (e *RegionTooSmallError) Error() string {
	return fmt.Sprintf("region too small: need %d bytes, capacity is %d", e.Needed, e.Capacity)
}

// RegionLengthTooBigError is returned when a region carries more data than the
// caller accepts for that argument.
type RegionLengthTooBigError struct {
	Length uint32
	Max    uint32
}

func (e *RegionLengthTooBigError) Error() string {
	return fmt.Sprintf("region length too big: got %d, limit %d", e.Length, e.Max)
}
