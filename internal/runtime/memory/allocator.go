package memory

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// ModuleAllocator calls the "allocate" export of a wazero module instance.
// Regions handed to an entry point belong to the guest, which frees them
// through its own "deallocate".
type ModuleAllocator struct {
	allocate api.Function
}

var _ Allocator = (*ModuleAllocator)(nil)

// NewModuleAllocator looks up the allocate export of module.
func NewModuleAllocator(module api.Module) (*ModuleAllocator, error) {
	allocate := module.ExportedFunction("allocate")
	if allocate == nil {
		return nil, fmt.Errorf("missing required export: allocate")
	}
	return &ModuleAllocator{allocate: allocate}, nil
}

func (a *ModuleAllocator) Allocate(ctx context.Context, size uint32) (uint32, error) {
	results, err := a.allocate.Call(ctx, uint64(size))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate memory: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocate returned no results")
	}
	return uint32(results[0]), nil
}
