// Package cache keeps contract bytecode and the modules compiled from it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"

	"github.com/scrtlabs/hostbridge/types"
)

// ErrCodeNotFound is returned for a checksum that was never saved.
var ErrCodeNotFound = errors.New("code not found")

// Metrics counts where compiled modules were found.
type Metrics struct {
	HitsPinned     uint32
	HitsMemory     uint32
	Misses         uint32
	ElementsPinned uint32
	ElementsMemory uint32
}

// Cache manages compiled Wasm modules. Pinned modules live outside the LRU
// and are never evicted.
type Cache struct {
	mu      sync.Mutex
	code    map[types.Checksum][]byte
	memory  *lru.Cache[types.Checksum, wazero.CompiledModule]
	pinned  map[types.Checksum]wazero.CompiledModule
	metrics Metrics
	logger  zerolog.Logger
}

// New creates a cache holding at most size unpinned compiled modules.
func New(size int, logger zerolog.Logger) (*Cache, error) {
	c := &Cache{
		code:   make(map[types.Checksum][]byte),
		pinned: make(map[types.Checksum]wazero.CompiledModule),
		logger: logger,
	}
	memory, err := lru.NewWithEvict[types.Checksum, wazero.CompiledModule](size, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("creating module cache: %w", err)
	}
	c.memory = memory
	return c, nil
}

// onEvict runs inside LRU operations, which only happen with mu held.
func (c *Cache) onEvict(checksum types.Checksum, module wazero.CompiledModule) {
	if _, ok := c.pinned[checksum]; ok {
		return
	}
	c.logger.Debug().Stringer("checksum", checksum).Msg("evicting compiled module")
	if err := module.Close(context.Background()); err != nil {
		c.logger.Error().Err(err).Stringer("checksum", checksum).Msg("closing evicted module")
	}
}

// SaveCode stores bytecode and returns its checksum.
func (c *Cache) SaveCode(code []byte) types.Checksum {
	checksum := types.NewChecksum(code)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.code[checksum]; !ok {
		c.code[checksum] = append([]byte(nil), code...)
	}
	return checksum
}

// LoadCode returns the bytecode stored under checksum.
func (c *Cache) LoadCode(checksum types.Checksum) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, ok := c.code[checksum]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, checksum)
	}
	return code, nil
}

// SaveCompiled adds a compiled module to the memory cache.
func (c *Cache) SaveCompiled(checksum types.Checksum, module wazero.CompiledModule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pinned[checksum]; ok {
		return
	}
	c.memory.Add(checksum, module)
}

// LoadCompiled looks a compiled module up, pinned modules first.
func (c *Cache) LoadCompiled(checksum types.Checksum) (wazero.CompiledModule, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if module, ok := c.pinned[checksum]; ok {
		c.metrics.HitsPinned++
		return module, true
	}
	if module, ok := c.memory.Get(checksum); ok {
		c.metrics.HitsMemory++
		return module, true
	}
	c.metrics.Misses++
	return nil, false
}

// Pin moves a compiled module out of the LRU so it is never evicted. The
// module must already be in the memory cache.
func (c *Cache) Pin(checksum types.Checksum) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pinned[checksum]; ok {
		return nil
	}
	module, ok := c.memory.Peek(checksum)
	if !ok {
		return fmt.Errorf("%w: %s is not compiled", ErrCodeNotFound, checksum)
	}
	c.pinned[checksum] = module
	c.memory.Remove(checksum)
	return nil
}

// Unpin returns a pinned module to the LRU.
func (c *Cache) Unpin(checksum types.Checksum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	module, ok := c.pinned[checksum]
	if !ok {
		return
	}
	delete(c.pinned, checksum)
	c.memory.Add(checksum, module)
}

// Remove drops code and compiled module unless the module is pinned.
func (c *Cache) Remove(checksum types.Checksum) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pinned[checksum]; ok {
		return false
	}
	delete(c.code, checksum)
	c.memory.Remove(checksum)
	return true
}

// Metrics returns a snapshot of the cache counters.
func (c *Cache) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.metrics
	m.ElementsPinned = uint32(len(c.pinned))
	m.ElementsMemory = uint32(c.memory.Len())
	return m
}

// Close releases every compiled module.
func (c *Cache) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for checksum, module := range c.pinned {
		if err := module.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("closing pinned module %s: %w", checksum, err))
		}
	}
	c.pinned = make(map[types.Checksum]wazero.CompiledModule)
	c.memory.Purge()
	return errors.Join(errs...)
}
