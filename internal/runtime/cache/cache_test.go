package cache

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/scrtlabs/hostbridge/internal/runtime/wasm/wasmtest"
	"github.com/scrtlabs/hostbridge/types"
)

func compile(t *testing.T, code []byte) (types.Checksum, wazero.CompiledModule) {
	t.Helper()
	ctx := context.Background()
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	t.Cleanup(func() { _ = runtime.Close(ctx) })
	compiled, err := runtime.CompileModule(ctx, code)
	require.NoError(t, err)
	return types.NewChecksum(code), compiled
}

func TestCode(t *testing.T) {
	c, err := New(10, zerolog.Nop())
	require.NoError(t, err)

	code := wasmtest.Contract()
	checksum := c.SaveCode(code)
	assert.Equal(t, types.NewChecksum(code), checksum)

	loaded, err := c.LoadCode(checksum)
	require.NoError(t, err)
	assert.Equal(t, code, loaded)

	_, err = c.LoadCode(types.NewChecksum([]byte("other")))
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestNewRejectsInvalidSize(t *testing.T) {
	_, err := New(0, zerolog.Nop())
	require.Error(t, err)
}

func TestLoadCompiledCountsHitsAndMisses(t *testing.T) {
	c, err := New(10, zerolog.Nop())
	require.NoError(t, err)
	checksum, compiled := compile(t, wasmtest.Contract())

	_, ok := c.LoadCompiled(checksum)
	assert.False(t, ok)
	c.SaveCompiled(checksum, compiled)
	got, ok := c.LoadCompiled(checksum)
	require.True(t, ok)
	assert.Equal(t, compiled, got)

	assert.Equal(t, Metrics{HitsMemory: 1, Misses: 1, ElementsMemory: 1}, c.Metrics())
}

func TestEviction(t *testing.T) {
	c, err := New(1, zerolog.Nop())
	require.NoError(t, err)
	first, firstModule := compile(t, wasmtest.Contract())
	second, secondModule := compile(t, wasmtest.Legacy())

	c.SaveCompiled(first, firstModule)
	c.SaveCompiled(second, secondModule)

	_, ok := c.LoadCompiled(first)
	assert.False(t, ok, "least recently used module must be evicted")
	_, ok = c.LoadCompiled(second)
	assert.True(t, ok)
}

func TestPin(t *testing.T) {
	c, err := New(1, zerolog.Nop())
	require.NoError(t, err)
	first, firstModule := compile(t, wasmtest.Contract())
	second, secondModule := compile(t, wasmtest.Legacy())

	require.ErrorIs(t, c.Pin(first), ErrCodeNotFound, "only compiled modules can be pinned")

	c.SaveCode(wasmtest.Contract())
	c.SaveCompiled(first, firstModule)
	require.NoError(t, c.Pin(first))
	require.NoError(t, c.Pin(first), "pinning twice is a no-op")
	c.SaveCompiled(second, secondModule)

	got, ok := c.LoadCompiled(first)
	require.True(t, ok)
	assert.Equal(t, firstModule, got)
	assert.False(t, c.Remove(first), "pinned code cannot be removed")

	m := c.Metrics()
	assert.Equal(t, uint32(1), m.HitsPinned)
	assert.Equal(t, uint32(1), m.ElementsPinned)
	assert.Equal(t, uint32(1), m.ElementsMemory)

	c.Unpin(first)
	c.Unpin(first)
	m = c.Metrics()
	assert.Zero(t, m.ElementsPinned)
	assert.Equal(t, uint32(1), m.ElementsMemory, "unpinned module goes back to the LRU and evicts the other")

	assert.True(t, c.Remove(first))
	_, err = c.LoadCode(first)
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestClose(t *testing.T) {
	c, err := New(10, zerolog.Nop())
	require.NoError(t, err)
	first, firstModule := compile(t, wasmtest.Contract())
	second, secondModule := compile(t, wasmtest.Legacy())
	c.SaveCompiled(first, firstModule)
	c.SaveCompiled(second, secondModule)
	require.NoError(t, c.Pin(first))

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, uint32(0), c.Metrics().ElementsPinned)
	assert.Equal(t, uint32(0), c.Metrics().ElementsMemory)
}
