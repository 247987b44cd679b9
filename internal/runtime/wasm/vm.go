// Package wasm runs contracts on wazero with the host bridge attached.
package wasm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/scrtlabs/hostbridge/internal/runtime/address"
	"github.com/scrtlabs/hostbridge/internal/runtime/cache"
	"github.com/scrtlabs/hostbridge/internal/runtime/crypto"
	"github.com/scrtlabs/hostbridge/internal/runtime/cryptoapi"
	"github.com/scrtlabs/hostbridge/internal/runtime/host"
	"github.com/scrtlabs/hostbridge/internal/runtime/metrics"
	"github.com/scrtlabs/hostbridge/internal/runtime/validation"
	"github.com/scrtlabs/hostbridge/types"
)

var (
	// ErrUnknownContract is returned for an address with no code registered.
	ErrUnknownContract = errors.New("unknown contract")
	// ErrCodeInUse is returned when removing code that is still bound or pinned.
	ErrCodeInUse = errors.New("code in use")
)

// WazeroVM owns a wazero runtime with the "env" host module and the
// contracts known to it.
type WazeroVM struct {
	runtime   wazero.Runtime
	envModule api.Module
	cache     *cache.Cache
	config    types.VMConfig
	codec     *address.Codec
	crypto    cryptoapi.CryptoVerifier
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	contractsMu sync.RWMutex
	contracts   map[types.HumanAddress]types.Checksum
}

type Option func(*WazeroVM)

func WithLogger(logger zerolog.Logger) Option {
	return func(vm *WazeroVM) { vm.logger = logger }
}

// WithMetrics records host calls and executions on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(vm *WazeroVM) { vm.metrics = m }
}

// WithCryptoVerifier replaces the default signature verifier.
func WithCryptoVerifier(c cryptoapi.CryptoVerifier) Option {
	return func(vm *WazeroVM) { vm.crypto = c }
}

// NewWazeroVM validates cfg and builds the runtime and its host module.
func NewWazeroVM(ctx context.Context, cfg types.VMConfig, opts ...Option) (*WazeroVM, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vm config: %w", err)
	}
	vm := &WazeroVM{
		config:    cfg,
		codec:     address.NewCodec(cfg.Bech32Prefix, cfg.CanonicalLength),
		crypto:    crypto.Verifier{},
		logger:    zerolog.Nop(),
		contracts: make(map[types.HumanAddress]types.Checksum),
	}
	for _, opt := range opts {
		opt(vm)
	}

	c, err := cache.New(cfg.CacheSize, vm.logger)
	if err != nil {
		return nil, err
	}
	vm.cache = c

	runtimeConfig := wazero.NewRuntimeConfigInterpreter().
		WithMemoryLimitPages(cfg.MemoryLimitPages).
		WithCloseOnContextDone(true)
	vm.runtime = wazero.NewRuntimeWithConfig(ctx, runtimeConfig)

	vm.envModule, err = host.RegisterHostFunctions(ctx, vm.runtime)
	if err != nil {
		_ = vm.runtime.Close(ctx)
		return nil, err
	}
	vm.logger.Info().
		Str("bech32_prefix", cfg.Bech32Prefix).
		Uint32("max_query_depth", cfg.MaxQueryDepth).
		Uint32("memory_limit_pages", cfg.MemoryLimitPages).
		Msg("wazero runtime initialized")
	return vm, nil
}

// Close releases the compiled modules and the runtime.
func (vm *WazeroVM) Close(ctx context.Context) error {
	return errors.Join(vm.cache.Close(ctx), vm.runtime.Close(ctx))
}

// Config returns the configuration the VM runs with.
func (vm *WazeroVM) Config() types.VMConfig {
	return vm.config
}

// Codec returns the address codec contracts are checked with.
func (vm *WazeroVM) Codec() *address.Codec {
	return vm.codec
}

// StoreCode compiles and validates code and keeps it for later calls.
func (vm *WazeroVM) StoreCode(ctx context.Context, code []byte) (types.Checksum, error) {
	checksum := types.NewChecksum(code)
	if _, ok := vm.cache.LoadCompiled(checksum); ok {
		return checksum, nil
	}

	compiled, err := vm.runtime.CompileModule(ctx, code)
	if err != nil {
		return types.Checksum{}, fmt.Errorf("failed to compile wasm: %w", err)
	}
	if err := validation.Validate(compiled); err != nil {
		_ = compiled.Close(ctx)
		return types.Checksum{}, err
	}

	vm.cache.SaveCode(code)
	vm.cache.SaveCompiled(checksum, compiled)
	vm.logger.Debug().Stringer("checksum", checksum).Int("size", len(code)).Msg("stored code")
	return checksum, nil
}

// GetCode returns the bytecode stored under checksum.
func (vm *WazeroVM) GetCode(checksum types.Checksum) ([]byte, error) {
	return vm.cache.LoadCode(checksum)
}

// Pin keeps the compiled module of checksum out of LRU eviction.
func (vm *WazeroVM) Pin(ctx context.Context, checksum types.Checksum) error {
	if _, err := vm.compiled(ctx, checksum); err != nil {
		return err
	}
	return vm.cache.Pin(checksum)
}

func (vm *WazeroVM) Unpin(checksum types.Checksum) {
	vm.cache.Unpin(checksum)
}

// CacheMetrics reports module cache hits and sizes.
func (vm *WazeroVM) CacheMetrics() cache.Metrics {
	return vm.cache.Metrics()
}

// Register binds a contract address to stored code.
func (vm *WazeroVM) Register(contract types.HumanAddress, checksum types.Checksum) error {
	if err := vm.codec.Validate(contract); err != nil {
		return fmt.Errorf("invalid contract address: %w", err)
	}
	vm.contractsMu.Lock()
	defer vm.contractsMu.Unlock()
	if _, err := vm.cache.LoadCode(checksum); err != nil {
		return err
	}
	vm.contracts[contract] = checksum
	return nil
}

// RemoveCode drops stored code and its compiled module. Code that a
// contract is bound to, or that is pinned, is kept.
func (vm *WazeroVM) RemoveCode(checksum types.Checksum) error {
	vm.contractsMu.Lock()
	defer vm.contractsMu.Unlock()
	if _, err := vm.cache.LoadCode(checksum); err != nil {
		return err
	}
	for contract, bound := range vm.contracts {
		if bound == checksum {
			return fmt.Errorf("%w: %s runs %s", ErrCodeInUse, contract, checksum)
		}
	}
	if !vm.cache.Remove(checksum) {
		return fmt.Errorf("%w: %s is pinned", ErrCodeInUse, checksum)
	}
	vm.logger.Debug().Stringer("checksum", checksum).Msg("removed code")
	return nil
}

// Checksum returns the code a contract runs.
func (vm *WazeroVM) Checksum(contract types.HumanAddress) (types.Checksum, bool) {
	vm.contractsMu.RLock()
	defer vm.contractsMu.RUnlock()
	checksum, ok := vm.contracts[contract]
	return checksum, ok
}

func (vm *WazeroVM) unregister(contract types.HumanAddress) {
	vm.contractsMu.Lock()
	defer vm.contractsMu.Unlock()
	delete(vm.contracts, contract)
}

// compiled returns the compiled module of checksum, recompiling evicted code.
func (vm *WazeroVM) compiled(ctx context.Context, checksum types.Checksum) (wazero.CompiledModule, error) {
	if module, ok := vm.cache.LoadCompiled(checksum); ok {
		return module, nil
	}
	code, err := vm.cache.LoadCode(checksum)
	if err != nil {
		return nil, err
	}
	module, err := vm.runtime.CompileModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to compile wasm: %w", err)
	}
	vm.cache.SaveCompiled(checksum, module)
	return module, nil
}
