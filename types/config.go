package types

import (
	"errors"
	"fmt"
)

// VMConfig configures the execution engine and the host bridge.
type VMConfig struct {
	// Bech32Prefix is the human readable part every human address must carry
	Bech32Prefix string `mapstructure:"bech32_prefix" json:"bech32_prefix"`
	// CanonicalLength is the byte length of a canonical address
	CanonicalLength int `mapstructure:"canonical_length" json:"canonical_length"`
	// MaxQueryDepth bounds nested contract-to-contract queries
	MaxQueryDepth uint32 `mapstructure:"max_query_depth" json:"max_query_depth"`
	// QueryGasLimit caps the budget handed to a nested query
	QueryGasLimit uint64 `mapstructure:"query_gas_limit" json:"query_gas_limit"`
	// MemoryLimitPages caps guest linear memory, in 64KiB pages
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages" json:"memory_limit_pages"`
	// CacheSize is the number of compiled modules kept in memory
	CacheSize int `mapstructure:"cache_size" json:"cache_size"`
	// PrintDebug enables the debug import
	PrintDebug bool `mapstructure:"print_debug" json:"print_debug"`

	Gas GasConfig `mapstructure:"gas" json:"gas"`
}

// DefaultVMConfig returns a configuration usable for tests and local runs.
func DefaultVMConfig() VMConfig {
	return VMConfig{
		Bech32Prefix:     "secret",
		CanonicalLength:  20,
		MaxQueryDepth:    10,
		QueryGasLimit:    3_000_000,
		MemoryLimitPages: 512, // 32 MiB
		CacheSize:        100,
		PrintDebug:       false,
		Gas:              DefaultGasConfig(),
	}
}

// Validate checks the configuration for values the bridge cannot run with.
func (c VMConfig) Validate() error {
	if c.Bech32Prefix == "" {
		return errors.New("bech32 prefix must not be empty")
	}
	if c.CanonicalLength <= 0 || c.CanonicalLength > 64 {
		return fmt.Errorf("canonical length %d out of range", c.CanonicalLength)
	}
	if c.MaxQueryDepth == 0 {
		return errors.New("max query depth must be positive")
	}
	if c.MemoryLimitPages == 0 || c.MemoryLimitPages > 65536 {
		return fmt.Errorf("memory limit of %d pages out of range", c.MemoryLimitPages)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	return nil
}
