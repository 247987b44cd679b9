// Package constants holds the limits the host applies to guest input.
package constants

const (
	// WasmPageSize is the size of one page of linear memory
	WasmPageSize = 65536

	// Region length limits per argument kind
	MaxKeyLength         = 64 * 1024
	MaxValueLength       = 128 * 1024
	MaxAddressLength     = 256
	MaxCanonicalLength   = 64
	MaxQueryLength       = 64 * 1024
	MaxCryptoInputLength = 1024
	MaxMessageLength     = 128 * 1024
	MaxBatchLength       = 1024 * 1024
	MaxDebugLength       = 64 * 1024

	// MaxResultLength bounds what an entry point may hand back
	MaxResultLength = 64 * 1024 * 1024
)
