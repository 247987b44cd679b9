package types

// Gas represents the amount of computational resources consumed during execution.
type Gas = uint64

// OperationCost defines a cost function with base and variable components
type OperationCost struct {
	Base     uint64 `mapstructure:"base" json:"base"`
	Variable uint64 `mapstructure:"variable" json:"variable"`
}

// TotalCost calculates the total cost for n units (bytes or batch items)
func (c OperationCost) TotalCost(n uint64) uint64 {
	return c.Base + c.Variable*n
}

// GasConfig is the cost table charged by the host functions. It is tuning
// data, loaded from configuration and defaulted by DefaultGasConfig.
type GasConfig struct {
	// Storage, Variable is per byte of key plus value
	DbRead   OperationCost `mapstructure:"db_read" json:"db_read"`
	DbWrite  OperationCost `mapstructure:"db_write" json:"db_write"`
	DbRemove OperationCost `mapstructure:"db_remove" json:"db_remove"`

	// Addresses, Variable is per input byte
	AddrCanonicalize OperationCost `mapstructure:"addr_canonicalize" json:"addr_canonicalize"`
	AddrHumanize     OperationCost `mapstructure:"addr_humanize" json:"addr_humanize"`
	AddrValidate     OperationCost `mapstructure:"addr_validate" json:"addr_validate"`

	// QueryChain is charged for the request bytes. Gas used by a nested
	// contract query is charged on top after it returns.
	QueryChain OperationCost `mapstructure:"query_chain" json:"query_chain"`

	Secp256k1Verify        OperationCost `mapstructure:"secp256k1_verify" json:"secp256k1_verify"`
	Secp256k1RecoverPubkey OperationCost `mapstructure:"secp256k1_recover_pubkey" json:"secp256k1_recover_pubkey"`
	Ed25519Verify          OperationCost `mapstructure:"ed25519_verify" json:"ed25519_verify"`
	// Variable is per signature in the batch
	Ed25519BatchVerify OperationCost `mapstructure:"ed25519_batch_verify" json:"ed25519_batch_verify"`

	Debug OperationCost `mapstructure:"debug" json:"debug"`

	// Charged when results are copied back into guest memory
	MemoryWrite OperationCost `mapstructure:"memory_write" json:"memory_write"`
}

// DefaultGasConfig returns the default cost table.
func DefaultGasConfig() GasConfig {
	return GasConfig{
		DbRead:   OperationCost{Base: 100, Variable: 1},
		DbWrite:  OperationCost{Base: 200, Variable: 2},
		DbRemove: OperationCost{Base: 100, Variable: 1},

		AddrCanonicalize: OperationCost{Base: 40, Variable: 1},
		AddrHumanize:     OperationCost{Base: 40, Variable: 1},
		AddrValidate:     OperationCost{Base: 40, Variable: 1},

		QueryChain: OperationCost{Base: 500, Variable: 1},

		Secp256k1Verify:        OperationCost{Base: 1540},
		Secp256k1RecoverPubkey: OperationCost{Base: 1620},
		Ed25519Verify:          OperationCost{Base: 630},
		Ed25519BatchVerify:     OperationCost{Base: 150, Variable: 630},

		Debug: OperationCost{Base: 10, Variable: 0},

		MemoryWrite: OperationCost{Base: 0, Variable: 1},
	}
}
