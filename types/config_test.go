package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVMConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultVMConfig().Validate())
}

func TestVMConfigValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*VMConfig)
		errMsg string
	}{
		"empty prefix": {
			mutate: func(c *VMConfig) { c.Bech32Prefix = "" },
			errMsg: "bech32 prefix must not be empty",
		},
		"zero canonical length": {
			mutate: func(c *VMConfig) { c.CanonicalLength = 0 },
			errMsg: "canonical length 0 out of range",
		},
		"zero query depth": {
			mutate: func(c *VMConfig) { c.MaxQueryDepth = 0 },
			errMsg: "max query depth must be positive",
		},
		"too much memory": {
			mutate: func(c *VMConfig) { c.MemoryLimitPages = 70000 },
			errMsg: "memory limit of 70000 pages out of range",
		},
		"no cache": {
			mutate: func(c *VMConfig) { c.CacheSize = 0 },
			errMsg: "cache size must be positive, got 0",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultVMConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tc.errMsg, err.Error())
		})
	}
}

func TestOperationCostTotal(t *testing.T) {
	cost := OperationCost{Base: 100, Variable: 3}
	assert.Equal(t, uint64(100), cost.TotalCost(0))
	assert.Equal(t, uint64(130), cost.TotalCost(10))
}
