package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeWire(t *testing.T) {
	cases := map[string]struct {
		outcome Outcome
		wire    uint64
	}{
		"value":            {outcome: Value(1234), wire: 1234},
		"void":             {outcome: Void(), wire: 0},
		"verified":         {outcome: Verified(true), wire: 0},
		"not verified":     {outcome: Verified(false), wire: 1},
		"negative code":    {outcome: Recoverable(CodeWrongPrefix, errors.New("x")), wire: 0xFFFFFFFC},
		"positive code":    {outcome: Recoverable(CodeInvalidHashFormat, errors.New("x")), wire: 3},
		"packed i64 error": {outcome: Recoverable(CodeInvalidRecoveryParam, errors.New("x")).Packed(), wire: 6 << 32},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			wire, trap := tc.outcome.Wire()
			require.Nil(t, trap)
			assert.Equal(t, tc.wire, wire)
		})
	}
}

func TestOutcomeTrap(t *testing.T) {
	gasErr := &GasError{Descriptor: "db_write", Wanted: 10, Available: 3}
	outcome := Fatal(NewTrap(TrapOutOfGas, gasErr))

	assert.Equal(t, OutcomeTrap, outcome.Kind())
	_, trap := outcome.Wire()
	require.NotNil(t, trap)
	assert.Equal(t, TrapOutOfGas, trap.Kind)

	wrapped := fmt.Errorf("wasm call: %w", outcome.Err())
	found, ok := AsTrap(wrapped)
	require.True(t, ok)
	assert.Same(t, trap, found)

	var target *GasError
	assert.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "out of gas: out of gas in db_write: required 10, but only 3 available", trap.Error())
}

func TestErrorCodeNames(t *testing.T) {
	assert.Equal(t, "empty address", CodeEmptyAddress.String())
	assert.Equal(t, "unknown", ErrorCode(-99).String())
	assert.NotEqual(t, CodeEmptyAddress, CodeMalformedAddress)
	assert.NotEqual(t, CodeMalformedAddress, CodeWrongPrefix)
}
