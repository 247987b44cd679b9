package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/scrtlabs/hostbridge/internal/runtime/wasm/wasmtest"
)

func validate(t *testing.T, code []byte) error {
	t.Helper()
	ctx := context.Background()
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer runtime.Close(ctx)
	compiled, err := runtime.CompileModule(ctx, code)
	require.NoError(t, err)
	return Validate(compiled)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		code []byte
		err  string
	}{
		"contract":           {code: wasmtest.Contract()},
		"legacy names":       {code: wasmtest.Legacy()},
		"no memory export":   {code: wasmtest.NoMemory(), err: "exactly one memory, found 0"},
		"no allocator":       {code: wasmtest.NoAllocator(), err: `required export "allocate"`},
		"no entry point":     {code: wasmtest.NoEntryPoint(), err: "exports no entry point"},
		"unsupported import": {code: wasmtest.WithImport("env", "db_next", wasmtest.TypeI32ToI32), err: `unsupported import "db_next"`},
		"foreign module":     {code: wasmtest.WithImport("spectest", "print", wasmtest.TypeI32ToNone), err: "spectest.print from unknown module"},
		"wrong signature":    {code: wasmtest.WithImport("env", "addr_validate", wasmtest.TypeI32I32ToI32), err: `"addr_validate" has the wrong signature`},
		"legacy import":      {code: wasmtest.WithImport("env", "canonicalize_address", wasmtest.TypeI32I32ToI32)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := validate(t, tc.code)
			if tc.err == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrStaticValidation)
			assert.ErrorContains(t, err, tc.err)
		})
	}
}
