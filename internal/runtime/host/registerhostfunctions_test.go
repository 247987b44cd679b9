package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
)

func TestImportTable(t *testing.T) {
	names := map[string]bool{}
	for _, imp := range Imports() {
		assert.False(t, names[imp.Name()], "duplicate import %s", imp)
		names[imp.Name()] = true

		found, ok := LookupImport(imp.Name())
		require.True(t, ok)
		assert.Equal(t, imp, found)
		for _, p := range imp.Params() {
			assert.Equal(t, api.ValueTypeI32, p)
		}
	}
	assert.Len(t, names, 15)

	assert.Equal(t, []api.ValueType{api.ValueTypeI64}, ImportSecp256k1RecoverPubkey.Results())
	assert.Empty(t, ImportDbWrite.Results())
	_, ok := LookupImport("db_scan")
	assert.False(t, ok)
}

func TestHostFunctionWithoutBridge(t *testing.T) {
	fn := hostFunction(ImportGas)
	assert.PanicsWithError(t, "internal: gas: host function called outside of an execution context", func() {
		fn(context.Background(), nil, []uint64{1})
	})
}

func TestHostFunctionStack(t *testing.T) {
	f := newFixture(t, 1000)
	ctx := WithBridge(context.Background(), f.bridge)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, f.bridge, got)

	stack := []uint64{uint64(f.mem.Region([]byte("")))}
	hostFunction(ImportAddrValidate)(ctx, nil, stack)
	code := rterrors.CodeEmptyAddress
	assert.Equal(t, uint64(uint32(code)), stack[0])

	consumed := f.meter.Consumed()
	hostFunction(ImportGas)(ctx, nil, []uint64{100})
	assert.Equal(t, consumed+100, f.meter.Consumed())

	defer func() {
		trap, ok := recover().(*rterrors.Trap)
		require.True(t, ok)
		assert.Equal(t, rterrors.TrapOutOfGas, trap.Kind)
	}()
	hostFunction(ImportGas)(ctx, nil, []uint64{5000})
}

func TestRegisterHostFunctions(t *testing.T) {
	ctx := context.Background()
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer runtime.Close(ctx)

	module, err := RegisterHostFunctions(ctx, runtime)
	require.NoError(t, err)
	assert.Equal(t, ModuleName, module.Name())

	defs := module.ExportedFunctionDefinitions()
	assert.Len(t, defs, len(Imports()))
	for _, imp := range Imports() {
		def, ok := defs[imp.Name()]
		require.True(t, ok, imp.Name())
		assert.ElementsMatch(t, imp.Params(), def.ParamTypes())
		assert.ElementsMatch(t, imp.Results(), def.ResultTypes())
	}
}
