package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"
)

var errNoBridge = errors.New("host function called outside of an execution context")

// RegisterHostFunctions instantiates the "env" module on runtime. The
// functions find their Bridge in the call context, see WithBridge.
func RegisterHostFunctions(ctx context.Context, runtime wazero.Runtime) (api.Module, error) {
	builder := runtime.NewHostModuleBuilder(ModuleName)
	for _, imp := range Imports() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(hostFunction(imp), imp.Params(), imp.Results()).
			WithName(imp.Name()).
			Export(imp.Name())
	}
	module, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate %s module: %w", ModuleName, err)
	}
	return module, nil
}

// hostFunction adapts one import to the wazero stack convention. A trap is
// raised by panicking, wazero unwinds the guest and returns it wrapped in
// the call error.
func hostFunction(imp Import) api.GoModuleFunc {
	hasResult := len(imp.Results()) > 0
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		b, ok := FromContext(ctx)
		if !ok {
			panic(rterrors.NewTrap(rterrors.TrapInternal, fmt.Errorf("%s: %w", imp, errNoBridge)))
		}
		wire, trap := b.Call(ctx, imp, stack).Wire()
		if trap != nil {
			panic(trap)
		}
		if hasResult {
			stack[0] = wire
		}
	}
}
