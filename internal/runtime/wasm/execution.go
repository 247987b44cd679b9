package wasm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"

	rterrors "github.com/scrtlabs/hostbridge/internal/runtime/error"

	"github.com/scrtlabs/hostbridge/internal/runtime/constants"
	"github.com/scrtlabs/hostbridge/internal/runtime/db"
	"github.com/scrtlabs/hostbridge/internal/runtime/gas"
	"github.com/scrtlabs/hostbridge/internal/runtime/host"
	"github.com/scrtlabs/hostbridge/internal/runtime/memory"
	"github.com/scrtlabs/hostbridge/internal/runtime/querier"
	"github.com/scrtlabs/hostbridge/internal/runtime/validation"
	"github.com/scrtlabs/hostbridge/types"
)

// Entry is a contract entry point.
type Entry uint8

const (
	EntryInstantiate Entry = iota
	EntryExecute
	EntryQuery
)

func (e Entry) String() string {
	switch e {
	case EntryInstantiate:
		return "instantiate"
	case EntryExecute:
		return "execute"
	case EntryQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Deps are the chain resources a call runs against.
type Deps struct {
	// Store holds the state of every contract, each under its own prefix
	Store types.KVStore
	// Querier answers chain level queries, nil if there are none
	Querier types.Querier
}

// call is one execution context.
type call struct {
	entry    Entry
	env      types.Env
	msg      []byte
	deps     Deps
	gasLimit uint64
	depth    uint32
}

type scopeKey struct{}

// scope is what nested queries inherit from the context that issued them.
type scope struct {
	deps Deps
	env  types.Env
}

// Instantiate binds env.Contract.Address to checksum and calls the
// contract's instantiate entry point. The binding is dropped again if the
// call fails.
func (vm *WazeroVM) Instantiate(ctx context.Context, checksum types.Checksum, env types.Env, msg []byte, deps Deps, gasLimit uint64) ([]byte, uint64, error) {
	contract := env.Contract.Address
	_, existed := vm.Checksum(contract)
	if err := vm.Register(contract, checksum); err != nil {
		return nil, 0, err
	}
	result, gasUsed, err := vm.callContract(ctx, call{entry: EntryInstantiate, env: env, msg: msg, deps: deps, gasLimit: gasLimit})
	if err != nil && !existed {
		vm.unregister(contract)
	}
	return result, gasUsed, err
}

// Execute calls the execute entry point of env.Contract.Address.
func (vm *WazeroVM) Execute(ctx context.Context, env types.Env, msg []byte, deps Deps, gasLimit uint64) ([]byte, uint64, error) {
	return vm.callContract(ctx, call{entry: EntryExecute, env: env, msg: msg, deps: deps, gasLimit: gasLimit})
}

// Query calls the query entry point of env.Contract.Address. Storage is
// read only for the whole call.
func (vm *WazeroVM) Query(ctx context.Context, env types.Env, msg []byte, deps Deps, gasLimit uint64) ([]byte, uint64, error) {
	return vm.callContract(ctx, call{entry: EntryQuery, env: env, msg: msg, deps: deps, gasLimit: gasLimit})
}

var _ querier.ContractQuerier = (*WazeroVM)(nil)

// QueryContract runs a nested smart query. It must be called from inside an
// execution context, whose deps and block the query inherits.
func (vm *WazeroVM) QueryContract(ctx context.Context, q querier.ContractQuery) ([]byte, uint64, error) {
	parent, ok := ctx.Value(scopeKey{}).(scope)
	if !ok {
		return nil, 0, errors.New("nested query outside of an execution context")
	}
	if _, ok := vm.Checksum(q.Contract); !ok {
		return nil, 0, types.NoSuchContract{Addr: q.Contract}
	}
	env := types.Env{
		Block:    parent.env.Block,
		Contract: types.ContractInfo{Address: q.Contract},
	}
	return vm.callContract(ctx, call{
		entry:    EntryQuery,
		env:      env,
		msg:      q.Msg,
		deps:     parent.deps,
		gasLimit: q.GasLimit,
		depth:    q.Depth,
	})
}

// callContract runs one execution context and reports the gas it used,
// also when it fails.
func (vm *WazeroVM) callContract(ctx context.Context, c call) ([]byte, uint64, error) {
	logger := vm.logger.With().
		Str("entry", c.entry.String()).
		Str("contract", c.env.Contract.Address).
		Uint32("depth", c.depth).
		Logger()

	checksum, ok := vm.Checksum(c.env.Contract.Address)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownContract, c.env.Contract.Address)
	}
	c.env.Contract.CodeHash = checksum
	compiled, err := vm.compiled(ctx, checksum)
	if err != nil {
		return nil, 0, err
	}
	if c.deps.Store == nil {
		return nil, 0, errors.New("no store provided")
	}
	canonical, err := vm.codec.Canonicalize(c.env.Contract.Address)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid contract address: %w", err)
	}

	var store types.KVStore = db.NewPrefixStore(c.deps.Store, db.ContractPrefix(canonical))
	if c.entry == EntryQuery {
		store = db.NewReadOnlyStore(store)
	}
	meter := gas.NewDefaultMeter(c.gasLimit)

	result, err := vm.run(ctx, c, compiled, store, meter)
	gasUsed := meter.Consumed()

	trapKind := ""
	if err != nil {
		if trap, ok := rterrors.AsTrap(err); ok {
			trapKind = trap.Kind.String()
		} else {
			trapKind = rterrors.TrapInternal.String()
		}
		logger.Debug().Err(err).Uint64("gas_used", gasUsed).Msg("contract call failed")
	} else {
		logger.Debug().Uint64("gas_used", gasUsed).Int("result_size", len(result)).Msg("contract call finished")
	}
	vm.metrics.ObserveExecution(c.entry.String(), gasUsed, trapKind)
	return result, gasUsed, err
}

func (vm *WazeroVM) run(ctx context.Context, c call, compiled wazero.CompiledModule, store types.KVStore, meter gas.Meter) ([]byte, error) {
	// anonymous, so nested queries can instantiate the same code again
	module, err := vm.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, rterrors.NewTrap(rterrors.TrapInternal, fmt.Errorf("failed to instantiate module: %w", err))
	}
	defer module.Close(ctx)

	alloc, err := memory.NewModuleAllocator(module)
	if err != nil {
		return nil, rterrors.NewTrap(rterrors.TrapInternal, err)
	}
	mem := memory.NewManager(module.Memory(), alloc)

	bridge := host.NewBridge(host.Environment{
		Memory:     mem,
		Store:      store,
		Gas:        gas.NewCharger(meter, vm.config.Gas),
		Codec:      vm.codec,
		Crypto:     vm.crypto,
		Querier:    querier.NewForwarder(vm, c.deps.Querier, c.depth, vm.config, vm.logger),
		Contract:   c.env.Contract.Address,
		PrintDebug: vm.config.PrintDebug,
		Logger:     vm.logger,
		Observer:   vm.observeHostCall,
	})
	ctx = context.WithValue(ctx, scopeKey{}, scope{deps: c.deps, env: c.env})
	ctx = host.WithBridge(ctx, bridge)

	fn, err := entryFunction(module, c.entry)
	if err != nil {
		return nil, err
	}

	args := make([]uint64, 0, 2)
	if len(fn.Definition().ParamTypes()) == 2 {
		envBz, err := json.Marshal(c.env)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal env: %w", err)
		}
		envPtr, err := mem.Allocate(ctx, envBz)
		if err != nil {
			return nil, allocError("env", err)
		}
		args = append(args, uint64(envPtr))
	}
	msgPtr, err := mem.Allocate(ctx, c.msg)
	if err != nil {
		return nil, allocError("msg", err)
	}
	args = append(args, uint64(msgPtr))

	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, callError(err)
	}
	resultPtr := uint32(results[0])
	data, err := mem.ReadRegion(resultPtr, constants.MaxResultLength)
	if err != nil {
		return nil, rterrors.NewTrap(rterrors.TrapMemoryAccess, fmt.Errorf("reading %s result: %w", c.entry, err))
	}
	return data, nil
}

func (vm *WazeroVM) observeHostCall(imp host.Import, out rterrors.Outcome) {
	vm.metrics.ObserveHostCall(imp.Name(), out.Kind().String())
}

// entryFunction finds the export for entry, trying legacy names too.
func entryFunction(module api.Module, entry Entry) (api.Function, error) {
	for _, name := range validation.EntryPoints[entry] {
		fn := module.ExportedFunction(name)
		if fn == nil {
			continue
		}
		def := fn.Definition()
		params := len(def.ParamTypes())
		if params < 1 || params > 2 || len(def.ResultTypes()) != 1 || (params == 1 && entry != EntryQuery) {
			return nil, fmt.Errorf("entry point %q has the wrong signature", name)
		}
		return fn, nil
	}
	return nil, fmt.Errorf("contract has no %s entry point", entry)
}

// callError classifies an error coming out of guest code. Host traps are
// passed through, anything the guest did on its own is a guest panic.
func callError(err error) error {
	if trap, ok := rterrors.AsTrap(err); ok {
		return trap
	}
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return rterrors.NewTrap(rterrors.TrapInternal, err)
	}
	return rterrors.NewTrap(rterrors.TrapGuestPanic, err)
}

func allocError(what string, err error) error {
	if trap, ok := rterrors.AsTrap(err); ok {
		return trap
	}
	return rterrors.NewTrap(rterrors.TrapMemoryAccess, fmt.Errorf("passing %s: %w", what, err))
}
