package wasmtest

// Layout of the fixture contracts' static memory.
const (
	// StateKeyRegion points at a Region holding StateKey
	StateKeyRegion = 16
	StateKey       = "state"
	HeapBase       = 1024
)

// Type indices shared by every fixture.
const (
	TypeI32ToI32 uint32 = iota
	TypeI32I32ToNone
	TypeI32ToNone
	TypeI32I32ToI32
)

var types = []FuncType{
	TypeI32ToI32:     {Params: []byte{I32}, Results: []byte{I32}},
	TypeI32I32ToNone: {Params: []byte{I32, I32}},
	TypeI32ToNone:    {Params: []byte{I32}},
	TypeI32I32ToI32:  {Params: []byte{I32, I32}, Results: []byte{I32}},
}

// allocate is a bump allocator over global 0. It reserves size bytes of
// data followed by the Region header pointing at them.
var allocate = Func{
	Type:   TypeI32ToI32,
	Locals: []byte{I32, I32},
	Body: Join(
		[]byte{OpGlobalGet, 0}, LocalSet(1),
		[]byte{OpGlobalGet, 0}, LocalGet(0), []byte{OpI32Add, OpGlobalSet, 0},
		[]byte{OpGlobalGet, 0}, LocalSet(2),
		[]byte{OpGlobalGet, 0}, I32Const(12), []byte{OpI32Add, OpGlobalSet, 0},
		LocalGet(2), LocalGet(1), Store32(0),
		LocalGet(2), LocalGet(0), Store32(4),
		LocalGet(2), I32Const(0), Store32(8),
		LocalGet(2),
	),
}

var deallocate = Func{Type: TypeI32ToNone}

type entry struct {
	name string
	fn   Func
}

type options struct {
	imports    []Import
	entries    []entry
	hideMemory bool
	allocate   bool
}

func build(o options) []byte {
	heap := int32(HeapBase)
	m := Module{
		Types:       types,
		Imports:     o.imports,
		Global:      &heap,
		MemoryPages: 2,
		Data: []Data{{
			Offset: StateKeyRegion,
			Bytes:  Join(Region(32, uint32(len(StateKey)), uint32(len(StateKey))), []byte{0, 0, 0, 0}, []byte(StateKey)),
		}},
	}
	next := uint32(len(o.imports))
	if o.allocate {
		m.Funcs = append(m.Funcs, allocate, deallocate)
		m.Exports = append(m.Exports,
			Export{Name: "allocate", Kind: KindFunc, Index: next},
			Export{Name: "deallocate", Kind: KindFunc, Index: next + 1},
		)
		next += 2
	}
	for _, e := range o.entries {
		m.Funcs = append(m.Funcs, e.fn)
		m.Exports = append(m.Exports, Export{Name: e.name, Kind: KindFunc, Index: next})
		next++
	}
	if !o.hideMemory {
		m.Exports = append(m.Exports, Export{Name: "memory", Kind: KindMemory, Index: 0})
	}
	return m.Bytes()
}

// Indices of the imports of Contract.
const (
	importDbRead uint32 = iota
	importDbWrite
	importQueryChain
	importDebug
	importGas
)

var contractImports = []Import{
	importDbRead:     {Module: "env", Name: "db_read", Type: TypeI32ToI32},
	importDbWrite:    {Module: "env", Name: "db_write", Type: TypeI32I32ToNone},
	importQueryChain: {Module: "env", Name: "query_chain", Type: TypeI32ToI32},
	importDebug:      {Module: "env", Name: "debug", Type: TypeI32ToNone},
	importGas:        {Module: "env", Name: "gas", Type: TypeI32ToNone},
}

func contractEntries() []entry {
	return []entry{
		// debug(msg); db_write(StateKey, msg); return msg
		{"instantiate", Func{Type: TypeI32I32ToI32, Body: Join(
			LocalGet(1), Call(importDebug),
			I32Const(StateKeyRegion), LocalGet(1), Call(importDbWrite),
			LocalGet(1),
		)}},
		// gas(1000); return db_read(StateKey)
		{"execute", Func{Type: TypeI32I32ToI32, Body: Join(
			I32Const(1000), Call(importGas),
			I32Const(StateKeyRegion), Call(importDbRead),
		)}},
		// return query_chain(db_read(StateKey))
		{"query", Func{Type: TypeI32I32ToI32, Body: Join(
			I32Const(StateKeyRegion), Call(importDbRead), Call(importQueryChain),
		)}},
	}
}

// Contract is the reference contract. Instantiate stores the message under
// StateKey and echoes it, execute returns the stored message, query sends
// the stored message to query_chain and returns the response.
func Contract() []byte {
	return build(options{imports: contractImports, entries: contractEntries(), allocate: true})
}

// WithImport is Contract plus one more function import of type typ.
func WithImport(module, name string, typ uint32) []byte {
	imports := append(append([]Import(nil), contractImports...), Import{Module: module, Name: name, Type: typ})
	return build(options{imports: imports, entries: contractEntries(), allocate: true})
}

// Legacy uses the init/handle export names and a single argument query.
// handle returns the env it was called with, query echoes its message.
func Legacy() []byte {
	return build(options{
		entries: []entry{
			{"init", Func{Type: TypeI32I32ToI32, Body: LocalGet(1)}},
			{"handle", Func{Type: TypeI32I32ToI32, Body: LocalGet(0)}},
			{"query", Func{Type: TypeI32ToI32, Body: LocalGet(0)}},
		},
		allocate: true,
	})
}

// Panicking traps in every entry point.
func Panicking() []byte {
	return build(options{
		entries: []entry{
			{"instantiate", Func{Type: TypeI32I32ToI32, Body: []byte{OpUnreachable}}},
			{"query", Func{Type: TypeI32I32ToI32, Body: []byte{OpUnreachable}}},
		},
		allocate: true,
	})
}

// NoMemory does not export its memory.
func NoMemory() []byte {
	return build(options{imports: contractImports, entries: contractEntries(), hideMemory: true, allocate: true})
}

// NoAllocator lacks the allocate and deallocate exports.
func NoAllocator() []byte {
	return build(options{imports: contractImports, entries: contractEntries()})
}

// NoEntryPoint exports nothing callable.
func NoEntryPoint() []byte {
	return build(options{allocate: true})
}

// QueryWriter tries to store its query message under StateKey.
func QueryWriter() []byte {
	return build(options{
		imports: contractImports,
		entries: []entry{
			{"instantiate", Func{Type: TypeI32I32ToI32, Body: LocalGet(1)}},
			{"query", Func{Type: TypeI32I32ToI32, Body: Join(
				I32Const(StateKeyRegion), LocalGet(1), Call(importDbWrite),
				LocalGet(1),
			)}},
		},
		allocate: true,
	})
}

// WriteThenBurn stores its instantiate message under StateKey and then
// reports BurnGas to the gas import.
func WriteThenBurn() []byte {
	return build(options{
		imports: contractImports,
		entries: []entry{
			{"instantiate", Func{Type: TypeI32I32ToI32, Body: Join(
				I32Const(StateKeyRegion), LocalGet(1), Call(importDbWrite),
				I32Const(BurnGas), Call(importGas),
				LocalGet(1),
			)}},
		},
		allocate: true,
	})
}

// BurnGas is what WriteThenBurn charges after its write.
const BurnGas = 1_000_000
