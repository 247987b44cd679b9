package host

import (
	"github.com/tetratelabs/wazero/api"
)

// Import is one function of the "env" module a contract may import.
type Import uint8

const (
	ImportDbRead Import = iota
	ImportDbWrite
	ImportDbRemove
	ImportCanonicalizeAddress
	ImportHumanizeAddress
	ImportAddrCanonicalize
	ImportAddrHumanize
	ImportAddrValidate
	ImportQueryChain
	ImportSecp256k1Verify
	ImportSecp256k1RecoverPubkey
	ImportEd25519Verify
	ImportEd25519BatchVerify
	ImportDebug
	ImportGas

	importCount
)

// ModuleName is the module contracts import host functions from.
const ModuleName = "env"

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

type importSpec struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

var importSpecs = [importCount]importSpec{
	ImportDbRead:                 {"db_read", []api.ValueType{i32}, []api.ValueType{i32}},
	ImportDbWrite:                {"db_write", []api.ValueType{i32, i32}, nil},
	ImportDbRemove:               {"db_remove", []api.ValueType{i32}, nil},
	ImportCanonicalizeAddress:    {"canonicalize_address", []api.ValueType{i32, i32}, []api.ValueType{i32}},
	ImportHumanizeAddress:        {"humanize_address", []api.ValueType{i32, i32}, []api.ValueType{i32}},
	ImportAddrCanonicalize:       {"addr_canonicalize", []api.ValueType{i32, i32}, []api.ValueType{i32}},
	ImportAddrHumanize:           {"addr_humanize", []api.ValueType{i32, i32}, []api.ValueType{i32}},
	ImportAddrValidate:           {"addr_validate", []api.ValueType{i32}, []api.ValueType{i32}},
	ImportQueryChain:             {"query_chain", []api.ValueType{i32}, []api.ValueType{i32}},
	ImportSecp256k1Verify:        {"secp256k1_verify", []api.ValueType{i32, i32, i32}, []api.ValueType{i32}},
	ImportSecp256k1RecoverPubkey: {"secp256k1_recover_pubkey", []api.ValueType{i32, i32, i32}, []api.ValueType{i64}},
	ImportEd25519Verify:          {"ed25519_verify", []api.ValueType{i32, i32, i32}, []api.ValueType{i32}},
	ImportEd25519BatchVerify:     {"ed25519_batch_verify", []api.ValueType{i32, i32, i32}, []api.ValueType{i32}},
	ImportDebug:                  {"debug", []api.ValueType{i32}, nil},
	ImportGas:                    {"gas", []api.ValueType{i32}, nil},
}

// Imports lists every supported import.
func Imports() []Import {
	out := make([]Import, 0, importCount)
	for i := Import(0); i < importCount; i++ {
		out = append(out, i)
	}
	return out
}

// LookupImport finds the import exported under name.
func LookupImport(name string) (Import, bool) {
	for i, spec := range importSpecs {
		if spec.name == name {
			return Import(i), true
		}
	}
	return 0, false
}

// Name is the export name in the "env" module.
func (i Import) Name() string {
	if i >= importCount {
		return "unknown"
	}
	return importSpecs[i].name
}

func (i Import) String() string {
	return i.Name()
}

// Params returns the wasm parameter types of the import.
func (i Import) Params() []api.ValueType {
	return importSpecs[i].params
}

// Results returns the wasm result types of the import.
func (i Import) Results() []api.ValueType {
	return importSpecs[i].results
}
