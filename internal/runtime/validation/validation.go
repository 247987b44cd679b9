// Package validation runs the static checks a contract must pass before it
// is stored.
package validation

import (
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/scrtlabs/hostbridge/internal/runtime/host"
)

// ErrStaticValidation wraps every validation failure.
var ErrStaticValidation = errors.New("static wasm validation failed")

// EntryPoints lists the exports a contract can be called through. Legacy
// names come second.
var EntryPoints = [][]string{
	{"instantiate", "init"},
	{"execute", "handle"},
	{"query"},
}

type export struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

var requiredExports = []export{
	{"allocate", []api.ValueType{api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}},
	{"deallocate", []api.ValueType{api.ValueTypeI32}, nil},
}

// Validate checks memory, allocator exports, entry points and imports of a
// compiled contract.
func Validate(compiled wazero.CompiledModule) error {
	if n := len(compiled.ExportedMemories()); n != 1 {
		return fmt.Errorf("%w: contract must contain exactly one memory, found %d", ErrStaticValidation, n)
	}
	if n := len(compiled.ImportedMemories()); n != 0 {
		return fmt.Errorf("%w: contract must not import memory", ErrStaticValidation)
	}

	exports := compiled.ExportedFunctions()
	for _, r := range requiredExports {
		def, ok := exports[r.name]
		if !ok {
			return fmt.Errorf("%w: contract doesn't have required export %q", ErrStaticValidation, r.name)
		}
		if !sameTypes(def.ParamTypes(), r.params) || !sameTypes(def.ResultTypes(), r.results) {
			return fmt.Errorf("%w: export %q has the wrong signature", ErrStaticValidation, r.name)
		}
	}

	entries := 0
	for _, names := range EntryPoints {
		for _, name := range names {
			if _, ok := exports[name]; ok {
				entries++
			}
		}
	}
	if entries == 0 {
		return fmt.Errorf("%w: contract exports no entry point", ErrStaticValidation)
	}

	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if module != host.ModuleName {
			return fmt.Errorf("%w: import %s.%s from unknown module", ErrStaticValidation, module, name)
		}
		imp, ok := host.LookupImport(name)
		if !ok {
			return fmt.Errorf("%w: unsupported import %q", ErrStaticValidation, name)
		}
		if !sameTypes(def.ParamTypes(), imp.Params()) || !sameTypes(def.ResultTypes(), imp.Results()) {
			return fmt.Errorf("%w: import %q has the wrong signature", ErrStaticValidation, name)
		}
	}
	return nil
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
