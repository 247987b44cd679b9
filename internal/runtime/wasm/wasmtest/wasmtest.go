// Package wasmtest assembles small Wasm modules for tests, so the engine can
// be exercised without a compiler toolchain.
package wasmtest

import (
	"encoding/binary"
)

// Value types
const (
	I32 byte = 0x7f
	I64 byte = 0x7e
)

// Export kinds
const (
	KindFunc   byte = 0x00
	KindMemory byte = 0x02
	KindGlobal byte = 0x03
)

// Opcodes used by the fixtures.
const (
	OpUnreachable byte = 0x00
	OpEnd         byte = 0x0b
	OpCall        byte = 0x10
	OpDrop        byte = 0x1a
	OpLocalGet    byte = 0x20
	OpLocalSet    byte = 0x21
	OpGlobalGet   byte = 0x23
	OpGlobalSet   byte = 0x24
	OpI32Store    byte = 0x36
	OpI32Const    byte = 0x41
	OpI32Add      byte = 0x6a
)

type FuncType struct {
	Params  []byte
	Results []byte
}

// Import is a function import.
type Import struct {
	Module string
	Name   string
	Type   uint32
}

// Func is a function body without the trailing end opcode.
type Func struct {
	Type uint32
	// Locals lists the type of every local beyond the parameters
	Locals []byte
	Body   []byte
}

type Export struct {
	Name  string
	Kind  byte
	Index uint32
}

// Data is an active segment for memory 0.
type Data struct {
	Offset int32
	Bytes  []byte
}

// Module describes a module with a single memory and an optional mutable
// i32 global.
type Module struct {
	Types       []FuncType
	Imports     []Import
	Funcs       []Func
	MemoryPages uint32
	// Global is the initial value of global 0, none if nil
	Global  *int32
	Exports []Export
	Data    []Data
}

// Bytes encodes the module in the binary format.
func (m Module) Bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(m.Types) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(m.Types)))
		for _, t := range m.Types {
			s = append(s, 0x60)
			s = appendBytes(s, t.Params)
			s = appendBytes(s, t.Results)
		}
		out = appendSection(out, 1, s)
	}
	if len(m.Imports) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			s = appendBytes(s, []byte(imp.Module))
			s = appendBytes(s, []byte(imp.Name))
			s = append(s, KindFunc)
			s = appendU32(s, imp.Type)
		}
		out = appendSection(out, 2, s)
	}
	if len(m.Funcs) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			s = appendU32(s, f.Type)
		}
		out = appendSection(out, 3, s)
	}
	if m.MemoryPages > 0 {
		s := appendU32([]byte{0x01, 0x00}, m.MemoryPages)
		out = appendSection(out, 5, s)
	}
	if m.Global != nil {
		s := []byte{0x01, I32, 0x01}
		s = append(s, I32Const(*m.Global)...)
		s = append(s, OpEnd)
		out = appendSection(out, 6, s)
	}
	if len(m.Exports) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(m.Exports)))
		for _, e := range m.Exports {
			s = appendBytes(s, []byte(e.Name))
			s = append(s, e.Kind)
			s = appendU32(s, e.Index)
		}
		out = appendSection(out, 7, s)
	}
	if len(m.Funcs) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			var body []byte
			if len(f.Locals) == 0 {
				body = appendU32(body, 0)
			} else {
				body = appendU32(body, uint32(len(f.Locals)))
				for _, l := range f.Locals {
					body = appendU32(body, 1)
					body = append(body, l)
				}
			}
			body = append(body, f.Body...)
			body = append(body, OpEnd)
			s = appendBytes(s, body)
		}
		out = appendSection(out, 10, s)
	}
	if len(m.Data) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(m.Data)))
		for _, d := range m.Data {
			s = append(s, 0x00)
			s = append(s, I32Const(d.Offset)...)
			s = append(s, OpEnd)
			s = appendBytes(s, d.Bytes)
		}
		out = appendSection(out, 11, s)
	}
	return out
}

// I32Const encodes an i32.const instruction.
func I32Const(v int32) []byte {
	return appendS32([]byte{OpI32Const}, v)
}

// Call encodes a call instruction.
func Call(index uint32) []byte {
	return appendU32([]byte{OpCall}, index)
}

// LocalGet encodes local.get.
func LocalGet(index uint32) []byte {
	return appendU32([]byte{OpLocalGet}, index)
}

// LocalSet encodes local.set.
func LocalSet(index uint32) []byte {
	return appendU32([]byte{OpLocalSet}, index)
}

// Store32 encodes i32.store with natural alignment at a static offset.
func Store32(offset uint32) []byte {
	return appendU32([]byte{OpI32Store, 0x02}, offset)
}

// Join concatenates instruction sequences.
func Join(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Region encodes a Region header.
func Region(offset, capacity, length uint32) []byte {
	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:4], offset)
	binary.LittleEndian.PutUint32(b[4:8], capacity)
	binary.LittleEndian.PutUint32(b[8:12], length)
	return b
}

func appendSection(out []byte, id byte, content []byte) []byte {
	out = append(out, id)
	return appendBytes(out, content)
}

func appendBytes(out, b []byte) []byte {
	out = appendU32(out, uint32(len(b)))
	return append(out, b...)
}

func appendU32(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func appendS32(out []byte, v int32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
