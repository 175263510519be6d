package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmigo/wasmi/internal/binary"
	"github.com/wasmigo/wasmi/internal/moduledef"
)

// addWasm: (func (export "add") (param i32 i32) (result i32)
//
//	local.get 0 local.get 1 i32.add)
var addWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

func TestInternTypeDedupesStructurallyEqualSignatures(t *testing.T) {
	e := New(nil)
	a := moduledef.FuncType{Params: []byte{0x7f, 0x7f}, Results: []byte{0x7f}}
	b := moduledef.FuncType{Params: []byte{0x7f, 0x7f}, Results: []byte{0x7f}}
	c := moduledef.FuncType{Params: []byte{0x7f}, Results: []byte{0x7f}}

	idA := e.InternType(a)
	idB := e.InternType(b)
	idC := e.InternType(c)

	require.Equal(t, idA, idB, "structurally equal signatures must share one id")
	require.NotEqual(t, idA, idC)
	require.Equal(t, &a, e.TypeByID(idA))
}

func TestCompileModuleInternsTypesAndTranslatesBodies(t *testing.T) {
	header, codes, err := binary.DecodeModule(addWasm, moduledef.WasmV1FeatureSet)
	require.NoError(t, err)

	e := New(nil)
	cm, err := e.CompileModule(header, codes)
	require.NoError(t, err)

	require.Len(t, cm.Bodies, 1)
	require.Len(t, cm.AllTypeIDs, 1)
	require.Len(t, cm.FuncTypeIDs, 1)
	require.Equal(t, cm.AllTypeIDs[0], cm.FuncTypeIDs[0])

	// Compiling a second, structurally identical module against the same
	// Engine must reuse the first module's type id (spec.md §3 cross-module
	// dedup).
	header2, codes2, err := binary.DecodeModule(addWasm, moduledef.WasmV1FeatureSet)
	require.NoError(t, err)
	cm2, err := e.CompileModule(header2, codes2)
	require.NoError(t, err)
	require.Equal(t, cm.FuncTypeIDs[0], cm2.FuncTypeIDs[0])
}

func TestAssembleModuleInternsTypesWithoutTranslating(t *testing.T) {
	header, codes, err := binary.DecodeModule(addWasm, moduledef.WasmV1FeatureSet)
	require.NoError(t, err)

	e := New(nil)
	compiled, err := e.CompileModule(header, codes)
	require.NoError(t, err)

	e2 := New(nil)
	reassembled := e2.AssembleModule(header, compiled.Bodies)
	require.Equal(t, compiled.Bodies, reassembled.Bodies)
	require.Len(t, reassembled.AllTypeIDs, 1)
	require.Equal(t, reassembled.AllTypeIDs[0], reassembled.FuncTypeIDs[0])
}
