package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/binary"
	"github.com/wasmigo/wasmi/internal/engine"
	"github.com/wasmigo/wasmi/internal/moduledef"
)

// memWasm: (memory 1)
//
//	(func (export "poke") (param i32 i32) local.get 0 local.get 1 i32.store)
//	(func (export "peek") (param i32) (result i32) local.get 0 i32.load)
var memWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x0b, 0x02, 0x60, 0x02, 0x7f, 0x7f, 0x00, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	0x03, 0x03, 0x02, 0x00, 0x01,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x0f, 0x02, 0x04, 0x70, 0x6f, 0x6b, 0x65, 0x00, 0x00, 0x04, 0x70, 0x65, 0x65, 0x6b, 0x00, 0x01,
	0x0a, 0x13, 0x02,
	0x09, 0x00, 0x20, 0x00, 0x20, 0x01, 0x36, 0x02, 0x00, 0x0b,
	0x07, 0x00, 0x20, 0x00, 0x28, 0x02, 0x00, 0x0b,
}

func compileForTest(t *testing.T, wasmBytes []byte) (*moduledef.ModuleHeader, *engine.CompiledModule) {
	t.Helper()
	header, codes, err := binary.DecodeModule(wasmBytes, moduledef.WasmV1FeatureSet)
	require.NoError(t, err)
	e := engine.New(nil)
	cm, err := e.CompileModule(header, codes)
	require.NoError(t, err)
	return header, cm
}

func TestInstantiateWiresMemoryAndExports(t *testing.T) {
	header, cm := compileForTest(t, memWasm)

	inst, err := Instantiate(context.Background(), header, cm.AllTypeIDs, cm.FuncTypeIDs, cm.Bodies, Imports{}, nil, nil)
	require.NoError(t, err)

	require.Len(t, inst.Mems, 1)
	require.EqualValues(t, 1, inst.Mems[0].Pages())
	require.Len(t, inst.Mems[0].Data, int(inst.Mems[0].PageSize))

	pokeFn, kind, ok := inst.Export("poke")
	require.True(t, ok)
	require.Equal(t, api.ExternTypeFunc, kind)
	require.False(t, pokeFn.(*FuncInstance).IsHost())

	_, _, ok = inst.Export("nonexistent")
	require.False(t, ok)
}

func TestMemoryGrowRespectsMaximumAndLimiter(t *testing.T) {
	mem := &Memory{
		Data:     make([]byte, 65536),
		Type:     moduledef.MemoryType{Limits: moduledef.Limits{Min: 1, Max: 2, HasMax: true}},
		PageSize: 65536,
	}

	prev := mem.Grow(1, nil)
	require.EqualValues(t, 1, prev)
	require.EqualValues(t, 2, mem.Pages())

	// Already at the declared maximum: further growth is rejected, not a panic.
	rejected := mem.Grow(1, nil)
	require.EqualValues(t, -1, rejected)
}

type fixedLimiter struct{ allow bool }

func (l *fixedLimiter) OnMemoryGrow(int, int) bool      { return l.allow }
func (l *fixedLimiter) OnTableGrow(int, int) bool       { return l.allow }
func (l *fixedLimiter) OnInstanceCreated(int, int) bool { return l.allow }

func TestMemoryGrowConsultsLimiter(t *testing.T) {
	mem := &Memory{
		Data:     make([]byte, 65536),
		Type:     moduledef.MemoryType{Limits: moduledef.Limits{Min: 1}},
		PageSize: 65536,
	}
	got := mem.Grow(1, &fixedLimiter{allow: false})
	require.EqualValues(t, -1, got)
}

func TestTableGrowFillsNewSlotsWithInit(t *testing.T) {
	tbl := &Table{Type: moduledef.TableType{Limits: moduledef.Limits{Min: 1}}}
	tbl.Elems = make([]TableElem, 1)

	prev := tbl.Grow(2, TableElem{FuncAddr: 7}, nil)
	require.EqualValues(t, 1, prev)
	require.Len(t, tbl.Elems, 3)
	require.Equal(t, int32(7), tbl.Elems[1].FuncAddr)
	require.Equal(t, int32(7), tbl.Elems[2].FuncAddr)
}
