package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/binary"
	"github.com/wasmigo/wasmi/internal/engine"
	"github.com/wasmigo/wasmi/internal/ir"
	"github.com/wasmigo/wasmi/internal/moduledef"
	"github.com/wasmigo/wasmi/internal/store"
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

// loopWasm: (func (export "loop") (loop br 0))
var loopWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x08, 0x01, 0x04, 0x6c, 0x6f, 0x6f, 0x70, 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x03, 0x40, 0x0c, 0x00, 0x0b, 0x0b,
}

// chainWasm: (import "env" "add1" (func (param i32) (result i32)))
//
//	(func (export "chain") (param i32) (result i32)
//	  local.get 0 call $add1 call $add1)
var chainWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x06, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	0x02, 0x0c, 0x01, 0x03, 0x65, 0x6e, 0x76, 0x04, 0x61, 0x64, 0x64, 0x31, 0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x09, 0x01, 0x05, 0x63, 0x68, 0x61, 0x69, 0x6e, 0x00, 0x01,
	0x0a, 0x0a, 0x01, 0x08, 0x00, 0x20, 0x00, 0x10, 0x00, 0x10, 0x00, 0x0b,
}

func instantiateForTest(t *testing.T, wasmBytes []byte, imports store.Imports) *store.Instance {
	t.Helper()
	header, codes, err := binary.DecodeModule(wasmBytes, moduledef.WasmV1FeatureSet)
	require.NoError(t, err)
	e := engine.New(nil)
	cm, err := e.CompileModule(header, codes)
	require.NoError(t, err)
	ex := New(Limits{})
	inst, err := store.Instantiate(context.Background(), header, cm.AllTypeIDs, cm.FuncTypeIDs, cm.Bodies, imports, nil, ex)
	require.NoError(t, err)
	return inst
}

func TestCallExecutesAddition(t *testing.T) {
	inst := instantiateForTest(t, addWasm, store.Imports{})
	ex := New(Limits{})

	fn, _, ok := inst.Export("add")
	require.True(t, ok)

	res, err := ex.Call(context.Background(), fn.(*store.FuncInstance), []uint64{api.EncodeI32(40), api.EncodeI32(2)})
	require.NoError(t, err)
	require.Equal(t, int32(42), api.DecodeI32(res[0]))
}

func TestFuelExhaustionTrapsWithZeroRemaining(t *testing.T) {
	inst := instantiateForTest(t, loopWasm, store.Imports{})
	ex := New(Limits{FuelEnabled: true})
	ex.SetFuel(1000)

	fn, _, ok := inst.Export("loop")
	require.True(t, ok)

	_, err := ex.Call(context.Background(), fn.(*store.FuncInstance), nil)
	require.Error(t, err)
	var trap *Trap
	require.ErrorAs(t, err, &trap)
	require.Equal(t, ir.TrapOutOfFuel, trap.Code)
	require.Equal(t, int64(0), ex.Fuel())
}

func TestHostCallErrorSurfacesThroughTrapUnwrap(t *testing.T) {
	wantErr := errors.New("deliberate host failure")
	hostFn := &store.FuncInstance{
		Type: moduledef.FuncType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}},
		Host: func(context.Context, []uint64) ([]uint64, error) { return nil, wantErr },
	}
	inst := instantiateForTest(t, chainWasm, store.Imports{Funcs: []*store.FuncInstance{hostFn}})
	ex := New(Limits{})

	fn, _, ok := inst.Export("chain")
	require.True(t, ok)

	_, err := ex.Call(context.Background(), fn.(*store.FuncInstance), []uint64{api.EncodeI32(40)})
	require.Error(t, err)
	var trap *Trap
	require.ErrorAs(t, err, &trap)
	require.Equal(t, ir.TrapHost, trap.Code)
	require.ErrorIs(t, trap, wantErr)
}
