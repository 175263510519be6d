// Package tests exercises spec.md §8's testable properties end to end
// against hand-assembled Wasm binaries, the same "encode the bytes, drive
// the embedder API, assert the observable behaviour" shape as the teacher's
// own tests/spectest harness (deleted along with the rest of its JIT-era
// test tree, but its schema lives on in cmd/wasmi/wast.go).
package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/wasmigo/wasmi"
	"github.com/wasmigo/wasmi/api"
)

// addWasm: (func (export "add") (param i32 i32) (result i32)
//
//	local.get 0
//	local.get 1
//	i32.add)
var addWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

// S1: arithmetic round-trip, including i32 wrapping overflow.
func TestS1ArithmeticRoundTrip(t *testing.T) {
	ctx := context.Background()
	rt := wasmi.NewRuntime(wasmi.NewRuntimeConfig())
	cm, err := rt.CompileModule(ctx, addWasm)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	inst, err := rt.NewLinker().Instantiate(ctx, rt.NewStore(), cm)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	add := inst.ExportedFunction("add")

	res, err := add.Call(ctx, api.EncodeI32(1), api.EncodeI32(2))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeI32(res[0]); got != 3 {
		t.Fatalf("1+2 = %d, want 3", got)
	}

	res, err = add.Call(ctx, api.EncodeI32(2147483647), api.EncodeI32(1))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeI32(res[0]); got != -2147483648 {
		t.Fatalf("MaxInt32+1 = %d, want wraparound to MinInt32", got)
	}
}

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

// S2: memory round-trip, zeroed-at-start semantics, and out-of-bounds trap.
func TestS2MemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	rt := wasmi.NewRuntime(wasmi.NewRuntimeConfig())
	cm, err := rt.CompileModule(ctx, memWasm)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	inst, err := rt.NewLinker().Instantiate(ctx, rt.NewStore(), cm)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	poke, peek := inst.ExportedFunction("poke"), inst.ExportedFunction("peek")

	if res, err := peek.Call(ctx, api.EncodeI32(0)); err != nil || api.DecodeI32(res[0]) != 0 {
		t.Fatalf("peek(0) = %v, %v; want 0, nil", res, err)
	}

	if _, err := poke.Call(ctx, api.EncodeI32(16), api.EncodeI32(42)); err != nil {
		t.Fatalf("poke: %v", err)
	}
	if res, err := peek.Call(ctx, api.EncodeI32(16)); err != nil || api.DecodeI32(res[0]) != 42 {
		t.Fatalf("peek(16) = %v, %v; want 42, nil", res, err)
	}

	_, err = peek.Call(ctx, api.EncodeI32(65533))
	if err == nil {
		t.Fatalf("peek(65533): expected out-of-bounds trap, got none")
	}
	var trap *wasmi.Trap
	if !errors.As(err, &trap) || trap.Code() != wasmi.TrapCodeMemoryOutOfBounds {
		t.Fatalf("peek(65533): got %v, want TrapCodeMemoryOutOfBounds", err)
	}
}

// loopWasm: (func (export "loop") (loop br 0))
var loopWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x08, 0x01, 0x04, 0x6c, 0x6f, 0x6f, 0x70, 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x03, 0x40, 0x0c, 0x00, 0x0b, 0x0b,
}

// S3: an infinite loop under a finite fuel budget traps OutOfFuel with
// exactly zero fuel remaining.
func TestS3FuelExhaustion(t *testing.T) {
	ctx := context.Background()
	rt := wasmi.NewRuntime(wasmi.NewRuntimeConfig().WithFuelConsumption(true))
	cm, err := rt.CompileModule(ctx, loopWasm)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	inst, err := rt.NewLinker().Instantiate(ctx, rt.NewStore(), cm)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if err := inst.AddFuel(1000); err != nil {
		t.Fatalf("AddFuel: %v", err)
	}

	_, err = inst.ExportedFunction("loop").Call(ctx)
	if err == nil {
		t.Fatalf("loop: expected OutOfFuel trap, got none")
	}
	var trap *wasmi.Trap
	if !errors.As(err, &trap) || trap.Code() != wasmi.TrapCodeOutOfFuel {
		t.Fatalf("loop: got %v, want TrapCodeOutOfFuel", err)
	}

	consumed, ok := inst.FuelConsumed()
	if !ok {
		t.Fatalf("FuelConsumed: fuel metering reported disabled")
	}
	if remaining := int64(1000) - int64(consumed); remaining != 0 {
		t.Fatalf("fuel remaining after exhaustion = %d, want exactly 0", remaining)
	}
}

// growWasm: (memory 1 2)
//
//	(func (export "grow") (param i32) (result i32) local.get 0 memory.grow)
var growWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x06, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x05, 0x04, 0x01, 0x01, 0x01, 0x02,
	0x07, 0x08, 0x01, 0x04, 0x67, 0x72, 0x6f, 0x77, 0x00, 0x00,
	0x0a, 0x08, 0x01, 0x06, 0x00, 0x20, 0x00, 0x40, 0x00, 0x0b,
}

// rejectingLimiter rejects any memory growth past a single page, to make
// the denied-growth path in S4 observable without exhausting real memory.
type rejectingLimiter struct{ maxPages int }

func (l *rejectingLimiter) OnMemoryGrow(_, desired int) bool { return desired <= l.maxPages }
func (l *rejectingLimiter) OnTableGrow(int, int) bool        { return true }
func (l *rejectingLimiter) OnInstanceCreated(int, int) bool  { return true }

// S4: memory.grow succeeds up to the declared maximum, and a resource
// limiter can veto growth before that maximum is reached.
func TestS4MemoryGrowthAndLimiter(t *testing.T) {
	ctx := context.Background()
	rt := wasmi.NewRuntime(wasmi.NewRuntimeConfig())

	cm, err := rt.CompileModule(ctx, growWasm)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	t.Run("unrestricted", func(t *testing.T) {
		inst, err := rt.NewLinker().Instantiate(ctx, rt.NewStore(), cm)
		if err != nil {
			t.Fatalf("instantiate: %v", err)
		}
		res, err := inst.ExportedFunction("grow").Call(ctx, api.EncodeI32(1))
		if err != nil {
			t.Fatalf("grow(1): %v", err)
		}
		if prev := api.DecodeI32(res[0]); prev != 1 {
			t.Fatalf("grow(1) returned previous size %d, want 1", prev)
		}
	})

	t.Run("limited", func(t *testing.T) {
		st := rt.NewStore()
		st.SetResourceLimiter(&rejectingLimiter{maxPages: 1})
		inst, err := rt.NewLinker().Instantiate(ctx, st, cm)
		if err != nil {
			t.Fatalf("instantiate: %v", err)
		}
		res, err := inst.ExportedFunction("grow").Call(ctx, api.EncodeI32(1))
		if err != nil {
			t.Fatalf("grow(1): %v", err)
		}
		if got := api.DecodeI32(res[0]); got != -1 {
			t.Fatalf("grow(1) under a limiter capped at 1 page returned %d, want -1 (rejected)", got)
		}
	})
}

// mismatchWasm: a table holding one (func (result i64)), called through a
// call_indirect expecting (func (result i32)).
//
//	(type $i32 (func (result i32)))
//	(type $i64 (func (result i64)))
//	(table 1 funcref)
//	(elem (i32.const 0) $other)
//	(func $other (result i64) i64.const 7)
//	(func (export "go") (result i32) i32.const 0 call_indirect (type $i32))
var mismatchWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x09, 0x02, 0x60, 0x00, 0x01, 0x7f, 0x60, 0x00, 0x01, 0x7e,
	0x03, 0x03, 0x02, 0x01, 0x00,
	0x04, 0x04, 0x01, 0x70, 0x00, 0x01,
	0x07, 0x06, 0x01, 0x02, 0x67, 0x6f, 0x00, 0x01,
	0x09, 0x07, 0x01, 0x00, 0x41, 0x00, 0x0b, 0x01, 0x00,
	0x0a, 0x0e, 0x02,
	0x04, 0x00, 0x42, 0x07, 0x0b,
	0x07, 0x00, 0x41, 0x00, 0x11, 0x00, 0x00, 0x0b,
}

// S5: call_indirect against a table slot whose stored function signature
// does not match the call site's declared type traps.
func TestS5IndirectCallTypeMismatch(t *testing.T) {
	ctx := context.Background()
	rt := wasmi.NewRuntime(wasmi.NewRuntimeConfig())
	cm, err := rt.CompileModule(ctx, mismatchWasm)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	inst, err := rt.NewLinker().Instantiate(ctx, rt.NewStore(), cm)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	_, err = inst.ExportedFunction("go").Call(ctx)
	if err == nil {
		t.Fatalf("go: expected IndirectCallTypeMismatch trap, got none")
	}
	var trap *wasmi.Trap
	if !errors.As(err, &trap) || trap.Code() != wasmi.TrapCodeIndirectCallTypeMismatch {
		t.Fatalf("go: got %v, want TrapCodeIndirectCallTypeMismatch", err)
	}
}

// chainWasm: (import "env" "add1" (func $add1 (param i32) (result i32)))
//
//	(func (export "chain") (param i32) (result i32)
//	  local.get 0
//	  call $add1
//	  call $add1)
var chainWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x06, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	0x02, 0x0c, 0x01, 0x03, 0x65, 0x6e, 0x76, 0x04, 0x61, 0x64, 0x64, 0x31, 0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x09, 0x01, 0x05, 0x63, 0x68, 0x61, 0x69, 0x6e, 0x00, 0x01,
	0x0a, 0x0a, 0x01, 0x08, 0x00, 0x20, 0x00, 0x10, 0x00, 0x10, 0x00, 0x0b,
}

type errFailingHost struct{ reason string }

func (e *errFailingHost) Error() string { return e.reason }

// S6: a host callback called twice through Wasm-to-host calls, plus a host
// error surfacing through Function.Call as a *wasmi.Trap whose Unwrap
// reaches the original error (the Go analogue of spec.md §7's
// Trap::downcast_ref).
func TestS6HostCallbackChaining(t *testing.T) {
	ctx := context.Background()
	rt := wasmi.NewRuntime(wasmi.NewRuntimeConfig())
	cm, err := rt.CompileModule(ctx, chainWasm)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	i32 := []api.ValueType{api.ValueTypeI32}
	linker := rt.NewLinker()
	if err := linker.DefineFunc("env", "add1", i32, i32, func(_ context.Context, args []uint64) ([]uint64, error) {
		return []uint64{api.EncodeI32(api.DecodeI32(args[0]) + 1)}, nil
	}); err != nil {
		t.Fatalf("DefineFunc: %v", err)
	}

	inst, err := linker.Instantiate(ctx, rt.NewStore(), cm)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	res, err := inst.ExportedFunction("chain").Call(ctx, api.EncodeI32(40))
	if err != nil {
		t.Fatalf("chain(40): %v", err)
	}
	if got := api.DecodeI32(res[0]); got != 42 {
		t.Fatalf("chain(40) = %d, want 42", got)
	}

	failingLinker := rt.NewLinker()
	wantErr := &errFailingHost{reason: "deliberate host failure"}
	if err := failingLinker.DefineFunc("env", "add1", i32, i32, func(context.Context, []uint64) ([]uint64, error) {
		return nil, wantErr
	}); err != nil {
		t.Fatalf("DefineFunc: %v", err)
	}
	failingInst, err := failingLinker.Instantiate(ctx, rt.NewStore(), cm)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	_, err = failingInst.ExportedFunction("chain").Call(ctx, api.EncodeI32(40))
	if err == nil {
		t.Fatalf("chain(40): expected a trap wrapping the host error, got none")
	}
	var got *errFailingHost
	if !errors.As(err, &got) || got != wantErr {
		t.Fatalf("chain(40): errors.As did not reach the original host error through the Trap wrapper: %v", err)
	}
}
