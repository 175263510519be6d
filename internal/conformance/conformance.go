//go:build amd64 && cgo && !windows

// Package conformance differentially tests this engine's Call results
// against wasmtime-go and wasmer-go on the same binary and arguments, so a
// translator or executor bug that still produces a plausible-looking number
// has an independent oracle to be caught against. Gated the same way the
// teacher repo's own vs/ package gates its cross-engine benchmarks:
// wasmtime-go only links on amd64+cgo, wasmer-go does not link on Windows.
package conformance

import (
	"context"
	"fmt"

	"github.com/bytecodealliance/wasmtime-go/v3"
	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/wasmigo/wasmi"
	"github.com/wasmigo/wasmi/api"
)

// Result is one oracle's outcome for a single call: either a flat list of
// i64-reinterpreted results, or a trap/error message.
type Result struct {
	Engine string
	Values []uint64
	Err    string
}

// Run compiles wasmBytes and calls funcName(args...) against this engine,
// wasmtime-go, and wasmer-go, returning one Result per engine in a fixed
// order ("wasmi", "wasmtime", "wasmer") for the caller to compare.
func Run(wasmBytes []byte, funcName string, resultTypes []api.ValueType, args ...uint64) ([]Result, error) {
	results := make([]Result, 0, 3)

	r, err := runWasmi(wasmBytes, funcName, args)
	if err != nil {
		return nil, fmt.Errorf("conformance: wasmi setup: %w", err)
	}
	results = append(results, r)

	results = append(results, runWasmtime(wasmBytes, funcName, args))
	results = append(results, runWasmer(wasmBytes, funcName, resultTypes, args))

	return results, nil
}

func runWasmi(wasmBytes []byte, funcName string, args []uint64) (Result, error) {
	rt := wasmi.NewRuntime(wasmi.NewRuntimeConfig())
	cm, err := rt.CompileModule(context.Background(), wasmBytes)
	if err != nil {
		return Result{}, err
	}
	st := rt.NewStore()
	inst, err := rt.NewLinker().Instantiate(context.Background(), st, cm)
	if err != nil {
		return Result{}, err
	}
	fn := inst.ExportedFunction(funcName)
	if fn == nil {
		return Result{}, fmt.Errorf("export %q not found", funcName)
	}
	vals, err := fn.Call(context.Background(), args...)
	if err != nil {
		return Result{Engine: "wasmi", Err: err.Error()}, nil
	}
	return Result{Engine: "wasmi", Values: vals}, nil
}

func runWasmtime(wasmBytes []byte, funcName string, args []uint64) Result {
	store := wasmtime.NewStore(wasmtime.NewEngine())
	module, err := wasmtime.NewModule(store.Engine, wasmBytes)
	if err != nil {
		return Result{Engine: "wasmtime", Err: err.Error()}
	}
	instance, err := wasmtime.NewInstance(store, module, nil)
	if err != nil {
		return Result{Engine: "wasmtime", Err: err.Error()}
	}
	run := instance.GetFunc(store, funcName)
	if run == nil {
		return Result{Engine: "wasmtime", Err: "export not found"}
	}
	wargs := make([]interface{}, len(args))
	for i, a := range args {
		wargs[i] = int64(a)
	}
	out, err := run.Call(store, wargs...)
	if err != nil {
		return Result{Engine: "wasmtime", Err: err.Error()}
	}
	return Result{Engine: "wasmtime", Values: encodeWasmtimeResult(out)}
}

func encodeWasmtimeResult(out interface{}) []uint64 {
	if out == nil {
		return nil
	}
	if vals, ok := out.([]wasmtime.Val); ok {
		res := make([]uint64, len(vals))
		for i, v := range vals {
			res[i] = uint64(v.I64())
		}
		return res
	}
	switch v := out.(type) {
	case int32:
		return []uint64{uint64(uint32(v))}
	case int64:
		return []uint64{uint64(v)}
	default:
		return nil
	}
}

func runWasmer(wasmBytes []byte, funcName string, resultTypes []api.ValueType, args []uint64) Result {
	store := wasmer.NewStore(wasmer.NewEngine())
	module, err := wasmer.NewModule(store, wasmBytes)
	if err != nil {
		return Result{Engine: "wasmer", Err: err.Error()}
	}
	instance, err := wasmer.NewInstance(module, wasmer.NewImportObject())
	if err != nil {
		return Result{Engine: "wasmer", Err: err.Error()}
	}
	fn, err := instance.Exports.GetFunction(funcName)
	if err != nil {
		return Result{Engine: "wasmer", Err: err.Error()}
	}
	wargs := make([]interface{}, len(args))
	for i, a := range args {
		wargs[i] = int64(a)
	}
	out, err := fn(wargs...)
	if err != nil {
		return Result{Engine: "wasmer", Err: err.Error()}
	}
	if len(resultTypes) == 0 {
		return Result{Engine: "wasmer"}
	}
	switch v := out.(type) {
	case int32:
		return Result{Engine: "wasmer", Values: []uint64{uint64(uint32(v))}}
	case int64:
		return Result{Engine: "wasmer", Values: []uint64{uint64(v)}}
	default:
		return Result{Engine: "wasmer", Values: nil}
	}
}
