package wasmi

import (
	"context"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/binary"
	"github.com/wasmigo/wasmi/internal/engine"
	"github.com/wasmigo/wasmi/internal/moduledef"
)

// CompiledModule is a parsed and translated Wasm binary, ready to be
// instantiated (possibly more than once) against any Store belonging to the
// Runtime that compiled it. Grounded on wazero's CompiledModule /
// wasmtime-go's Module: the split between "compile once" and "instantiate
// many times" is the same cost model both take advantage of.
type CompiledModule struct {
	header   *moduledef.ModuleHeader
	compiled *engine.CompiledModule
}

// ExportedFunctions reports every exported function's name and signature,
// without requiring an instance.
func (c *CompiledModule) ExportedFunctions() map[string]moduledef.FuncType {
	out := make(map[string]moduledef.FuncType)
	for _, exp := range c.header.Exports {
		if exp.Kind != api.ExternTypeFunc {
			continue
		}
		tyIdx := c.header.FuncTypeIndex(exp.Index)
		out[exp.Name] = c.header.Types[tyIdx]
	}
	return out
}

// CompileModule parses and translates a Wasm binary against r's Engine,
// interning its function types into r's cross-module dedup arena (spec.md
// §3's Engine). The resulting CompiledModule may be instantiated many times,
// across many Stores created from r.
func (r *Runtime) CompileModule(_ context.Context, wasmBytes []byte) (*CompiledModule, error) {
	header, codes, err := binary.DecodeModule(wasmBytes, r.cfg.Features)
	if err != nil {
		return nil, err
	}
	cm, err := r.engine.CompileModule(header, codes)
	if err != nil {
		return nil, err
	}
	return &CompiledModule{header: header, compiled: cm}, nil
}
