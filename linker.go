package wasmi

import (
	"context"
	"fmt"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/moduledef"
	"github.com/wasmigo/wasmi/internal/store"
)

// HostFunc is a host-defined function body, in the same raw-cell calling
// convention as Function.Call (one uint64 per parameter/result, api.Encode*
// encoded). It is the Go analogue of wasmtime-go's Func callback and
// wazero's api.GoModuleFunction, kept deliberately low-level since this
// engine has no reflection-based signature adapter (spec.md's Non-goals
// exclude the builder-style host function DSL the teacher's builder.go
// provides).
type HostFunc func(ctx context.Context, args []uint64) ([]uint64, error)

// Linker resolves a module's imports by name against either host functions
// defined directly on it, or the exports of a previously instantiated
// module registered under a name, then instantiates the module (spec.md
// §4.4 "Instantiation" steps 1-2: subtyping-checked import resolution).
// Grounded on wasmtime-go's Linker and wazero's NewHostModuleBuilder +
// InstantiateModule(WithName) pair, unified into one type since this
// engine's import-resolution model does not need to distinguish "host
// module" from "Wasm module" once both are reduced to named export sets.
type Linker struct {
	runtime *Runtime
	hosts   map[string]map[string]hostExtern
}

type hostExtern struct {
	kind api.ExternType
	fn   *store.FuncInstance
	mem  *store.Memory
	tbl  *store.Table
	glb  *store.Global
}

// NewLinker creates a Linker for modules compiled against r.
func (r *Runtime) NewLinker() *Linker {
	return &Linker{runtime: r, hosts: make(map[string]map[string]hostExtern)}
}

func (l *Linker) moduleMap(moduleName string) map[string]hostExtern {
	m, ok := l.hosts[moduleName]
	if !ok {
		m = make(map[string]hostExtern)
		l.hosts[moduleName] = m
	}
	return m
}

// DefineFunc registers a host function importable as moduleName.name.
func (l *Linker) DefineFunc(moduleName, name string, params, results []api.ValueType, fn HostFunc) error {
	l.moduleMap(moduleName)[name] = hostExtern{
		kind: api.ExternTypeFunc,
		fn: &store.FuncInstance{
			Type: moduledef.FuncType{Params: params, Results: results},
			Host: store.HostFunc(fn),
		},
	}
	return nil
}

// DefineMemory registers a host-owned memory importable as moduleName.name.
func (l *Linker) DefineMemory(moduleName, name string, minPages uint32, maxPages uint32, hasMax bool) error {
	mt := moduledef.MemoryType{Limits: moduledef.Limits{Min: uint64(minPages), Max: uint64(maxPages), HasMax: hasMax}}
	l.moduleMap(moduleName)[name] = hostExtern{
		kind: api.ExternTypeMemory,
		mem:  &store.Memory{Data: make([]byte, uint64(minPages)*mt.PageSize()), Type: mt, PageSize: mt.PageSize()},
	}
	return nil
}

// DefineModule registers every export of an already-instantiated inst as
// importable under moduleName, the Go analogue of wasmtime-go's
// Linker.DefineModule (and wazero's WithName + re-instantiation pattern).
func (l *Linker) DefineModule(moduleName string, inst *Instance) error {
	m := l.moduleMap(moduleName)
	for _, name := range inst.ExportNames() {
		e, _ := inst.Export(name)
		switch e.Type() {
		case api.ExternTypeFunc:
			m[name] = hostExtern{kind: api.ExternTypeFunc, fn: e.Func().(*function).fn}
		case api.ExternTypeMemory:
			m[name] = hostExtern{kind: api.ExternTypeMemory, mem: e.Memory().(*memory).m}
		case api.ExternTypeTable:
			m[name] = hostExtern{kind: api.ExternTypeTable, tbl: e.Table().(*table).t}
		case api.ExternTypeGlobal:
			m[name] = hostExtern{kind: api.ExternTypeGlobal, glb: e.Global().(*global).g}
		}
	}
	return nil
}

// Instantiate resolves cm's imports against everything defined on l so far
// and instantiates it against st (spec.md §4.4). Each import is matched by
// (module, name) and subtyping-checked per moduledef.Limits.Satisfies for
// memories/tables; a missing or mismatched import is an error, never a
// trap.
func (l *Linker) Instantiate(ctx context.Context, st *Store, cm *CompiledModule) (*Instance, error) {
	var imports store.Imports
	for _, imp := range cm.header.Imports {
		mod, ok := l.hosts[imp.Module]
		if !ok {
			return nil, fmt.Errorf("wasmi: unresolved import %q: no such module defined", imp.Module)
		}
		ext, ok := mod[imp.Name]
		if !ok {
			return nil, fmt.Errorf("wasmi: unresolved import %s.%s", imp.Module, imp.Name)
		}
		if ext.kind != imp.Kind {
			return nil, fmt.Errorf("wasmi: import %s.%s kind mismatch: want %s, have %s",
				imp.Module, imp.Name, api.ExternTypeName(imp.Kind), api.ExternTypeName(ext.kind))
		}
		switch imp.Kind {
		case api.ExternTypeFunc:
			want := cm.header.Types[imp.FuncTypeIdx]
			if !want.Equal(&ext.fn.Type) {
				return nil, fmt.Errorf("wasmi: import %s.%s signature mismatch", imp.Module, imp.Name)
			}
			imports.Funcs = append(imports.Funcs, ext.fn)
		case api.ExternTypeMemory:
			if !ext.mem.Type.Limits.Satisfies(imp.Memory.Limits) {
				return nil, fmt.Errorf("wasmi: import %s.%s memory limits do not satisfy requirement", imp.Module, imp.Name)
			}
			imports.Memories = append(imports.Memories, ext.mem)
		case api.ExternTypeTable:
			if ext.tbl.Type.ElemType != imp.Table.ElemType || !ext.tbl.Type.Limits.Satisfies(imp.Table.Limits) {
				return nil, fmt.Errorf("wasmi: import %s.%s table type mismatch", imp.Module, imp.Name)
			}
			imports.Tables = append(imports.Tables, ext.tbl)
		case api.ExternTypeGlobal:
			if ext.glb.Type.ValType != imp.Global.ValType || ext.glb.Type.Mutable != imp.Global.Mutable {
				return nil, fmt.Errorf("wasmi: import %s.%s global type mismatch", imp.Module, imp.Name)
			}
			imports.Globals = append(imports.Globals, ext.glb)
		}
	}
	return st.instantiate(ctx, cm, imports)
}
