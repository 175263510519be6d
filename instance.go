package wasmi

import (
	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/moduledef"
	"github.com/wasmigo/wasmi/internal/store"
)

// Instance is a live, instantiated module: concrete memories, tables,
// globals, and functions, all reachable by their export name. Grounded on
// wazero's api.Module (the embedder-facing instantiated-module handle).
type Instance struct {
	store  *Store
	inst   *store.Instance
	header *moduledef.ModuleHeader
}

// ExportedFunction looks up an exported function by name.
func (i *Instance) ExportedFunction(name string) Function {
	e, ok := i.Export(name)
	if !ok || e.Type() != api.ExternTypeFunc {
		return nil
	}
	return e.Func()
}

// ExportedMemory looks up an exported memory by name.
func (i *Instance) ExportedMemory(name string) Memory {
	e, ok := i.Export(name)
	if !ok || e.Type() != api.ExternTypeMemory {
		return nil
	}
	return e.Memory()
}

// ExportedTable looks up an exported table by name.
func (i *Instance) ExportedTable(name string) Table {
	e, ok := i.Export(name)
	if !ok || e.Type() != api.ExternTypeTable {
		return nil
	}
	return e.Table()
}

// ExportedGlobal looks up an exported global by name.
func (i *Instance) ExportedGlobal(name string) Global {
	e, ok := i.Export(name)
	if !ok || e.Type() != api.ExternTypeGlobal {
		return nil
	}
	return e.Global()
}

// Export resolves any export by name, tagged with its kind.
func (i *Instance) Export(name string) (Extern, bool) {
	v, kind, ok := i.inst.Export(name)
	if !ok {
		return nil, false
	}
	switch kind {
	case api.ExternTypeFunc:
		return &extern{kind: kind, fn: &function{st: i.store, fn: v.(*store.FuncInstance)}}, true
	case api.ExternTypeMemory:
		return &extern{kind: kind, mem: &memory{st: i.store, m: v.(*store.Memory)}}, true
	case api.ExternTypeTable:
		return &extern{kind: kind, tbl: &table{st: i.store, t: v.(*store.Table)}}, true
	case api.ExternTypeGlobal:
		return &extern{kind: kind, glb: &global{g: v.(*store.Global)}}, true
	}
	return nil, false
}

// ExportNames lists every exported name, in declaration order.
func (i *Instance) ExportNames() []string {
	names := make([]string, len(i.header.Exports))
	for idx, e := range i.header.Exports {
		names[idx] = e.Name
	}
	return names
}
