// Package store holds the mutable runtime entity arenas a Store owns:
// function, table, memory, and global instances, plus the module instances
// that tie a compiled module's index spaces to concrete entities (spec.md §3
// "Store (runtime, mutable)"). Addresses are arena slice indices, mirroring
// wazero's internal/wasm moduleInstance/*Instance arena shapes rather than a
// map-based store, since entities are never removed individually (a Store's
// entities live as long as the Store itself).
package store

import (
	"context"
	"fmt"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/moduledef"
	"github.com/wasmigo/wasmi/internal/translator"
)

// HostFunc is a host-defined function body: it receives the raw argument
// cells (one uint64 per Wasm value, floats bit-reinterpreted per
// api.EncodeF32/EncodeF64) and returns the result cells in the same
// encoding. A returned error becomes a TrapHost at the call site.
type HostFunc func(ctx context.Context, args []uint64) ([]uint64, error)

// FuncInstance is one entry of the Store's function arena: either a
// Wasm-defined function (Body set, closed over its owning Instance for
// global/memory/table/call access) or a host function (Host set).
type FuncInstance struct {
	TypeID uint32
	Type   moduledef.FuncType

	Body     *translator.FuncBody
	Instance *Instance

	Host HostFunc
}

// IsHost reports whether this is a host-defined function.
func (f *FuncInstance) IsHost() bool { return f.Host != nil }

// Memory is one linear memory instance: a byte slice sized in whole pages.
type Memory struct {
	Data     []byte
	Type     moduledef.MemoryType
	PageSize uint64
}

// Pages returns the current size of m in pages.
func (m *Memory) Pages() uint64 { return uint64(len(m.Data)) / m.PageSize }

// Grow attempts to grow m by delta pages, returning the previous page count
// or -1 if the growth would exceed the memory's maximum (spec.md §4.2
// memory.grow failure contract: returns -1, never traps).
func (m *Memory) Grow(delta uint64, limiter ResourceLimiter) int64 {
	cur := m.Pages()
	next := cur + delta
	if m.Type.Limits.HasMax && next > m.Type.Limits.Max {
		return -1
	}
	const absoluteMaxPages = 1 << 16 // 4GiB / 64KiB, the Wasm32 ceiling
	if !m.Type.Is64 && next > absoluteMaxPages {
		return -1
	}
	if limiter != nil && !limiter.OnMemoryGrow(int(cur), int(next)) {
		return -1
	}
	grown := make([]byte, next*m.PageSize)
	copy(grown, m.Data)
	m.Data = grown
	return int64(cur)
}

// TableElem is one slot of a Table: either null, a function reference
// (funcref tables), or an opaque host value (externref tables).
type TableElem struct {
	Null     bool
	FuncAddr int32
	Extern   any
}

// Table is one table instance.
type Table struct {
	Elems []TableElem
	Type  moduledef.TableType
}

// Grow attempts to grow t by delta elements, each initialised to init,
// returning the previous length or -1 on failure (same failure contract as
// Memory.Grow).
func (t *Table) Grow(delta uint32, init TableElem, limiter ResourceLimiter) int64 {
	cur := uint32(len(t.Elems))
	next := uint64(cur) + uint64(delta)
	if t.Type.Limits.HasMax && next > t.Type.Limits.Max {
		return -1
	}
	if limiter != nil && !limiter.OnTableGrow(int(cur), int(next)) {
		return -1
	}
	grown := make([]TableElem, next)
	copy(grown, t.Elems)
	for i := cur; uint64(i) < next; i++ {
		grown[i] = init
	}
	t.Elems = grown
	return int64(cur)
}

// Global is one global variable instance.
type Global struct {
	Value uint64 // scalar cell value; funcref/externref encode like TableElem below
	Ref   TableElem
	Type  moduledef.GlobalType
}

// ElemSegmentInstance is the runtime state of one element segment: its
// resolved contents (func instances packaged as TableElem for uniform
// table.init copying) and whether elem.drop has fired.
type ElemSegmentInstance struct {
	Elems   []TableElem
	Dropped bool
}

// DataSegmentInstance is the runtime state of one data segment.
type DataSegmentInstance struct {
	Bytes   []byte
	Dropped bool
}

// Instance ties one compiled module's index spaces to concrete Store
// entities: each Funcs/Tables/Memories/Globals slice is indexed exactly like
// the corresponding Wasm index space (imports first, then locally defined).
type Instance struct {
	Header  *moduledef.ModuleHeader
	TypeIDs []uint32 // Engine-wide dedup id per Header.Types entry; see call_indirect type checks
	Funcs   []*FuncInstance
	Tables  []*Table
	Mems    []*Memory
	Globals []*Global
	Elems   []ElemSegmentInstance
	Datas   []DataSegmentInstance
}

// Export resolves a name to its live entity, or false if not exported.
func (inst *Instance) Export(name string) (any, moduledef.ExternKind, bool) {
	exp, ok := inst.Header.FindExport(name)
	if !ok {
		return nil, 0, false
	}
	switch exp.Kind {
	case api.ExternTypeFunc:
		return inst.Funcs[exp.Index], exp.Kind, true
	case api.ExternTypeTable:
		return inst.Tables[exp.Index], exp.Kind, true
	case api.ExternTypeMemory:
		return inst.Mems[exp.Index], exp.Kind, true
	case api.ExternTypeGlobal:
		return inst.Globals[exp.Index], exp.Kind, true
	}
	return nil, 0, false
}

// ResourceLimiter gates growth of instances/tables/memories, mirroring
// spec.md §4.3's limiter callback shape (supplemented from
// original_source/crates/wasmi/src/limits.rs: the "instances, tables,
// memories" live-count fields the spec names but does not elaborate).
type ResourceLimiter interface {
	OnMemoryGrow(current, desired int) bool
	OnTableGrow(current, desired int) bool
	OnInstanceCreated(current, desired int) bool
}

// ResolveInitExpr evaluates a constant expression against inst's already
// (partially) initialised global index space, per spec.md §3's InitExpr
// kinds. Only global.get of an *imported* global is legal here (a forward
// reference to a not-yet-initialised local global is a validation error
// caught earlier), which is why this only needs inst.Globals for indices
// below the currently-initialising one.
func ResolveInitExpr(inst *Instance, e moduledef.InitExpr) (uint64, TableElem) {
	switch e.Kind {
	case moduledef.InitExprConst:
		return e.Value, TableElem{}
	case moduledef.InitExprGlobalGet:
		g := inst.Globals[e.GlobalIdx]
		return g.Value, g.Ref
	case moduledef.InitExprRefFunc:
		return 0, TableElem{FuncAddr: int32(e.FuncIdx)}
	case moduledef.InitExprRefNull:
		return 0, TableElem{Null: true}
	}
	panic(fmt.Sprintf("store: unknown init expr kind %d", e.Kind))
}
