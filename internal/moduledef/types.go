// Package moduledef holds the immutable, post-compile representation of a
// Wasm module: types, imports, the table/memory/global type declarations,
// exports, and element/data segments (spec.md §3 "Module (immutable
// post-compile)"). It is produced by internal/binary and consumed by
// internal/translator, internal/engine, and internal/store.
package moduledef

import "github.com/wasmigo/wasmi/api"

// FuncType is a structural function signature. Two FuncTypes with equal
// Params/Results are the same type for every purpose in this repository,
// which is what makes them safe to deduplicate in the Engine (spec.md §3).
type FuncType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// Equal reports structural equality, the criterion the Engine's dedup table
// uses to assign a shared FuncTypeID.
func (f *FuncType) Equal(o *FuncType) bool {
	if len(f.Params) != len(o.Params) || len(f.Results) != len(o.Results) {
		return false
	}
	for i, p := range f.Params {
		if p != o.Params[i] {
			return false
		}
	}
	for i, r := range f.Results {
		if r != o.Results[i] {
			return false
		}
	}
	return true
}

// Limits is the (min, optional max) pair shared by memory and table types.
type Limits struct {
	Min uint64
	Max uint64 // only meaningful when HasMax is true
	HasMax bool
}

// Satisfies implements the Linker's subtyping rule for import matching:
// min >= required.Min and, if required has a max, max <= required.Max and
// the candidate has a max (spec.md §4.4 step 1).
func (l Limits) Satisfies(required Limits) bool {
	if l.Min < required.Min {
		return false
	}
	if !required.HasMax {
		return true
	}
	return l.HasMax && l.Max <= required.Max
}

// RefType distinguishes the two reference kinds addressable by a Table.
type RefType = api.ValueType

const (
	RefTypeFuncref   = api.ValueTypeFuncref
	RefTypeExternref = api.ValueTypeExternref
)

// MemoryType describes a memory import/definition.
type MemoryType struct {
	Limits Limits
	// Is64 selects the i64 index type (memory64 proposal).
	Is64 bool
	// HasCustomPageSize gates the custom-page-sizes proposal; when false,
	// PageSizeLog2 is ignored and the page size is the Wasm default 65536.
	HasCustomPageSize bool
	PageSizeLog2      uint8 // valid values: 0 (1-byte pages) or 16 (the default), when HasCustomPageSize
}

// PageSize returns the byte size of one page for this memory type, either
// 65536 (the default) or one of the two sizes the custom-page-sizes
// proposal allows (1 or 65536), per spec.md §3's "page_size ∈ {1, 65 536}".
func (t MemoryType) PageSize() uint64 {
	if t.HasCustomPageSize {
		return 1 << t.PageSizeLog2
	}
	return 1 << 16
}

// TableType describes a table import/definition.
type TableType struct {
	ElemType RefType
	Limits   Limits
}

// GlobalType describes a global import/definition.
type GlobalType struct {
	ValType api.ValueType
	Mutable bool
}

// ExternKind tags which of the four index spaces an Import/Export refers to.
type ExternKind = api.ExternType

// Import is one entry of the module's import section.
type Import struct {
	Module, Name string
	Kind         ExternKind
	// Exactly one of the following is meaningful, selected by Kind.
	FuncTypeIdx uint32
	Memory      MemoryType
	Table       TableType
	Global      GlobalType
}

// Export is one entry of the module's export section: a unique name mapped
// to (kind, index-within-kind).
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// InitExprKind identifies how a constant expression (global initializer,
// active-segment offset) computes its value.
type InitExprKind uint8

const (
	InitExprConst InitExprKind = iota
	InitExprGlobalGet
	InitExprRefNull
	InitExprRefFunc
)

// InitExpr is a constant expression as used for global initializers and
// active element/data segment offsets: a single constant, global.get,
// ref.null or ref.func. Extended-const arithmetic (i32.add, i64.sub, ...)
// has no representation here; the binary decoder rejects such expressions.
type InitExpr struct {
	Kind    InitExprKind
	Value   uint64 // InitExprConst
	GlobalIdx uint32 // InitExprGlobalGet
	FuncIdx   uint32 // InitExprRefFunc
	ValType api.ValueType
}

// ElementSegmentKind distinguishes the three Wasm element segment modes.
type ElementSegmentKind uint8

const (
	ElementSegmentPassive ElementSegmentKind = iota
	ElementSegmentActive
	ElementSegmentDeclared
)

// ElementSegment is one entry of the module's element section.
type ElementSegment struct {
	Type   RefType
	Kind   ElementSegmentKind
	Table  uint32    // ElementSegmentActive only
	Offset InitExpr  // ElementSegmentActive only
	// Items is one InitExpr per element: either a bare func index
	// (InitExprRefFunc) or a full init-expr (funcref/externref element
	// expressions, reference-types proposal).
	Items []InitExpr
}

// DataSegmentKind distinguishes the two Wasm data segment modes.
type DataSegmentKind uint8

const (
	DataSegmentPassive DataSegmentKind = iota
	DataSegmentActive
)

// DataSegment is one entry of the module's data section.
type DataSegment struct {
	Kind   DataSegmentKind
	Memory uint32   // DataSegmentActive only
	Offset InitExpr // DataSegmentActive only
	Bytes  []byte
}

// CustomSection is a name+payload pair recorded verbatim; custom sections
// may appear anywhere in the stream and never affect validation.
type CustomSection struct {
	Name    string
	Payload []byte
}

// ModuleHeader is the structural, store-independent description of a
// module's index spaces, ahead of function-body translation.
type ModuleHeader struct {
	Types            []FuncType
	Imports          []Import
	FuncTypeIndices  []uint32 // one FuncType index per *defined* function
	Tables           []TableType
	Memories         []MemoryType
	Globals          []GlobalType
	GlobalInitExprs  []InitExpr
	Exports          []Export
	Elements         []ElementSegment
	Datas            []DataSegment
	StartFunc        uint32
	HasStart         bool
	CustomSections   []CustomSection
	EnabledFeatures  FeatureSet
}

// NumImportedFuncs/Tables/Memories/Globals report how many of each index
// space's entries are imports versus locally defined, which callers need to
// translate a "function index" into either the import table or the defined
// list.
func (h *ModuleHeader) NumImportedFuncs() (n int) {
	for _, i := range h.Imports {
		if i.Kind == api.ExternTypeFunc {
			n++
		}
	}
	return n
}

func (h *ModuleHeader) NumImportedTables() (n int) {
	for _, i := range h.Imports {
		if i.Kind == api.ExternTypeTable {
			n++
		}
	}
	return n
}

func (h *ModuleHeader) NumImportedMemories() (n int) {
	for _, i := range h.Imports {
		if i.Kind == api.ExternTypeMemory {
			n++
		}
	}
	return n
}

func (h *ModuleHeader) NumImportedGlobals() (n int) {
	for _, i := range h.Imports {
		if i.Kind == api.ExternTypeGlobal {
			n++
		}
	}
	return n
}

// FuncTypeIndex resolves the FuncType index for function index fnIdx across
// both the imported and defined function index spaces.
func (h *ModuleHeader) FuncTypeIndex(fnIdx uint32) uint32 {
	nImported := uint32(h.NumImportedFuncs())
	if fnIdx < nImported {
		i := 0
		for _, imp := range h.Imports {
			if imp.Kind != api.ExternTypeFunc {
				continue
			}
			if uint32(i) == fnIdx {
				return imp.FuncTypeIdx
			}
			i++
		}
		panic("unreachable: fnIdx < nImported but no matching import")
	}
	return h.FuncTypeIndices[fnIdx-nImported]
}

// FindExport looks up an export by name.
func (h *ModuleHeader) FindExport(name string) (Export, bool) {
	for _, e := range h.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}
