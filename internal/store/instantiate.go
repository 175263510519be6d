package store

import (
	"context"
	"fmt"

	"github.com/wasmigo/wasmi/internal/moduledef"
	"github.com/wasmigo/wasmi/internal/translator"
)

// Imports carries the already-resolved external entities a module's import
// section asks for, one slice per kind, in the same order the import
// section declares them within that kind (the Linker, not this package,
// is responsible for name resolution and subtyping checks per spec.md
// §4.4).
type Imports struct {
	Funcs    []*FuncInstance
	Tables   []*Table
	Memories []*Memory
	Globals  []*Global
}

// Caller is the minimal subset of the executor's call capability
// Instantiate needs to run the start function; it exists so this package
// does not import internal/executor (which imports internal/store),
// avoiding an import cycle.
type Caller interface {
	Call(ctx context.Context, fn *FuncInstance, args []uint64) ([]uint64, error)
}

// Instantiate builds a new Instance from a compiled module's header and
// translated function bodies, wiring imports and running every local
// definition's initializer, per spec.md §4.4 steps 2-6 (import resolution
// happens before this call; table/memory/global init and the start function
// happen here).
func Instantiate(
	ctx context.Context,
	header *moduledef.ModuleHeader,
	allTypeIDs []uint32, // Engine-wide id per header.Types entry
	funcTypeIDs []uint32, // Engine-wide id per defined function (allTypeIDs[header.FuncTypeIndices[i]])
	bodies []*translator.FuncBody,
	imports Imports,
	limiter ResourceLimiter,
	caller Caller,
) (*Instance, error) {
	inst := &Instance{Header: header, TypeIDs: allTypeIDs}

	inst.Funcs = make([]*FuncInstance, 0, len(imports.Funcs)+len(bodies))
	inst.Funcs = append(inst.Funcs, imports.Funcs...)
	for i, body := range bodies {
		tyIdx := header.FuncTypeIndices[i]
		inst.Funcs = append(inst.Funcs, &FuncInstance{
			TypeID:   funcTypeIDs[i],
			Type:     header.Types[tyIdx],
			Body:     body,
			Instance: inst,
		})
	}

	inst.Tables = append(inst.Tables, imports.Tables...)
	for _, tt := range header.Tables {
		if limiter != nil && !limiter.OnTableGrow(0, int(tt.Limits.Min)) {
			return nil, fmt.Errorf("store: resource limiter rejected table of size %d", tt.Limits.Min)
		}
		inst.Tables = append(inst.Tables, &Table{
			Elems: make([]TableElem, tt.Limits.Min, tableCap(tt)),
			Type:  tt,
		})
		for i := range inst.Tables[len(inst.Tables)-1].Elems {
			inst.Tables[len(inst.Tables)-1].Elems[i] = TableElem{Null: true}
		}
	}

	inst.Mems = append(inst.Mems, imports.Memories...)
	for _, mt := range header.Memories {
		pageSize := mt.PageSize()
		if limiter != nil && !limiter.OnMemoryGrow(0, int(mt.Limits.Min)) {
			return nil, fmt.Errorf("store: resource limiter rejected memory of size %d pages", mt.Limits.Min)
		}
		inst.Mems = append(inst.Mems, &Memory{
			Data:     make([]byte, mt.Limits.Min*pageSize),
			Type:     mt,
			PageSize: pageSize,
		})
	}

	inst.Globals = append(inst.Globals, imports.Globals...)
	for i, gt := range header.Globals {
		v, ref := ResolveInitExpr(inst, header.GlobalInitExprs[i])
		inst.Globals = append(inst.Globals, &Global{Value: v, Ref: ref, Type: gt})
	}

	inst.Elems = make([]ElemSegmentInstance, len(header.Elements))
	for i, seg := range header.Elements {
		elems := make([]TableElem, len(seg.Items))
		for j, item := range seg.Items {
			_, ref := ResolveInitExpr(inst, item)
			elems[j] = ref
		}
		inst.Elems[i] = ElemSegmentInstance{Elems: elems}
		if seg.Kind == moduledef.ElementSegmentActive {
			offsetV, _ := ResolveInitExpr(inst, seg.Offset)
			tbl := inst.Tables[seg.Table]
			if err := copyIntoTable(tbl, uint32(offsetV), elems); err != nil {
				return nil, err
			}
			inst.Elems[i].Dropped = true // active segments behave as already-dropped (spec.md §4.2 elem.drop)
		}
	}

	inst.Datas = make([]DataSegmentInstance, len(header.Datas))
	for i, seg := range header.Datas {
		inst.Datas[i] = DataSegmentInstance{Bytes: seg.Bytes}
		if seg.Kind == moduledef.DataSegmentActive {
			offsetV, _ := ResolveInitExpr(inst, seg.Offset)
			mem := inst.Mems[seg.Memory]
			if err := copyIntoMemory(mem, offsetV, seg.Bytes); err != nil {
				return nil, err
			}
			inst.Datas[i].Dropped = true
		}
	}

	if header.HasStart {
		if _, err := caller.Call(ctx, inst.Funcs[header.StartFunc], nil); err != nil {
			return nil, fmt.Errorf("store: start function trapped: %w", err)
		}
	}

	return inst, nil
}

func tableCap(tt moduledef.TableType) uint64 {
	if tt.Limits.HasMax {
		return tt.Limits.Max
	}
	return tt.Limits.Min
}

func copyIntoTable(tbl *Table, offset uint32, elems []TableElem) error {
	if uint64(offset)+uint64(len(elems)) > uint64(len(tbl.Elems)) {
		return fmt.Errorf("store: active element segment out of table bounds")
	}
	copy(tbl.Elems[offset:], elems)
	return nil
}

func copyIntoMemory(mem *Memory, offset uint64, data []byte) error {
	if offset+uint64(len(data)) > uint64(len(mem.Data)) {
		return fmt.Errorf("store: active data segment out of memory bounds")
	}
	copy(mem.Data[offset:], data)
	return nil
}
