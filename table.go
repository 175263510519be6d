package wasmi

import (
	"context"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/store"
)

// Table is a handle to one table instance. Elements are exposed as raw
// 64-bit cells using the same encoding the executor uses internally (0 =
// null, funcAddr+1 otherwise), so a host holding a Table handle can
// interoperate with Function.Call's argument/result encoding without a
// separate conversion API. Externref tables use the same funcAddr+1 encoding:
// an element's Extern value is not carried through Get, Set or Grow.
type Table interface {
	Type() api.ValueType
	Size(ctx context.Context) uint32
	Grow(ctx context.Context, delta uint32, init uint64) (previous uint32, ok bool)
	Get(ctx context.Context, idx uint32) (uint64, bool)
	Set(ctx context.Context, idx uint32, v uint64) bool
}

type table struct {
	st *Store
	t  *store.Table
}

func (t *table) Type() api.ValueType { return t.t.Type.ElemType }
func (t *table) Size(context.Context) uint32 { return uint32(len(t.t.Elems)) }

func (t *table) Grow(_ context.Context, delta uint32, init uint64) (uint32, bool) {
	prev := t.t.Grow(delta, decodeTableCell(init), t.st.limiter)
	if prev < 0 {
		return 0, false
	}
	return uint32(prev), true
}

func (t *table) Get(_ context.Context, idx uint32) (uint64, bool) {
	if idx >= uint32(len(t.t.Elems)) {
		return 0, false
	}
	return encodeTableCell(t.t.Elems[idx]), true
}

func (t *table) Set(_ context.Context, idx uint32, v uint64) bool {
	if idx >= uint32(len(t.t.Elems)) {
		return false
	}
	t.t.Elems[idx] = decodeTableCell(v)
	return true
}

// encodeTableCell/decodeTableCell mirror internal/executor's
// encodeElem/decodeElem exactly (funcref null=0, else FuncAddr+1); kept as
// an independent copy at this layer since internal/executor is not part of
// this package's dependency surface for anything but Function.Call.
func encodeTableCell(e store.TableElem) uint64 {
	if e.Null {
		return 0
	}
	return uint64(e.FuncAddr) + 1
}

func decodeTableCell(v uint64) store.TableElem {
	if v == 0 {
		return store.TableElem{Null: true}
	}
	return store.TableElem{FuncAddr: int32(v - 1)}
}
