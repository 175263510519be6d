package translator

import (
	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/ir"
)

// entryKind distinguishes the three shapes a ValueStack entry can take,
// mirroring wasmi's `Provider`/stack-entry model (spec.md §4.2).
type entryKind uint8

const (
	entryLocal entryKind = iota
	entryTemp
	entryImmediate
)

// stackEntry is one abstract operand-stack entry. Locals form a doubly
// linked list per local index (prev/next) so that local.set can, in one
// traversal, rematerialise every still-referenced stack use of that local
// into a fresh temporary before overwriting it (spec.md §4.2 "Locals on the
// stack maintain a doubly-linked list").
type stackEntry struct {
	kind  entryKind
	ty    api.ValueType
	local uint32 // entryLocal
	slot  ir.Slot
	imm   uint64 // entryImmediate, raw cell bits
	prev  int    // index into ValueStack.entries of the previous use of the same local, -1 if none
	next  int
}

// ValueStack is the translator's compile-time model of the Wasm operand
// stack (spec.md §4.2). Stack height drives slot assignment: locals occupy
// [0, numLocals), temporaries occupy [numLocals, highWater).
type ValueStack struct {
	entries   []stackEntry
	heads     []int // per-local index -> index into entries of the most recent push, or -1
	numLocals uint32
	highWater ir.Slot
}

// NewValueStack creates a stack for a function with the given local types
// (including parameters, which are locals 0..len(params)).
func NewValueStack(localTypes []api.ValueType) *ValueStack {
	vs := &ValueStack{numLocals: uint32(len(localTypes)), highWater: ir.Slot(len(localTypes))}
	vs.heads = make([]int, len(localTypes))
	for i := range vs.heads {
		vs.heads[i] = -1
	}
	return vs
}

// Height is the current abstract stack depth.
func (vs *ValueStack) Height() int { return len(vs.entries) }

// HighWater is the highest temporary slot index used so far plus one; it
// becomes the function's frame size once translation completes (no
// defragmentation pass compacts it).
func (vs *ValueStack) HighWater() ir.Slot { return vs.highWater }

func (vs *ValueStack) push(e stackEntry) int {
	idx := len(vs.entries)
	vs.entries = append(vs.entries, e)
	return idx
}

// PushLocal pushes a reference to local index idx of type ty, linking it
// onto that local's use list.
func (vs *ValueStack) PushLocal(idx uint32, ty api.ValueType) {
	prev := vs.heads[idx]
	e := stackEntry{kind: entryLocal, ty: ty, local: idx, slot: ir.Slot(idx), prev: prev, next: -1}
	i := vs.push(e)
	if prev >= 0 {
		vs.entries[prev].next = i
	}
	vs.heads[idx] = i
}

// PushTemp pushes a fresh temporary of type ty, bumping the high-water mark.
func (vs *ValueStack) PushTemp(ty api.ValueType) ir.Slot {
	slot := vs.highWater
	vs.highWater++
	vs.push(stackEntry{kind: entryTemp, ty: ty, slot: slot, prev: -1, next: -1})
	return slot
}

// PushTempAt pushes a temp pinned to a specific slot (used when a result
// slot is dictated by the caller, e.g. block/if result spans).
func (vs *ValueStack) PushTempAt(ty api.ValueType, slot ir.Slot) {
	if slot >= vs.highWater {
		vs.highWater = slot + 1
	}
	vs.push(stackEntry{kind: entryTemp, ty: ty, slot: slot, prev: -1, next: -1})
}

// PushImmediate pushes a constant value known at translation time.
func (vs *ValueStack) PushImmediate(ty api.ValueType, raw uint64) {
	vs.push(stackEntry{kind: entryImmediate, ty: ty, imm: raw, prev: -1, next: -1})
}

// Pop removes and returns the top entry.
func (vs *ValueStack) Pop() stackEntry {
	i := len(vs.entries) - 1
	e := vs.entries[i]
	vs.entries = vs.entries[:i]
	if e.kind == entryLocal {
		if e.prev >= 0 {
			vs.entries[e.prev].next = -1
		}
			vs.heads[e.local] = e.prev
	}
	return e
}

// PopN pops n entries, returning them in original (bottom-to-top) order.
func (vs *ValueStack) PopN(n int) []stackEntry {
	out := make([]stackEntry, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = vs.Pop()
	}
	return out
}

// Peek returns the top entry without popping it.
func (vs *ValueStack) Peek() stackEntry { return vs.entries[len(vs.entries)-1] }

// PeekN returns the top n entries, in original (bottom-to-top) order,
// without popping them.
func (vs *ValueStack) PeekN(n int) []stackEntry {
	base := len(vs.entries) - n
	out := make([]stackEntry, n)
	copy(out, vs.entries[base:])
	return out
}

// AllocSpan reserves len(types) contiguous frame slots for a caller that
// will fill them in itself (call arguments/results, block result slots,
// branch-table copy destinations) without pushing stack entries for them.
func (vs *ValueStack) AllocSpan(types []api.ValueType) ir.SlotSpan {
	if len(types) == 0 {
		return ir.SlotSpan{}
	}
	head := vs.highWater
	vs.highWater += ir.Slot(len(types))
	return ir.SlotSpan{Head: head, Len: uint16(len(types))}
}

// Truncate resets the stack to height, used when entering unreachable code
// after br/return/unreachable so later operators are ignored for IR
// purposes but still validated for operand arity.
func (vs *ValueStack) Truncate(height int) {
	for len(vs.entries) > height {
		vs.Pop()
	}
}

// HasLiveUse reports whether local idx currently has any entry on the stack.
func (vs *ValueStack) HasLiveUse(idx uint32) bool { return vs.heads[idx] >= 0 }

// EachLiveUse calls f for every stack entry currently referencing local idx,
// from oldest to newest, used by local.set's rematerialisation rule.
func (vs *ValueStack) EachLiveUse(idx uint32, f func(entryIndex int)) {
	var chain []int
	for i := vs.heads[idx]; i >= 0; i = vs.entries[i].prev {
		chain = append(chain, i)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		f(chain[i])
	}
}

// Rematerialise rewrites stack entry i (known to reference local idx) into
// a temp bound to slot, unlinking it from local idx's use list.
func (vs *ValueStack) Rematerialise(i int, slot ir.Slot) {
	e := &vs.entries[i]
	if e.prev >= 0 {
		vs.entries[e.prev].next = e.next
	}
	if e.next >= 0 {
		vs.entries[e.next].prev = e.prev
	} else {
		vs.heads[e.local] = e.prev
	}
	e.kind, e.slot, e.prev, e.next = entryTemp, slot, -1, -1
}

// ResolveSlot returns the frame Slot an entry currently occupies. Immediate
// entries have no slot until materialised by the caller (see materialise in
// translator.go); calling ResolveSlot on one panics.
func (e stackEntry) ResolveSlot() ir.Slot {
	if e.kind == entryImmediate {
		panic("translator: immediate has no slot; call Materialise first")
	}
	return e.slot
}

func (e stackEntry) IsImmediate() bool { return e.kind == entryImmediate }
func (e stackEntry) IsLocal() bool     { return e.kind == entryLocal }
func (e stackEntry) Type() api.ValueType { return e.ty }
func (e stackEntry) Imm() uint64        { return e.imm }
func (e stackEntry) LocalIdx() uint32   { return e.local }
