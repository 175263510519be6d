// Package translator streams one validated Wasm function body into the
// register-based internal IR (spec.md §4.2). It owns the InstEncoder,
// ControlStack, ValueStack, and per-function ConstPool, and performs two
// on-the-fly optimisations: constant folding of non-trapping numeric ops and
// local-copy elision. Shift amounts are not normalised, and comparisons are
// not fused into the branch that follows them: br_if tests its materialised
// condition with OpBranchI32NeImm16.
package translator

import (
	"fmt"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/binary"
	"github.com/wasmigo/wasmi/internal/ir"
	"github.com/wasmigo/wasmi/internal/moduledef"
)

// Error wraps a translation-time failure. Per spec.md §4.3, translator
// errors return Error::Translation and discard the partially built module.
type Error struct {
	Func   uint32
	Offset int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("translator: function %d at offset %d: %s", e.Func, e.Offset, e.Reason)
}

// FuncBody is the translator's output for one function: the instruction
// stream, the declared local types (needed by the executor to zero locals
// beyond the arguments), the frame size, and the interned constant pool.
type FuncBody struct {
	Instructions ir.Stream
	LocalTypes   []api.ValueType
	FrameSize    int
	Constants    []uint64
	SignatureID  uint32
}

// Context carries everything the translator needs that is not local to one
// function: the module header (for type/import/global/table/memory
// lookups) and the feature gate set.
type Context struct {
	Header *moduledef.ModuleHeader
}

type translator struct {
	ctx      *Context
	funcIdx  uint32
	ty       *moduledef.FuncType
	r        *binary.Reader
	code     []byte
	localTypes []api.ValueType
	enc      InstEncoder
	vs       *ValueStack
	cs       ControlStack
	consts   ConstPool
	features moduledef.FeatureSet
}

// Translate compiles one function body into IR. fnIdx is the function's
// index in the combined (imports + defined) function index space;
// signatureID is the Engine-assigned dedup id for its FuncType.
func Translate(ctx *Context, fnIdx uint32, signatureID uint32, body binary.FuncBody) (*FuncBody, error) {
	tyIdx := ctx.Header.FuncTypeIndex(fnIdx)
	ty := &ctx.Header.Types[tyIdx]

	localTypes := make([]api.ValueType, 0, len(ty.Params)+len(body.Locals))
	localTypes = append(localTypes, ty.Params...)
	localTypes = append(localTypes, body.Locals...)

	t := &translator{
		ctx:        ctx,
		funcIdx:    fnIdx,
		ty:         ty,
		code:       body.Code,
		vs:         NewValueStack(localTypes),
		localTypes: localTypes,
		features:   ctx.Header.EnabledFeatures,
	}
	t.r = binary.NewReader(body.Code)

	// The implicit outermost "function" block: its label is the function's
	// single exit point and its result span is the callee's result slots,
	// which by the calling convention (spec.md §3 invariants) sit directly
	// below the argument slots at the bottom of the frame — here modelled
	// as slots [0, len(results)) reserved ahead of params for simplicity of
	// exposition; concretely results are returned via Return* instructions
	// referencing the top-of-stack values directly, so no reserved span is
	// needed at the call boundary itself.
	t.cs.Push(controlFrame{
		kind:        blockBlock,
		blockType:   BlockType{Results: ty.Results},
		stackHeight: 0,
		label:       t.enc.Labels.NewLabel(),
	})

	if err := t.run(); err != nil {
		return nil, err
	}

	return &FuncBody{
		Instructions: t.enc.Stream(),
		LocalTypes:   localTypes,
		FrameSize:    int(t.vs.HighWater()),
		Constants:    t.consts.Values(),
		SignatureID:  signatureID,
	}, nil
}

func (t *translator) fail(reason string) error {
	return &Error{Func: t.funcIdx, Offset: t.r.Pos(), Reason: reason}
}

func (t *translator) run() error {
	for t.r.Len() > 0 {
		op, err := t.r.Byte()
		if err != nil {
			return err
		}
		if err := t.translateOp(op); err != nil {
			return err
		}
		if t.cs.Depth() == 0 {
			break // consumed the function's closing `end`
		}
	}
	if t.cs.Depth() != 0 {
		return t.fail("function body ended before its final end")
	}
	return nil
}

// materialise ensures entry occupies a concrete frame Slot, interning an
// Immediate entry (whatever its width) in the constant pool and copying it
// into a fresh temp slot with OpCopyImm64, or returning its existing slot
// for Local/Temp entries. Most callers instead
// special-case the Immediate path themselves to pick a specialised
// _reg_imm16/_reg_imm32 instruction form; this helper is for positions
// (call arguments, store values, branch targets' copy destinations) that
// have no immediate-carrying instruction form.
func (t *translator) materialise(e stackEntry) ir.Slot {
	if !e.IsImmediate() {
		return e.ResolveSlot()
	}
	dst := t.vs.PushTemp(e.Type())
	t.vs.Pop()
	t.enc.Emit(ir.Instruction{Op: ir.OpCopyImm64, Result: dst, A: t.consts.Intern(e.Imm())})
	return dst
}

// copyToSlot emits whatever Copy variant moves src's current value into
// dst, or is a no-op if src already denotes dst.
func (t *translator) copyToSlot(src stackEntry, dst ir.Slot) {
	if !src.IsImmediate() && src.ResolveSlot() == dst {
		return
	}
	if src.IsImmediate() {
		if imm32, ok := fitsImm32(src.Imm()); ok {
			t.enc.Emit(ir.Instruction{Op: ir.OpCopyImm32, Result: dst, Imm32: imm32})
			return
		}
		t.enc.Emit(ir.Instruction{Op: ir.OpCopyImm64, Result: dst, A: t.consts.Intern(src.Imm())})
		return
	}
	t.enc.Emit(ir.Instruction{Op: ir.OpCopy, Result: dst, A: src.ResolveSlot()})
}

func fitsImm32(raw uint64) (int32, bool) {
	v := int64(raw)
	if v >= -2147483648 && v <= 2147483647 {
		return int32(v), true
	}
	return 0, false
}

// localSet implements `local.set i` / the set-half of `local.tee i`
// (spec.md §4.2): pop the value, rematerialise any earlier still-live
// `Local(i)` stack entries into temps (so they keep observing the old
// value), then copy the new value into slot i — unless the popped value
// *is* Local(i), in which case the whole operation is a no-op.
func (t *translator) localSet(idx uint32) {
	top := t.vs.Pop()
	if top.IsLocal() && top.LocalIdx() == idx {
		return // local.get i; local.set i cancels out (spec.md §8 item 5)
	}
	if t.vs.HasLiveUse(idx) {
		var entries []int
		t.vs.EachLiveUse(idx, func(i int) { entries = append(entries, i) })
		for _, i := range entries {
			e := t.vsEntryAt(i)
			tmp := t.vs.PushTemp(e.ty)
			t.vs.Pop()
			t.enc.Emit(ir.Instruction{Op: ir.OpCopy, Result: tmp, A: ir.Slot(idx)})
			t.vs.Rematerialise(i, tmp)
		}
	}
	t.copyToSlot(top, ir.Slot(idx))
}

func (t *translator) vsEntryAt(i int) stackEntry { return t.vs.entries[i] }
