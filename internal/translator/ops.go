package translator

import (
	"fmt"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/binary"
	"github.com/wasmigo/wasmi/internal/ir"
	"github.com/wasmigo/wasmi/internal/moduledef"
)

func fitsImm16(raw uint64) (int16, bool) {
	v := int64(raw)
	if v >= -32768 && v <= 32767 {
		return int16(v), true
	}
	return 0, false
}

// translateOp dispatches one raw Wasm opcode byte. Structural opcodes
// (block/loop/if/else/end/br/br_if/br_table/return/unreachable) are always
// processed so nesting and the ControlStack stay correct; every other
// opcode is skipped without emitting code once the innermost frame has gone
// unreachable (spec.md §4.2 "Unreachable code": later operators are parsed
// for operand-count bookkeeping only, not translated).
func (t *translator) translateOp(op byte) error {
	switch op {
	case binary.OpcodeUnreachable:
		if t.cs.Reachable() {
			t.enc.Emit(ir.NewTrap(ir.TrapUnreachableExecuted))
			t.cs.MarkUnreachable()
		}
		return nil
	case binary.OpcodeNop:
		return nil
	case binary.OpcodeBlock:
		return t.translateBlock()
	case binary.OpcodeLoop:
		return t.translateLoop()
	case binary.OpcodeIf:
		return t.translateIf()
	case binary.OpcodeElse:
		return t.translateElse()
	case binary.OpcodeEnd:
		return t.translateEnd()
	case binary.OpcodeBr:
		depth, err := t.r.U32()
		if err != nil {
			return err
		}
		return t.translateBr(depth)
	case binary.OpcodeBrIf:
		depth, err := t.r.U32()
		if err != nil {
			return err
		}
		return t.translateBrIf(depth)
	case binary.OpcodeBrTable:
		return t.translateBrTable()
	case binary.OpcodeReturn:
		return t.translateReturn()
	case binary.OpcodeCall:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		if !t.cs.Reachable() {
			return nil
		}
		return t.translateCall(idx)
	case binary.OpcodeCallIndirect:
		tyIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		tblIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		if !t.cs.Reachable() {
			return nil
		}
		return t.translateCallIndirect(tyIdx, tblIdx)
	case binary.OpcodeReturnCall:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		if !t.cs.Reachable() {
			return nil
		}
		return t.translateReturnCall(idx)
	case binary.OpcodeReturnCallIndirect:
		tyIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		tblIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		if !t.cs.Reachable() {
			return nil
		}
		return t.translateReturnCallIndirect(tyIdx, tblIdx)
	}

	if !t.cs.Reachable() {
		return nil
	}

	switch op {
	case binary.OpcodeDrop:
		t.vs.Pop()
		return nil
	case binary.OpcodeSelect:
		return t.translateSelect(nil)
	case binary.OpcodeSelectT:
		n, err := t.r.U32()
		if err != nil {
			return err
		}
		types := make([]api.ValueType, n)
		for i := range types {
			b, err := t.r.Byte()
			if err != nil {
				return err
			}
			types[i] = b
		}
		return t.translateSelect(types)

	case binary.OpcodeLocalGet:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		t.vs.PushLocal(idx, t.localType(idx))
		return nil
	case binary.OpcodeLocalSet:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		t.localSet(idx)
		return nil
	case binary.OpcodeLocalTee:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		// local.tee x == local.set x; local.get x: reusing both existing,
		// correctly-linked operations avoids duplicating local.set's
		// rematerialisation bookkeeping.
		t.localSet(idx)
		t.vs.PushLocal(idx, t.localType(idx))
		return nil
	case binary.OpcodeGlobalGet:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		return t.translateGlobalGet(idx)
	case binary.OpcodeGlobalSet:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		return t.translateGlobalSet(idx)

	case binary.OpcodeTableGet:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		return t.translateTableGet(idx)
	case binary.OpcodeTableSet:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		return t.translateTableSet(idx)

	case binary.OpcodeI32Const:
		v, err := t.r.I32()
		if err != nil {
			return err
		}
		t.vs.PushImmediate(api.ValueTypeI32, uint64(uint32(v)))
		return nil
	case binary.OpcodeI64Const:
		v, err := t.r.I64()
		if err != nil {
			return err
		}
		t.vs.PushImmediate(api.ValueTypeI64, uint64(v))
		return nil
	case binary.OpcodeF32Const:
		v, err := t.r.F32()
		if err != nil {
			return err
		}
		t.vs.PushImmediate(api.ValueTypeF32, uint64(v))
		return nil
	case binary.OpcodeF64Const:
		v, err := t.r.F64()
		if err != nil {
			return err
		}
		t.vs.PushImmediate(api.ValueTypeF64, v)
		return nil

	case binary.OpcodeMemorySize:
		memIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		result := t.vs.PushTemp(api.ValueTypeI32)
		t.enc.Emit(ir.Instruction{Op: ir.OpMemorySize, Result: result, Index: memIdx})
		return nil
	case binary.OpcodeMemoryGrow:
		memIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		delta := t.materialise(t.vs.Pop())
		result := t.vs.PushTemp(api.ValueTypeI32)
		t.enc.Emit(ir.Instruction{Op: ir.OpMemoryGrow, Result: result, Index: memIdx, A: delta})
		return nil

	case binary.OpcodeRefNull:
		rt, err := t.r.Byte()
		if err != nil {
			return err
		}
		result := t.vs.PushTemp(rt)
		t.enc.Emit(ir.Instruction{Op: ir.OpRefNull, Result: result})
		return nil
	case binary.OpcodeRefIsNull:
		a := t.materialise(t.vs.Pop())
		result := t.vs.PushTemp(api.ValueTypeI32)
		t.enc.Emit(ir.Instruction{Op: ir.OpRefIsNull, Result: result, A: a})
		return nil
	case binary.OpcodeRefFunc:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		result := t.vs.PushTemp(api.ValueTypeFuncref)
		t.enc.Emit(ir.Instruction{Op: ir.OpRefFunc, Result: result, Index: idx})
		return nil

	case binary.OpcodeMiscPrefix:
		sub, err := t.r.Byte()
		if err != nil {
			return err
		}
		return t.translateMisc(sub)
	case binary.OpcodeSIMDPrefix:
		return t.fail("simd instructions are not supported by this interpreter build")
	}

	if op >= binary.OpcodeI32Load && op <= binary.OpcodeI64Store32 {
		return t.translateLoadStore(op)
	}
	if numOp, ok := wasmOpToNumOp(op); ok {
		return t.translateNumeric(numOp)
	}
	return t.fail(fmt.Sprintf("unhandled opcode 0x%02x", op))
}

func (t *translator) localType(idx uint32) api.ValueType {
	if int(idx) < len(t.localTypes) {
		return t.localTypes[idx]
	}
	return api.ValueTypeI32
}

func (t *translator) translateNumeric(op ir.NumOp) error {
	sig := numOpSig(op)
	if sig.arity == 1 {
		t.emitUnary(op)
	} else {
		t.emitBinary(op)
	}
	return nil
}

func (t *translator) emitUnary(op ir.NumOp) {
	sig := numOpSig(op)
	a := t.vs.Pop()
	if !trapsAtRuntime(op) && a.IsImmediate() {
		if v, ok := foldUnary(op, a.Imm()); ok {
			t.vs.PushImmediate(sig.resultTy, v)
			return
		}
	}
	aSlot := t.materialise(a)
	result := t.vs.PushTemp(sig.resultTy)
	t.enc.Emit(ir.Instruction{Op: ir.OpUnary, Num: op, Result: result, A: aSlot})
}

func (t *translator) emitBinary(op ir.NumOp) {
	sig := numOpSig(op)
	b := t.vs.Pop()
	a := t.vs.Pop()
	if !trapsAtRuntime(op) && a.IsImmediate() && b.IsImmediate() {
		if v, ok := foldBinary(op, a.Imm(), b.Imm()); ok {
			t.vs.PushImmediate(sig.resultTy, v)
			return
		}
	}
	if a.IsImmediate() && !b.IsImmediate() && op.Commutative() {
		a, b = b, a
	}
	result := t.vs.PushTemp(sig.resultTy)
	switch {
	case !a.IsImmediate() && !b.IsImmediate():
		t.enc.Emit(ir.Instruction{Op: ir.OpBinaryRegReg, Num: op, Result: result, A: a.ResolveSlot(), B: b.ResolveSlot()})
	case !a.IsImmediate() && b.IsImmediate():
		if imm16, ok := fitsImm16(b.Imm()); ok {
			t.enc.Emit(ir.Instruction{Op: ir.OpBinaryRegImm16, Num: op, Result: result, A: a.ResolveSlot(), Imm16: imm16})
		} else if imm32, ok := fitsImm32(b.Imm()); ok {
			t.enc.Emit(ir.Instruction{Op: ir.OpBinaryRegImm32, Num: op, Result: result, A: a.ResolveSlot(), Imm32: imm32})
		} else {
			bSlot := t.materialise(b)
			t.enc.Emit(ir.Instruction{Op: ir.OpBinaryRegReg, Num: op, Result: result, A: a.ResolveSlot(), B: bSlot})
		}
	default: // a is immediate, b is a register, and op is not commutative
		aSlot := t.materialise(a)
		t.enc.Emit(ir.Instruction{Op: ir.OpBinaryRegReg, Num: op, Result: result, A: aSlot, B: b.ResolveSlot()})
	}
}

// --- structured control flow ---

func (t *translator) translateBlock() error {
	bt, err := t.readBlockType()
	if err != nil {
		return err
	}
	reachable := t.cs.Reachable()
	label := t.enc.Labels.NewLabel()
	var results ir.SlotSpan
	if reachable {
		results = t.vs.AllocSpan(bt.Results)
	}
	f := controlFrame{kind: blockBlock, blockType: bt, results: results, stackHeight: t.vs.Height() - len(bt.Params), label: label}
	f.unreachable = !reachable
	t.cs.Push(f)
	return nil
}

func (t *translator) translateLoop() error {
	bt, err := t.readBlockType()
	if err != nil {
		return err
	}
	reachable := t.cs.Reachable()
	var loopEntry ir.SlotSpan
	if reachable {
		loopEntry = t.vs.AllocSpan(bt.Params)
		top := t.vs.PopN(len(bt.Params))
		for i, e := range top {
			t.copyToSlot(e, loopEntry.At(i))
			t.vs.PushTempAt(e.Type(), loopEntry.At(i))
		}
	}
	label := t.enc.Labels.NewPinnedLabel(t.enc.PC())
	if reachable {
		// Branches back to the loop land on this charge, so every
		// iteration costs one unit of fuel when metering is enabled.
		t.enc.Emit(ir.NewConsumeFuel(1))
	}
	var results ir.SlotSpan
	if reachable {
		results = t.vs.AllocSpan(bt.Results)
	}
	f := controlFrame{kind: blockLoop, blockType: bt, results: results, loopEntry: loopEntry,
		stackHeight: t.vs.Height() - len(bt.Params), label: label}
	f.unreachable = !reachable
	t.cs.Push(f)
	return nil
}

func (t *translator) translateIf() error {
	bt, err := t.readBlockType()
	if err != nil {
		return err
	}
	reachable := t.cs.Reachable()
	elseLabel := t.enc.Labels.NewLabel()
	var paramSpan ir.SlotSpan
	if reachable {
		cond := t.materialise(t.vs.Pop())
		t.enc.EmitBranch(ir.Instruction{Op: ir.OpBranchI32EqImm16, A: cond, Imm16: 0}, elseLabel, 6)
		// The if-arm and a later else-arm both start from the same param
		// values; since this translator makes one linear pass rather than
		// replaying the type checker's two independent arm traversals, the
		// params are rehomed to a stable span up front (exactly like a
		// loop's re-entry params) so the else-arm can re-bind the same
		// slots after the if-arm has already consumed and overwritten its
		// own abstract stack view of them.
		if len(bt.Params) > 0 {
			paramSpan = t.vs.AllocSpan(bt.Params)
			top := t.vs.PopN(len(bt.Params))
			for i, e := range top {
				t.copyToSlot(e, paramSpan.At(i))
			}
		}
	}
	endLabel := t.enc.Labels.NewLabel()
	var results ir.SlotSpan
	if reachable {
		results = t.vs.AllocSpan(bt.Results)
	}
	f := controlFrame{kind: blockIf, blockType: bt, results: results, elseLabel: elseLabel, paramSpan: paramSpan,
		stackHeight: t.vs.Height(), label: endLabel}
	f.unreachable = !reachable
	t.cs.Push(f)
	for i, pty := range bt.Params {
		t.vs.PushTempAt(pty, paramSpan.At(i))
	}
	return nil
}

func (t *translator) translateElse() error {
	frame := t.cs.Top()
	if frame.kind != blockIf {
		return t.fail("else outside if")
	}
	wasReachable := !frame.unreachable
	arity := len(frame.blockType.Results)
	if wasReachable {
		top := t.vs.PeekN(arity)
		for i, e := range top {
			t.copyToSlot(e, frame.results.At(i))
		}
		t.enc.EmitBranch(ir.Instruction{Op: ir.OpBranch}, frame.label, 2)
	}
	t.vs.Truncate(frame.stackHeight)
	t.enc.PinLabel(frame.elseLabel)
	frame.hasElse = true
	frame.unreachable = false // the else arm starts fresh, reachable regardless of the if-arm
	for i, pty := range frame.blockType.Params {
		t.vs.PushTempAt(pty, frame.paramSpan.At(i))
	}
	return nil
}

func (t *translator) translateEnd() error {
	frame, _ := t.cs.Pop()
	wasReachable := !frame.unreachable
	arity := len(frame.blockType.Results)

	if frame.kind == blockIf && !frame.hasElse {
		// No explicit else: the false branch must still produce this
		// frame's results as an identity pass-through of its params (Wasm
		// requires Params == Results for an implicit empty else), which is
		// generally a *different* source than whatever the if-arm itself
		// leaves on top of the abstract stack, so the two paths need their
		// own copies rather than sharing one (spec.md §4.2 block/if result
		// handling).
		if wasReachable {
			top := t.vs.PeekN(arity)
			for i, e := range top {
				t.copyToSlot(e, frame.results.At(i))
			}
			t.enc.EmitBranch(ir.Instruction{Op: ir.OpBranch}, frame.label, 2)
		}
		t.enc.PinLabel(frame.elseLabel)
		for i := 0; i < arity; i++ {
			t.copyToSlot(stackEntry{kind: entryTemp, ty: frame.blockType.Results[i], slot: frame.paramSpan.At(i), prev: -1, next: -1}, frame.results.At(i))
		}
		wasReachable = true
	} else if wasReachable {
		top := t.vs.PeekN(arity)
		for i, e := range top {
			t.copyToSlot(e, frame.results.At(i))
		}
	}

	t.vs.Truncate(frame.stackHeight)
	t.enc.PinLabel(frame.label)
	for i, rty := range frame.blockType.Results {
		t.vs.PushTempAt(rty, frame.results.At(i))
	}
	if t.cs.Depth() == 0 {
		vals := t.vs.PopN(arity)
		t.emitReturnValues(vals)
	}
	return nil
}

func (t *translator) translateBr(depth uint32) error {
	if !t.cs.Reachable() {
		return nil
	}
	frame := t.cs.FrameAt(depth)
	arity := frame.branchArity()
	span := frame.branchSpan()
	vals := t.vs.PopN(arity)
	for i, e := range vals {
		t.copyToSlot(e, span.At(i))
	}
	t.enc.EmitBranch(ir.Instruction{Op: ir.OpBranch}, frame.branchTarget(), 2)
	t.cs.MarkUnreachable()
	return nil
}

func (t *translator) translateBrIf(depth uint32) error {
	if !t.cs.Reachable() {
		return nil
	}
	cond := t.vs.Pop()
	frame := t.cs.FrameAt(depth)
	arity := frame.branchArity()
	span := frame.branchSpan()
	top := t.vs.PeekN(arity)
	for i, e := range top {
		t.copyToSlot(e, span.At(i))
	}
	condSlot := t.materialise(cond)
	t.enc.EmitBranch(ir.Instruction{Op: ir.OpBranchI32NeImm16, A: condSlot, Imm16: 0}, frame.branchTarget(), 6)
	return nil
}

// translateBrTable lowers a br_table into a chain of fused equality-branch
// tests against the selector, ending in an unconditional branch to the
// default target. This forgoes a dedicated jump-table instruction (which
// would need the stream encoding extended with inline offset arrays, see
// DESIGN.md) in favour of reusing the already-encodable fused-compare
// branch forms.
func (t *translator) translateBrTable() error {
	n, err := t.r.U32()
	if err != nil {
		return err
	}
	targets := make([]uint32, n)
	for i := range targets {
		targets[i], err = t.r.U32()
		if err != nil {
			return err
		}
	}
	defaultTarget, err := t.r.U32()
	if err != nil {
		return err
	}
	if !t.cs.Reachable() {
		return nil
	}
	selSlot := t.materialise(t.vs.Pop())
	defFrame := t.cs.FrameAt(defaultTarget)
	arity := defFrame.branchArity()
	topVals := t.vs.PopN(arity)
	for i, target := range targets {
		frame := t.cs.FrameAt(target)
		span := frame.branchSpan()
		for j, e := range topVals {
			t.copyToSlot(e, span.At(j))
		}
		imm16, ok := fitsImm16(uint64(i))
		if !ok {
			return t.fail("br_table with more than 32767 targets is not supported")
		}
		t.enc.EmitBranch(ir.Instruction{Op: ir.OpBranchI32EqImm16, A: selSlot, Imm16: imm16}, frame.branchTarget(), 6)
	}
	defSpan := defFrame.branchSpan()
	for j, e := range topVals {
		t.copyToSlot(e, defSpan.At(j))
	}
	t.enc.EmitBranch(ir.Instruction{Op: ir.OpBranch}, defFrame.branchTarget(), 2)
	t.cs.MarkUnreachable()
	return nil
}

func (t *translator) translateReturn() error {
	if !t.cs.Reachable() {
		return nil
	}
	vals := t.vs.PopN(len(t.ty.Results))
	t.emitReturnValues(vals)
	t.cs.MarkUnreachable()
	return nil
}

func (t *translator) emitReturnValues(vals []stackEntry) {
	switch len(vals) {
	case 0:
		t.enc.Emit(ir.Instruction{Op: ir.OpReturnNil})
	case 1:
		e := vals[0]
		if e.IsImmediate() {
			if imm32, ok := fitsImm32(e.Imm()); ok {
				t.enc.Emit(ir.Instruction{Op: ir.OpReturnImm32, Imm32: imm32})
			} else {
				t.enc.Emit(ir.Instruction{Op: ir.OpReturnImm64, A: t.consts.Intern(e.Imm())})
			}
			return
		}
		t.enc.Emit(ir.Instruction{Op: ir.OpReturnReg, A: e.ResolveSlot()})
	case 2:
		a, b := t.materialise(vals[0]), t.materialise(vals[1])
		t.enc.Emit(ir.Instruction{Op: ir.OpReturnReg2, A: a, B: b})
	default:
		types := make([]api.ValueType, len(vals))
		for i, e := range vals {
			types[i] = e.Type()
		}
		span := t.vs.AllocSpan(types)
		for i, e := range vals {
			t.copyToSlot(e, span.At(i))
		}
		t.enc.Emit(ir.Instruction{Op: ir.OpReturnMany, Inputs: span})
	}
}

// --- calls ---

func (t *translator) translateCall(fnIdx uint32) error {
	tyIdx := t.ctx.Header.FuncTypeIndex(fnIdx)
	ty := &t.ctx.Header.Types[tyIdx]
	args := t.vs.PopN(len(ty.Params))
	inputs := t.vs.AllocSpan(ty.Params)
	for i, e := range args {
		t.copyToSlot(e, inputs.At(i))
	}
	results := t.vs.AllocSpan(ty.Results)
	t.enc.Emit(ir.Instruction{Op: ir.OpCall, Index: fnIdx, Inputs: inputs, Results: results})
	for i, rty := range ty.Results {
		t.vs.PushTempAt(rty, results.At(i))
	}
	return nil
}

func (t *translator) translateCallIndirect(typeIdx, tableIdx uint32) error {
	ty := &t.ctx.Header.Types[typeIdx]
	idxSlot := t.materialise(t.vs.Pop())
	args := t.vs.PopN(len(ty.Params))
	inputs := t.vs.AllocSpan(ty.Params)
	for i, e := range args {
		t.copyToSlot(e, inputs.At(i))
	}
	results := t.vs.AllocSpan(ty.Results)
	t.enc.Emit(ir.Instruction{Op: ir.OpCallIndirect, Index: typeIdx, Index2: tableIdx, A: idxSlot, Inputs: inputs, Results: results})
	for i, rty := range ty.Results {
		t.vs.PushTempAt(rty, results.At(i))
	}
	return nil
}

func (t *translator) translateReturnCall(fnIdx uint32) error {
	tyIdx := t.ctx.Header.FuncTypeIndex(fnIdx)
	ty := &t.ctx.Header.Types[tyIdx]
	args := t.vs.PopN(len(ty.Params))
	inputs := t.vs.AllocSpan(ty.Params)
	for i, e := range args {
		t.copyToSlot(e, inputs.At(i))
	}
	t.enc.Emit(ir.Instruction{Op: ir.OpReturnCall, Index: fnIdx, Inputs: inputs})
	t.cs.MarkUnreachable()
	return nil
}

func (t *translator) translateReturnCallIndirect(typeIdx, tableIdx uint32) error {
	ty := &t.ctx.Header.Types[typeIdx]
	idxSlot := t.materialise(t.vs.Pop())
	args := t.vs.PopN(len(ty.Params))
	inputs := t.vs.AllocSpan(ty.Params)
	for i, e := range args {
		t.copyToSlot(e, inputs.At(i))
	}
	t.enc.Emit(ir.Instruction{Op: ir.OpReturnCallIndirect, Index: typeIdx, Index2: tableIdx, A: idxSlot, Inputs: inputs})
	t.cs.MarkUnreachable()
	return nil
}

// --- parametric ---

func (t *translator) translateSelect(explicitTypes []api.ValueType) error {
	cond := t.materialise(t.vs.Pop())
	b := t.vs.Pop()
	a := t.vs.Pop()
	ty := a.Type()
	if len(explicitTypes) == 1 {
		ty = explicitTypes[0]
	}
	aSlot, bSlot := t.materialise(a), t.materialise(b)
	result := t.vs.PushTemp(ty)
	t.enc.Emit(ir.Instruction{Op: ir.OpSelect, Result: result, A: aSlot, B: bSlot, Inputs: ir.SlotSpan{Head: cond}})
	return nil
}

// --- variables ---

func (t *translator) translateGlobalGet(idx uint32) error {
	gty := t.globalType(idx)
	result := t.vs.PushTemp(gty.ValType)
	if idx == 0 {
		t.enc.Emit(ir.Instruction{Op: ir.OpGlobalGet0, Result: result})
	} else {
		t.enc.Emit(ir.Instruction{Op: ir.OpGlobalGet, Result: result, Index: idx})
	}
	return nil
}

func (t *translator) translateGlobalSet(idx uint32) error {
	v := t.materialise(t.vs.Pop())
	if idx == 0 {
		t.enc.Emit(ir.Instruction{Op: ir.OpGlobalSet0, A: v})
	} else {
		t.enc.Emit(ir.Instruction{Op: ir.OpGlobalSet, A: v, Index: idx})
	}
	return nil
}

func (t *translator) globalType(idx uint32) moduledef.GlobalType {
	h := t.ctx.Header
	nImported := uint32(h.NumImportedGlobals())
	if idx < nImported {
		i := uint32(0)
		for _, imp := range h.Imports {
			if imp.Kind != api.ExternTypeGlobal {
				continue
			}
			if i == idx {
				return imp.Global
			}
			i++
		}
	}
	return h.Globals[idx-nImported]
}

// --- tables ---

func (t *translator) tableElemType(idx uint32) api.ValueType {
	h := t.ctx.Header
	nImported := uint32(h.NumImportedTables())
	if idx < nImported {
		i := uint32(0)
		for _, imp := range h.Imports {
			if imp.Kind != api.ExternTypeTable {
				continue
			}
			if i == idx {
				return imp.Table.ElemType
			}
			i++
		}
	}
	return h.Tables[idx-nImported].ElemType
}

func (t *translator) translateTableGet(idx uint32) error {
	a := t.materialise(t.vs.Pop())
	result := t.vs.PushTemp(t.tableElemType(idx))
	t.enc.Emit(ir.Instruction{Op: ir.OpTableGet, Result: result, A: a, Index: idx})
	return nil
}

func (t *translator) translateTableSet(idx uint32) error {
	v := t.materialise(t.vs.Pop())
	a := t.materialise(t.vs.Pop())
	t.enc.Emit(ir.Instruction{Op: ir.OpTableSet, A: a, B: v, Index: idx})
	return nil
}

// --- block types ---

// readBlockType decodes a blocktype immediate: the empty sentinel 0x40, a
// single value-type byte for a one-result block, or a signed LEB128 index
// (up to 33 bits per the binary format) into the module's type section for
// a multi-value block.
func (t *translator) readBlockType() (BlockType, error) {
	first, err := t.r.Byte()
	if err != nil {
		return BlockType{}, err
	}
	switch first {
	case binary.BlockTypeEmpty:
		return BlockType{}, nil
	case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64,
		api.ValueTypeV128, api.ValueTypeFuncref, api.ValueTypeExternref:
		return BlockType{Results: []api.ValueType{first}}, nil
	}
	idx, err := t.decodeSLEB33From(first)
	if err != nil {
		return BlockType{}, err
	}
	if int(idx) >= len(t.ctx.Header.Types) {
		return BlockType{}, t.fail("block type index out of range")
	}
	ty := &t.ctx.Header.Types[idx]
	return BlockType{Params: ty.Params, Results: ty.Results}, nil
}

// decodeSLEB33From finishes decoding a signed LEB128 value whose first byte
// has already been consumed by readBlockType (Reader has no way to push a
// byte back, so the decode loop is inlined here rather than shared with
// binary.Reader.I64).
func (t *translator) decodeSLEB33From(first byte) (uint32, error) {
	var result int64
	var shift uint
	b := first
	for {
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		var err error
		b, err = t.r.Byte()
		if err != nil {
			return 0, err
		}
		if shift > 35 {
			return 0, t.fail("block type index overflow")
		}
	}
	if shift < 33 && b&0x40 != 0 {
		result |= -1 << shift
	}
	if result < 0 {
		return 0, t.fail("negative block type index")
	}
	return uint32(result), nil
}

// --- memory ---

func memKindForOpcode(op byte) (ir.MemKind, bool) {
	switch op {
	case binary.OpcodeI32Load:
		return ir.MemI32Load, true
	case binary.OpcodeI64Load:
		return ir.MemI64Load, true
	case binary.OpcodeF32Load:
		return ir.MemF32Load, true
	case binary.OpcodeF64Load:
		return ir.MemF64Load, true
	case binary.OpcodeI32Load8S:
		return ir.MemI32Load8S, true
	case binary.OpcodeI32Load8U:
		return ir.MemI32Load8U, true
	case binary.OpcodeI32Load16S:
		return ir.MemI32Load16S, true
	case binary.OpcodeI32Load16U:
		return ir.MemI32Load16U, true
	case binary.OpcodeI64Load8S:
		return ir.MemI64Load8S, true
	case binary.OpcodeI64Load8U:
		return ir.MemI64Load8U, true
	case binary.OpcodeI64Load16S:
		return ir.MemI64Load16S, true
	case binary.OpcodeI64Load16U:
		return ir.MemI64Load16U, true
	case binary.OpcodeI64Load32S:
		return ir.MemI64Load32S, true
	case binary.OpcodeI64Load32U:
		return ir.MemI64Load32U, true
	case binary.OpcodeI32Store:
		return ir.MemI32Store, true
	case binary.OpcodeI64Store:
		return ir.MemI64Store, true
	case binary.OpcodeF32Store:
		return ir.MemF32Store, true
	case binary.OpcodeF64Store:
		return ir.MemF64Store, true
	case binary.OpcodeI32Store8:
		return ir.MemI32Store8, true
	case binary.OpcodeI32Store16:
		return ir.MemI32Store16, true
	case binary.OpcodeI64Store8:
		return ir.MemI64Store8, true
	case binary.OpcodeI64Store16:
		return ir.MemI64Store16, true
	case binary.OpcodeI64Store32:
		return ir.MemI64Store32, true
	}
	return 0, false
}

func isStoreOpcode(op byte) bool {
	switch op {
	case binary.OpcodeI32Store, binary.OpcodeI64Store, binary.OpcodeF32Store, binary.OpcodeF64Store,
		binary.OpcodeI32Store8, binary.OpcodeI32Store16,
		binary.OpcodeI64Store8, binary.OpcodeI64Store16, binary.OpcodeI64Store32:
		return true
	default:
		return false
	}
}

// translateLoadStore handles every i32/i64/f32/f64 load and store opcode
// (0x28-0x3e). Offsets that fit 16 bits use the Mem0 fast-path opcodes
// (spec.md §4.2 "Mem0 specialisation"); larger offsets use the general form
// with a 32-bit offset. The memarg is read as alignment and offset only: a
// multi-memory index is not decoded, and every load and store addresses
// memory 0.
func (t *translator) translateLoadStore(op byte) error {
	kind, ok := memKindForOpcode(op)
	if !ok {
		return t.fail(fmt.Sprintf("unhandled memory opcode 0x%02x", op))
	}
	align, err := t.r.U32()
	if err != nil {
		return err
	}
	_ = align // alignment hints are advisory only; this interpreter never relies on them
	offset, err := t.r.U32()
	if err != nil {
		return err
	}

	if isStoreOpcode(op) {
		value := t.materialise(t.vs.Pop())
		addr := t.materialise(t.vs.Pop())
		if imm16, ok := fitsImm16(uint64(offset)); ok {
			t.enc.Emit(ir.Instruction{Op: ir.OpStoreMem0, Mem: kind, Imm16: imm16, A: addr, B: value})
		} else {
			t.enc.Emit(ir.Instruction{Op: ir.OpStore, Mem: kind, Offset: offset, A: addr, B: value})
		}
		return nil
	}

	addr := t.materialise(t.vs.Pop())
	result := t.vs.PushTemp(kind.ValueType())
	if imm16, ok := fitsImm16(uint64(offset)); ok {
		t.enc.Emit(ir.Instruction{Op: ir.OpLoadMem0, Mem: kind, Imm16: imm16, Result: result, A: addr})
	} else {
		t.enc.Emit(ir.Instruction{Op: ir.OpLoad, Mem: kind, Offset: offset, Result: result, A: addr})
	}
	return nil
}

// --- misc (0xFC-prefixed) ---

func (t *translator) translateMisc(sub byte) error {
	switch sub {
	case binary.OpcodeMiscI32TruncSatF32S:
		return t.translateSat(ir.NumI32TruncSatF32S)
	case binary.OpcodeMiscI32TruncSatF32U:
		return t.translateSat(ir.NumI32TruncSatF32U)
	case binary.OpcodeMiscI32TruncSatF64S:
		return t.translateSat(ir.NumI32TruncSatF64S)
	case binary.OpcodeMiscI32TruncSatF64U:
		return t.translateSat(ir.NumI32TruncSatF64U)
	case binary.OpcodeMiscI64TruncSatF32S:
		return t.translateSat(ir.NumI64TruncSatF32S)
	case binary.OpcodeMiscI64TruncSatF32U:
		return t.translateSat(ir.NumI64TruncSatF32U)
	case binary.OpcodeMiscI64TruncSatF64S:
		return t.translateSat(ir.NumI64TruncSatF64S)
	case binary.OpcodeMiscI64TruncSatF64U:
		return t.translateSat(ir.NumI64TruncSatF64U)

	case binary.OpcodeMiscMemoryInit:
		dataIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		memIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		n := t.materialise(t.vs.Pop())
		src := t.materialise(t.vs.Pop())
		dst := t.materialise(t.vs.Pop())
		t.enc.Emit(ir.Instruction{Op: ir.OpMemoryInit, Index: memIdx, Index2: dataIdx, Result: n, A: dst, B: src})
		return nil
	case binary.OpcodeMiscDataDrop:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		t.enc.Emit(ir.Instruction{Op: ir.OpDataDrop, Index: idx})
		return nil
	case binary.OpcodeMiscMemoryCopy:
		dstMem, err := t.r.U32()
		if err != nil {
			return err
		}
		srcMem, err := t.r.U32()
		if err != nil {
			return err
		}
		n := t.materialise(t.vs.Pop())
		src := t.materialise(t.vs.Pop())
		dst := t.materialise(t.vs.Pop())
		t.enc.Emit(ir.Instruction{Op: ir.OpMemoryCopy, Index: dstMem, Index2: srcMem, Result: n, A: dst, B: src})
		return nil
	case binary.OpcodeMiscMemoryFill:
		memIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		n := t.materialise(t.vs.Pop())
		val := t.materialise(t.vs.Pop())
		dst := t.materialise(t.vs.Pop())
		t.enc.Emit(ir.Instruction{Op: ir.OpMemoryFill, Index: memIdx, Result: n, A: dst, B: val})
		return nil

	case binary.OpcodeMiscTableInit:
		elemIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		tblIdx, err := t.r.U32()
		if err != nil {
			return err
		}
		n := t.materialise(t.vs.Pop())
		src := t.materialise(t.vs.Pop())
		dst := t.materialise(t.vs.Pop())
		t.enc.Emit(ir.Instruction{Op: ir.OpTableInit, Index: tblIdx, Index2: elemIdx, Result: n, A: dst, B: src})
		return nil
	case binary.OpcodeMiscElemDrop:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		t.enc.Emit(ir.Instruction{Op: ir.OpElemDrop, Index: idx})
		return nil
	case binary.OpcodeMiscTableCopy:
		dstTbl, err := t.r.U32()
		if err != nil {
			return err
		}
		srcTbl, err := t.r.U32()
		if err != nil {
			return err
		}
		n := t.materialise(t.vs.Pop())
		src := t.materialise(t.vs.Pop())
		dst := t.materialise(t.vs.Pop())
		t.enc.Emit(ir.Instruction{Op: ir.OpTableCopy, Index: dstTbl, Index2: srcTbl, Result: n, A: dst, B: src})
		return nil
	case binary.OpcodeMiscTableGrow:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		n := t.materialise(t.vs.Pop())
		init := t.materialise(t.vs.Pop())
		result := t.vs.PushTemp(api.ValueTypeI32)
		t.enc.Emit(ir.Instruction{Op: ir.OpTableGrow, Index: idx, Result: result, A: init, B: n})
		return nil
	case binary.OpcodeMiscTableSize:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		result := t.vs.PushTemp(api.ValueTypeI32)
		t.enc.Emit(ir.Instruction{Op: ir.OpTableSize, Index: idx, Result: result})
		return nil
	case binary.OpcodeMiscTableFill:
		idx, err := t.r.U32()
		if err != nil {
			return err
		}
		n := t.materialise(t.vs.Pop())
		val := t.materialise(t.vs.Pop())
		dst := t.materialise(t.vs.Pop())
		t.enc.Emit(ir.Instruction{Op: ir.OpTableFill, Index: idx, A: dst, B: val, Result: n})
		return nil
	}
	return t.fail(fmt.Sprintf("unhandled misc opcode 0x%02x", sub))
}

// translateSat lowers one of the eight saturating truncation operators
// (trunc_sat proposal) the same way the regular trunc opcodes are lowered:
// as a runtime OpUnary, never constant-folded (trapsAtRuntime's non-folding
// policy extends to the saturating forms too, see numtable.go).
func (t *translator) translateSat(op ir.NumOp) error {
	sig := numOpSig(op)
	a := t.materialise(t.vs.Pop())
	result := t.vs.PushTemp(sig.resultTy)
	t.enc.Emit(ir.Instruction{Op: ir.OpUnary, Num: op, Result: result, A: a})
	return nil
}
