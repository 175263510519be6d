package ir

// VisitInputRegs mutably visits every input Slot of i with f. The translator
// runs no defragmentation pass, so nothing outside this package's tests
// calls it.
//
// wasmi derives this per-variant via a macro over its tagged enum
// (original_source/crates/ir/src/visit_input_regs.rs); since Instruction
// here is one flat struct rather than an enum, the equivalent is a single
// switch keyed on Op that visits only the fields live for that opcode.
func (i *Instruction) VisitInputRegs(f func(*Slot)) {
	switch i.Op {
	case OpCopy, OpCopy2, OpCopyImm32, OpCopyImm64:
		f(&i.A)
		if i.Op == OpCopy2 {
			f(&i.B)
		}
	case OpCopySpan, OpCopySpanNonOverlapping, OpCopyMany, OpCopyManyNonOverlapping:
		visitSpan(&i.Inputs, f)
	case OpReturnReg:
		f(&i.A)
	case OpReturnReg2, OpReturnReg3:
		f(&i.A)
		f(&i.B)
	case OpReturnSpan, OpReturnMany:
		visitSpan(&i.Inputs, f)
	case OpBranchI32Eq, OpBranchI32Ne, OpBranchI32LtS, OpBranchI32LtU, OpBranchI32GtS, OpBranchI32GtU,
		OpBranchI32LeS, OpBranchI32LeU, OpBranchI32GeS, OpBranchI32GeU,
		OpBranchI64Eq, OpBranchI64Ne, OpBranchI64LtS, OpBranchI64LtU, OpBranchI64GtS, OpBranchI64GtU,
		OpBranchI64LeS, OpBranchI64LeU, OpBranchI64GeS, OpBranchI64GeU,
		OpBranchF32Eq, OpBranchF32Ne, OpBranchF32Lt, OpBranchF32Gt, OpBranchF32Le, OpBranchF32Ge,
		OpBranchF64Eq, OpBranchF64Ne, OpBranchF64Lt, OpBranchF64Gt, OpBranchF64Le, OpBranchF64Ge:
		f(&i.A)
		f(&i.B)
	case OpBranchI32EqImm16, OpBranchI32NeImm16, OpBranchI32LtSImm16, OpBranchI32LtUImm16,
		OpBranchI32GtSImm16, OpBranchI32GtUImm16, OpBranchI32LeSImm16, OpBranchI32LeUImm16,
		OpBranchI32GeSImm16, OpBranchI32GeUImm16:
		f(&i.A)
	case OpSelect, OpCmpSelect:
		f(&i.A)
		f(&i.B)
	case OpGlobalSet:
		f(&i.A)
	case OpTableSet:
		f(&i.A)
		f(&i.B)
	case OpTableFill, OpTableCopy, OpTableInit:
		f(&i.A)
		f(&i.B)
	case OpMemoryFill, OpMemoryCopy, OpMemoryInit:
		f(&i.A)
		f(&i.B)
	case OpLoad, OpLoadMem0:
		f(&i.A)
	case OpStore, OpStoreMem0, OpStoreImm:
		f(&i.A)
		f(&i.B)
	case OpUnary, OpUnaryImm:
		f(&i.A)
	case OpBinaryRegReg, OpBinaryRegImm16, OpBinaryRegImm32:
		f(&i.A)
		f(&i.B)
	case OpCall, OpCallIndirect, OpCallInternal, OpReturnCall, OpReturnCallIndirect, OpReturnCallInternal:
		visitSpan(&i.Inputs, f)
		if i.Op == OpCallIndirect || i.Op == OpReturnCallIndirect {
			f(&i.A)
		}
	case OpRefIsNull:
		f(&i.A)
	}
}

func visitSpan(s *SlotSpan, f func(*Slot)) {
	for idx := 0; idx < int(s.Len); idx++ {
		slot := s.Head + Slot(idx)
		f(&slot)
	}
}

// VisitResults mutably visits every result Slot of i with f.
func (i *Instruction) VisitResults(f func(*Slot)) {
	switch i.Op {
	case OpCopy, OpCopy2, OpCopyImm32, OpCopyImm64,
		OpGlobalGet, OpTableGet, OpTableSize, OpTableGrow,
		OpMemorySize, OpMemoryGrow, OpLoad, OpLoadMem0,
		OpUnary, OpUnaryImm, OpBinaryRegReg, OpBinaryRegImm16, OpBinaryRegImm32,
		OpRefFunc, OpRefNull, OpRefIsNull, OpSelect, OpCmpSelect,
		OpCall, OpCallIndirect, OpCallInternal:
		f(&i.Result)
	case OpCopySpan, OpCopySpanNonOverlapping, OpCopyMany, OpCopyManyNonOverlapping:
		visitSpan(&i.Results, f)
	}
}

// RelinkResult replaces i's result slot with newSlot if it currently equals
// oldSlot, reporting whether a change was made. The translator does not
// fuse comparisons into branches and does not call it.
func (i *Instruction) RelinkResult(oldSlot, newSlot Slot) bool {
	changed := false
	i.VisitResults(func(s *Slot) {
		if *s == oldSlot {
			*s = newSlot
			changed = true
		}
	})
	return changed
}
