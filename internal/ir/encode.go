package ir

import (
	"encoding/binary"
	"fmt"
)

// Stream is an append-only encoded instruction sequence: the compact
// variable-width byte form the translator emits and the executor decodes
// from, per spec.md §4.1. Every instruction starts with its 2-byte OpCode;
// the remaining bytes are only the fields that opcode actually uses, which
// is what makes the stream variable-width rather than a fixed record.
type Stream []byte

// Append encodes i onto the stream and returns the byte offset (the PC) at
// which it was written.
func (s *Stream) Append(i Instruction) int {
	pc := len(*s)
	*s = appendU16(*s, uint16(i.Op))
	switch i.Op {
	case OpTrap:
		*s = append(*s, byte(i.Trap))
	case OpConsumeFuel:
		*s = appendU32(*s, i.Fuel)
	case OpCopy:
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
	case OpCopy2:
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
		*s = appendSlot(*s, i.B)
	case OpCopyImm32:
		*s = appendSlot(*s, i.Result)
		*s = appendI32(*s, i.Imm32)
	case OpCopyImm64:
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A) // negative const-pool slot
	case OpCopySpan, OpCopySpanNonOverlapping, OpCopyMany, OpCopyManyNonOverlapping:
		*s = appendSpan(*s, i.Results)
		*s = appendSpan(*s, i.Inputs)
	case OpReturn, OpReturnNil:
		// no fields
	case OpReturnReg:
		*s = appendSlot(*s, i.A)
	case OpReturnReg2, OpReturnReg3:
		*s = appendSlot(*s, i.A)
		*s = appendSlot(*s, i.B)
	case OpReturnImm32:
		*s = appendI32(*s, i.Imm32)
	case OpReturnImm64:
		*s = appendSlot(*s, i.A)
	case OpReturnSpan, OpReturnMany:
		*s = appendSpan(*s, i.Inputs)
	case OpBranch:
		*s = appendI32(*s, int32(i.Branch))
	case OpBranchTable0, OpBranchTableMany, OpBranchTableSpanN:
		*s = appendSlot(*s, i.A)
		*s = appendU32(*s, i.TargetCount)
	case OpBranchI32EqImm16, OpBranchI32NeImm16, OpBranchI32LtSImm16, OpBranchI32LtUImm16,
		OpBranchI32GtSImm16, OpBranchI32GtUImm16, OpBranchI32LeSImm16, OpBranchI32LeUImm16,
		OpBranchI32GeSImm16, OpBranchI32GeUImm16:
		*s = appendSlot(*s, i.A)
		*s = appendI16(*s, i.Imm16)
		*s = appendI32(*s, int32(i.Branch))
	case OpBranchI32Eq, OpBranchI32Ne, OpBranchI32LtS, OpBranchI32LtU, OpBranchI32GtS, OpBranchI32GtU,
		OpBranchI32LeS, OpBranchI32LeU, OpBranchI32GeS, OpBranchI32GeU,
		OpBranchI64Eq, OpBranchI64Ne, OpBranchI64LtS, OpBranchI64LtU, OpBranchI64GtS, OpBranchI64GtU,
		OpBranchI64LeS, OpBranchI64LeU, OpBranchI64GeS, OpBranchI64GeU,
		OpBranchF32Eq, OpBranchF32Ne, OpBranchF32Lt, OpBranchF32Gt, OpBranchF32Le, OpBranchF32Ge,
		OpBranchF64Eq, OpBranchF64Ne, OpBranchF64Lt, OpBranchF64Gt, OpBranchF64Le, OpBranchF64Ge:
		*s = appendSlot(*s, i.A)
		*s = appendSlot(*s, i.B)
		*s = appendI32(*s, int32(i.Branch))
	case OpCall, OpCallInternal, OpReturnCall, OpReturnCallInternal:
		*s = appendU32(*s, i.Index)
		*s = appendSpan(*s, i.Results)
		*s = appendSpan(*s, i.Inputs)
	case OpCallIndirect, OpReturnCallIndirect:
		*s = appendU32(*s, i.Index)
		*s = appendU32(*s, i.Index2)
		*s = appendSlot(*s, i.A)
		*s = appendSpan(*s, i.Results)
		*s = appendSpan(*s, i.Inputs)
	case OpRefFunc:
		*s = appendSlot(*s, i.Result)
		*s = appendU32(*s, i.Index)
	case OpRefNull:
		*s = appendSlot(*s, i.Result)
	case OpRefIsNull:
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
	case OpSelect, OpCmpSelect:
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
		*s = appendSlot(*s, i.B)
		*s = appendSlot(*s, i.Inputs.Head) // condition operand
	case OpGlobalGet, OpGlobalGet0:
		*s = appendSlot(*s, i.Result)
		if i.Op == OpGlobalGet {
			*s = appendU32(*s, i.Index)
		}
	case OpGlobalSet, OpGlobalSet0:
		*s = appendSlot(*s, i.A)
		if i.Op == OpGlobalSet {
			*s = appendU32(*s, i.Index)
		}
	case OpTableGet, OpTableSet:
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
		*s = appendU32(*s, i.Index)
	case OpTableSize, OpTableGrow:
		*s = appendSlot(*s, i.Result)
		*s = appendU32(*s, i.Index)
		if i.Op == OpTableGrow {
			*s = appendSlot(*s, i.A)
			*s = appendSlot(*s, i.B)
		}
	case OpTableFill:
		*s = appendU32(*s, i.Index)
		*s = appendSlot(*s, i.A)
		*s = appendSlot(*s, i.B)
		*s = appendSlot(*s, i.Result)
	case OpTableCopy, OpTableInit:
		*s = appendU32(*s, i.Index)
		*s = appendU32(*s, i.Index2)
		*s = appendSlot(*s, i.A)
		*s = appendSlot(*s, i.B)
		*s = appendSlot(*s, i.Result)
	case OpElemDrop, OpDataDrop:
		*s = appendU32(*s, i.Index)
	case OpMemorySize, OpMemoryGrow:
		*s = appendSlot(*s, i.Result)
		*s = appendU32(*s, i.Index)
		if i.Op == OpMemoryGrow {
			*s = appendSlot(*s, i.A)
		}
	case OpMemoryFill:
		*s = appendU32(*s, i.Index)
		*s = appendSlot(*s, i.A)
		*s = appendSlot(*s, i.B)
		*s = appendSlot(*s, i.Result)
	case OpMemoryCopy, OpMemoryInit:
		*s = appendU32(*s, i.Index)
		*s = appendU32(*s, i.Index2)
		*s = appendSlot(*s, i.A)
		*s = appendSlot(*s, i.B)
		*s = appendSlot(*s, i.Result)
	case OpLoad, OpStore:
		*s = appendU16(*s, uint16(i.Mem))
		*s = appendU32(*s, i.Index)
		*s = appendU32(*s, i.Offset)
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
		if i.Op == OpStore {
			*s = appendSlot(*s, i.B)
		}
	case OpLoadMem0, OpStoreMem0:
		*s = appendU16(*s, uint16(i.Mem))
		*s = appendI16(*s, i.Imm16) // offset, fits 16 bits
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
		if i.Op == OpStoreMem0 {
			*s = appendSlot(*s, i.B)
		}
	case OpStoreImm:
		*s = appendU16(*s, uint16(i.Mem))
		*s = appendU32(*s, i.Index)
		*s = appendU32(*s, i.Offset)
		*s = appendSlot(*s, i.A)
		*s = appendI32(*s, i.Imm32)
	case OpUnary, OpUnaryImm:
		*s = appendU16(*s, uint16(i.Num))
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
	case OpBinaryRegReg:
		*s = appendU16(*s, uint16(i.Num))
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
		*s = appendSlot(*s, i.B)
	case OpBinaryRegImm16:
		*s = appendU16(*s, uint16(i.Num))
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
		*s = appendI16(*s, i.Imm16)
	case OpBinaryRegImm32:
		*s = appendU16(*s, uint16(i.Num))
		*s = appendSlot(*s, i.Result)
		*s = appendSlot(*s, i.A)
		*s = appendI32(*s, i.Imm32)
	default:
		panic(fmt.Sprintf("ir: unencodable opcode %v", i.Op))
	}
	return pc
}

func appendU16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendI16(b []byte, v int16) []byte { return appendU16(b, uint16(v)) }

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendI32(b []byte, v int32) []byte { return appendU32(b, uint32(v)) }

func appendSlot(b []byte, s Slot) []byte { return appendI16(b, int16(s)) }

func appendSpan(b []byte, s SlotSpan) []byte {
	b = appendSlot(b, s.Head)
	b = appendU16(b, s.Len)
	return b
}
