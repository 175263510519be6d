package ir

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DecodeError is returned by checked decoding when the stream is truncated
// or names an opcode the decoder does not recognise.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ir: decode error at offset %d: %s", e.Offset, e.Reason)
}

var errTruncated = errors.New("truncated instruction stream")

// Decoder reads Instructions sequentially from a Stream.
type Decoder struct {
	s   Stream
	pos int
}

// NewDecoder returns a Decoder positioned at the start of s.
func NewDecoder(s Stream) *Decoder { return &Decoder{s: s} }

// Pos returns the current byte offset (the PC of the next instruction).
func (d *Decoder) Pos() int { return d.pos }

// Seek repositions the decoder at byte offset pc.
func (d *Decoder) Seek(pc int) { d.pos = pc }

// Done reports whether the stream is fully consumed.
func (d *Decoder) Done() bool { return d.pos >= len(d.s) }

func (d *Decoder) need(n int) error {
	if d.pos+n > len(d.s) {
		return errTruncated
	}
	return nil
}

func (d *Decoder) u16() (uint16, error) {
	if err := d.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.s[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *Decoder) i16() (int16, error) { v, err := d.u16(); return int16(v), err }

func (d *Decoder) u32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.s[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *Decoder) i32() (int32, error) { v, err := d.u32(); return int32(v), err }

func (d *Decoder) slot() (Slot, error) { v, err := d.i16(); return Slot(v), err }

func (d *Decoder) span() (SlotSpan, error) {
	head, err := d.slot()
	if err != nil {
		return SlotSpan{}, err
	}
	n, err := d.u16()
	if err != nil {
		return SlotSpan{}, err
	}
	return SlotSpan{Head: head, Len: n}, nil
}

func (d *Decoder) byte() (byte, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.s[d.pos]
	d.pos++
	return v, nil
}

// Next decodes the instruction at the current position (checked: returns a
// *DecodeError on truncation or an unrecognised opcode). There is no
// unchecked variant; the executor decodes through Next as well.
func (d *Decoder) Next() (Instruction, error) {
	start := d.pos
	i, err := d.next()
	if err != nil {
		return Instruction{}, &DecodeError{Offset: start, Reason: err.Error()}
	}
	return i, nil
}

func (d *Decoder) next() (i Instruction, err error) {
	op, err := d.u16()
	if err != nil {
		return i, err
	}
	i.Op = OpCode(op)
	switch i.Op {
	case OpTrap:
		b, e := d.byte()
		i.Trap, err = TrapCode(b), e
	case OpConsumeFuel:
		i.Fuel, err = d.u32()
	case OpCopy:
		i.Result, err = d.slot()
		if err == nil {
			i.A, err = d.slot()
		}
	case OpCopy2:
		i.Result, err = d.slot()
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.B, err = d.slot()
		}
	case OpCopyImm32:
		i.Result, err = d.slot()
		if err == nil {
			i.Imm32, err = d.i32()
		}
	case OpCopyImm64:
		i.Result, err = d.slot()
		if err == nil {
			i.A, err = d.slot()
		}
	case OpCopySpan, OpCopySpanNonOverlapping, OpCopyMany, OpCopyManyNonOverlapping:
		i.Results, err = d.span()
		if err == nil {
			i.Inputs, err = d.span()
		}
	case OpReturn, OpReturnNil:
	case OpReturnReg:
		i.A, err = d.slot()
	case OpReturnReg2, OpReturnReg3:
		i.A, err = d.slot()
		if err == nil {
			i.B, err = d.slot()
		}
	case OpReturnImm32:
		i.Imm32, err = d.i32()
	case OpReturnImm64:
		i.A, err = d.slot()
	case OpReturnSpan, OpReturnMany:
		i.Inputs, err = d.span()
	case OpBranch:
		var v int32
		v, err = d.i32()
		i.Branch = BranchOffset(v)
	case OpBranchTable0, OpBranchTableMany, OpBranchTableSpanN:
		i.A, err = d.slot()
		if err == nil {
			i.TargetCount, err = d.u32()
		}
	case OpBranchI32EqImm16, OpBranchI32NeImm16, OpBranchI32LtSImm16, OpBranchI32LtUImm16,
		OpBranchI32GtSImm16, OpBranchI32GtUImm16, OpBranchI32LeSImm16, OpBranchI32LeUImm16,
		OpBranchI32GeSImm16, OpBranchI32GeUImm16:
		i.A, err = d.slot()
		if err == nil {
			i.Imm16, err = d.i16()
		}
		if err == nil {
			var v int32
			v, err = d.i32()
			i.Branch = BranchOffset(v)
		}
	case OpBranchI32Eq, OpBranchI32Ne, OpBranchI32LtS, OpBranchI32LtU, OpBranchI32GtS, OpBranchI32GtU,
		OpBranchI32LeS, OpBranchI32LeU, OpBranchI32GeS, OpBranchI32GeU,
		OpBranchI64Eq, OpBranchI64Ne, OpBranchI64LtS, OpBranchI64LtU, OpBranchI64GtS, OpBranchI64GtU,
		OpBranchI64LeS, OpBranchI64LeU, OpBranchI64GeS, OpBranchI64GeU,
		OpBranchF32Eq, OpBranchF32Ne, OpBranchF32Lt, OpBranchF32Gt, OpBranchF32Le, OpBranchF32Ge,
		OpBranchF64Eq, OpBranchF64Ne, OpBranchF64Lt, OpBranchF64Gt, OpBranchF64Le, OpBranchF64Ge:
		i.A, err = d.slot()
		if err == nil {
			i.B, err = d.slot()
		}
		if err == nil {
			var v int32
			v, err = d.i32()
			i.Branch = BranchOffset(v)
		}
	case OpCall, OpCallInternal, OpReturnCall, OpReturnCallInternal:
		i.Index, err = d.u32()
		if err == nil {
			i.Results, err = d.span()
		}
		if err == nil {
			i.Inputs, err = d.span()
		}
	case OpCallIndirect, OpReturnCallIndirect:
		i.Index, err = d.u32()
		if err == nil {
			i.Index2, err = d.u32()
		}
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.Results, err = d.span()
		}
		if err == nil {
			i.Inputs, err = d.span()
		}
	case OpRefFunc:
		i.Result, err = d.slot()
		if err == nil {
			i.Index, err = d.u32()
		}
	case OpRefNull:
		i.Result, err = d.slot()
	case OpRefIsNull:
		i.Result, err = d.slot()
		if err == nil {
			i.A, err = d.slot()
		}
	case OpSelect, OpCmpSelect:
		i.Result, err = d.slot()
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.B, err = d.slot()
		}
		if err == nil {
			i.Inputs.Head, err = d.slot()
		}
	case OpGlobalGet, OpGlobalGet0:
		i.Result, err = d.slot()
		if err == nil && i.Op == OpGlobalGet {
			i.Index, err = d.u32()
		}
	case OpGlobalSet, OpGlobalSet0:
		i.A, err = d.slot()
		if err == nil && i.Op == OpGlobalSet {
			i.Index, err = d.u32()
		}
	case OpTableGet, OpTableSet:
		i.Result, err = d.slot()
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.Index, err = d.u32()
		}
	case OpTableSize, OpTableGrow:
		i.Result, err = d.slot()
		if err == nil {
			i.Index, err = d.u32()
		}
		if err == nil && i.Op == OpTableGrow {
			i.A, err = d.slot()
			if err == nil {
				i.B, err = d.slot()
			}
		}
	case OpTableFill:
		i.Index, err = d.u32()
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.B, err = d.slot()
		}
		if err == nil {
			i.Result, err = d.slot()
		}
	case OpTableCopy, OpTableInit:
		i.Index, err = d.u32()
		if err == nil {
			i.Index2, err = d.u32()
		}
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.B, err = d.slot()
		}
		if err == nil {
			i.Result, err = d.slot()
		}
	case OpElemDrop, OpDataDrop:
		i.Index, err = d.u32()
	case OpMemorySize, OpMemoryGrow:
		i.Result, err = d.slot()
		if err == nil {
			i.Index, err = d.u32()
		}
		if err == nil && i.Op == OpMemoryGrow {
			i.A, err = d.slot()
		}
	case OpMemoryFill:
		i.Index, err = d.u32()
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.B, err = d.slot()
		}
		if err == nil {
			i.Result, err = d.slot()
		}
	case OpMemoryCopy, OpMemoryInit:
		i.Index, err = d.u32()
		if err == nil {
			i.Index2, err = d.u32()
		}
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.B, err = d.slot()
		}
		if err == nil {
			i.Result, err = d.slot()
		}
	case OpLoad, OpStore:
		var m uint16
		m, err = d.u16()
		i.Mem = MemKind(m)
		if err == nil {
			i.Index, err = d.u32()
		}
		if err == nil {
			i.Offset, err = d.u32()
		}
		if err == nil {
			i.Result, err = d.slot()
		}
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil && i.Op == OpStore {
			i.B, err = d.slot()
		}
	case OpLoadMem0, OpStoreMem0:
		var m uint16
		m, err = d.u16()
		i.Mem = MemKind(m)
		if err == nil {
			i.Imm16, err = d.i16()
		}
		if err == nil {
			i.Result, err = d.slot()
		}
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil && i.Op == OpStoreMem0 {
			i.B, err = d.slot()
		}
	case OpStoreImm:
		var m uint16
		m, err = d.u16()
		i.Mem = MemKind(m)
		if err == nil {
			i.Index, err = d.u32()
		}
		if err == nil {
			i.Offset, err = d.u32()
		}
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.Imm32, err = d.i32()
		}
	case OpUnary, OpUnaryImm:
		var n uint16
		n, err = d.u16()
		i.Num = NumOp(n)
		if err == nil {
			i.Result, err = d.slot()
		}
		if err == nil {
			i.A, err = d.slot()
		}
	case OpBinaryRegReg:
		var n uint16
		n, err = d.u16()
		i.Num = NumOp(n)
		if err == nil {
			i.Result, err = d.slot()
		}
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.B, err = d.slot()
		}
	case OpBinaryRegImm16:
		var n uint16
		n, err = d.u16()
		i.Num = NumOp(n)
		if err == nil {
			i.Result, err = d.slot()
		}
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.Imm16, err = d.i16()
		}
	case OpBinaryRegImm32:
		var n uint16
		n, err = d.u16()
		i.Num = NumOp(n)
		if err == nil {
			i.Result, err = d.slot()
		}
		if err == nil {
			i.A, err = d.slot()
		}
		if err == nil {
			i.Imm32, err = d.i32()
		}
	default:
		return i, fmt.Errorf("unknown opcode %d", op)
	}
	return i, err
}

// DecodeAll decodes every instruction in s, returning them in stream order
// (their PCs are not returned). Used by tests exercising the round-trip property (spec.md §8 item 1).
func DecodeAll(s Stream) ([]Instruction, error) {
	d := NewDecoder(s)
	var out []Instruction
	for !d.Done() {
		i, err := d.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}
