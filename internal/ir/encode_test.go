package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []Instruction{
		NewTrap(TrapIntegerDivisionByZero),
		NewConsumeFuel(42),
		{Op: OpCopy, Result: 3, A: -1},
		{Op: OpCopy2, Result: 3, A: 1, B: 2},
		{Op: OpCopyImm32, Result: 3, Imm32: -7},
		{Op: OpCopySpan, Results: SlotSpan{Head: 0, Len: 2}, Inputs: SlotSpan{Head: 4, Len: 2}},
		{Op: OpReturnReg, A: 5},
		{Op: OpBranch, Branch: 12},
		{Op: OpBranchI32EqImm16, A: 2, Imm16: 7, Branch: -4},
		{Op: OpBranchI64LtS, A: 1, B: 2, Branch: 20},
		{Op: OpCallInternal, Index: 9, Results: SlotSpan{Head: 0, Len: 1}, Inputs: SlotSpan{Head: 1, Len: 2}},
		{Op: OpCallIndirect, Index: 1, Index2: 0, A: 8, Results: SlotSpan{Head: 0, Len: 1}, Inputs: SlotSpan{Head: 1, Len: 1}},
		{Op: OpGlobalGet, Result: 0, Index: 3},
		{Op: OpGlobalGet0, Result: 0},
		{Op: OpTableCopy, Index: 0, Index2: 1, A: 2, B: 3, Result: 4},
		{Op: OpLoad, Index: 0, Offset: 16, Result: 1, A: 2},
		{Op: OpLoadMem0, Imm16: 16, Result: 1, A: 2},
		{Op: OpStoreImm, Index: 0, Offset: 4, A: 1, Imm32: 42},
		{Op: OpBinaryRegReg, Num: NumI32Add, Result: 2, A: 0, B: 1},
		{Op: OpBinaryRegImm16, Num: NumI32Add, Result: 2, A: 0, Imm16: 5},
		{Op: OpBinaryRegImm32, Num: NumI64Mul, Result: 2, A: 0, Imm32: 70000},
		{Op: OpUnary, Num: NumI32Clz, Result: 1, A: 0},
	}

	var s Stream
	var pcs []int
	for _, c := range cases {
		pcs = append(pcs, s.Append(c))
	}

	decoded, err := DecodeAll(s)
	require.NoError(t, err)
	require.Equal(t, cases, decoded)

	d := NewDecoder(s)
	for idx, pc := range pcs {
		d.Seek(pc)
		got, err := d.Next()
		require.NoError(t, err)
		require.Equal(t, cases[idx], got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	var s Stream
	s.Append(Instruction{Op: OpBinaryRegReg, Num: NumI32Add, Result: 2, A: 0, B: 1})
	truncated := s[:len(s)-1]
	_, err := DecodeAll(truncated)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestSlotConstAddressing(t *testing.T) {
	s := ConstSlot(0)
	require.True(t, s.IsConst())
	require.Equal(t, 0, s.ConstIndex())
	require.Equal(t, 2, s.ConstIndex()+ConstSlot(2).ConstIndex()-ConstSlot(0).ConstIndex())
}

func TestVisitInputRegsAndRelink(t *testing.T) {
	i := Instruction{Op: OpBinaryRegReg, Num: NumI32Add, Result: 2, A: 0, B: 1}
	var seen []Slot
	i.VisitInputRegs(func(s *Slot) { seen = append(seen, *s) })
	require.Equal(t, []Slot{0, 1}, seen)

	changed := i.RelinkResult(2, 9)
	require.True(t, changed)
	require.Equal(t, Slot(9), i.Result)

	changed = i.RelinkResult(2, 10)
	require.False(t, changed)
}
