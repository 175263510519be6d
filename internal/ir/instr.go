package ir

// Instruction is one operator in the register-machine IR. Rather than a
// Rust-style tagged union with one struct per variant, the fields below are
// a flat superset used across all opcodes (wazero's interpreter uses the
// same "one struct shape, opcode picks the active fields" layout in its
// UnionOperation for exactly the same reason: it keeps decode/dispatch a
// flat array index instead of an interface call per instruction).
//
// Field meaning is opcode-dependent; see the comment on each opcode group in
// opcode.go and numeric.go for which fields are live.
type Instruction struct {
	Op  OpCode
	Num NumOp   // live for OpUnary*/OpBinary* families
	Mem MemKind // live for OpLoad*/OpStore* families

	Result Slot
	A, B   Slot // primary operands; immediates live in Imm16/Imm32 instead

	Imm16 int16
	Imm32 int32

	Results SlotSpan // multi-result copies/returns/calls
	Inputs  SlotSpan // multi-input copies/returns/calls

	Branch BranchOffset
	Trap   TrapCode

	Index  uint32 // func/global/memory/table/data/elem/functype index
	Index2 uint32 // second index, e.g. table.copy's destination table
	Offset uint32 // memory load/store byte offset
	Fuel   uint32 // ConsumeFuel amount

	TargetCount uint32 // number of BranchTable arms that follow
}

// NewTrap builds a Trap instruction.
func NewTrap(code TrapCode) Instruction { return Instruction{Op: OpTrap, Trap: code} }

// NewConsumeFuel builds a ConsumeFuel instruction for a basic-block head.
func NewConsumeFuel(amount uint32) Instruction { return Instruction{Op: OpConsumeFuel, Fuel: amount} }
