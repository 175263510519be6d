package ir

// OpCode tags one variant of Instruction. The list mirrors wasmi's
// `ir::Instruction` enum (spec.md §4.1): one tag per operator, with
// specialised register/immediate forms kept as distinct opcodes so the
// executor's dispatch table stays a flat switch rather than a branchy
// generic handler.
type OpCode uint16

//go:generate stringer -type=OpCode -output=opcode_string.go

const (
	OpTrap OpCode = iota
	OpConsumeFuel

	// Copies.
	OpCopy
	OpCopy2
	OpCopyImm32
	OpCopyImm64 // value lives in the constant pool, addressed by A
	OpCopySpan
	OpCopySpanNonOverlapping
	OpCopyMany
	OpCopyManyNonOverlapping

	// Locals / control-stack plumbing.
	OpReturn
	OpReturnReg
	OpReturnReg2
	OpReturnReg3
	OpReturnImm32
	OpReturnImm64
	OpReturnSpan
	OpReturnMany
	OpReturnNil

	OpBranch
	OpBranchTable0
	OpBranchTableMany
	OpBranchTableSpanN

	// Fused compare+branch forms. Op identifies both the comparison and the
	// operand kind (register vs 16-bit immediate); the executor evaluates
	// them with evalRegCmp and evalImm16Cmp.
	OpBranchI32Eq
	OpBranchI32Ne
	OpBranchI32LtS
	OpBranchI32LtU
	OpBranchI32GtS
	OpBranchI32GtU
	OpBranchI32LeS
	OpBranchI32LeU
	OpBranchI32GeS
	OpBranchI32GeU
	OpBranchI32EqImm16
	OpBranchI32NeImm16
	OpBranchI32LtSImm16
	OpBranchI32LtUImm16
	OpBranchI32GtSImm16
	OpBranchI32GtUImm16
	OpBranchI32LeSImm16
	OpBranchI32LeUImm16
	OpBranchI32GeSImm16
	OpBranchI32GeUImm16
	OpBranchI64Eq
	OpBranchI64Ne
	OpBranchI64LtS
	OpBranchI64LtU
	OpBranchI64GtS
	OpBranchI64GtU
	OpBranchI64LeS
	OpBranchI64LeU
	OpBranchI64GeS
	OpBranchI64GeU
	OpBranchF32Eq
	OpBranchF32Ne
	OpBranchF32Lt
	OpBranchF32Gt
	OpBranchF32Le
	OpBranchF32Ge
	OpBranchF64Eq
	OpBranchF64Ne
	OpBranchF64Lt
	OpBranchF64Gt
	OpBranchF64Le
	OpBranchF64Ge

	OpCall
	OpCallIndirect
	OpCallInternal
	OpReturnCall
	OpReturnCallIndirect
	OpReturnCallInternal

	// Reference ops.
	OpRefFunc
	OpRefNull
	OpRefIsNull

	// Select.
	OpSelect
	OpCmpSelect

	// Globals.
	OpGlobalGet
	OpGlobalGet0
	OpGlobalSet
	OpGlobalSet0

	// Table ops.
	OpTableGet
	OpTableSet
	OpTableSize
	OpTableGrow
	OpTableFill
	OpTableCopy
	OpTableInit
	OpElemDrop

	// Memory ops.
	OpMemorySize
	OpMemoryGrow
	OpMemoryFill
	OpMemoryCopy
	OpMemoryInit
	OpDataDrop

	// Loads/stores: general form carries memory index + 32-bit offset;
	// Mem0 form assumes memory index 0 with a 16-bit offset (the hot path).
	OpLoad
	OpLoadMem0
	OpStore
	OpStoreMem0
	OpStoreImm

	// Unary/binary numeric ops use the OpCodes declared in numeric.go, one
	// per operand kind; the operation itself travels in Instruction.Num.
	// opNumericBase marks where that block starts.
	opNumericBase
)

// String renders a human-readable opcode name; numeric ops beyond opNumericBase
// are rendered via numericOpName.
func (o OpCode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return numericOpName(o)
}

var opcodeNames = [...]string{
	"trap", "consume_fuel",
	"copy", "copy2", "copy_imm32", "copy_imm64", "copy_span", "copy_span_nonoverlapping",
	"copy_many", "copy_many_nonoverlapping",
	"return", "return_reg", "return_reg2", "return_reg3", "return_imm32", "return_imm64",
	"return_span", "return_many", "return_nil",
	"branch", "branch_table0", "branch_table_many", "branch_table_span_n",
	"branch_i32_eq", "branch_i32_ne", "branch_i32_lt_s", "branch_i32_lt_u",
	"branch_i32_gt_s", "branch_i32_gt_u", "branch_i32_le_s", "branch_i32_le_u",
	"branch_i32_ge_s", "branch_i32_ge_u",
	"branch_i32_eq_imm16", "branch_i32_ne_imm16", "branch_i32_lt_s_imm16", "branch_i32_lt_u_imm16",
	"branch_i32_gt_s_imm16", "branch_i32_gt_u_imm16", "branch_i32_le_s_imm16", "branch_i32_le_u_imm16",
	"branch_i32_ge_s_imm16", "branch_i32_ge_u_imm16",
	"branch_i64_eq", "branch_i64_ne", "branch_i64_lt_s", "branch_i64_lt_u",
	"branch_i64_gt_s", "branch_i64_gt_u", "branch_i64_le_s", "branch_i64_le_u",
	"branch_i64_ge_s", "branch_i64_ge_u",
	"branch_f32_eq", "branch_f32_ne", "branch_f32_lt", "branch_f32_gt", "branch_f32_le", "branch_f32_ge",
	"branch_f64_eq", "branch_f64_ne", "branch_f64_lt", "branch_f64_gt", "branch_f64_le", "branch_f64_ge",
	"call", "call_indirect", "call_internal", "return_call", "return_call_indirect", "return_call_internal",
	"ref_func", "ref_null", "ref_is_null",
	"select", "cmp_select",
	"global_get", "global_get0", "global_set", "global_set0",
	"table_get", "table_set", "table_size", "table_grow", "table_fill", "table_copy", "table_init", "elem_drop",
	"memory_size", "memory_grow", "memory_fill", "memory_copy", "memory_init", "data_drop",
	"load", "load_mem0", "store", "store_mem0", "store_imm",
}
