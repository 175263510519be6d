package ir

// NumOp identifies one scalar Wasm numeric operator. Instruction combines a
// NumOp with one of the OpUnary*/OpBinary* opcodes below to describe the
// full (operator, operand-kind) specialisation the translator picked,
// without needing a distinct OpCode per (operator × operand-kind) pair —
// Go's lack of the kind of enum-matching macros wasmi's `ir` build script
// uses makes a generated ~1k-variant opcode list impractical, so the two
// axes (operator identity, operand kind) are factored into NumOp × OpCode
// instead. See DESIGN.md.
type NumOp uint16

const (
	// i32
	NumI32Add NumOp = iota
	NumI32Sub
	NumI32Mul
	NumI32DivS
	NumI32DivU
	NumI32RemS
	NumI32RemU
	NumI32And
	NumI32Or
	NumI32Xor
	NumI32Shl
	NumI32ShrS
	NumI32ShrU
	NumI32Rotl
	NumI32Rotr
	NumI32Eq
	NumI32Ne
	NumI32LtS
	NumI32LtU
	NumI32GtS
	NumI32GtU
	NumI32LeS
	NumI32LeU
	NumI32GeS
	NumI32GeU
	NumI32Eqz
	NumI32Clz
	NumI32Ctz
	NumI32Popcnt
	NumI32Extend8S
	NumI32Extend16S

	// i64
	NumI64Add
	NumI64Sub
	NumI64Mul
	NumI64DivS
	NumI64DivU
	NumI64RemS
	NumI64RemU
	NumI64And
	NumI64Or
	NumI64Xor
	NumI64Shl
	NumI64ShrS
	NumI64ShrU
	NumI64Rotl
	NumI64Rotr
	NumI64Eq
	NumI64Ne
	NumI64LtS
	NumI64LtU
	NumI64GtS
	NumI64GtU
	NumI64LeS
	NumI64LeU
	NumI64GeS
	NumI64GeU
	NumI64Eqz
	NumI64Clz
	NumI64Ctz
	NumI64Popcnt
	NumI64Extend8S
	NumI64Extend16S
	NumI64Extend32S

	// f32
	NumF32Add
	NumF32Sub
	NumF32Mul
	NumF32Div
	NumF32Min
	NumF32Max
	NumF32Copysign
	NumF32Abs
	NumF32Neg
	NumF32Ceil
	NumF32Floor
	NumF32Trunc
	NumF32Nearest
	NumF32Sqrt
	NumF32Eq
	NumF32Ne
	NumF32Lt
	NumF32Gt
	NumF32Le
	NumF32Ge

	// f64
	NumF64Add
	NumF64Sub
	NumF64Mul
	NumF64Div
	NumF64Min
	NumF64Max
	NumF64Copysign
	NumF64Abs
	NumF64Neg
	NumF64Ceil
	NumF64Floor
	NumF64Trunc
	NumF64Nearest
	NumF64Sqrt
	NumF64Eq
	NumF64Ne
	NumF64Lt
	NumF64Gt
	NumF64Le
	NumF64Ge

	// conversions
	NumI32WrapI64
	NumI64ExtendI32S
	NumI64ExtendI32U
	NumI32TruncF32S
	NumI32TruncF32U
	NumI32TruncF64S
	NumI32TruncF64U
	NumI64TruncF32S
	NumI64TruncF32U
	NumI64TruncF64S
	NumI64TruncF64U
	NumI32TruncSatF32S
	NumI32TruncSatF32U
	NumI32TruncSatF64S
	NumI32TruncSatF64U
	NumI64TruncSatF32S
	NumI64TruncSatF32U
	NumI64TruncSatF64S
	NumI64TruncSatF64U
	NumF32ConvertI32S
	NumF32ConvertI32U
	NumF32ConvertI64S
	NumF32ConvertI64U
	NumF64ConvertI32S
	NumF64ConvertI32U
	NumF64ConvertI64S
	NumF64ConvertI64U
	NumF32DemoteF64
	NumF64PromoteF32
	NumI32ReinterpretF32
	NumI64ReinterpretF64
	NumF32ReinterpretI32
	NumF64ReinterpretI64

	// wide-arithmetic (proposal): 64x64->128 widening ops operating over a
	// pair of result slots.
	NumI64Add128
	NumI64Sub128
	NumI64MulWideS
	NumI64MulWideU

	numOpCount
)

var numOpIsCommutative = map[NumOp]bool{
	NumI32Add: true, NumI32Mul: true, NumI32And: true, NumI32Or: true, NumI32Xor: true, NumI32Eq: true, NumI32Ne: true,
	NumI64Add: true, NumI64Mul: true, NumI64And: true, NumI64Or: true, NumI64Xor: true, NumI64Eq: true, NumI64Ne: true,
	NumF32Add: true, NumF32Mul: true, NumF64Add: true, NumF64Mul: true,
}

// Commutative reports whether swapping op's two operands is semantically a
// no-op, which lets the translator always place the immediate operand on
// the right regardless of Wasm source operand order.
func (op NumOp) Commutative() bool { return numOpIsCommutative[op] }

func numericOpName(o OpCode) string {
	switch o - opNumericBase {
	case 0:
		return "unary_reg"
	case 1:
		return "unary_reg_imm"
	case 2:
		return "binary_reg_reg"
	case 3:
		return "binary_reg_imm16"
	case 4:
		return "binary_reg_imm32"
	default:
		return "op(?)"
	}
}

const (
	OpUnary OpCode = opNumericBase + iota
	OpUnaryImm
	OpBinaryRegReg
	OpBinaryRegImm16
	OpBinaryRegImm32
)
