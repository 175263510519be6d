package translator

import (
	"math"
	"math/bits"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/ir"
)

// wasmOpToNumOp maps a raw Wasm numeric opcode byte (0x45-0xc4) to its IR
// NumOp. The switch mirrors the contiguous layout the Wasm binary format
// uses for this range (spec.md §4.1's opcode table).
func wasmOpToNumOp(op byte) (ir.NumOp, bool) {
	switch op {
	case 0x45:
		return ir.NumI32Eqz, true
	case 0x46:
		return ir.NumI32Eq, true
	case 0x47:
		return ir.NumI32Ne, true
	case 0x48:
		return ir.NumI32LtS, true
	case 0x49:
		return ir.NumI32LtU, true
	case 0x4a:
		return ir.NumI32GtS, true
	case 0x4b:
		return ir.NumI32GtU, true
	case 0x4c:
		return ir.NumI32LeS, true
	case 0x4d:
		return ir.NumI32LeU, true
	case 0x4e:
		return ir.NumI32GeS, true
	case 0x4f:
		return ir.NumI32GeU, true
	case 0x50:
		return ir.NumI64Eqz, true
	case 0x51:
		return ir.NumI64Eq, true
	case 0x52:
		return ir.NumI64Ne, true
	case 0x53:
		return ir.NumI64LtS, true
	case 0x54:
		return ir.NumI64LtU, true
	case 0x55:
		return ir.NumI64GtS, true
	case 0x56:
		return ir.NumI64GtU, true
	case 0x57:
		return ir.NumI64LeS, true
	case 0x58:
		return ir.NumI64LeU, true
	case 0x59:
		return ir.NumI64GeS, true
	case 0x5a:
		return ir.NumI64GeU, true
	case 0x5b:
		return ir.NumF32Eq, true
	case 0x5c:
		return ir.NumF32Ne, true
	case 0x5d:
		return ir.NumF32Lt, true
	case 0x5e:
		return ir.NumF32Gt, true
	case 0x5f:
		return ir.NumF32Le, true
	case 0x60:
		return ir.NumF32Ge, true
	case 0x61:
		return ir.NumF64Eq, true
	case 0x62:
		return ir.NumF64Ne, true
	case 0x63:
		return ir.NumF64Lt, true
	case 0x64:
		return ir.NumF64Gt, true
	case 0x65:
		return ir.NumF64Le, true
	case 0x66:
		return ir.NumF64Ge, true
	case 0x67:
		return ir.NumI32Clz, true
	case 0x68:
		return ir.NumI32Ctz, true
	case 0x69:
		return ir.NumI32Popcnt, true
	case 0x6a:
		return ir.NumI32Add, true
	case 0x6b:
		return ir.NumI32Sub, true
	case 0x6c:
		return ir.NumI32Mul, true
	case 0x6d:
		return ir.NumI32DivS, true
	case 0x6e:
		return ir.NumI32DivU, true
	case 0x6f:
		return ir.NumI32RemS, true
	case 0x70:
		return ir.NumI32RemU, true
	case 0x71:
		return ir.NumI32And, true
	case 0x72:
		return ir.NumI32Or, true
	case 0x73:
		return ir.NumI32Xor, true
	case 0x74:
		return ir.NumI32Shl, true
	case 0x75:
		return ir.NumI32ShrS, true
	case 0x76:
		return ir.NumI32ShrU, true
	case 0x77:
		return ir.NumI32Rotl, true
	case 0x78:
		return ir.NumI32Rotr, true
	case 0x79:
		return ir.NumI64Clz, true
	case 0x7a:
		return ir.NumI64Ctz, true
	case 0x7b:
		return ir.NumI64Popcnt, true
	case 0x7c:
		return ir.NumI64Add, true
	case 0x7d:
		return ir.NumI64Sub, true
	case 0x7e:
		return ir.NumI64Mul, true
	case 0x7f:
		return ir.NumI64DivS, true
	case 0x80:
		return ir.NumI64DivU, true
	case 0x81:
		return ir.NumI64RemS, true
	case 0x82:
		return ir.NumI64RemU, true
	case 0x83:
		return ir.NumI64And, true
	case 0x84:
		return ir.NumI64Or, true
	case 0x85:
		return ir.NumI64Xor, true
	case 0x86:
		return ir.NumI64Shl, true
	case 0x87:
		return ir.NumI64ShrS, true
	case 0x88:
		return ir.NumI64ShrU, true
	case 0x89:
		return ir.NumI64Rotl, true
	case 0x8a:
		return ir.NumI64Rotr, true
	case 0x8b:
		return ir.NumF32Abs, true
	case 0x8c:
		return ir.NumF32Neg, true
	case 0x8d:
		return ir.NumF32Ceil, true
	case 0x8e:
		return ir.NumF32Floor, true
	case 0x8f:
		return ir.NumF32Trunc, true
	case 0x90:
		return ir.NumF32Nearest, true
	case 0x91:
		return ir.NumF32Sqrt, true
	case 0x92:
		return ir.NumF32Add, true
	case 0x93:
		return ir.NumF32Sub, true
	case 0x94:
		return ir.NumF32Mul, true
	case 0x95:
		return ir.NumF32Div, true
	case 0x96:
		return ir.NumF32Min, true
	case 0x97:
		return ir.NumF32Max, true
	case 0x98:
		return ir.NumF32Copysign, true
	case 0x99:
		return ir.NumF64Abs, true
	case 0x9a:
		return ir.NumF64Neg, true
	case 0x9b:
		return ir.NumF64Ceil, true
	case 0x9c:
		return ir.NumF64Floor, true
	case 0x9d:
		return ir.NumF64Trunc, true
	case 0x9e:
		return ir.NumF64Nearest, true
	case 0x9f:
		return ir.NumF64Sqrt, true
	case 0xa0:
		return ir.NumF64Add, true
	case 0xa1:
		return ir.NumF64Sub, true
	case 0xa2:
		return ir.NumF64Mul, true
	case 0xa3:
		return ir.NumF64Div, true
	case 0xa4:
		return ir.NumF64Min, true
	case 0xa5:
		return ir.NumF64Max, true
	case 0xa6:
		return ir.NumF64Copysign, true
	case 0xa7:
		return ir.NumI32WrapI64, true
	case 0xa8:
		return ir.NumI32TruncF32S, true
	case 0xa9:
		return ir.NumI32TruncF32U, true
	case 0xaa:
		return ir.NumI32TruncF64S, true
	case 0xab:
		return ir.NumI32TruncF64U, true
	case 0xac:
		return ir.NumI64ExtendI32S, true
	case 0xad:
		return ir.NumI64ExtendI32U, true
	case 0xae:
		return ir.NumI64TruncF32S, true
	case 0xaf:
		return ir.NumI64TruncF32U, true
	case 0xb0:
		return ir.NumI64TruncF64S, true
	case 0xb1:
		return ir.NumI64TruncF64U, true
	case 0xb2:
		return ir.NumF32ConvertI32S, true
	case 0xb3:
		return ir.NumF32ConvertI32U, true
	case 0xb4:
		return ir.NumF32ConvertI64S, true
	case 0xb5:
		return ir.NumF32ConvertI64U, true
	case 0xb6:
		return ir.NumF32DemoteF64, true
	case 0xb7:
		return ir.NumF64ConvertI32S, true
	case 0xb8:
		return ir.NumF64ConvertI32U, true
	case 0xb9:
		return ir.NumF64ConvertI64S, true
	case 0xba:
		return ir.NumF64ConvertI64U, true
	case 0xbb:
		return ir.NumF64PromoteF32, true
	case 0xbc:
		return ir.NumI32ReinterpretF32, true
	case 0xbd:
		return ir.NumI64ReinterpretF64, true
	case 0xbe:
		return ir.NumF32ReinterpretI32, true
	case 0xbf:
		return ir.NumF64ReinterpretI64, true
	case 0xc0:
		return ir.NumI32Extend8S, true
	case 0xc1:
		return ir.NumI32Extend16S, true
	case 0xc2:
		return ir.NumI64Extend8S, true
	case 0xc3:
		return ir.NumI64Extend16S, true
	case 0xc4:
		return ir.NumI64Extend32S, true
	}
	return 0, false
}

// numSig describes a NumOp's arity and the value types the translator must
// push/pop around it.
type numSig struct {
	arity     int
	operandTy api.ValueType
	resultTy  api.ValueType
}

func numOpSig(op ir.NumOp) numSig {
	switch op {
	case ir.NumI32Add, ir.NumI32Sub, ir.NumI32Mul, ir.NumI32DivS, ir.NumI32DivU,
		ir.NumI32RemS, ir.NumI32RemU, ir.NumI32And, ir.NumI32Or, ir.NumI32Xor,
		ir.NumI32Shl, ir.NumI32ShrS, ir.NumI32ShrU, ir.NumI32Rotl, ir.NumI32Rotr,
		ir.NumI32Eq, ir.NumI32Ne, ir.NumI32LtS, ir.NumI32LtU, ir.NumI32GtS, ir.NumI32GtU,
		ir.NumI32LeS, ir.NumI32LeU, ir.NumI32GeS, ir.NumI32GeU:
		return numSig{2, api.ValueTypeI32, api.ValueTypeI32}
	case ir.NumI32Eqz, ir.NumI32Clz, ir.NumI32Ctz, ir.NumI32Popcnt, ir.NumI32Extend8S, ir.NumI32Extend16S:
		return numSig{1, api.ValueTypeI32, api.ValueTypeI32}

	case ir.NumI64Add, ir.NumI64Sub, ir.NumI64Mul, ir.NumI64DivS, ir.NumI64DivU,
		ir.NumI64RemS, ir.NumI64RemU, ir.NumI64And, ir.NumI64Or, ir.NumI64Xor,
		ir.NumI64Shl, ir.NumI64ShrS, ir.NumI64ShrU, ir.NumI64Rotl, ir.NumI64Rotr:
		return numSig{2, api.ValueTypeI64, api.ValueTypeI64}
	case ir.NumI64Eq, ir.NumI64Ne, ir.NumI64LtS, ir.NumI64LtU, ir.NumI64GtS, ir.NumI64GtU,
		ir.NumI64LeS, ir.NumI64LeU, ir.NumI64GeS, ir.NumI64GeU:
		return numSig{2, api.ValueTypeI64, api.ValueTypeI32}
	case ir.NumI64Eqz:
		return numSig{1, api.ValueTypeI64, api.ValueTypeI32}
	case ir.NumI64Clz, ir.NumI64Ctz, ir.NumI64Popcnt, ir.NumI64Extend8S, ir.NumI64Extend16S, ir.NumI64Extend32S:
		return numSig{1, api.ValueTypeI64, api.ValueTypeI64}

	case ir.NumF32Add, ir.NumF32Sub, ir.NumF32Mul, ir.NumF32Div, ir.NumF32Min, ir.NumF32Max, ir.NumF32Copysign:
		return numSig{2, api.ValueTypeF32, api.ValueTypeF32}
	case ir.NumF32Eq, ir.NumF32Ne, ir.NumF32Lt, ir.NumF32Gt, ir.NumF32Le, ir.NumF32Ge:
		return numSig{2, api.ValueTypeF32, api.ValueTypeI32}
	case ir.NumF32Abs, ir.NumF32Neg, ir.NumF32Ceil, ir.NumF32Floor, ir.NumF32Trunc, ir.NumF32Nearest, ir.NumF32Sqrt:
		return numSig{1, api.ValueTypeF32, api.ValueTypeF32}

	case ir.NumF64Add, ir.NumF64Sub, ir.NumF64Mul, ir.NumF64Div, ir.NumF64Min, ir.NumF64Max, ir.NumF64Copysign:
		return numSig{2, api.ValueTypeF64, api.ValueTypeF64}
	case ir.NumF64Eq, ir.NumF64Ne, ir.NumF64Lt, ir.NumF64Gt, ir.NumF64Le, ir.NumF64Ge:
		return numSig{2, api.ValueTypeF64, api.ValueTypeI32}
	case ir.NumF64Abs, ir.NumF64Neg, ir.NumF64Ceil, ir.NumF64Floor, ir.NumF64Trunc, ir.NumF64Nearest, ir.NumF64Sqrt:
		return numSig{1, api.ValueTypeF64, api.ValueTypeF64}

	case ir.NumI32WrapI64:
		return numSig{1, api.ValueTypeI64, api.ValueTypeI32}
	case ir.NumI64ExtendI32S, ir.NumI64ExtendI32U:
		return numSig{1, api.ValueTypeI32, api.ValueTypeI64}
	case ir.NumI32TruncF32S, ir.NumI32TruncF32U, ir.NumI32TruncSatF32S, ir.NumI32TruncSatF32U:
		return numSig{1, api.ValueTypeF32, api.ValueTypeI32}
	case ir.NumI32TruncF64S, ir.NumI32TruncF64U, ir.NumI32TruncSatF64S, ir.NumI32TruncSatF64U:
		return numSig{1, api.ValueTypeF64, api.ValueTypeI32}
	case ir.NumI64TruncF32S, ir.NumI64TruncF32U, ir.NumI64TruncSatF32S, ir.NumI64TruncSatF32U:
		return numSig{1, api.ValueTypeF32, api.ValueTypeI64}
	case ir.NumI64TruncF64S, ir.NumI64TruncF64U, ir.NumI64TruncSatF64S, ir.NumI64TruncSatF64U:
		return numSig{1, api.ValueTypeF64, api.ValueTypeI64}
	case ir.NumF32ConvertI32S, ir.NumF32ConvertI32U:
		return numSig{1, api.ValueTypeI32, api.ValueTypeF32}
	case ir.NumF32ConvertI64S, ir.NumF32ConvertI64U:
		return numSig{1, api.ValueTypeI64, api.ValueTypeF32}
	case ir.NumF64ConvertI32S, ir.NumF64ConvertI32U:
		return numSig{1, api.ValueTypeI32, api.ValueTypeF64}
	case ir.NumF64ConvertI64S, ir.NumF64ConvertI64U:
		return numSig{1, api.ValueTypeI64, api.ValueTypeF64}
	case ir.NumF32DemoteF64:
		return numSig{1, api.ValueTypeF64, api.ValueTypeF32}
	case ir.NumF64PromoteF32:
		return numSig{1, api.ValueTypeF32, api.ValueTypeF64}
	case ir.NumI32ReinterpretF32:
		return numSig{1, api.ValueTypeF32, api.ValueTypeI32}
	case ir.NumI64ReinterpretF64:
		return numSig{1, api.ValueTypeF64, api.ValueTypeI64}
	case ir.NumF32ReinterpretI32:
		return numSig{1, api.ValueTypeI32, api.ValueTypeF32}
	case ir.NumF64ReinterpretI64:
		return numSig{1, api.ValueTypeI64, api.ValueTypeF64}
	default:
		return numSig{2, api.ValueTypeI64, api.ValueTypeI64}
	}
}

// trapsAtRuntime reports whether op can fault depending on operand values
// (division, remainder, and non-saturating float-to-int truncation), which
// rules it out of compile-time constant folding: folding those ops would
// require replicating trap semantics in the translator for no benefit, so
// they're always left as a runtime instruction (spec.md §4.2 "Constant
// folding" only requires folding the non-trapping operators).
func trapsAtRuntime(op ir.NumOp) bool {
	switch op {
	case ir.NumI32DivS, ir.NumI32DivU, ir.NumI32RemS, ir.NumI32RemU,
		ir.NumI64DivS, ir.NumI64DivU, ir.NumI64RemS, ir.NumI64RemU,
		ir.NumI32TruncF32S, ir.NumI32TruncF32U, ir.NumI32TruncF64S, ir.NumI32TruncF64U,
		ir.NumI64TruncF32S, ir.NumI64TruncF32U, ir.NumI64TruncF64S, ir.NumI64TruncF64U:
		return true
	default:
		return false
	}
}

// foldUnary evaluates a non-trapping unary NumOp at translation time.
func foldUnary(op ir.NumOp, a uint64) (uint64, bool) {
	switch op {
	case ir.NumI32Eqz:
		return b2u(uint32(a) == 0), true
	case ir.NumI32Clz:
		return uint64(bits.LeadingZeros32(uint32(a))), true
	case ir.NumI32Ctz:
		return uint64(bits.TrailingZeros32(uint32(a))), true
	case ir.NumI32Popcnt:
		return uint64(bits.OnesCount32(uint32(a))), true
	case ir.NumI32Extend8S:
		return uint64(uint32(int32(int8(uint8(a))))), true
	case ir.NumI32Extend16S:
		return uint64(uint32(int32(int16(uint16(a))))), true
	case ir.NumI64Eqz:
		return b2u(a == 0), true
	case ir.NumI64Clz:
		return uint64(bits.LeadingZeros64(a)), true
	case ir.NumI64Ctz:
		return uint64(bits.TrailingZeros64(a)), true
	case ir.NumI64Popcnt:
		return uint64(bits.OnesCount64(a)), true
	case ir.NumI64Extend8S:
		return uint64(int64(int8(uint8(a)))), true
	case ir.NumI64Extend16S:
		return uint64(int64(int16(uint16(a)))), true
	case ir.NumI64Extend32S:
		return uint64(int64(int32(uint32(a)))), true
	case ir.NumI32WrapI64:
		return uint64(uint32(a)), true
	case ir.NumI64ExtendI32S:
		return uint64(int64(int32(uint32(a)))), true
	case ir.NumI64ExtendI32U:
		return uint64(uint32(a)), true
	case ir.NumF32Abs:
		return uint64(api.F32FromFloat32(float32Abs(f32(a))).Bits()), true
	case ir.NumF32Neg:
		return uint64(math.Float32bits(-f32(a))), true
	case ir.NumF32Ceil:
		return uint64(math.Float32bits(float32(math.Ceil(float64(f32(a)))))), true
	case ir.NumF32Floor:
		return uint64(math.Float32bits(float32(math.Floor(float64(f32(a)))))), true
	case ir.NumF32Sqrt:
		return uint64(math.Float32bits(float32(math.Sqrt(float64(f32(a)))))), true
	case ir.NumF64Abs:
		return math.Float64bits(math.Abs(f64(a))), true
	case ir.NumF64Neg:
		return math.Float64bits(-f64(a)), true
	case ir.NumF64Ceil:
		return math.Float64bits(math.Ceil(f64(a))), true
	case ir.NumF64Floor:
		return math.Float64bits(math.Floor(f64(a))), true
	case ir.NumF64Sqrt:
		return math.Float64bits(math.Sqrt(f64(a))), true
	case ir.NumF32ReinterpretI32:
		return uint64(uint32(a)), true
	case ir.NumI32ReinterpretF32:
		return uint64(uint32(a)), true
	case ir.NumF64ReinterpretI64:
		return a, true
	case ir.NumI64ReinterpretF64:
		return a, true
	default:
		return 0, false
	}
}

// foldBinary evaluates a non-trapping binary NumOp at translation time.
func foldBinary(op ir.NumOp, a, b uint64) (uint64, bool) {
	switch op {
	case ir.NumI32Add:
		return uint64(uint32(a) + uint32(b)), true
	case ir.NumI32Sub:
		return uint64(uint32(a) - uint32(b)), true
	case ir.NumI32Mul:
		return uint64(uint32(a) * uint32(b)), true
	case ir.NumI32And:
		return uint64(uint32(a) & uint32(b)), true
	case ir.NumI32Or:
		return uint64(uint32(a) | uint32(b)), true
	case ir.NumI32Xor:
		return uint64(uint32(a) ^ uint32(b)), true
	case ir.NumI32Shl:
		return uint64(uint32(a) << (uint32(b) & 31)), true
	case ir.NumI32ShrS:
		return uint64(uint32(int32(uint32(a)) >> (uint32(b) & 31))), true
	case ir.NumI32ShrU:
		return uint64(uint32(a) >> (uint32(b) & 31)), true
	case ir.NumI32Rotl:
		return uint64(bits.RotateLeft32(uint32(a), int(uint32(b)&31))), true
	case ir.NumI32Rotr:
		return uint64(bits.RotateLeft32(uint32(a), -int(uint32(b)&31))), true
	case ir.NumI32Eq:
		return b2u(uint32(a) == uint32(b)), true
	case ir.NumI32Ne:
		return b2u(uint32(a) != uint32(b)), true
	case ir.NumI32LtS:
		return b2u(int32(uint32(a)) < int32(uint32(b))), true
	case ir.NumI32LtU:
		return b2u(uint32(a) < uint32(b)), true
	case ir.NumI32GtS:
		return b2u(int32(uint32(a)) > int32(uint32(b))), true
	case ir.NumI32GtU:
		return b2u(uint32(a) > uint32(b)), true
	case ir.NumI32LeS:
		return b2u(int32(uint32(a)) <= int32(uint32(b))), true
	case ir.NumI32LeU:
		return b2u(uint32(a) <= uint32(b)), true
	case ir.NumI32GeS:
		return b2u(int32(uint32(a)) >= int32(uint32(b))), true
	case ir.NumI32GeU:
		return b2u(uint32(a) >= uint32(b)), true

	case ir.NumI64Add:
		return a + b, true
	case ir.NumI64Sub:
		return a - b, true
	case ir.NumI64Mul:
		return a * b, true
	case ir.NumI64And:
		return a & b, true
	case ir.NumI64Or:
		return a | b, true
	case ir.NumI64Xor:
		return a ^ b, true
	case ir.NumI64Shl:
		return a << (b & 63), true
	case ir.NumI64ShrS:
		return uint64(int64(a) >> (b & 63)), true
	case ir.NumI64ShrU:
		return a >> (b & 63), true
	case ir.NumI64Rotl:
		return bits.RotateLeft64(a, int(b&63)), true
	case ir.NumI64Rotr:
		return bits.RotateLeft64(a, -int(b&63)), true
	case ir.NumI64Eq:
		return b2u(a == b), true
	case ir.NumI64Ne:
		return b2u(a != b), true
	case ir.NumI64LtS:
		return b2u(int64(a) < int64(b)), true
	case ir.NumI64LtU:
		return b2u(a < b), true
	case ir.NumI64GtS:
		return b2u(int64(a) > int64(b)), true
	case ir.NumI64GtU:
		return b2u(a > b), true
	case ir.NumI64LeS:
		return b2u(int64(a) <= int64(b)), true
	case ir.NumI64LeU:
		return b2u(a <= b), true
	case ir.NumI64GeS:
		return b2u(int64(a) >= int64(b)), true
	case ir.NumI64GeU:
		return b2u(a >= b), true

	case ir.NumF32Add:
		return uint64(math.Float32bits(f32(a) + f32(b))), true
	case ir.NumF32Sub:
		return uint64(math.Float32bits(f32(a) - f32(b))), true
	case ir.NumF32Mul:
		return uint64(math.Float32bits(f32(a) * f32(b))), true
	case ir.NumF32Div:
		return uint64(math.Float32bits(f32(a) / f32(b))), true
	case ir.NumF32Min:
		return uint64(math.Float32bits(float32(math.Min(float64(f32(a)), float64(f32(b)))))), true
	case ir.NumF32Max:
		return uint64(math.Float32bits(float32(math.Max(float64(f32(a)), float64(f32(b)))))), true
	case ir.NumF32Copysign:
		return uint64(math.Float32bits(float32(math.Copysign(float64(f32(a)), float64(f32(b)))))), true
	case ir.NumF32Eq:
		return b2u(f32(a) == f32(b)), true
	case ir.NumF32Ne:
		return b2u(f32(a) != f32(b)), true
	case ir.NumF32Lt:
		return b2u(f32(a) < f32(b)), true
	case ir.NumF32Gt:
		return b2u(f32(a) > f32(b)), true
	case ir.NumF32Le:
		return b2u(f32(a) <= f32(b)), true
	case ir.NumF32Ge:
		return b2u(f32(a) >= f32(b)), true

	case ir.NumF64Add:
		return math.Float64bits(f64(a) + f64(b)), true
	case ir.NumF64Sub:
		return math.Float64bits(f64(a) - f64(b)), true
	case ir.NumF64Mul:
		return math.Float64bits(f64(a) * f64(b)), true
	case ir.NumF64Div:
		return math.Float64bits(f64(a) / f64(b)), true
	case ir.NumF64Min:
		return math.Float64bits(math.Min(f64(a), f64(b))), true
	case ir.NumF64Max:
		return math.Float64bits(math.Max(f64(a), f64(b))), true
	case ir.NumF64Copysign:
		return math.Float64bits(math.Copysign(f64(a), f64(b))), true
	case ir.NumF64Eq:
		return b2u(f64(a) == f64(b)), true
	case ir.NumF64Ne:
		return b2u(f64(a) != f64(b)), true
	case ir.NumF64Lt:
		return b2u(f64(a) < f64(b)), true
	case ir.NumF64Gt:
		return b2u(f64(a) > f64(b)), true
	case ir.NumF64Le:
		return b2u(f64(a) <= f64(b)), true
	case ir.NumF64Ge:
		return b2u(f64(a) >= f64(b)), true
	default:
		return 0, false
	}
}

func b2u(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func f32(raw uint64) float32 { return math.Float32frombits(uint32(raw)) }
func f64(raw uint64) float64 { return math.Float64frombits(raw) }
func float32Abs(f float32) float32 {
	return math.Float32frombits(math.Float32bits(f) &^ 0x80000000)
}
