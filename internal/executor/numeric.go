package executor

import (
	"math"
	"math/bits"

	"github.com/wasmigo/wasmi/internal/ir"
)

// evalUnary evaluates every unary NumOp at runtime, including the trapping
// (truncation) and saturating-truncation forms internal/translator never
// folds at compile time (numtable.go's trapsAtRuntime). Non-trapping cases
// mirror foldUnary exactly; duplicated here rather than shared because the
// executor's hot loop and the translator's constant folder have different
// failure signatures (panic(*Trap) vs (ok bool)).
func evalUnary(op ir.NumOp, a uint64) uint64 {
	switch op {
	case ir.NumI32Eqz:
		return b2u(uint32(a) == 0)
	case ir.NumI32Clz:
		return uint64(bits.LeadingZeros32(uint32(a)))
	case ir.NumI32Ctz:
		return uint64(bits.TrailingZeros32(uint32(a)))
	case ir.NumI32Popcnt:
		return uint64(bits.OnesCount32(uint32(a)))
	case ir.NumI32Extend8S:
		return uint64(uint32(int32(int8(uint8(a)))))
	case ir.NumI32Extend16S:
		return uint64(uint32(int32(int16(uint16(a)))))
	case ir.NumI64Eqz:
		return b2u(a == 0)
	case ir.NumI64Clz:
		return uint64(bits.LeadingZeros64(a))
	case ir.NumI64Ctz:
		return uint64(bits.TrailingZeros64(a))
	case ir.NumI64Popcnt:
		return uint64(bits.OnesCount64(a))
	case ir.NumI64Extend8S:
		return uint64(int64(int8(uint8(a))))
	case ir.NumI64Extend16S:
		return uint64(int64(int16(uint16(a))))
	case ir.NumI64Extend32S:
		return uint64(int64(int32(uint32(a))))
	case ir.NumI32WrapI64:
		return uint64(uint32(a))
	case ir.NumI64ExtendI32S:
		return uint64(int64(int32(uint32(a))))
	case ir.NumI64ExtendI32U:
		return uint64(uint32(a))

	case ir.NumF32Abs:
		return uint64(math.Float32bits(f32(a)) &^ 0x80000000)
	case ir.NumF32Neg:
		return uint64(math.Float32bits(-f32(a)))
	case ir.NumF32Ceil:
		return uint64(math.Float32bits(float32(math.Ceil(float64(f32(a))))))
	case ir.NumF32Floor:
		return uint64(math.Float32bits(float32(math.Floor(float64(f32(a))))))
	case ir.NumF32Trunc:
		return uint64(math.Float32bits(float32(math.Trunc(float64(f32(a))))))
	case ir.NumF32Nearest:
		return uint64(math.Float32bits(float32(math.RoundToEven(float64(f32(a))))))
	case ir.NumF32Sqrt:
		return uint64(math.Float32bits(float32(math.Sqrt(float64(f32(a))))))
	case ir.NumF64Abs:
		return math.Float64bits(f64(a)) &^ 0x8000000000000000
	case ir.NumF64Neg:
		return math.Float64bits(-f64(a))
	case ir.NumF64Ceil:
		return math.Float64bits(math.Ceil(f64(a)))
	case ir.NumF64Floor:
		return math.Float64bits(math.Floor(f64(a)))
	case ir.NumF64Trunc:
		return math.Float64bits(math.Trunc(f64(a)))
	case ir.NumF64Nearest:
		return math.Float64bits(math.RoundToEven(f64(a)))
	case ir.NumF64Sqrt:
		return math.Float64bits(math.Sqrt(f64(a)))

	case ir.NumI32TruncF32S:
		return uint64(uint32(truncToI64(float64(f32(a)), -2147483648, 2147483647)))
	case ir.NumI32TruncF32U:
		return uint64(uint32(truncToU64(float64(f32(a)), 4294967295)))
	case ir.NumI32TruncF64S:
		return uint64(uint32(truncToI64(f64(a), -2147483648, 2147483647)))
	case ir.NumI32TruncF64U:
		return uint64(uint32(truncToU64(f64(a), 4294967295)))
	case ir.NumI64TruncF32S:
		return uint64(truncToI64(float64(f32(a)), math.MinInt64, math.MaxInt64))
	case ir.NumI64TruncF32U:
		return truncToU64(float64(f32(a)), math.MaxUint64)
	case ir.NumI64TruncF64S:
		return uint64(truncToI64(f64(a), math.MinInt64, math.MaxInt64))
	case ir.NumI64TruncF64U:
		return truncToU64(f64(a), math.MaxUint64)

	case ir.NumI32TruncSatF32S:
		return uint64(uint32(truncSatI32(float64(f32(a)))))
	case ir.NumI32TruncSatF32U:
		return uint64(truncSatU32(float64(f32(a))))
	case ir.NumI32TruncSatF64S:
		return uint64(uint32(truncSatI32(f64(a))))
	case ir.NumI32TruncSatF64U:
		return uint64(truncSatU32(f64(a)))
	case ir.NumI64TruncSatF32S:
		return uint64(truncSatI64(float64(f32(a))))
	case ir.NumI64TruncSatF32U:
		return truncSatU64(float64(f32(a)))
	case ir.NumI64TruncSatF64S:
		return uint64(truncSatI64(f64(a)))
	case ir.NumI64TruncSatF64U:
		return truncSatU64(f64(a))

	case ir.NumF32ConvertI32S:
		return uint64(math.Float32bits(float32(int32(uint32(a)))))
	case ir.NumF32ConvertI32U:
		return uint64(math.Float32bits(float32(uint32(a))))
	case ir.NumF32ConvertI64S:
		return uint64(math.Float32bits(float32(int64(a))))
	case ir.NumF32ConvertI64U:
		return uint64(math.Float32bits(float32(a)))
	case ir.NumF64ConvertI32S:
		return math.Float64bits(float64(int32(uint32(a))))
	case ir.NumF64ConvertI32U:
		return math.Float64bits(float64(uint32(a)))
	case ir.NumF64ConvertI64S:
		return math.Float64bits(float64(int64(a)))
	case ir.NumF64ConvertI64U:
		return math.Float64bits(float64(a))
	case ir.NumF32DemoteF64:
		return uint64(math.Float32bits(float32(f64(a))))
	case ir.NumF64PromoteF32:
		return math.Float64bits(float64(f32(a)))

	case ir.NumI32ReinterpretF32, ir.NumF32ReinterpretI32:
		return uint64(uint32(a))
	case ir.NumI64ReinterpretF64, ir.NumF64ReinterpretI64:
		return a
	}
	panic(&Trap{Code: ir.TrapBadSignature})
}

// evalBinary evaluates every binary NumOp at runtime, adding the four
// division/remainder operators to foldBinary's non-trapping set.
func evalBinary(op ir.NumOp, a, b uint64) uint64 {
	switch op {
	case ir.NumI32DivS:
		x, y := int32(uint32(a)), int32(uint32(b))
		if y == 0 {
			panic(&Trap{Code: ir.TrapIntegerDivisionByZero})
		}
		if x == math.MinInt32 && y == -1 {
			panic(&Trap{Code: ir.TrapIntegerOverflow})
		}
		return uint64(uint32(x / y))
	case ir.NumI32DivU:
		y := uint32(b)
		if y == 0 {
			panic(&Trap{Code: ir.TrapIntegerDivisionByZero})
		}
		return uint64(uint32(a) / y)
	case ir.NumI32RemS:
		x, y := int32(uint32(a)), int32(uint32(b))
		if y == 0 {
			panic(&Trap{Code: ir.TrapIntegerDivisionByZero})
		}
		if x == math.MinInt32 && y == -1 {
			return 0
		}
		return uint64(uint32(x % y))
	case ir.NumI32RemU:
		y := uint32(b)
		if y == 0 {
			panic(&Trap{Code: ir.TrapIntegerDivisionByZero})
		}
		return uint64(uint32(a) % y)
	case ir.NumI64DivS:
		x, y := int64(a), int64(b)
		if y == 0 {
			panic(&Trap{Code: ir.TrapIntegerDivisionByZero})
		}
		if x == math.MinInt64 && y == -1 {
			panic(&Trap{Code: ir.TrapIntegerOverflow})
		}
		return uint64(x / y)
	case ir.NumI64DivU:
		if b == 0 {
			panic(&Trap{Code: ir.TrapIntegerDivisionByZero})
		}
		return a / b
	case ir.NumI64RemS:
		x, y := int64(a), int64(b)
		if y == 0 {
			panic(&Trap{Code: ir.TrapIntegerDivisionByZero})
		}
		if x == math.MinInt64 && y == -1 {
			return 0
		}
		return uint64(x % y)
	case ir.NumI64RemU:
		if b == 0 {
			panic(&Trap{Code: ir.TrapIntegerDivisionByZero})
		}
		return a % b
	}
	if v, ok := foldBinaryRuntime(op, a, b); ok {
		return v
	}
	panic(&Trap{Code: ir.TrapBadSignature})
}

// foldBinaryRuntime is the non-trapping binary evaluation table, identical
// in substance to numtable.go's foldBinary but kept as a separate copy since
// the executor and translator packages don't share an internal dependency
// for this (see DESIGN.md).
func foldBinaryRuntime(op ir.NumOp, a, b uint64) (uint64, bool) {
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
	}
	return 0, false
}

func b2u(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func f32(raw uint64) float32 { return math.Float32frombits(uint32(raw)) }
func f64(raw uint64) float64 { return math.Float64frombits(raw) }

// truncToI64/truncToU64 implement the non-saturating trunc operators' trap
// contract: NaN and values outside the destination's representable range
// trap (spec.md §4.2 "trunc (non-saturating)").
func truncToI64(v float64, lo, hi float64) int64 {
	if math.IsNaN(v) {
		panic(&Trap{Code: ir.TrapInvalidConversionToInteger})
	}
	t := math.Trunc(v)
	if t < lo || t > hi {
		panic(&Trap{Code: ir.TrapIntegerOverflow})
	}
	return int64(t)
}

func truncToU64(v float64, max float64) uint64 {
	if math.IsNaN(v) {
		panic(&Trap{Code: ir.TrapInvalidConversionToInteger})
	}
	t := math.Trunc(v)
	if t < 0 || t > max {
		panic(&Trap{Code: ir.TrapIntegerOverflow})
	}
	return uint64(t)
}

// truncSat* implement the saturating truncation proposal: NaN becomes 0,
// out-of-range values clamp to the destination's min/max instead of
// trapping (spec.md §4.2 "trunc_sat").
func truncSatI32(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	t := math.Trunc(v)
	switch {
	case t <= math.MinInt32:
		return math.MinInt32
	case t >= math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(t)
	}
}

func truncSatU32(v float64) uint32 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	t := math.Trunc(v)
	if t >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(t)
}

func truncSatI64(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	t := math.Trunc(v)
	switch {
	case t <= math.MinInt64:
		return math.MinInt64
	case t >= math.MaxInt64:
		return math.MaxInt64
	default:
		return int64(t)
	}
}

func truncSatU64(v float64) uint64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	t := math.Trunc(v)
	if t >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(t)
}
