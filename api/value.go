// Package api defines the scalar value model shared by every layer of the
// interpreter: value types, external kinds, and the NaN-preserving float
// wrappers that the translator and executor use so that constant folding and
// arithmetic stay bit-exact with the WebAssembly specification.
package api

import (
	"fmt"
	"math"
)

// ValueType is a Wasm value type as it appears in the binary format.
type ValueType = byte

const (
	ValueTypeI32       ValueType = 0x7f
	ValueTypeI64       ValueType = 0x7e
	ValueTypeF32       ValueType = 0x7d
	ValueTypeF64       ValueType = 0x7c
	ValueTypeV128      ValueType = 0x7b
	ValueTypeFuncref   ValueType = 0x70
	ValueTypeExternref ValueType = 0x6f
)

// ValueTypeName returns the Wasm text format name of t, or "unknown".
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	default:
		return fmt.Sprintf("unknown(%#x)", t)
	}
}

// ValueTypeSize returns the number of 64-bit cells t occupies on the stack.
// Every scalar fits one cell except v128, which occupies two.
func ValueTypeSize(t ValueType) int {
	if t == ValueTypeV128 {
		return 2
	}
	return 1
}

// ExternType classifies an import or export.
type ExternType = byte

const (
	ExternTypeFunc   ExternType = 0x00
	ExternTypeTable  ExternType = 0x01
	ExternTypeMemory ExternType = 0x02
	ExternTypeGlobal ExternType = 0x03
)

// ExternTypeName returns the Wasm text format field name for et.
func ExternTypeName(et ExternType) string {
	switch et {
	case ExternTypeFunc:
		return "func"
	case ExternTypeTable:
		return "table"
	case ExternTypeMemory:
		return "memory"
	case ExternTypeGlobal:
		return "global"
	default:
		return fmt.Sprintf("unknown(%#x)", et)
	}
}

// Float32 is a NaN-preserving wrapper around the raw bits of an f32 value.
//
// Equality and ordering must follow IEEE-754 (so NaN != NaN, and there is no
// total order), but Debug/Display must expose the canonical bit pattern of a
// NaN payload rather than collapsing every NaN into "NaN". Use Bits/FromBits
// to move between this type and the untyped 64-bit cell representation used
// on the value stack.
type Float32 struct {
	bits uint32
}

// F32FromBits constructs a Float32 from its raw IEEE-754 bit pattern.
func F32FromBits(bits uint32) Float32 { return Float32{bits} }

// F32FromFloat32 constructs a Float32 from a Go float32, preserving NaN bits.
func F32FromFloat32(f float32) Float32 { return Float32{math.Float32bits(f)} }

// Bits returns the raw IEEE-754 bit pattern.
func (f Float32) Bits() uint32 { return f.bits }

// Float32 converts to a Go float32. NaN payloads survive this conversion
// because math.Float32frombits is a bit-exact reinterpretation.
func (f Float32) Float32() float32 { return math.Float32frombits(f.bits) }

// IsNaN reports whether f is any NaN bit pattern.
func (f Float32) IsNaN() bool { return math.IsNaN(float64(f.Float32())) }

// String renders f per Go's float formatting, except NaNs render as
// "nan:0xHEX" exposing the mantissa payload, matching the canonical Wasm
// textual form for non-canonical NaNs.
func (f Float32) String() string {
	if f.IsNaN() {
		return nanString32(f.bits)
	}
	return fmt.Sprintf("%v", f.Float32())
}

func nanString32(bits uint32) string {
	payload := bits & 0x7fffff
	sign := ""
	if bits&0x80000000 != 0 {
		sign = "-"
	}
	return fmt.Sprintf("%snan:0x%x", sign, payload)
}

// Float64 is the 64-bit analogue of Float32.
type Float64 struct {
	bits uint64
}

// F64FromBits constructs a Float64 from its raw IEEE-754 bit pattern.
func F64FromBits(bits uint64) Float64 { return Float64{bits} }

// F64FromFloat64 constructs a Float64 from a Go float64, preserving NaN bits.
func F64FromFloat64(f float64) Float64 { return Float64{math.Float64bits(f)} }

// Bits returns the raw IEEE-754 bit pattern.
func (f Float64) Bits() uint64 { return f.bits }

// Float64 converts to a Go float64, bit-exact including NaN payloads.
func (f Float64) Float64() float64 { return math.Float64frombits(f.bits) }

// IsNaN reports whether f is any NaN bit pattern.
func (f Float64) IsNaN() bool { return math.IsNaN(f.Float64()) }

func (f Float64) String() string {
	if f.IsNaN() {
		return nanString64(f.bits)
	}
	return fmt.Sprintf("%v", f.Float64())
}

func nanString64(bits uint64) string {
	payload := bits & 0xfffffffffffff
	sign := ""
	if bits&0x8000000000000000 != 0 {
		sign = "-"
	}
	return fmt.Sprintf("%snan:0x%x", sign, payload)
}

// EncodeF32 encodes v as a 64-bit cell value, as done for API calls with an
// f32 parameter or result.
func EncodeF32(v float32) uint64 { return uint64(math.Float32bits(v)) }

// DecodeF32 decodes a 64-bit cell value encoded by EncodeF32 back to float32.
func DecodeF32(v uint64) float32 { return math.Float32frombits(uint32(v)) }

// EncodeF64 encodes v as a 64-bit cell value.
func EncodeF64(v float64) uint64 { return math.Float64bits(v) }

// DecodeF64 decodes a 64-bit cell value encoded by EncodeF64 back to float64.
func DecodeF64(v uint64) float64 { return math.Float64frombits(v) }

// EncodeI32 zero-extends the bits of a signed i32 into the 64-bit cell
// representation (the upper 32 bits of the cell are always 0).
func EncodeI32(v int32) uint64 { return uint64(uint32(v)) }

// DecodeI32 truncates a cell value back to a signed i32.
func DecodeI32(v uint64) int32 { return int32(uint32(v)) }
