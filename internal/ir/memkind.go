package ir

import "github.com/wasmigo/wasmi/api"

// MemKind identifies the width, signedness, and value type of a load or
// store, closing a gap the generic OpLoad/OpStore/OpLoadMem0/OpStoreMem0
// opcodes leave open: unlike the arithmetic family there is exactly one
// opcode per access shape rather than one per (shape, width) pair, so the
// width/signedness axis has to live in an instruction field instead (see
// DESIGN.md). Mirrors NumOp's role for the binary/unary opcodes above.
type MemKind uint8

const (
	MemI32Load MemKind = iota
	MemI32Load8S
	MemI32Load8U
	MemI32Load16S
	MemI32Load16U
	MemI64Load
	MemI64Load8S
	MemI64Load8U
	MemI64Load16S
	MemI64Load16U
	MemI64Load32S
	MemI64Load32U
	MemF32Load
	MemF64Load

	MemI32Store
	MemI32Store8
	MemI32Store16
	MemI64Store
	MemI64Store8
	MemI64Store16
	MemI64Store32
	MemF32Store
	MemF64Store
)

// ValueType returns the Wasm value type this access loads into or stores
// from the operand stack.
func (k MemKind) ValueType() api.ValueType {
	switch k {
	case MemI32Load, MemI32Load8S, MemI32Load8U, MemI32Load16S, MemI32Load16U,
		MemI32Store, MemI32Store8, MemI32Store16:
		return api.ValueTypeI32
	case MemI64Load, MemI64Load8S, MemI64Load8U, MemI64Load16S, MemI64Load16U, MemI64Load32S, MemI64Load32U,
		MemI64Store, MemI64Store8, MemI64Store16, MemI64Store32:
		return api.ValueTypeI64
	case MemF32Load, MemF32Store:
		return api.ValueTypeF32
	default:
		return api.ValueTypeF64
	}
}

// Size returns the number of bytes this access reads or writes in linear
// memory (as opposed to the cell width of its ValueType).
func (k MemKind) Size() int {
	switch k {
	case MemI32Load8S, MemI32Load8U, MemI64Load8S, MemI64Load8U, MemI32Store8, MemI64Store8:
		return 1
	case MemI32Load16S, MemI32Load16U, MemI64Load16S, MemI64Load16U, MemI32Store16, MemI64Store16:
		return 2
	case MemI32Load, MemI32Store, MemI64Load32S, MemI64Load32U, MemI64Store32, MemF32Load, MemF32Store:
		return 4
	default:
		return 8
	}
}

// Signed reports whether a narrow load sign-extends (as opposed to
// zero-extending) its value into the destination cell.
func (k MemKind) Signed() bool {
	switch k {
	case MemI32Load8S, MemI32Load16S, MemI64Load8S, MemI64Load16S, MemI64Load32S:
		return true
	default:
		return false
	}
}
