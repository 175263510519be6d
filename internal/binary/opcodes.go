package binary

// Opcode is a raw Wasm instruction opcode byte (or, for the 0xFC/0xFD
// prefixed encodings, the byte that follows the prefix). Naming mirrors the
// Wasm spec's own mnemonic, as wazero's internal/wasm opcode constants do.
type Opcode = byte

const (
	OpcodeUnreachable Opcode = 0x00
	OpcodeNop         Opcode = 0x01
	OpcodeBlock       Opcode = 0x02
	OpcodeLoop        Opcode = 0x03
	OpcodeIf          Opcode = 0x04
	OpcodeElse        Opcode = 0x05
	OpcodeEnd         Opcode = 0x0b
	OpcodeBr          Opcode = 0x0c
	OpcodeBrIf        Opcode = 0x0d
	OpcodeBrTable     Opcode = 0x0e
	OpcodeReturn      Opcode = 0x0f
	OpcodeCall        Opcode = 0x10
	OpcodeCallIndirect Opcode = 0x11
	OpcodeReturnCall  Opcode = 0x12
	OpcodeReturnCallIndirect Opcode = 0x13

	OpcodeDrop   Opcode = 0x1a
	OpcodeSelect Opcode = 0x1b
	OpcodeSelectT Opcode = 0x1c

	OpcodeLocalGet  Opcode = 0x20
	OpcodeLocalSet  Opcode = 0x21
	OpcodeLocalTee  Opcode = 0x22
	OpcodeGlobalGet Opcode = 0x23
	OpcodeGlobalSet Opcode = 0x24

	OpcodeTableGet Opcode = 0x25
	OpcodeTableSet Opcode = 0x26

	OpcodeI32Load    Opcode = 0x28
	OpcodeI64Load    Opcode = 0x29
	OpcodeF32Load    Opcode = 0x2a
	OpcodeF64Load    Opcode = 0x2b
	OpcodeI32Load8S  Opcode = 0x2c
	OpcodeI32Load8U  Opcode = 0x2d
	OpcodeI32Load16S Opcode = 0x2e
	OpcodeI32Load16U Opcode = 0x2f
	OpcodeI64Load8S  Opcode = 0x30
	OpcodeI64Load8U  Opcode = 0x31
	OpcodeI64Load16S Opcode = 0x32
	OpcodeI64Load16U Opcode = 0x33
	OpcodeI64Load32S Opcode = 0x34
	OpcodeI64Load32U Opcode = 0x35
	OpcodeI32Store   Opcode = 0x36
	OpcodeI64Store   Opcode = 0x37
	OpcodeF32Store   Opcode = 0x38
	OpcodeF64Store   Opcode = 0x39
	OpcodeI32Store8  Opcode = 0x3a
	OpcodeI32Store16 Opcode = 0x3b
	OpcodeI64Store8  Opcode = 0x3c
	OpcodeI64Store16 Opcode = 0x3d
	OpcodeI64Store32 Opcode = 0x3e
	OpcodeMemorySize Opcode = 0x3f
	OpcodeMemoryGrow Opcode = 0x40

	OpcodeI32Const Opcode = 0x41
	OpcodeI64Const Opcode = 0x42
	OpcodeF32Const Opcode = 0x43
	OpcodeF64Const Opcode = 0x44

	// i32 comparisons/arithmetic 0x45-0x6a, i64 0x51-0x8a-ish, f32/f64
	// follow; see numeric.go for the full opcode->NumOp table used by the
	// translator. Only the boundary markers are named here.
	OpcodeI32Eqz Opcode = 0x45
	OpcodeI64Eqz Opcode = 0x50
	OpcodeF32Eq  Opcode = 0x5b
	OpcodeF64Eq  Opcode = 0x61
	OpcodeI32WrapI64 Opcode = 0xa7
	OpcodeI64ExtendI32S Opcode = 0xac
	OpcodeI64ExtendI32U Opcode = 0xad

	OpcodeRefNull   Opcode = 0xd0
	OpcodeRefIsNull Opcode = 0xd1
	OpcodeRefFunc   Opcode = 0xd2

	OpcodeMiscPrefix Opcode = 0xfc
	OpcodeSIMDPrefix Opcode = 0xfd

	// Misc (0xFC-prefixed) sub-opcodes.
	OpcodeMiscI32TruncSatF32S Opcode = 0x00
	OpcodeMiscI32TruncSatF32U Opcode = 0x01
	OpcodeMiscI32TruncSatF64S Opcode = 0x02
	OpcodeMiscI32TruncSatF64U Opcode = 0x03
	OpcodeMiscI64TruncSatF32S Opcode = 0x04
	OpcodeMiscI64TruncSatF32U Opcode = 0x05
	OpcodeMiscI64TruncSatF64S Opcode = 0x06
	OpcodeMiscI64TruncSatF64U Opcode = 0x07
	OpcodeMiscMemoryInit      Opcode = 0x08
	OpcodeMiscDataDrop        Opcode = 0x09
	OpcodeMiscMemoryCopy      Opcode = 0x0a
	OpcodeMiscMemoryFill      Opcode = 0x0b
	OpcodeMiscTableInit       Opcode = 0x0c
	OpcodeMiscElemDrop        Opcode = 0x0d
	OpcodeMiscTableCopy       Opcode = 0x0e
	OpcodeMiscTableGrow       Opcode = 0x0f
	OpcodeMiscTableSize       Opcode = 0x10
	OpcodeMiscTableFill       Opcode = 0x11

	// BlockType "empty" sentinel: not a real value type, encoded as 0x40.
	BlockTypeEmpty Opcode = 0x40
)

// Section ids as they appear after the 8-byte module header.
type SectionID = byte

const (
	SectionCustom   SectionID = 0
	SectionType     SectionID = 1
	SectionImport   SectionID = 2
	SectionFunction SectionID = 3
	SectionTable    SectionID = 4
	SectionMemory   SectionID = 5
	SectionGlobal   SectionID = 6
	SectionExport   SectionID = 7
	SectionStart    SectionID = 8
	SectionElement  SectionID = 9
	SectionCode     SectionID = 10
	SectionData     SectionID = 11
	SectionDataCount SectionID = 12
)

// Magic and version of the Wasm binary header.
var (
	Magic   = [4]byte{0x00, 0x61, 0x73, 0x6d}
	Version = [4]byte{0x01, 0x00, 0x00, 0x00}
)
