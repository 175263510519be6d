package translator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmigo/wasmi/internal/binary"
	"github.com/wasmigo/wasmi/internal/ir"
	"github.com/wasmigo/wasmi/internal/moduledef"
)

// addWasm: (func (export "add") (param i32 i32) (result i32)
//
//	local.get 0 local.get 1 i32.add)
var addWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

func TestTranslateProducesDecodableIRWithBinaryOp(t *testing.T) {
	header, codes, err := binary.DecodeModule(addWasm, moduledef.WasmV1FeatureSet)
	require.NoError(t, err)
	require.Len(t, codes, 1)

	ctx := &Context{Header: header}
	body, err := Translate(ctx, 0, 0, codes[0])
	require.NoError(t, err)

	require.Equal(t, uint32(0), body.SignatureID)
	require.Len(t, body.LocalTypes, 2, "both params become locals, no extra local decls")
	require.GreaterOrEqual(t, body.FrameSize, 2)

	decoded, err := ir.DecodeAll(body.Instructions)
	require.NoError(t, err)
	require.NotEmpty(t, decoded)

	var sawAdd bool
	for _, instr := range decoded {
		if instr.Num == ir.NumI32Add {
			sawAdd = true
		}
	}
	require.True(t, sawAdd, "translated i32.add must survive into the IR stream")
}

func TestTranslateRejectsBodyCodeMismatch(t *testing.T) {
	header, codes, err := binary.DecodeModule(addWasm, moduledef.WasmV1FeatureSet)
	require.NoError(t, err)

	ctx := &Context{Header: header}
	truncated := codes[0]
	truncated.Code = truncated.Code[:len(truncated.Code)-1]
	_, err = Translate(ctx, 0, 0, truncated)
	require.Error(t, err)
}
