// Package fuzz holds the native Go fuzz targets for the decode/translate
// pipeline: internal/binary.DecodeModule must never panic on arbitrary
// input, and anything it accepts must also survive internal/translator
// without panicking, since a malformed-but-declared-valid body should
// surface as a translator.Error, not a crash (spec.md §4.3 "Errors").
// Grounded on the corpus's testing.F + go-fuzz-headers pairing (see e.g.
// moby/moby's daemon/logger/jsonfilelog/jsonlog fuzz_test.go):
// FuzzDecodeModule decodes the raw fuzzer bytes and takes the "which
// proposals are enabled" bits as a second fuzz argument, while
// FuzzDecodeModuleStructured uses go-fuzz-headers to carve the module bytes
// out of the corpus entry and decodes them with the Wasm 1.0 feature set.
package fuzz

import (
	"testing"

	fuzzheaders "github.com/AdaLogics/go-fuzz-headers"

	"github.com/wasmigo/wasmi/internal/binary"
	"github.com/wasmigo/wasmi/internal/engine"
	"github.com/wasmigo/wasmi/internal/moduledef"
)

func seedModule() []byte {
	// The empty module: magic + version, no sections.
	return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
}

// FuzzDecodeModule feeds arbitrary bytes straight to DecodeModule under
// every feature combination the corpus entry selects, requiring a clean
// error return (never a panic) for malformed input.
func FuzzDecodeModule(f *testing.F) {
	f.Add(seedModule(), uint64(moduledef.WasmV1FeatureSet))
	f.Add([]byte{}, uint64(0))
	f.Add(seedModule(), ^uint64(0))

	f.Fuzz(func(t *testing.T, data []byte, featureBits uint64) {
		features := moduledef.FeatureSet(featureBits)
		header, codes, err := binary.DecodeModule(data, features)
		if err != nil {
			return
		}
		// Anything DecodeModule accepted must also be safe to compile: a
		// bad-but-well-formed body should return a translator.Error, never
		// panic (spec.md §4.3).
		eng := engine.New(engine.NewConfig(engine.WithFeatures(features)))
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("CompileModule panicked on decoder-accepted input: %v", r)
				}
			}()
			_, _ = eng.CompileModule(header, codes)
		}()
	})
}

// FuzzDecodeModuleStructured drives DecodeModule from a go-fuzz-headers
// Consumer instead of raw bytes, so the corpus can explore well-formed
// section framing (length-prefixed, plausible counts) far more often than
// purely random bytes would, the same "derive structured input from the
// fuzzer's bytes" idiom the examples use for non-Wasm formats.
func FuzzDecodeModuleStructured(f *testing.F) {
	f.Add(seedModule())

	f.Fuzz(func(t *testing.T, raw []byte) {
		c := fuzzheaders.NewConsumer(raw)
		body, err := c.GetBytes()
		if err != nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("DecodeModule panicked: %v", r)
			}
		}()
		_, _, _ = binary.DecodeModule(body, moduledef.WasmV1FeatureSet)
	})
}
