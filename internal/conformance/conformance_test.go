//go:build amd64 && cgo && !windows

package conformance

import (
	"testing"

	"github.com/wasmigo/wasmi/api"
)

// addWasm is a hand-assembled module exporting a single function
//
//	(func (export "add") (param i32 i32) (result i32)
//	  local.get 0
//	  local.get 1
//	  i32.add)
//
// kept as a literal rather than go:embed since the corpus this engine was
// transformed from does not ship a prebuilt .wasm fixture for it.
var addWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // type section: (i32,i32)->i32
	0x03, 0x02, 0x01, 0x00, // function section: func 0 uses type 0
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00, // export section: "add" func 0
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // code section
}

// TestAddAgreesWithReferenceEngines runs the same module and arguments
// through wasmi, wasmtime-go, and wasmer-go and requires all three to
// return the same i32.add result, catching a translator/executor bug that
// still produces a plausible-looking number.
func TestAddAgreesWithReferenceEngines(t *testing.T) {
	results, err := Run(addWasm, "add", []api.ValueType{api.ValueTypeI32}, 40, 2)
	if err != nil {
		t.Fatal(err)
	}
	var want uint64
	for i, r := range results {
		if r.Err != "" {
			t.Fatalf("%s: %s", r.Engine, r.Err)
		}
		if len(r.Values) != 1 {
			t.Fatalf("%s: expected 1 result, got %d", r.Engine, len(r.Values))
		}
		got := r.Values[0] & 0xffffffff
		if i == 0 {
			want = got
			continue
		}
		if got != want {
			t.Fatalf("%s disagrees with %s: %d vs %d", r.Engine, results[0].Engine, got, want)
		}
	}
}
