package wasmi

import (
	"github.com/wasmigo/wasmi/internal/serialize"
)

// Serialize encodes c into the precompiled module format of spec.md §6, so
// it can be cached to disk and reloaded with Runtime.DeserializeModule
// without re-parsing or re-translating the original Wasm binary.
func (c *CompiledModule) Serialize() ([]byte, error) {
	return serialize.Encode(&serialize.Module{Header: c.header, Bodies: c.compiled.Bodies})
}

// DeserializeModule reloads a CompiledModule previously produced by
// CompiledModule.Serialize, interning its function signatures into r's
// Engine-wide type arena exactly as CompileModule would. Decode rejects any
// record written by a format version this build does not recognise.
func (r *Runtime) DeserializeModule(data []byte) (*CompiledModule, error) {
	m, err := serialize.Decode(data)
	if err != nil {
		return nil, err
	}
	cm := r.engine.AssembleModule(m.Header, m.Bodies)
	return &CompiledModule{header: m.Header, compiled: cm}, nil
}
