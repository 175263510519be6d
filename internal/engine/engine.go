// Package engine is the Engine's internal half: the cross-module FuncType
// dedup arena and module compilation into CompiledModule values, which the
// caller keeps (spec.md §3 "Engine"). The root-level Runtime (engine.go at
// the repository root) wraps this package the way wazero's public Runtime
// wraps internal/wasm's Engine.
package engine

import (
	"fmt"
	"sync"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/binary"
	"github.com/wasmigo/wasmi/internal/moduledef"
	"github.com/wasmigo/wasmi/internal/translator"
)

// Config holds the Engine's embedder-chosen settings: enabled feature gates
// and fuel metering, set through functional options exactly as wazero's
// config.go does (no config-file library: see DESIGN.md).
type Config struct {
	Features    moduledef.FeatureSet
	FuelEnabled bool
}

// Option mutates a Config being built by NewConfig.
type Option func(*Config)

// WithFeatures replaces the enabled feature set wholesale.
func WithFeatures(fs moduledef.FeatureSet) Option {
	return func(c *Config) { c.Features = fs }
}

// WithFeature enables or disables a single feature gate, leaving the rest
// of the set untouched.
func WithFeature(f moduledef.FeatureSet, enabled bool) Option {
	return func(c *Config) { c.Features = c.Features.Set(f, enabled) }
}

// WithFuelConsumption turns fuel metering on or off (spec.md §6).
func WithFuelConsumption(enabled bool) Option {
	return func(c *Config) { c.FuelEnabled = enabled }
}

// NewConfig builds a Config, defaulting to moduledef.WasmV1FeatureSet with
// fuel metering disabled, then applying opts in order.
func NewConfig(opts ...Option) *Config {
	c := &Config{Features: moduledef.WasmV1FeatureSet}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CompiledModule is the Engine's output for one parsed module: its header
// plus one translated FuncBody per locally defined function, and the
// Engine-wide dedup'd type id for each.
type CompiledModule struct {
	Header      *moduledef.ModuleHeader
	Bodies      []*translator.FuncBody
	AllTypeIDs  []uint32 // one per header.Types entry
	FuncTypeIDs []uint32 // one per defined function, = AllTypeIDs[header.FuncTypeIndices[i]]
}

// Engine owns the cross-module FuncType dedup arena (spec.md §3: "two
// FuncTypes with equal Params/Results share one FuncTypeID Engine-wide").
// It is safe for concurrent use; every module compiled against the same
// Engine shares its type arena, which is what lets call_indirect compare
// FuncTypeIDs by identity instead of deep-comparing Params/Results per call.
type Engine struct {
	cfg *Config

	mu    sync.Mutex
	types []moduledef.FuncType
	byKey map[string]uint32
}

// New creates an Engine configured by cfg (NewConfig's zero value if nil).
func New(cfg *Config) *Engine {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Engine{cfg: cfg, byKey: make(map[string]uint32)}
}

// Config returns the Engine's configuration.
func (e *Engine) Config() *Config { return e.cfg }

// InternType returns the Engine-wide id for ft, assigning a new one the
// first time a structurally distinct signature is seen.
func (e *Engine) InternType(ft moduledef.FuncType) uint32 {
	key := typeKey(ft)
	e.mu.Lock()
	defer e.mu.Unlock()
	if id, ok := e.byKey[key]; ok {
		return id
	}
	id := uint32(len(e.types))
	e.types = append(e.types, ft)
	e.byKey[key] = id
	return id
}

// TypeByID returns the FuncType previously interned under id.
func (e *Engine) TypeByID(id uint32) *moduledef.FuncType { return &e.types[id] }

func typeKey(ft moduledef.FuncType) string {
	buf := make([]byte, 0, len(ft.Params)+len(ft.Results)+1)
	buf = append(buf, ft.Params...)
	buf = append(buf, ':')
	buf = append(buf, ft.Results...)
	return string(buf)
}

// CompileModule translates every function body in a parsed module and
// interns its signatures, producing the immutable CompiledModule that
// Instantiate consumes (spec.md §4.1 "Module translation").
func (e *Engine) CompileModule(header *moduledef.ModuleHeader, codes []binary.FuncBody) (*CompiledModule, error) {
	nImported := header.NumImportedFuncs()
	if len(codes) != len(header.FuncTypeIndices) {
		return nil, fmt.Errorf("engine: function/code section length mismatch: %d types, %d bodies",
			len(header.FuncTypeIndices), len(codes))
	}

	typeIDs := make([]uint32, len(header.Types))
	for i, ft := range header.Types {
		typeIDs[i] = e.InternType(ft)
	}

	ctx := &translator.Context{Header: header}
	bodies := make([]*translator.FuncBody, len(codes))
	defIDs := make([]uint32, len(codes))
	for i, code := range codes {
		fnIdx := uint32(nImported + i)
		tyIdx := header.FuncTypeIndices[i]
		body, err := translator.Translate(ctx, fnIdx, typeIDs[tyIdx], code)
		if err != nil {
			return nil, err
		}
		bodies[i] = body
		defIDs[i] = typeIDs[tyIdx]
	}

	return &CompiledModule{Header: header, Bodies: bodies, AllTypeIDs: typeIDs, FuncTypeIDs: defIDs}, nil
}

// AssembleModule rebuilds a CompiledModule from a header and bodies that
// were already translated (typically by internal/serialize.Decode), skipping
// internal/translator entirely. It still interns every signature into e's
// type arena, so a reloaded module participates in call_indirect dedup
// exactly like one compiled fresh from a binary (spec.md §6's precompiled
// module format exists to skip parsing and translation, not type interning).
func (e *Engine) AssembleModule(header *moduledef.ModuleHeader, bodies []*translator.FuncBody) *CompiledModule {
	typeIDs := make([]uint32, len(header.Types))
	for i, ft := range header.Types {
		typeIDs[i] = e.InternType(ft)
	}
	defIDs := make([]uint32, len(bodies))
	for i := range bodies {
		defIDs[i] = typeIDs[header.FuncTypeIndices[i]]
	}
	return &CompiledModule{Header: header, Bodies: bodies, AllTypeIDs: typeIDs, FuncTypeIDs: defIDs}
}

// ValueTypeOf reports the api.ValueType produced/consumed in slot i of fn,
// a convenience used by the root API when boxing/unboxing call arguments.
func ValueTypeOf(fn *moduledef.FuncType, i int, result bool) api.ValueType {
	if result {
		return fn.Results[i]
	}
	return fn.Params[i]
}
