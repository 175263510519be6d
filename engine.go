// Package wasmi is a register-machine WebAssembly interpreter: compile a
// binary once with Runtime.CompileModule, then instantiate it (possibly
// many times, against one or more Stores) with a Linker. Grounded on
// wazero's root package shape (Runtime/RuntimeConfig/CompiledModule split),
// generalised to this engine's internal/engine, internal/store, and
// internal/executor packages (spec.md §1, §3).
package wasmi

import (
	"github.com/wasmigo/wasmi/internal/engine"
	"github.com/wasmigo/wasmi/internal/moduledef"
)

// RuntimeConfig configures a Runtime before it compiles any module.
// Immutable once passed to NewRuntime, matching the teacher's config.go
// clone-on-write discipline (each With* method returns a new value).
type RuntimeConfig struct {
	features    moduledef.FeatureSet
	fuelEnabled bool
}

// NewRuntimeConfig returns the default configuration: the WebAssembly 1.0
// feature set, fuel metering disabled.
func NewRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{features: moduledef.WasmV1FeatureSet}
}

// WithWasmFeatures replaces the enabled proposal feature set wholesale.
func (c RuntimeConfig) WithWasmFeatures(fs moduledef.FeatureSet) RuntimeConfig {
	c.features = fs
	return c
}

// WithFuelConsumption turns fuel metering on or off for every Store created
// from the resulting Runtime (spec.md §6).
func (c RuntimeConfig) WithFuelConsumption(enabled bool) RuntimeConfig {
	c.fuelEnabled = enabled
	return c
}

// Runtime owns one Engine-wide FuncType dedup arena (internal/engine.Engine)
// and the configuration every Store/CompiledModule created from it shares.
// Safe for concurrent use; CompileModule may run concurrently with
// instantiation against any of its Stores.
type Runtime struct {
	cfg    engine.Config
	engine *engine.Engine
}

// NewRuntime creates a Runtime configured by cfg.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	ecfg := engine.NewConfig(
		engine.WithFeatures(cfg.features),
		engine.WithFuelConsumption(cfg.fuelEnabled),
	)
	return &Runtime{cfg: *ecfg, engine: engine.New(ecfg)}
}
