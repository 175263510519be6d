package wasmi

import (
	"context"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/store"
)

// Global is a handle to one global variable instance.
type Global interface {
	Type() api.ValueType
	Mutable() bool
	Get(ctx context.Context) uint64
	// Set mutates the global's value; it is the caller's responsibility to
	// only call this on a global for which Mutable() is true (spec.md §4.2
	// global.set validation happens at translate time for Wasm code; host
	// callers get no such static check and a write to an immutable global
	// here is a usage bug, not a trap).
	Set(ctx context.Context, v uint64)
}

type global struct {
	g *store.Global
}

func (g *global) Type() api.ValueType { return g.g.Type.ValType }
func (g *global) Mutable() bool       { return g.g.Type.Mutable }
func (g *global) Get(context.Context) uint64 { return g.g.Value }
func (g *global) Set(_ context.Context, v uint64) { g.g.Value = v }
