package wasmi

import (
	"context"
	"fmt"
	"sync"

	"github.com/wasmigo/wasmi/internal/executor"
	"github.com/wasmigo/wasmi/internal/store"
)

// ResourceLimiter gates growth of memories/tables and the number of live
// instances a Store accepts, mirroring store.ResourceLimiter (spec.md §4.3,
// supplemented from original_source/crates/wasmi/src/limits.rs as detailed
// in DESIGN.md).
type ResourceLimiter = store.ResourceLimiter

// Store is one embedder session: every Instance created against it shares
// its Engine-wide type arena (via the owning Runtime), its fuel budget, and
// its resource limiter. Grounded on wazero's wasm.Store / wasmtime-go's
// Store, both of which play the same role of "the thing instances live
// inside of".
type Store struct {
	runtime  *Runtime
	executor *executor.Executor
	limiter  ResourceLimiter

	mu         sync.Mutex
	fuelBudget int64
	named      map[string]*Instance // registered by (module, name) for Linker resolution
	instances  int
}

// NewStore creates a Store bound to r. Instances created from compiled
// modules belonging to a different Runtime must not be passed to this
// Store's methods (no cross-Runtime type dedup is possible).
func (r *Runtime) NewStore() *Store {
	limits := executor.Limits{FuelEnabled: r.cfg.FuelEnabled}
	return &Store{
		runtime:  r,
		executor: executor.New(limits),
		named:    make(map[string]*Instance),
	}
}

// SetResourceLimiter installs limiter, consulted on every memory.grow,
// table.grow, and instantiation against this Store from now on.
func (s *Store) SetResourceLimiter(limiter ResourceLimiter) {
	s.limiter = limiter
	s.executor.SetLimiter(limiter)
}

func (s *Store) addFuel(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fuelBudget += n
	s.executor.SetFuel(s.executor.Fuel() + n)
}

func (s *Store) fuelConsumed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.fuelBudget - s.executor.Fuel()
	if c < 0 {
		c = 0
	}
	return uint64(c)
}

// register records inst under name so a later Linker.Instantiate of some
// other module can resolve "name.export" imports against it.
func (s *Store) register(name string, inst *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.named[name]; exists {
		return fmt.Errorf("wasmi: module %q already instantiated in this store", name)
	}
	s.named[name] = inst
	return nil
}

func (s *Store) lookup(name string) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.named[name]
	return inst, ok
}

// instantiate runs internal/store.Instantiate with this Store's limiter and
// executor wired in as the start-function Caller, then wraps the result as
// a public Instance.
func (s *Store) instantiate(ctx context.Context, cm *CompiledModule, imports store.Imports) (*Instance, error) {
	if s.limiter != nil && !s.limiter.OnInstanceCreated(s.instances, s.instances+1) {
		return nil, fmt.Errorf("wasmi: resource limiter rejected new instance")
	}
	inst, err := store.Instantiate(ctx, cm.header, cm.compiled.AllTypeIDs, cm.compiled.FuncTypeIDs, cm.compiled.Bodies, imports, s.limiter, s.executor)
	if err != nil {
		return nil, err
	}
	s.instances++
	return &Instance{store: s, inst: inst, header: cm.header}, nil
}
