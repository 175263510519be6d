package wasmi

import (
	"context"

	"github.com/wasmigo/wasmi/internal/moduledef"
	"github.com/wasmigo/wasmi/internal/store"
)

// Function is a handle to one exported or imported function instance. Call
// accepts and returns the raw 64-bit cell encoding (api.EncodeI32/EncodeF32/
// etc.), matching the teacher's api.GoFunction low-level calling
// convention rather than a reflect-based variadic signature, since this
// engine has no Go-func host adapter beyond the raw cell ABI (see linker.go).
type Function interface {
	// Type reports the function's parameter and result value types.
	Type() moduledef.FuncType

	// Call invokes the function with args (one cell per parameter), and
	// returns its results (one cell per result) or a *Trap.
	Call(ctx context.Context, args ...uint64) ([]uint64, error)
}

type function struct {
	st *Store
	fn *store.FuncInstance
}

func (f *function) Type() moduledef.FuncType { return f.fn.Type }

func (f *function) Call(ctx context.Context, args ...uint64) ([]uint64, error) {
	res, err := f.st.executor.Call(ctx, f.fn, args)
	if err != nil {
		return nil, wrapTrap(err)
	}
	return res, nil
}
