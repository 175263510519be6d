// Package wasi is an illustrative subset of wasi_snapshot_preview1: just
// enough of fd_write, proc_exit, and clock_time_get to let a guest print to
// stdout, exit with a status code, and read the wall clock, the same three
// calls the teacher's own deleted wasi_snapshot_preview1 package led with.
// It exists to exercise the host-call bridge (a Go closure standing in for
// a Wasm import) end to end, per SPEC_FULL.md's "internal/wasi (a tiny
// illustrative subset...) exercises this to show the host-call bridge
// driving a real WASI-style import" and original_source/crates/wasi's
// guest-memory-borrow design (consulted for the "host functions need
// bounds-checked guest memory access" shape, reimplemented here against
// wasmi.Memory's ok-returning accessors instead of a borrow-checked
// GuestMemory trait, since this engine has no such trait).
package wasi

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wasmigo/wasmi"
	"github.com/wasmigo/wasmi/api"
)

const ModuleName = "wasi_snapshot_preview1"

const (
	errnoSuccess = 0
	errnoFault   = 21 // EFAULT: invalid guest pointer
)

// ErrExit is the sentinel Host error proc_exit raises to unwind out of a
// running guest; a CLI embedder should check errors.As(err, &exit) with
// exit declared as *ErrExit, and use Code as its own process exit status instead of reporting it as a trap.
type ErrExit struct{ Code int32 }

func (e *ErrExit) Error() string { return fmt.Sprintf("wasi: proc_exit(%d)", e.Code) }

// Module is a per-instance WASI host function set. Memory must be set with
// SetMemory once the owning Instance exists, since fd_write needs
// bounds-checked access to the guest's exported memory to read its iovecs,
// and host functions in this engine's ABI (see linker.go's HostFunc) are
// defined before any Instance exists to call them.
type Module struct {
	mem wasmi.Memory
}

// New creates an unbound Module; call SetMemory after instantiating the
// module that imports it.
func New() *Module { return &Module{} }

// SetMemory binds mem as the guest memory fd_write reads iovecs from.
func (m *Module) SetMemory(mem wasmi.Memory) { m.mem = mem }

// DefineOn registers every function this Module implements against l, importable
// under ModuleName.
func (m *Module) DefineOn(l *wasmi.Linker) error {
	i32 := []api.ValueType{api.ValueTypeI32}
	if err := l.DefineFunc(ModuleName, "fd_write",
		[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}, i32, m.fdWrite); err != nil {
		return err
	}
	if err := l.DefineFunc(ModuleName, "proc_exit", i32, nil, m.procExit); err != nil {
		return err
	}
	if err := l.DefineFunc(ModuleName, "clock_time_get",
		[]api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI32}, i32, m.clockTimeGet); err != nil {
		return err
	}
	return nil
}

// fdWrite implements the single-iovec-array-to-fd subset of fd_write: it
// only honours fd 1 (stdout) and fd 2 (stderr), matching what a minimal
// embedding needs to observe guest console output.
func (m *Module) fdWrite(ctx context.Context, args []uint64) ([]uint64, error) {
	fd := int32(api.DecodeI32(args[0]))
	iovsPtr := uint32(args[1])
	iovsLen := uint32(args[2])
	nwrittenPtr := uint32(args[3])

	if m.mem == nil {
		return []uint64{errnoFault}, nil
	}

	var out *os.File
	switch fd {
	case 1:
		out = os.Stdout
	case 2:
		out = os.Stderr
	default:
		return []uint64{errnoFault}, nil
	}

	var written uint32
	for i := uint32(0); i < iovsLen; i++ {
		base, ok := m.mem.ReadUint32Le(ctx, iovsPtr+i*8)
		if !ok {
			return []uint64{errnoFault}, nil
		}
		length, ok := m.mem.ReadUint32Le(ctx, iovsPtr+i*8+4)
		if !ok {
			return []uint64{errnoFault}, nil
		}
		buf, ok := m.mem.Read(ctx, base, length)
		if !ok {
			return []uint64{errnoFault}, nil
		}
		n, _ := out.Write(buf)
		written += uint32(n)
	}
	if !m.mem.WriteUint32Le(ctx, nwrittenPtr, written) {
		return []uint64{errnoFault}, nil
	}
	return []uint64{errnoSuccess}, nil
}

// procExit aborts the running call by returning ErrExit as a host error,
// which wrapTrap surfaces through Function.Call as a *wasmi.Trap whose
// Unwrap reaches this sentinel.
func (m *Module) procExit(ctx context.Context, args []uint64) ([]uint64, error) {
	return nil, &ErrExit{Code: api.DecodeI32(args[0])}
}

// clockTimeGet supports only clock id 0 (realtime), returning nanoseconds
// since the Unix epoch and ignoring the requested precision.
func (m *Module) clockTimeGet(ctx context.Context, args []uint64) ([]uint64, error) {
	clockID := uint32(args[0])
	timePtr := uint32(args[2])
	if clockID != 0 {
		return []uint64{errnoFault}, nil
	}
	if m.mem == nil {
		return []uint64{errnoFault}, nil
	}
	if !m.mem.WriteUint64Le(ctx, timePtr, uint64(time.Now().UnixNano())) {
		return []uint64{errnoFault}, nil
	}
	return []uint64{errnoSuccess}, nil
}
