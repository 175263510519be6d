package wasmi

import (
	"errors"
	"fmt"

	"github.com/wasmigo/wasmi/internal/executor"
)

// HostError is the interface a host function's returned error may implement
// to participate in Trap's downcast round-trip (spec.md §4.3
// Trap(Host(Box<dyn HostError>)), supplemented from original_source/core/
// src/host_error.rs and crates/core/src/host_error.rs). Any plain error
// works as a host error; implementing HostError only matters if the host
// wants richer formatting than Error() alone provides.
type HostError interface {
	error
}

// Trap is returned by Function.Call and Instance instantiation when the
// Wasm program aborts abnormally. It wraps internal/executor.Trap, adding
// nothing but the public-facing name and a few convenience predicates.
type Trap struct {
	cause *executor.Trap
}

func (t *Trap) Error() string { return t.cause.Error() }

// Unwrap exposes the underlying host error (when Code is TrapCodeHost), so
// errors.As(err, &myErr) reaches it through the Trap wrapper, the Go
// equivalent of spec.md §7's Trap::downcast_ref.
func (t *Trap) Unwrap() error { return t.cause.Unwrap() }

// TrapCode identifies why execution stopped; it is the public mirror of
// ir.TrapCode, kept as a distinct type so internal/ir is never part of this
// module's public API surface.
type TrapCode int

const (
	TrapCodeUnreachable TrapCode = iota
	TrapCodeMemoryOutOfBounds
	TrapCodeTableOutOfBounds
	TrapCodeIndirectCallToNull
	TrapCodeIndirectCallTypeMismatch
	TrapCodeIntegerOverflow
	TrapCodeIntegerDivisionByZero
	TrapCodeInvalidConversionToInteger
	TrapCodeStackOverflow
	TrapCodeOutOfFuel
	TrapCodeBadSignature
	TrapCodeUnalignedAtomic
	TrapCodeHost
)

var trapCodeNames = [...]string{
	"unreachable", "memory out of bounds", "table out of bounds",
	"indirect call to null", "indirect call type mismatch", "integer overflow",
	"integer division by zero", "invalid conversion to integer",
	"call stack exhausted", "out of fuel", "bad signature",
	"unaligned atomic access", "host function error",
}

func (c TrapCode) String() string {
	if int(c) < len(trapCodeNames) {
		return trapCodeNames[c]
	}
	return fmt.Sprintf("trap(%d)", int(c))
}

// Code reports the reason t fired.
func (t *Trap) Code() TrapCode { return TrapCode(t.cause.Code) }

func wrapTrap(err error) error {
	if err == nil {
		return nil
	}
	var et *executor.Trap
	if errors.As(err, &et) {
		return &Trap{cause: et}
	}
	return err
}

// errorString implements the common "static message" error shape used
// throughout this package for validation/linking failures that are not
// traps (e.g. a missing import), matching the teacher's plain
// fmt.Errorf-based error style rather than a typed error hierarchy.
type errorString string

func (e errorString) Error() string { return string(e) }

// ErrModuleClosed is returned by any operation against an Instance whose
// owning Store or Runtime has already been closed.
var ErrModuleClosed = errorString("wasmi: module closed")
