package wasmi

import "github.com/wasmigo/wasmi/api"

// Extern is any one of the four things a module can import or export:
// a Function, Memory, Table, or Global. Exactly one accessor returns
// non-nil, selected by Type().
type Extern interface {
	// Type reports which of Func/Memory/Table/Global this Extern holds.
	Type() api.ExternType

	Func() Function
	Memory() Memory
	Table() Table
	Global() Global
}

// extern is the concrete Extern built by Instance.Export and the Linker.
type extern struct {
	kind api.ExternType
	fn   Function
	mem  Memory
	tbl  Table
	glb  Global
}

func (e *extern) Type() api.ExternType { return e.kind }
func (e *extern) Func() Function       { return e.fn }
func (e *extern) Memory() Memory       { return e.mem }
func (e *extern) Table() Table         { return e.tbl }
func (e *extern) Global() Global       { return e.glb }
