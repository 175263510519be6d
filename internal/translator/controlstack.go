package translator

import (
	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/headvec"
	"github.com/wasmigo/wasmi/internal/ir"
)

// blockKind distinguishes the three Wasm structured control constructs.
type blockKind uint8

const (
	blockBlock blockKind = iota
	blockLoop
	blockIf
)

// controlFrame is one entry of the ControlStack: one open block/loop/if,
// its result-slot span, label(s), and reachability (spec.md §4.2).
type controlFrame struct {
	kind        blockKind
	blockType   BlockType
	results     ir.SlotSpan // block/if: this frame's result slots, filled before `end` or any branch to it
	loopEntry   ir.SlotSpan // loop only: the loop's param slots, the re-entry target for branches to it
	paramSpan   ir.SlotSpan // if only: stable param slots re-exposed to the else arm (see translateElse)
	stackHeight int         // ValueStack height (minus this frame's params) at frame entry, for unwinding on `end`
	label       LabelID     // the frame's branch target: loop start (pinned) or block/if exit (pinned at `end`)
	elseLabel   LabelID     // `if` only: the label for a pending `else`
	hasElse     bool
	unreachable bool // true once unreachable/br/return/br_table has been emitted in this frame
}

// branchArity is the number of values a branch to this frame must carry:
// the loop's param count (branching re-enters the loop body) or the
// block/if's result count (branching exits to after `end`).
func (f *controlFrame) branchArity() int {
	if f.kind == blockLoop {
		return len(f.blockType.Params)
	}
	return len(f.blockType.Results)
}

// branchSpan is the fixed slot span a branch to this frame must copy its
// arguments into before jumping.
func (f *controlFrame) branchSpan() ir.SlotSpan {
	if f.kind == blockLoop {
		return f.loopEntry
	}
	return f.results
}

// branchTarget is the label a branch to this frame jumps to.
func (f *controlFrame) branchTarget() LabelID { return f.label }

// BlockType is the (params, results) signature of a structured block, as
// resolved from the binary format's blocktype immediate (empty, a single
// value type, or a function-type index for multi-value blocks).
type BlockType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// ControlStack is the translator's stack of open structured control frames.
type ControlStack struct {
	frames headvec.HeadVec[controlFrame]
}

// Push opens a new control frame.
func (cs *ControlStack) Push(f controlFrame) { cs.frames.Push(f) }

// Pop closes the innermost control frame.
func (cs *ControlStack) Pop() (controlFrame, bool) { return cs.frames.Pop() }

// Top returns the innermost open frame.
func (cs *ControlStack) Top() *controlFrame { return cs.frames.Last() }

// Depth returns the number of open frames.
func (cs *ControlStack) Depth() int { return cs.frames.Len() }

// FrameAt returns the frame `labelDepth` levels up from the innermost frame
// (labelDepth 0 is the innermost), matching the Wasm br/br_if/br_table
// relative-depth label encoding.
func (cs *ControlStack) FrameAt(labelDepth uint32) *controlFrame {
	n := cs.frames.Len()
	return cs.frames.At(n - 1 - int(labelDepth))
}

// MarkUnreachable flags the innermost frame as unreachable: later operators
// in this frame are parsed but emit no IR until the matching `else`/`end`
// (spec.md §4.2 "Unreachable code").
func (cs *ControlStack) MarkUnreachable() { cs.Top().unreachable = true }

// Reachable reports whether the innermost frame is still live.
func (cs *ControlStack) Reachable() bool {
	if cs.frames.IsEmpty() {
		return true
	}
	return !cs.Top().unreachable
}
