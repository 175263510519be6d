package translator

import "github.com/wasmigo/wasmi/internal/ir"

// InstEncoder is the translator's append-only output: the IR byte stream
// plus the LabelRegistry used to patch forward branches (spec.md §4.2
// "InstEncoder"). All instruction emission during translation goes through
// this type so that branch-offset patch sites are always registered
// consistently.
type InstEncoder struct {
	stream ir.Stream
	Labels LabelRegistry

	// branchPC maps each pending patch site to the PC of the branch
	// instruction that owns it.
	branchPC map[int]int
}

// PC returns the current end-of-stream offset, i.e. the PC the next emitted
// instruction will receive.
func (e *InstEncoder) PC() int { return len(e.stream) }

// Emit appends i and returns its PC.
func (e *InstEncoder) Emit(i ir.Instruction) int { return e.stream.Append(i) }

// EmitBranch emits a Branch-shaped instruction (Branch, BranchIf*, the fused
// compare+branch forms, or a BranchTable arm) whose Branch field is a
// placeholder; if target is already pinned the true offset is computed
// immediately, otherwise the instruction's patch site is registered with
// the LabelRegistry so PinLabel fixes it up later (spec.md §4.2 "Branch
// patching").
func (e *InstEncoder) EmitBranch(i ir.Instruction, target LabelID, branchOffsetFieldOffset int) int {
	pc := len(e.stream)
	if e.Labels.IsPinned(target) {
		i.Branch = ir.BranchOffset(e.Labels.PC(target) - pc)
		e.stream.Append(i)
	} else {
		e.stream.Append(i)
		if e.branchPC == nil {
			e.branchPC = make(map[int]int)
		}
		e.branchPC[pc+branchOffsetFieldOffset] = pc
		e.Labels.RegisterUser(target, pc+branchOffsetFieldOffset)
	}
	return pc
}

// PinLabel fixes target's PC to the encoder's current position and patches
// every pending user with target_pc - branch_pc.
func (e *InstEncoder) PinLabel(target LabelID) {
	e.Labels.PinLabel(target, len(e.stream), func(patchPC int, offset ir.BranchOffset) {
		patchBranchOffset(e.stream, patchPC, offset+ir.BranchOffset(patchPC-e.branchPC[patchPC]))
	})
}

// Stream returns the encoded instruction bytes built so far.
func (e *InstEncoder) Stream() ir.Stream { return e.stream }

func patchBranchOffset(s ir.Stream, fieldPC int, offset ir.BranchOffset) {
	v := uint32(int32(offset))
	s[fieldPC] = byte(v)
	s[fieldPC+1] = byte(v >> 8)
	s[fieldPC+2] = byte(v >> 16)
	s[fieldPC+3] = byte(v >> 24)
}
