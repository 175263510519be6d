package translator

import "github.com/wasmigo/wasmi/internal/ir"

// LabelID identifies a label allocated by the LabelRegistry. Labels are
// either pinned to an instruction index once their target PC is known, or
// pending, carrying a chained list of unresolved users each of whom owns a
// branch-offset patch site (spec.md §4.2 "Branch patching").
type LabelID int

type labelUser struct {
	// patchPC is the byte offset within the encoder's stream of the
	// placeholder BranchOffset field that must be rewritten once this
	// label is pinned.
	patchPC int
	next    int // index into LabelRegistry.users of the next pending user, or -1
}

type labelState struct {
	pinned  bool
	pc      int // valid when pinned
	headUse int // index into users of the most recent pending user, or -1
}

// LabelRegistry tracks every label allocated during translation of one
// function body.
type LabelRegistry struct {
	labels []labelState
	users  []labelUser
}

// NewLabel allocates a new, initially-unpinned label.
func (lr *LabelRegistry) NewLabel() LabelID {
	lr.labels = append(lr.labels, labelState{headUse: -1})
	return LabelID(len(lr.labels) - 1)
}

// NewPinnedLabel allocates a label already pinned to pc (used for loop
// bodies, whose backward-branch target is known immediately at `loop`).
func (lr *LabelRegistry) NewPinnedLabel(pc int) LabelID {
	lr.labels = append(lr.labels, labelState{pinned: true, pc: pc, headUse: -1})
	return LabelID(len(lr.labels) - 1)
}

// IsPinned reports whether label's target PC is already known.
func (lr *LabelRegistry) IsPinned(label LabelID) bool { return lr.labels[label].pinned }

// PC returns the pinned target PC of label. Only valid if IsPinned.
func (lr *LabelRegistry) PC(label LabelID) int { return lr.labels[label].pc }

// RegisterUser records that the branch-offset field at patchPC in the
// instruction stream must be patched once label is pinned. If label is
// already pinned, the caller should compute the offset directly instead of
// calling this method.
func (lr *LabelRegistry) RegisterUser(label LabelID, patchPC int) {
	l := &lr.labels[label]
	lr.users = append(lr.users, labelUser{patchPC: patchPC, next: l.headUse})
	l.headUse = len(lr.users) - 1
}

// PinLabel fixes label's target PC to pc and walks every pending user,
// invoking patch(patchPC, offset) with offset = pc - patchPC, measured from
// the patch site; InstEncoder.PinLabel rebases it onto the owning branch's
// PC so the stored BranchOffset is target_pc - branch_pc.
func (lr *LabelRegistry) PinLabel(label LabelID, pc int, patch func(patchPC int, offset ir.BranchOffset)) {
	l := &lr.labels[label]
	l.pinned, l.pc = true, pc
	for u := l.headUse; u >= 0; u = lr.users[u].next {
		use := lr.users[u]
		patch(use.patchPC, ir.BranchOffset(pc-use.patchPC))
	}
	l.headUse = -1
}
