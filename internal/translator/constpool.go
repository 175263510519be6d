package translator

import "github.com/wasmigo/wasmi/internal/ir"

// ConstPool interns the wide (i64/f64, or any 32-bit-overflowing) immediates
// used by one function body, each addressable via a negative Slot
// (spec.md §4.1 "Constant interning per function"). Values that fit a
// 16- or 32-bit immediate field are encoded inline instead and never reach
// this pool.
type ConstPool struct {
	values []uint64
	index  map[uint64]int
}

// Intern returns the Slot addressing raw, interning it if this is the first
// occurrence of that exact bit pattern in this function.
func (p *ConstPool) Intern(raw uint64) ir.Slot {
	if p.index == nil {
		p.index = make(map[uint64]int)
	}
	if i, ok := p.index[raw]; ok {
		return ir.ConstSlot(i)
	}
	i := len(p.values)
	p.values = append(p.values, raw)
	p.index[raw] = i
	return ir.ConstSlot(i)
}

// Values returns the interned constant pool in index order, to be stored
// alongside the compiled function body (spec.md §3 "Function bodies").
func (p *ConstPool) Values() []uint64 { return p.values }
