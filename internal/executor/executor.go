// Package executor runs the register-machine IR internal/translator
// produces against a live internal/store Instance: the dispatch loop,
// Frame/register-window model, trap handling, fuel metering, bulk-memory
// semantics, and the host-call bridge (spec.md §4.1 "Execution", §4.3
// "Traps"). It is the Go analogue of wasmi's `engine/executor` module,
// rewritten around ir.Instruction/ir.Stream instead of a stack machine.
package executor

import (
	"context"
	"fmt"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/ir"
	"github.com/wasmigo/wasmi/internal/store"
)

// Trap is the error type a call returns when the Wasm program aborts
// (spec.md §4.3). Code is one of the ir.TrapCode values, except TrapHost,
// where Host carries the original host error (spec.md §7's Trap::downcast).
type Trap struct {
	Code      ir.TrapCode
	Host      error
	CallStack []uint32 // function indices, innermost last (best-effort, for diagnostics)
}

func (t *Trap) Error() string {
	if t.Code == ir.TrapHost && t.Host != nil {
		return fmt.Sprintf("trap: %s", t.Host.Error())
	}
	return fmt.Sprintf("trap: %s", t.Code.String())
}

// Unwrap exposes the host error so errors.As(err, &myHostErr) works, the
// Go idiom for spec.md §7's Trap::downcast_ref.
func (t *Trap) Unwrap() error { return t.Host }

// Limits bounds one Engine-wide execution session (spec.md §4.3 stack
// overflow / fuel exhaustion).
type Limits struct {
	MaxCallDepth int
	FuelEnabled  bool
}

// Executor runs calls against one Store-wide set of entities. It holds no
// per-call state itself; all of that lives in the frame stack built up by
// recursive Call invocations, so one Executor is safe to reuse (though not
// to call concurrently with itself on the same goroutine, same as any
// recursive interpreter).
type Executor struct {
	limits  Limits
	depth   int
	fuel    int64
	limiter store.ResourceLimiter
}

// New creates an Executor bounded by limits.
func New(limits Limits) *Executor {
	if limits.MaxCallDepth <= 0 {
		limits.MaxCallDepth = 65536 / 8 // conservative default, see spec.md §4.3
	}
	return &Executor{limits: limits}
}

// SetFuel sets the remaining fuel budget; only meaningful when
// Limits.FuelEnabled is true.
func (e *Executor) SetFuel(n int64) { e.fuel = n }

// Fuel returns the remaining fuel budget.
func (e *Executor) Fuel() int64 { return e.fuel }

// SetLimiter installs limiter, consulted by every memory.grow/table.grow
// instruction this Executor runs from now on (spec.md §4.3's resource
// limiter, previously only checked at instantiation time).
func (e *Executor) SetLimiter(limiter store.ResourceLimiter) { e.limiter = limiter }

// Call invokes fn with args (one cell per parameter, api.Encode*-encoded)
// and returns its results in the same encoding, or a *Trap on abnormal
// termination. It implements store.Caller so internal/store's Instantiate
// can run a module's start function without an import cycle.
func (e *Executor) Call(ctx context.Context, fn *store.FuncInstance, args []uint64) ([]uint64, error) {
	if e.depth >= e.limits.MaxCallDepth {
		return nil, &Trap{Code: ir.TrapStackOverflow}
	}
	if fn.IsHost() {
		e.depth++
		defer func() { e.depth-- }()
		res, err := fn.Host(ctx, args)
		if err != nil {
			return nil, &Trap{Code: ir.TrapHost, Host: err}
		}
		return res, nil
	}

	body := fn.Body
	regs := make([]uint64, body.FrameSize)
	copy(regs, args)

	e.depth++
	defer func() { e.depth-- }()
	fr := &frame{
		regs:   regs,
		consts: body.Constants,
		dec:    ir.NewDecoder(body.Instructions),
		inst:   fn.Instance,
		ex:     e,
		ctx:    ctx,
	}
	results, trap := fr.run()
	if trap != nil {
		return nil, trap
	}
	return results, nil
}

// frame is one activation record: its register window, constant pool,
// instruction cursor, and owning module instance.
type frame struct {
	regs   []uint64
	consts []uint64
	dec    *ir.Decoder
	inst   *store.Instance
	ex     *Executor
	ctx    context.Context
}

func (f *frame) get(s ir.Slot) uint64 {
	if s.IsConst() {
		return f.consts[s.ConstIndex()]
	}
	return f.regs[int(s)]
}

func (f *frame) set(s ir.Slot, v uint64) { f.regs[int(s)] = v }

func (f *frame) getSpan(sp ir.SlotSpan) []uint64 {
	out := make([]uint64, sp.Len)
	for i := range out {
		out[i] = f.get(sp.At(i))
	}
	return out
}

func (f *frame) setSpan(sp ir.SlotSpan, vals []uint64) {
	for i, v := range vals {
		f.set(sp.At(i), v)
	}
}

// run executes instructions from the current decoder position until a
// Return* instruction or a trap, returning the call's result cells.
func (f *frame) run() (results []uint64, trap *Trap) {
	defer func() {
		if r := recover(); r != nil {
			if t, ok := r.(*Trap); ok {
				trap = t
				return
			}
			panic(r)
		}
	}()
	for {
		inst, err := f.dec.Next()
		if err != nil {
			panic(&Trap{Code: ir.TrapBadSignature})
		}
		if done, res := f.step(inst); done {
			return res, nil
		}
	}
}

// step executes one instruction. The bool return reports whether the call
// has finished (a Return* form was hit); res is only meaningful then.
func (f *frame) step(i ir.Instruction) (bool, []uint64) {
	switch i.Op {
	case ir.OpTrap:
		panic(&Trap{Code: i.Trap})
	case ir.OpConsumeFuel:
		if f.ex.limits.FuelEnabled {
			if f.ex.fuel < int64(i.Fuel) {
				f.ex.fuel = 0
				panic(&Trap{Code: ir.TrapOutOfFuel})
			}
			f.ex.fuel -= int64(i.Fuel)
		}

	case ir.OpCopy:
		f.set(i.Result, f.get(i.A))
	case ir.OpCopy2:
		f.set(i.Result, f.get(i.A))
		f.set(i.Result+1, f.get(i.B))
	case ir.OpCopyImm32:
		f.set(i.Result, uint64(uint32(i.Imm32)))
	case ir.OpCopyImm64:
		f.set(i.Result, f.get(i.A))
	case ir.OpCopySpan, ir.OpCopySpanNonOverlapping, ir.OpCopyMany, ir.OpCopyManyNonOverlapping:
		f.setSpan(i.Results, f.getSpan(i.Inputs))

	case ir.OpReturn, ir.OpReturnNil:
		return true, nil
	case ir.OpReturnReg:
		return true, []uint64{f.get(i.A)}
	case ir.OpReturnReg2:
		return true, []uint64{f.get(i.A), f.get(i.B)}
	case ir.OpReturnImm32:
		return true, []uint64{uint64(uint32(i.Imm32))}
	case ir.OpReturnImm64:
		return true, []uint64{f.get(i.A)}
	case ir.OpReturnSpan, ir.OpReturnMany:
		return true, f.getSpan(i.Inputs)

	case ir.OpBranch:
		f.dec.Seek(f.dec.Pos() + int(i.Branch) - branchInstrLen(i.Op))
	case ir.OpBranchI32EqImm16, ir.OpBranchI32NeImm16, ir.OpBranchI32LtSImm16, ir.OpBranchI32LtUImm16,
		ir.OpBranchI32GtSImm16, ir.OpBranchI32GtUImm16, ir.OpBranchI32LeSImm16, ir.OpBranchI32LeUImm16,
		ir.OpBranchI32GeSImm16, ir.OpBranchI32GeUImm16:
		a := int32(uint32(f.get(i.A)))
		if evalImm16Cmp(i.Op, a, int32(i.Imm16)) {
			f.dec.Seek(f.dec.Pos() + int(i.Branch) - branchInstrLen(i.Op))
		}
	case ir.OpBranchI32Eq, ir.OpBranchI32Ne, ir.OpBranchI32LtS, ir.OpBranchI32LtU, ir.OpBranchI32GtS, ir.OpBranchI32GtU,
		ir.OpBranchI32LeS, ir.OpBranchI32LeU, ir.OpBranchI32GeS, ir.OpBranchI32GeU,
		ir.OpBranchI64Eq, ir.OpBranchI64Ne, ir.OpBranchI64LtS, ir.OpBranchI64LtU, ir.OpBranchI64GtS, ir.OpBranchI64GtU,
		ir.OpBranchI64LeS, ir.OpBranchI64LeU, ir.OpBranchI64GeS, ir.OpBranchI64GeU,
		ir.OpBranchF32Eq, ir.OpBranchF32Ne, ir.OpBranchF32Lt, ir.OpBranchF32Gt, ir.OpBranchF32Le, ir.OpBranchF32Ge,
		ir.OpBranchF64Eq, ir.OpBranchF64Ne, ir.OpBranchF64Lt, ir.OpBranchF64Gt, ir.OpBranchF64Le, ir.OpBranchF64Ge:
		if evalRegCmp(i.Op, f.get(i.A), f.get(i.B)) {
			f.dec.Seek(f.dec.Pos() + int(i.Branch) - branchInstrLen(i.Op))
		}

	case ir.OpCall, ir.OpCallInternal:
		fn := f.inst.Funcs[i.Index]
		args := f.getSpan(i.Inputs)
		res, trap := f.ex.Call(f.ctx, fn, args)
		if trap != nil {
			panic(trap)
		}
		f.setSpan(i.Results, res)
	case ir.OpCallIndirect:
		fn := f.resolveIndirect(i.Index2, i.Index, f.get(i.A))
		args := f.getSpan(i.Inputs)
		res, trap := f.ex.Call(f.ctx, fn, args)
		if trap != nil {
			panic(trap)
		}
		f.setSpan(i.Results, res)
	case ir.OpReturnCall, ir.OpReturnCallInternal:
		fn := f.inst.Funcs[i.Index]
		args := f.getSpan(i.Inputs)
		res, trap := f.ex.Call(f.ctx, fn, args)
		if trap != nil {
			panic(trap)
		}
		return true, res
	case ir.OpReturnCallIndirect:
		fn := f.resolveIndirect(i.Index2, i.Index, f.get(i.A))
		args := f.getSpan(i.Inputs)
		res, trap := f.ex.Call(f.ctx, fn, args)
		if trap != nil {
			panic(trap)
		}
		return true, res

	case ir.OpRefFunc:
		f.set(i.Result, uint64(i.Index)+1)
	case ir.OpRefNull:
		f.set(i.Result, 0)
	case ir.OpRefIsNull:
		if f.get(i.A) == 0 {
			f.set(i.Result, 1)
		} else {
			f.set(i.Result, 0)
		}

	case ir.OpSelect, ir.OpCmpSelect:
		cond := f.get(i.Inputs.Head)
		if int32(uint32(cond)) != 0 {
			f.set(i.Result, f.get(i.A))
		} else {
			f.set(i.Result, f.get(i.B))
		}

	case ir.OpGlobalGet0:
		f.set(i.Result, f.inst.Globals[0].Value)
	case ir.OpGlobalGet:
		f.set(i.Result, f.inst.Globals[i.Index].Value)
	case ir.OpGlobalSet0:
		f.inst.Globals[0].Value = f.get(i.A)
	case ir.OpGlobalSet:
		f.inst.Globals[i.Index].Value = f.get(i.A)

	case ir.OpTableGet:
		tbl := f.inst.Tables[i.Index]
		idx := f.get(i.A)
		if idx >= uint64(len(tbl.Elems)) {
			panic(&Trap{Code: ir.TrapTableOutOfBounds})
		}
		f.set(i.Result, encodeElem(tbl.Elems[idx]))
	case ir.OpTableSet:
		tbl := f.inst.Tables[i.Index]
		idx := f.get(i.A)
		if idx >= uint64(len(tbl.Elems)) {
			panic(&Trap{Code: ir.TrapTableOutOfBounds})
		}
		tbl.Elems[idx] = decodeElem(f.get(i.B))
	case ir.OpTableSize:
		f.set(i.Result, uint64(len(f.inst.Tables[i.Index].Elems)))
	case ir.OpTableGrow:
		tbl := f.inst.Tables[i.Index]
		f.set(i.Result, uint64(tbl.Grow(uint32(f.get(i.B)), decodeElem(f.get(i.A)), f.ex.limiter)))
	case ir.OpTableFill:
		f.execTableFill(i)
	case ir.OpTableCopy:
		f.execTableCopy(i)
	case ir.OpTableInit:
		f.execTableInit(i)
	case ir.OpElemDrop:
		f.inst.Elems[i.Index].Dropped = true

	case ir.OpMemorySize:
		f.set(i.Result, f.inst.Mems[i.Index].Pages())
	case ir.OpMemoryGrow:
		f.set(i.Result, uint64(f.inst.Mems[i.Index].Grow(f.get(i.A), f.ex.limiter)))
	case ir.OpMemoryFill:
		f.execMemoryFill(i)
	case ir.OpMemoryCopy:
		f.execMemoryCopy(i)
	case ir.OpMemoryInit:
		f.execMemoryInit(i)
	case ir.OpDataDrop:
		f.inst.Datas[i.Index].Dropped = true

	case ir.OpLoad, ir.OpLoadMem0:
		f.execLoad(i)
	case ir.OpStore, ir.OpStoreMem0:
		f.execStore(i)
	case ir.OpStoreImm:
		f.execStoreImm(i)

	case ir.OpUnary, ir.OpUnaryImm:
		f.set(i.Result, evalUnary(i.Num, f.get(i.A)))
	case ir.OpBinaryRegReg:
		f.set(i.Result, evalBinary(i.Num, f.get(i.A), f.get(i.B)))
	case ir.OpBinaryRegImm16:
		f.set(i.Result, evalBinary(i.Num, f.get(i.A), uint64(int64(i.Imm16))))
	case ir.OpBinaryRegImm32:
		f.set(i.Result, evalBinary(i.Num, f.get(i.A), uint64(int64(i.Imm32))))

	default:
		panic(&Trap{Code: ir.TrapBadSignature})
	}
	return false, nil
}

// branchInstrLen is the byte length of a just-decoded branch-family
// instruction, needed because ir.BranchOffset is measured from the branch
// instruction's own start (its PC before decoding), not from the decoder's
// position just after decoding it.
func branchInstrLen(op ir.OpCode) int {
	switch op {
	case ir.OpBranch:
		return 2 + 4
	case ir.OpBranchI32EqImm16, ir.OpBranchI32NeImm16, ir.OpBranchI32LtSImm16, ir.OpBranchI32LtUImm16,
		ir.OpBranchI32GtSImm16, ir.OpBranchI32GtUImm16, ir.OpBranchI32LeSImm16, ir.OpBranchI32LeUImm16,
		ir.OpBranchI32GeSImm16, ir.OpBranchI32GeUImm16:
		return 2 + 2 + 2 + 4
	default: // reg-reg compare-branch
		return 2 + 2 + 2 + 4
	}
}

func (f *frame) resolveIndirect(tblIdx, typeIdx uint32, idx uint64) *store.FuncInstance {
	tbl := f.inst.Tables[tblIdx]
	if idx >= uint64(len(tbl.Elems)) {
		panic(&Trap{Code: ir.TrapTableOutOfBounds})
	}
	elem := tbl.Elems[idx]
	if elem.Null {
		panic(&Trap{Code: ir.TrapIndirectCallToNull})
	}
	fn := f.inst.Funcs[elem.FuncAddr]
	if fn.TypeID != f.inst.TypeIDs[typeIdx] {
		panic(&Trap{Code: ir.TrapIndirectCallTypeMismatch})
	}
	return fn
}

func encodeElem(e store.TableElem) uint64 {
	if e.Null {
		return 0
	}
	return uint64(e.FuncAddr) + 1
}

func decodeElem(v uint64) store.TableElem {
	if v == 0 {
		return store.TableElem{Null: true}
	}
	return store.TableElem{FuncAddr: int32(v - 1)}
}

func (f *frame) execTableFill(i ir.Instruction) {
	tbl := f.inst.Tables[i.Index]
	dst := f.get(i.A)
	val := decodeElem(f.get(i.B))
	n := f.get(i.Result)
	if dst+n > uint64(len(tbl.Elems)) {
		panic(&Trap{Code: ir.TrapTableOutOfBounds})
	}
	for j := uint64(0); j < n; j++ {
		tbl.Elems[dst+j] = val
	}
}

func (f *frame) execTableCopy(i ir.Instruction) {
	dstTbl := f.inst.Tables[i.Index]
	srcTbl := f.inst.Tables[i.Index2]
	dst := f.get(i.A)
	src := f.get(i.B)
	n := f.get(i.Result)
	if dst+n > uint64(len(dstTbl.Elems)) || src+n > uint64(len(srcTbl.Elems)) {
		panic(&Trap{Code: ir.TrapTableOutOfBounds})
	}
	tmp := make([]store.TableElem, n)
	copy(tmp, srcTbl.Elems[src:src+n])
	copy(dstTbl.Elems[dst:], tmp)
}

func (f *frame) execTableInit(i ir.Instruction) {
	tbl := f.inst.Tables[i.Index]
	seg := f.inst.Elems[i.Index2]
	dst := f.get(i.A)
	src := f.get(i.B)
	n := f.get(i.Result)
	if seg.Dropped && n > 0 {
		panic(&Trap{Code: ir.TrapTableOutOfBounds})
	}
	if src+n > uint64(len(seg.Elems)) || dst+n > uint64(len(tbl.Elems)) {
		panic(&Trap{Code: ir.TrapTableOutOfBounds})
	}
	copy(tbl.Elems[dst:], seg.Elems[src:src+n])
}

func (f *frame) execMemoryFill(i ir.Instruction) {
	mem := f.inst.Mems[i.Index]
	dst := f.get(i.A)
	val := byte(f.get(i.B))
	n := f.get(i.Result)
	if dst+n > uint64(len(mem.Data)) {
		panic(&Trap{Code: ir.TrapMemoryOutOfBounds})
	}
	for j := uint64(0); j < n; j++ {
		mem.Data[dst+j] = val
	}
}

func (f *frame) execMemoryCopy(i ir.Instruction) {
	dstMem := f.inst.Mems[i.Index]
	srcMem := f.inst.Mems[i.Index2]
	dst := f.get(i.A)
	src := f.get(i.B)
	n := f.get(i.Result)
	if dst+n > uint64(len(dstMem.Data)) || src+n > uint64(len(srcMem.Data)) {
		panic(&Trap{Code: ir.TrapMemoryOutOfBounds})
	}
	tmp := make([]byte, n)
	copy(tmp, srcMem.Data[src:src+n])
	copy(dstMem.Data[dst:], tmp)
}

func (f *frame) execMemoryInit(i ir.Instruction) {
	mem := f.inst.Mems[i.Index]
	seg := f.inst.Datas[i.Index2]
	dst := f.get(i.A)
	src := f.get(i.B)
	n := f.get(i.Result)
	if seg.Dropped && n > 0 {
		panic(&Trap{Code: ir.TrapMemoryOutOfBounds})
	}
	if src+n > uint64(len(seg.Bytes)) || dst+n > uint64(len(mem.Data)) {
		panic(&Trap{Code: ir.TrapMemoryOutOfBounds})
	}
	copy(mem.Data[dst:], seg.Bytes[src:src+n])
}

func (f *frame) effectiveAddr(addr uint64, offset uint64, size int, memLen int) uint64 {
	ea := addr + offset
	if ea+uint64(size) > uint64(memLen) || ea < addr {
		panic(&Trap{Code: ir.TrapMemoryOutOfBounds})
	}
	return ea
}

func (f *frame) execLoad(i ir.Instruction) {
	mem := f.inst.Mems[i.Index]
	var offset uint64
	if i.Op == ir.OpLoadMem0 {
		offset = uint64(uint16(i.Imm16))
	} else {
		offset = uint64(i.Offset)
	}
	size := i.Mem.Size()
	ea := f.effectiveAddr(f.get(i.A), offset, size, len(mem.Data))
	f.set(i.Result, decodeLoad(i.Mem, mem.Data[ea:ea+uint64(size)]))
}

func (f *frame) execStore(i ir.Instruction) {
	mem := f.inst.Mems[i.Index]
	var offset uint64
	if i.Op == ir.OpStoreMem0 {
		offset = uint64(uint16(i.Imm16))
	} else {
		offset = uint64(i.Offset)
	}
	size := i.Mem.Size()
	ea := f.effectiveAddr(f.get(i.A), offset, size, len(mem.Data))
	encodeStore(i.Mem, mem.Data[ea:ea+uint64(size)], f.get(i.B))
}

func (f *frame) execStoreImm(i ir.Instruction) {
	mem := f.inst.Mems[i.Index]
	size := i.Mem.Size()
	ea := f.effectiveAddr(f.get(i.A), uint64(i.Offset), size, len(mem.Data))
	encodeStore(i.Mem, mem.Data[ea:ea+uint64(size)], uint64(uint32(i.Imm32)))
}

func decodeLoad(k ir.MemKind, b []byte) uint64 {
	var raw uint64
	for idx := len(b) - 1; idx >= 0; idx-- {
		raw = raw<<8 | uint64(b[idx])
	}
	bitWidth := k.Size() * 8
	if k.Signed() && bitWidth < 64 {
		shift := 64 - bitWidth
		return uint64(int64(raw<<shift) >> shift)
	}
	return raw
}

func encodeStore(k ir.MemKind, b []byte, v uint64) {
	for idx := range b {
		b[idx] = byte(v)
		v >>= 8
	}
}

func evalImm16Cmp(op ir.OpCode, a, b int32) bool {
	switch op {
	case ir.OpBranchI32EqImm16:
		return a == b
	case ir.OpBranchI32NeImm16:
		return a != b
	case ir.OpBranchI32LtSImm16:
		return a < b
	case ir.OpBranchI32LtUImm16:
		return uint32(a) < uint32(b)
	case ir.OpBranchI32GtSImm16:
		return a > b
	case ir.OpBranchI32GtUImm16:
		return uint32(a) > uint32(b)
	case ir.OpBranchI32LeSImm16:
		return a <= b
	case ir.OpBranchI32LeUImm16:
		return uint32(a) <= uint32(b)
	case ir.OpBranchI32GeSImm16:
		return a >= b
	case ir.OpBranchI32GeUImm16:
		return uint32(a) >= uint32(b)
	}
	panic(fmt.Sprintf("executor: unhandled imm16 branch op %v", op))
}

func evalRegCmp(op ir.OpCode, a, b uint64) bool {
	switch op {
	case ir.OpBranchI32Eq:
		return int32(a) == int32(b)
	case ir.OpBranchI32Ne:
		return int32(a) != int32(b)
	case ir.OpBranchI32LtS:
		return int32(a) < int32(b)
	case ir.OpBranchI32LtU:
		return uint32(a) < uint32(b)
	case ir.OpBranchI32GtS:
		return int32(a) > int32(b)
	case ir.OpBranchI32GtU:
		return uint32(a) > uint32(b)
	case ir.OpBranchI32LeS:
		return int32(a) <= int32(b)
	case ir.OpBranchI32LeU:
		return uint32(a) <= uint32(b)
	case ir.OpBranchI32GeS:
		return int32(a) >= int32(b)
	case ir.OpBranchI32GeU:
		return uint32(a) >= uint32(b)
	case ir.OpBranchI64Eq:
		return int64(a) == int64(b)
	case ir.OpBranchI64Ne:
		return int64(a) != int64(b)
	case ir.OpBranchI64LtS:
		return int64(a) < int64(b)
	case ir.OpBranchI64LtU:
		return a < b
	case ir.OpBranchI64GtS:
		return int64(a) > int64(b)
	case ir.OpBranchI64GtU:
		return a > b
	case ir.OpBranchI64LeS:
		return int64(a) <= int64(b)
	case ir.OpBranchI64LeU:
		return a <= b
	case ir.OpBranchI64GeS:
		return int64(a) >= int64(b)
	case ir.OpBranchI64GeU:
		return a >= b
	case ir.OpBranchF32Eq:
		return api.DecodeF32(a) == api.DecodeF32(b)
	case ir.OpBranchF32Ne:
		return api.DecodeF32(a) != api.DecodeF32(b)
	case ir.OpBranchF32Lt:
		return api.DecodeF32(a) < api.DecodeF32(b)
	case ir.OpBranchF32Gt:
		return api.DecodeF32(a) > api.DecodeF32(b)
	case ir.OpBranchF32Le:
		return api.DecodeF32(a) <= api.DecodeF32(b)
	case ir.OpBranchF32Ge:
		return api.DecodeF32(a) >= api.DecodeF32(b)
	case ir.OpBranchF64Eq:
		return api.DecodeF64(a) == api.DecodeF64(b)
	case ir.OpBranchF64Ne:
		return api.DecodeF64(a) != api.DecodeF64(b)
	case ir.OpBranchF64Lt:
		return api.DecodeF64(a) < api.DecodeF64(b)
	case ir.OpBranchF64Gt:
		return api.DecodeF64(a) > api.DecodeF64(b)
	case ir.OpBranchF64Le:
		return api.DecodeF64(a) <= api.DecodeF64(b)
	case ir.OpBranchF64Ge:
		return api.DecodeF64(a) >= api.DecodeF64(b)
	}
	panic(fmt.Sprintf("executor: unhandled reg branch op %v", op))
}

// evalUnary and evalBinary are defined in numeric.go, alongside the rest of
// the NumOp evaluation table (mirrors numtable.go's classification, but for
// runtime evaluation rather than translate-time folding).
