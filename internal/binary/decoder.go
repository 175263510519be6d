package binary

import (
	"fmt"

	"github.com/wasmigo/wasmi/api"
	"github.com/wasmigo/wasmi/internal/moduledef"
)

// FuncBody is one code-section entry: the declared local types (beyond the
// function's parameters) and the raw, not-yet-translated instruction bytes.
// internal/translator consumes this operator-by-operator.
type FuncBody struct {
	Locals []api.ValueType
	Code   []byte
}

// DecodeModule parses a full Wasm binary module, per spec.md §4.1 and §6.
// It performs structural/section-level decoding only; per-function operator
// validation is interleaved with translation in internal/translator, which
// is what makes the two "streaming" (spec.md §4.2).
func DecodeModule(b []byte, features moduledef.FeatureSet) (*moduledef.ModuleHeader, []FuncBody, error) {
	r := NewReader(b)
	magic, err := r.Bytes(4)
	if err != nil {
		return nil, nil, err
	}
	if string(magic) != string(Magic[:]) {
		return nil, nil, fmt.Errorf("binary: invalid magic number")
	}
	ver, err := r.Bytes(4)
	if err != nil {
		return nil, nil, err
	}
	if string(ver) != string(Version[:]) {
		return nil, nil, fmt.Errorf("binary: unsupported version")
	}

	h := &moduledef.ModuleHeader{EnabledFeatures: features}
	var bodies []FuncBody
	var seen [13]bool // each standard section id may appear at most once; custom (0) is exempt.
	prevID := SectionID(0)

	for r.Len() > 0 {
		id, err := r.Byte()
		if err != nil {
			return nil, nil, err
		}
		size, err := r.U32()
		if err != nil {
			return nil, nil, err
		}
		payload, err := r.Bytes(int(size))
		if err != nil {
			return nil, nil, err
		}
		sr := NewReader(payload)

		if id != SectionCustom {
			if id < prevID {
				return nil, nil, fmt.Errorf("binary: section %d out of order", id)
			}
			if seen[id] {
				return nil, nil, fmt.Errorf("binary: duplicate section %d", id)
			}
			seen[id] = true
			prevID = id
		}

		switch id {
		case SectionCustom:
			name, err := sr.Name()
			if err != nil {
				return nil, nil, err
			}
			h.CustomSections = append(h.CustomSections, moduledef.CustomSection{
				Name: name, Payload: payload[sr.Pos():],
			})
		case SectionType:
			if err := decodeTypeSection(sr, h); err != nil {
				return nil, nil, err
			}
		case SectionImport:
			if err := decodeImportSection(sr, h); err != nil {
				return nil, nil, err
			}
		case SectionFunction:
			if err := decodeFunctionSection(sr, h); err != nil {
				return nil, nil, err
			}
		case SectionTable:
			if err := decodeTableSection(sr, h); err != nil {
				return nil, nil, err
			}
		case SectionMemory:
			if err := decodeMemorySection(sr, h); err != nil {
				return nil, nil, err
			}
		case SectionGlobal:
			if err := decodeGlobalSection(sr, h); err != nil {
				return nil, nil, err
			}
		case SectionExport:
			if err := decodeExportSection(sr, h); err != nil {
				return nil, nil, err
			}
		case SectionStart:
			idx, err := sr.U32()
			if err != nil {
				return nil, nil, err
			}
			h.StartFunc, h.HasStart = idx, true
		case SectionElement:
			if err := decodeElementSection(sr, h); err != nil {
				return nil, nil, err
			}
		case SectionCode:
			bodies, err = decodeCodeSection(sr)
			if err != nil {
				return nil, nil, err
			}
		case SectionData:
			if err := decodeDataSection(sr, h); err != nil {
				return nil, nil, err
			}
		case SectionDataCount:
			// Only used to pre-validate data.drop/memory.init indices during
			// streaming validation; the count itself is not retained.
			if _, err := sr.U32(); err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, fmt.Errorf("binary: unknown section id %d", id)
		}
	}

	if len(h.FuncTypeIndices) != len(bodies) {
		return nil, nil, fmt.Errorf("binary: function and code section counts disagree (%d vs %d)",
			len(h.FuncTypeIndices), len(bodies))
	}
	return h, bodies, nil
}

func decodeValueType(r *Reader) (api.ValueType, error) {
	b, err := r.Byte()
	if err != nil {
		return 0, err
	}
	switch b {
	case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64,
		api.ValueTypeV128, api.ValueTypeFuncref, api.ValueTypeExternref:
		return b, nil
	default:
		return 0, fmt.Errorf("binary: invalid value type %#x", b)
	}
}

func decodeTypeSection(r *Reader, h *moduledef.ModuleHeader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	h.Types = make([]moduledef.FuncType, n)
	for i := range h.Types {
		form, err := r.Byte()
		if err != nil {
			return err
		}
		if form != 0x60 {
			return fmt.Errorf("binary: invalid functype form %#x", form)
		}
		np, err := r.U32()
		if err != nil {
			return err
		}
		params := make([]api.ValueType, np)
		for j := range params {
			if params[j], err = decodeValueType(r); err != nil {
				return err
			}
		}
		nr, err := r.U32()
		if err != nil {
			return err
		}
		results := make([]api.ValueType, nr)
		for j := range results {
			if results[j], err = decodeValueType(r); err != nil {
				return err
			}
		}
		h.Types[i] = moduledef.FuncType{Params: params, Results: results}
	}
	return nil
}

func decodeLimits(r *Reader) (moduledef.Limits, error) {
	flag, err := r.Byte()
	if err != nil {
		return moduledef.Limits{}, err
	}
	min, err := r.U64()
	if err != nil {
		return moduledef.Limits{}, err
	}
	l := moduledef.Limits{Min: min}
	if flag&0x1 != 0 {
		max, err := r.U64()
		if err != nil {
			return moduledef.Limits{}, err
		}
		l.Max, l.HasMax = max, true
	}
	return l, nil
}

func decodeTableType(r *Reader) (moduledef.TableType, error) {
	et, err := decodeValueType(r)
	if err != nil {
		return moduledef.TableType{}, err
	}
	lim, err := decodeLimits(r)
	if err != nil {
		return moduledef.TableType{}, err
	}
	return moduledef.TableType{ElemType: et, Limits: lim}, nil
}

func decodeMemoryType(r *Reader) (moduledef.MemoryType, error) {
	lim, err := decodeLimits(r)
	if err != nil {
		return moduledef.MemoryType{}, err
	}
	return moduledef.MemoryType{Limits: lim}, nil
}

func decodeImportSection(r *Reader, h *moduledef.ModuleHeader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		mod, err := r.Name()
		if err != nil {
			return err
		}
		name, err := r.Name()
		if err != nil {
			return err
		}
		kind, err := r.Byte()
		if err != nil {
			return err
		}
		imp := moduledef.Import{Module: mod, Name: name, Kind: kind}
		switch kind {
		case api.ExternTypeFunc:
			imp.FuncTypeIdx, err = r.U32()
		case api.ExternTypeTable:
			imp.Table, err = decodeTableType(r)
		case api.ExternTypeMemory:
			imp.Memory, err = decodeMemoryType(r)
		case api.ExternTypeGlobal:
			var vt api.ValueType
			vt, err = decodeValueType(r)
			if err == nil {
				var mut byte
				mut, err = r.Byte()
				imp.Global = moduledef.GlobalType{ValType: vt, Mutable: mut == 1}
			}
		default:
			return fmt.Errorf("binary: invalid import kind %#x", kind)
		}
		if err != nil {
			return err
		}
		h.Imports = append(h.Imports, imp)
	}
	return nil
}

func decodeFunctionSection(r *Reader, h *moduledef.ModuleHeader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	h.FuncTypeIndices = make([]uint32, n)
	for i := range h.FuncTypeIndices {
		if h.FuncTypeIndices[i], err = r.U32(); err != nil {
			return err
		}
	}
	return nil
}

func decodeTableSection(r *Reader, h *moduledef.ModuleHeader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	h.Tables = make([]moduledef.TableType, n)
	for i := range h.Tables {
		if h.Tables[i], err = decodeTableType(r); err != nil {
			return err
		}
	}
	return nil
}

func decodeMemorySection(r *Reader, h *moduledef.ModuleHeader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	h.Memories = make([]moduledef.MemoryType, n)
	for i := range h.Memories {
		if h.Memories[i], err = decodeMemoryType(r); err != nil {
			return err
		}
	}
	return nil
}

// decodeInitExpr decodes a constant expression of exactly one instruction
// terminated by `end` (0x0b). Extended-const expressions (several
// instructions, e.g. i32.add over two leaves) are not decoded: any second
// instruction before `end` is rejected with an error, whatever features are
// enabled.
func decodeInitExpr(r *Reader, valType api.ValueType) (moduledef.InitExpr, error) {
	op, err := r.Byte()
	if err != nil {
		return moduledef.InitExpr{}, err
	}
	var expr moduledef.InitExpr
	expr.ValType = valType
	switch op {
	case OpcodeI32Const:
		v, err := r.I32()
		if err != nil {
			return expr, err
		}
		expr.Kind, expr.Value = moduledef.InitExprConst, uint64(uint32(v))
	case OpcodeI64Const:
		v, err := r.I64()
		if err != nil {
			return expr, err
		}
		expr.Kind, expr.Value = moduledef.InitExprConst, uint64(v)
	case OpcodeF32Const:
		v, err := r.F32()
		if err != nil {
			return expr, err
		}
		expr.Kind, expr.Value = moduledef.InitExprConst, uint64(v)
	case OpcodeF64Const:
		v, err := r.F64()
		if err != nil {
			return expr, err
		}
		expr.Kind, expr.Value = moduledef.InitExprConst, v
	case OpcodeGlobalGet:
		idx, err := r.U32()
		if err != nil {
			return expr, err
		}
		expr.Kind, expr.GlobalIdx = moduledef.InitExprGlobalGet, idx
	case OpcodeRefNull:
		if _, err := decodeValueType(r); err != nil {
			return expr, err
		}
		expr.Kind = moduledef.InitExprRefNull
	case OpcodeRefFunc:
		idx, err := r.U32()
		if err != nil {
			return expr, err
		}
		expr.Kind, expr.FuncIdx = moduledef.InitExprRefFunc, idx
	default:
		return expr, fmt.Errorf("binary: unsupported init-expr opcode %#x", op)
	}
	end, err := r.Byte()
	if err != nil {
		return expr, err
	}
	if end != OpcodeEnd {
		return expr, fmt.Errorf("binary: init-expr missing end opcode, found %#x", end)
	}
	return expr, nil
}

func decodeGlobalSection(r *Reader, h *moduledef.ModuleHeader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	h.Globals = make([]moduledef.GlobalType, n)
	h.GlobalInitExprs = make([]moduledef.InitExpr, n)
	for i := range h.Globals {
		vt, err := decodeValueType(r)
		if err != nil {
			return err
		}
		mut, err := r.Byte()
		if err != nil {
			return err
		}
		h.Globals[i] = moduledef.GlobalType{ValType: vt, Mutable: mut == 1}
		if h.GlobalInitExprs[i], err = decodeInitExpr(r, vt); err != nil {
			return err
		}
	}
	return nil
}

func decodeExportSection(r *Reader, h *moduledef.ModuleHeader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	seenNames := make(map[string]bool, n)
	for i := uint32(0); i < n; i++ {
		name, err := r.Name()
		if err != nil {
			return err
		}
		if seenNames[name] {
			return fmt.Errorf("binary: duplicate export name %q", name)
		}
		seenNames[name] = true
		kind, err := r.Byte()
		if err != nil {
			return err
		}
		idx, err := r.U32()
		if err != nil {
			return err
		}
		h.Exports = append(h.Exports, moduledef.Export{Name: name, Kind: kind, Index: idx})
	}
	return nil
}

func decodeElementSection(r *Reader, h *moduledef.ModuleHeader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	h.Elements = make([]moduledef.ElementSegment, n)
	for i := range h.Elements {
		flag, err := r.U32()
		if err != nil {
			return err
		}
		seg := moduledef.ElementSegment{Type: api.ValueTypeFuncref}
		active := flag&0x1 == 0
		explicitTable := flag&0x2 != 0
		exprItems := flag&0x4 != 0

		if active {
			seg.Kind = moduledef.ElementSegmentActive
			if explicitTable {
				if seg.Table, err = r.U32(); err != nil {
					return err
				}
			}
			if seg.Offset, err = decodeInitExpr(r, api.ValueTypeI32); err != nil {
				return err
			}
		} else if flag&0x2 != 0 {
			seg.Kind = moduledef.ElementSegmentDeclared
		} else {
			seg.Kind = moduledef.ElementSegmentPassive
		}

		if !active {
			if exprItems {
				if seg.Type, err = decodeValueType(r); err != nil {
					return err
				}
			} else {
				if _, err = r.Byte(); err != nil { // elemkind byte, always funcref (0x00)
					return err
				}
			}
		} else if explicitTable {
			if exprItems {
				if seg.Type, err = decodeValueType(r); err != nil {
					return err
				}
			} else {
				if _, err = r.Byte(); err != nil {
					return err
				}
			}
		}

		count, err := r.U32()
		if err != nil {
			return err
		}
		seg.Items = make([]moduledef.InitExpr, count)
		for j := range seg.Items {
			if exprItems {
				if seg.Items[j], err = decodeInitExpr(r, seg.Type); err != nil {
					return err
				}
			} else {
				idx, err := r.U32()
				if err != nil {
					return err
				}
				seg.Items[j] = moduledef.InitExpr{Kind: moduledef.InitExprRefFunc, FuncIdx: idx}
			}
		}
		h.Elements[i] = seg
	}
	return nil
}

func decodeCodeSection(r *Reader) ([]FuncBody, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	bodies := make([]FuncBody, n)
	for i := range bodies {
		size, err := r.U32()
		if err != nil {
			return nil, err
		}
		payload, err := r.Bytes(int(size))
		if err != nil {
			return nil, err
		}
		br := NewReader(payload)
		numLocalGroups, err := br.U32()
		if err != nil {
			return nil, err
		}
		var locals []api.ValueType
		for g := uint32(0); g < numLocalGroups; g++ {
			count, err := br.U32()
			if err != nil {
				return nil, err
			}
			vt, err := decodeValueType(br)
			if err != nil {
				return nil, err
			}
			for k := uint32(0); k < count; k++ {
				locals = append(locals, vt)
			}
		}
		bodies[i] = FuncBody{Locals: locals, Code: payload[br.Pos():]}
	}
	return bodies, nil
}

func decodeDataSection(r *Reader, h *moduledef.ModuleHeader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	h.Datas = make([]moduledef.DataSegment, n)
	for i := range h.Datas {
		flag, err := r.U32()
		if err != nil {
			return err
		}
		seg := moduledef.DataSegment{}
		switch flag {
		case 0:
			seg.Kind = moduledef.DataSegmentActive
			if seg.Offset, err = decodeInitExpr(r, api.ValueTypeI32); err != nil {
				return err
			}
		case 1:
			seg.Kind = moduledef.DataSegmentPassive
		case 2:
			seg.Kind = moduledef.DataSegmentActive
			if seg.Memory, err = r.U32(); err != nil {
				return err
			}
			if seg.Offset, err = decodeInitExpr(r, api.ValueTypeI32); err != nil {
				return err
			}
		default:
			return fmt.Errorf("binary: invalid data segment flag %d", flag)
		}
		size, err := r.U32()
		if err != nil {
			return err
		}
		if seg.Bytes, err = r.Bytes(int(size)); err != nil {
			return err
		}
		h.Datas[i] = seg
	}
	return nil
}
