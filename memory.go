package wasmi

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/wasmigo/wasmi/internal/store"
)

// Memory is a handle to one linear memory instance, grounded on wazero's
// api.Memory: every accessor returns an ok bool instead of panicking or
// trapping on out-of-range access, so host functions can validate guest
// offsets themselves.
type Memory interface {
	// Size returns the current size in bytes.
	Size(ctx context.Context) uint32

	// Grow increases memory by deltaPages (65536 bytes each), returning the
	// previous size in pages, or false if the delta was rejected (spec.md
	// §4.2 memory.grow's no-trap failure contract).
	Grow(ctx context.Context, deltaPages uint32) (previousPages uint32, ok bool)

	ReadByte(ctx context.Context, offset uint32) (byte, bool)
	ReadUint32Le(ctx context.Context, offset uint32) (uint32, bool)
	ReadUint64Le(ctx context.Context, offset uint32) (uint64, bool)
	ReadFloat32Le(ctx context.Context, offset uint32) (float32, bool)
	ReadFloat64Le(ctx context.Context, offset uint32) (float64, bool)

	// Read returns a write-through view of byteCount bytes starting at
	// offset: writes through the returned slice are visible to Wasm code and
	// vice versa, until the next memory.grow reallocates the backing array.
	Read(ctx context.Context, offset, byteCount uint32) ([]byte, bool)

	WriteByte(ctx context.Context, offset uint32, v byte) bool
	WriteUint32Le(ctx context.Context, offset, v uint32) bool
	WriteUint64Le(ctx context.Context, offset uint32, v uint64) bool
	WriteFloat32Le(ctx context.Context, offset uint32, v float32) bool
	WriteFloat64Le(ctx context.Context, offset uint32, v float64) bool
	Write(ctx context.Context, offset uint32, v []byte) bool
}

// memory implements Memory over a *store.Memory owned by a Store, so Grow
// can consult the Store's resource limiter.
type memory struct {
	st *Store
	m  *store.Memory
}

func (m *memory) Size(context.Context) uint32 { return uint32(len(m.m.Data)) }

func (m *memory) Grow(_ context.Context, deltaPages uint32) (uint32, bool) {
	prev := m.m.Grow(uint64(deltaPages), m.st.limiter)
	if prev < 0 {
		return 0, false
	}
	return uint32(prev), true
}

func (m *memory) bounds(offset uint32, n int) bool {
	return uint64(offset)+uint64(n) <= uint64(len(m.m.Data))
}

func (m *memory) ReadByte(_ context.Context, offset uint32) (byte, bool) {
	if !m.bounds(offset, 1) {
		return 0, false
	}
	return m.m.Data[offset], true
}

func (m *memory) ReadUint32Le(_ context.Context, offset uint32) (uint32, bool) {
	if !m.bounds(offset, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.m.Data[offset:]), true
}

func (m *memory) ReadUint64Le(_ context.Context, offset uint32) (uint64, bool) {
	if !m.bounds(offset, 8) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(m.m.Data[offset:]), true
}

func (m *memory) ReadFloat32Le(ctx context.Context, offset uint32) (float32, bool) {
	v, ok := m.ReadUint32Le(ctx, offset)
	return math.Float32frombits(v), ok
}

func (m *memory) ReadFloat64Le(ctx context.Context, offset uint32) (float64, bool) {
	v, ok := m.ReadUint64Le(ctx, offset)
	return math.Float64frombits(v), ok
}

func (m *memory) Read(_ context.Context, offset, byteCount uint32) ([]byte, bool) {
	if !m.bounds(offset, int(byteCount)) {
		return nil, false
	}
	return m.m.Data[offset : offset+byteCount : offset+byteCount], true
}

func (m *memory) WriteByte(_ context.Context, offset uint32, v byte) bool {
	if !m.bounds(offset, 1) {
		return false
	}
	m.m.Data[offset] = v
	return true
}

func (m *memory) WriteUint32Le(_ context.Context, offset, v uint32) bool {
	if !m.bounds(offset, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(m.m.Data[offset:], v)
	return true
}

func (m *memory) WriteUint64Le(_ context.Context, offset uint32, v uint64) bool {
	if !m.bounds(offset, 8) {
		return false
	}
	binary.LittleEndian.PutUint64(m.m.Data[offset:], v)
	return true
}

func (m *memory) WriteFloat32Le(ctx context.Context, offset uint32, v float32) bool {
	return m.WriteUint32Le(ctx, offset, math.Float32bits(v))
}

func (m *memory) WriteFloat64Le(ctx context.Context, offset uint32, v float64) bool {
	return m.WriteUint64Le(ctx, offset, math.Float64bits(v))
}

func (m *memory) Write(_ context.Context, offset uint32, v []byte) bool {
	if !m.bounds(offset, len(v)) {
		return false
	}
	copy(m.m.Data[offset:], v)
	return true
}
