package wasi

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"testing"

	"github.com/wasmigo/wasmi/api"
)

// fakeMemory is the smallest wasmi.Memory implementation that exercises
// fd_write's iovec walk: a flat byte slice with bounds-checked little-endian
// accessors, mirroring the real memory.go's bounds-checking discipline.
type fakeMemory struct{ data []byte }

func (f *fakeMemory) bounds(off uint32, n int) bool { return uint64(off)+uint64(n) <= uint64(len(f.data)) }

func (f *fakeMemory) Size(context.Context) uint32 { return uint32(len(f.data)) }
func (f *fakeMemory) Grow(context.Context, uint32) (uint32, bool) { return 0, false }
func (f *fakeMemory) ReadByte(_ context.Context, off uint32) (byte, bool) {
	if !f.bounds(off, 1) {
		return 0, false
	}
	return f.data[off], true
}
func (f *fakeMemory) ReadUint32Le(_ context.Context, off uint32) (uint32, bool) {
	if !f.bounds(off, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(f.data[off:]), true
}
func (f *fakeMemory) ReadUint64Le(_ context.Context, off uint32) (uint64, bool) {
	if !f.bounds(off, 8) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(f.data[off:]), true
}
func (f *fakeMemory) ReadFloat32Le(context.Context, uint32) (float32, bool) { return 0, false }
func (f *fakeMemory) ReadFloat64Le(context.Context, uint32) (float64, bool) { return 0, false }
func (f *fakeMemory) Read(_ context.Context, off, n uint32) ([]byte, bool) {
	if !f.bounds(off, int(n)) {
		return nil, false
	}
	return f.data[off : off+n], true
}
func (f *fakeMemory) WriteByte(_ context.Context, off uint32, v byte) bool {
	if !f.bounds(off, 1) {
		return false
	}
	f.data[off] = v
	return true
}
func (f *fakeMemory) WriteUint32Le(_ context.Context, off, v uint32) bool {
	if !f.bounds(off, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(f.data[off:], v)
	return true
}
func (f *fakeMemory) WriteUint64Le(_ context.Context, off uint32, v uint64) bool {
	if !f.bounds(off, 8) {
		return false
	}
	binary.LittleEndian.PutUint64(f.data[off:], v)
	return true
}
func (f *fakeMemory) WriteFloat32Le(context.Context, uint32, float32) bool { return false }
func (f *fakeMemory) WriteFloat64Le(context.Context, uint32, float64) bool { return false }
func (f *fakeMemory) Write(_ context.Context, off uint32, v []byte) bool {
	if !f.bounds(off, len(v)) {
		return false
	}
	copy(f.data[off:], v)
	return true
}

func TestFdWriteSingleIovec(t *testing.T) {
	mem := &fakeMemory{data: make([]byte, 64)}
	// One iovec at offset 0: {ptr: 16, len: 5}, payload "hello" at offset 16.
	binary.LittleEndian.PutUint32(mem.data[0:], 16)
	binary.LittleEndian.PutUint32(mem.data[4:], 5)
	copy(mem.data[16:], "hello")

	m := New()
	m.SetMemory(mem)

	r, w, _ := os.Pipe()
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	res, err := m.fdWrite(context.Background(), []uint64{1, 0, 1, 32})
	w.Close()
	if err != nil {
		t.Fatalf("fdWrite returned error: %v", err)
	}
	if res[0] != errnoSuccess {
		t.Fatalf("expected errno success, got %d", res[0])
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	if buf.String() != "hello" {
		t.Fatalf("stdout = %q, want %q", buf.String(), "hello")
	}
	nwritten, _ := mem.ReadUint32Le(context.Background(), 32)
	if nwritten != 5 {
		t.Fatalf("nwritten = %d, want 5", nwritten)
	}
}

func TestFdWriteUnboundMemoryFaults(t *testing.T) {
	m := New()
	res, err := m.fdWrite(context.Background(), []uint64{1, 0, 1, 32})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res[0] != errnoFault {
		t.Fatalf("expected errnoFault, got %d", res[0])
	}
}

func TestProcExitReturnsSentinel(t *testing.T) {
	m := New()
	_, err := m.procExit(context.Background(), []uint64{api.EncodeI32(7)})
	var exit *ErrExit
	if !errors.As(err, &exit) {
		t.Fatalf("expected *ErrExit, got %v", err)
	}
	if exit.Code != 7 {
		t.Fatalf("Code = %d, want 7", exit.Code)
	}
}

func TestClockTimeGetWritesNonZero(t *testing.T) {
	mem := &fakeMemory{data: make([]byte, 16)}
	m := New()
	m.SetMemory(mem)

	res, err := m.clockTimeGet(context.Background(), []uint64{0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res[0] != errnoSuccess {
		t.Fatalf("expected success, got errno %d", res[0])
	}
	got, _ := mem.ReadUint64Le(context.Background(), 0)
	if got == 0 {
		t.Fatalf("expected non-zero timestamp")
	}
}
