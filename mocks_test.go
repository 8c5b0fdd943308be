package klogger

import "testing"

// --- Mocks ---

// recordTransport captures every byte. It is not synchronized itself; all
// access goes through a SyncWriter.
type recordTransport struct {
	out []byte
}

func (r *recordTransport) PutByte(b byte) {
	r.out = append(r.out, b)
}

type portOp struct {
	port uint16
	v    byte
}

// mockPortIO emulates a 16550 whose LSR reports busy for the first busy
// reads.
type mockPortIO struct {
	busy   int
	reads  []uint16
	writes []portOp
}

func (m *mockPortIO) In8(port uint16) byte {
	m.reads = append(m.reads, port)
	if m.busy > 0 {
		m.busy--
		return 0
	}
	return _LSR_THRE
}

func (m *mockPortIO) Out8(port uint16, v byte) {
	m.writes = append(m.writes, portOp{port, v})
}

type regOp struct {
	off uintptr
	v   uint32
}

// mockRegs emulates a PL011 whose FR reports a full, busy FIFO for the
// first busy reads.
type mockRegs struct {
	busy   int
	reads  []uintptr
	writes []regOp
}

func (m *mockRegs) Read32(off uintptr) uint32 {
	m.reads = append(m.reads, off)
	if off == _FR && m.busy > 0 {
		m.busy--
		return _FR_TXFF | _FR_BUSY
	}
	return 0
}

func (m *mockRegs) Write32(off uintptr, v uint32) {
	m.writes = append(m.writes, regOp{off, v})
}

// resetGlobal returns the package to the uninitialized state for the
// duration of a test.
func resetGlobal(t *testing.T) {
	t.Helper()
	global.Store(nil)
	t.Cleanup(func() { global.Store(nil) })
}
