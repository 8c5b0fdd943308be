//go:build !tinygo

package klogger

import (
	"fmt"
	"os"
	"sync/atomic"

	"periph.io/x/host/v3"
	"periph.io/x/host/v3/pmem"
)

// DevPortPath is the Linux device exposing the I/O port space. File offset
// N reads or writes port N.
const DevPortPath = "/dev/port"

// devPort implements PortIO on top of /dev/port.
//
// The logging path cannot report failures, so a failed read returns 0xFF
// (every status bit set, the UART looks ready) and a failed write is
// dropped.
type devPort struct {
	f   *os.File
	buf [1]byte
}

func (p *devPort) In8(port uint16) byte {
	if _, err := p.f.ReadAt(p.buf[:], int64(port)); err != nil {
		return 0xFF
	}
	return p.buf[0]
}

func (p *devPort) Out8(port uint16, v byte) {
	p.buf[0] = v
	_, _ = p.f.WriteAt(p.buf[:], int64(port))
}

// pmemRegs implements RegisterIO on a physical memory window mapped
// through /dev/mem.
type pmemRegs struct {
	view *pmem.View
	regs []uint32
}

func (r *pmemRegs) Read32(off uintptr) uint32 {
	return atomic.LoadUint32(&r.regs[off/4])
}

func (r *pmemRegs) Write32(off uintptr, v uint32) {
	atomic.StoreUint32(&r.regs[off/4], v)
}

// openTransport opens the UART described by c on a Linux host. The port
// space is reached through /dev/port, memory-mapped registers through
// /dev/mem. Both need root.
func openTransport(c Config) (Transport, error) {
	// Initialize periph.io host drivers before touching hardware.
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io host: %w", err)
	}

	switch c.Variant {
	case PortMapped:
		f, err := os.OpenFile(DevPortPath, os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", DevPortPath, err)
		}
		t, err := configure(c, &devPort{f: f}, nil)
		if err != nil {
			f.Close()
			return nil, err
		}
		return t, nil
	case MemoryMapped:
		v, err := pmem.Map(c.Base, PL011Size)
		if err != nil {
			return nil, fmt.Errorf("failed to map UART registers at %#x: %w", c.Base, err)
		}
		t, err := configure(c, nil, &pmemRegs{view: v, regs: v.Uint32()})
		if err != nil {
			v.Close()
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, c.Variant)
	}
}
