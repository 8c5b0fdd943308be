//go:build tinygo

package klogger

import (
	"fmt"
	"runtime/volatile"
	"unsafe"
)

// volatileRegs implements RegisterIO directly on physical addresses.
type volatileRegs struct {
	base uintptr
}

func (r volatileRegs) reg(off uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(r.base + off))
}

func (r volatileRegs) Read32(off uintptr) uint32 {
	return r.reg(off).Get()
}

func (r volatileRegs) Write32(off uintptr, v uint32) {
	r.reg(off).Set(v)
}

// openTransport opens the UART described by c on TinyGo firmware. Only
// memory-mapped UARTs exist on the targets TinyGo supports.
func openTransport(c Config) (Transport, error) {
	if c.Variant != MemoryMapped {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, c.Variant)
	}
	return configure(c, nil, volatileRegs{base: uintptr(c.Base)})
}
