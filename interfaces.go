package klogger

// Variant selects which kind of UART the console drives.
type Variant uint8

const (
	// PortMapped is a 16550-compatible UART reached through the x86 I/O
	// port space (COM1 at 0x3F8 on PCs).
	PortMapped Variant = iota
	// MemoryMapped is a PL011 UART whose registers live at a board
	// specific physical address (0x09000000 on QEMU virt).
	MemoryMapped
)

func (v Variant) String() string {
	switch v {
	case PortMapped:
		return "port"
	case MemoryMapped:
		return "mmio"
	default:
		return "unknown"
	}
}

// Transport is a hardware byte sink.
type Transport interface {
	// PutByte blocks until the device can accept a byte, then writes it.
	// It never fails and never queues. A device that never becomes ready
	// makes the caller spin forever.
	PutByte(b byte)
}

// PortIO represents access to the I/O port address space.
type PortIO interface {
	// In8 reads one byte from port.
	In8(port uint16) byte
	// Out8 writes one byte to port.
	Out8(port uint16, v byte)
}

// RegisterIO represents a window of 32-bit device registers.
// Offsets are in bytes from the start of the window.
type RegisterIO interface {
	// Read32 performs a volatile read of the register at off.
	Read32(off uintptr) uint32
	// Write32 performs a volatile write of the register at off.
	Write32(off uintptr, v uint32)
}
