package klogger

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/uart"
)

// COM1 is the legacy base port of the first PC serial port.
const COM1 uint16 = 0x3F8

// 16550 register offsets from the base port.
const (
	_THR = 0 // Transmit holding register (DLL when DLAB is set)
	_IER = 1 // Interrupt enable register (DLM when DLAB is set)
	_FCR = 2 // FIFO control register
	_LCR = 3 // Line control register
	_MCR = 4 // Modem control register
	_LSR = 5 // Line status register
)

// 16550 register bits
const (
	_LSR_THRE  = 1 << 5 // Transmit holding register empty
	_LCR_DLAB  = 1 << 7 // Divisor latch access
	_LCR_STOP2 = 1 << 2
	_FCR_INIT  = 0xC7 // Enable, clear RX/TX, 14 byte threshold
	_MCR_INIT  = 0x0B // DTR, RTS, OUT2

	_UART16550_CLOCK = 115200 // 1.8432MHz / 16
)

// PL011 register offsets from the base address.
const (
	_DR   = 0x00
	_FR   = 0x18
	_IBRD = 0x24
	_FBRD = 0x28
	_LCRH = 0x2C
	_CR   = 0x30
	_IMSC = 0x38
	_ICR  = 0x44
)

// PL011 register bits
const (
	_FR_BUSY  = 1 << 3
	_FR_TXFF  = 1 << 5 // Transmit FIFO full
	_LCRH_PEN = 1 << 1
	_LCRH_EPS = 1 << 2
	_LCRH_STP = 1 << 3
	_LCRH_FEN = 1 << 4
	_LCRH_SPS = 1 << 7
	_CR_EN    = 1 << 0
	_CR_TXE   = 1 << 8
	_CR_RXE   = 1 << 9
	_ICR_ALL  = 0x7FF

	// PL011Size is the size of the PL011 register window.
	PL011Size = 0x1000
)

// DefaultUARTClock is the PL011 reference clock on QEMU virt.
const DefaultUARTClock = 24 * physic.MegaHertz

// LineConfig holds the serial line parameters programmed into the UART.
type LineConfig struct {
	// Baud is the line speed.
	// Defaults to 115200Hz if not provided.
	Baud physic.Frequency
	// DataBits is the word length. Range: 5 to 8.
	// Defaults to 8 if not provided.
	DataBits int
	// Stop is the number of stop bits.
	// Defaults to uart.One if not provided.
	Stop uart.Stop
	// Parity is the parity mode.
	// Defaults to uart.NoParity if not provided.
	Parity uart.Parity
}

func (lc LineConfig) withDefaults() LineConfig {
	if lc.Baud == 0 {
		lc.Baud = 115200 * physic.Hertz
	}
	if lc.DataBits == 0 {
		lc.DataBits = 8
	}
	if lc.Stop == 0 {
		lc.Stop = uart.One
	}
	if lc.Parity == 0 {
		lc.Parity = uart.NoParity
	}
	return lc
}

func (lc LineConfig) String() string {
	return fmt.Sprintf("%s %d%c%d", lc.Baud, lc.DataBits, lc.Parity, lc.Stop)
}

func (lc LineConfig) baudHz() (uint64, error) {
	hz := uint64(lc.Baud / physic.Hertz)
	if hz == 0 {
		return 0, fmt.Errorf("%w: baud rate %s", ErrInvalidLine, lc.Baud)
	}
	return hz, nil
}

func (lc LineConfig) checkBits() error {
	if lc.DataBits < 5 || lc.DataBits > 8 {
		return fmt.Errorf("%w: %d data bits", ErrInvalidLine, lc.DataBits)
	}
	return nil
}

// PortUART is a 16550-compatible UART in the I/O port space.
type PortUART struct {
	io   PortIO
	base uint16
}

// NewPortUART returns a UART at base. The device is not touched until
// Configure or PutByte is called.
func NewPortUART(io PortIO, base uint16) *PortUART {
	return &PortUART{io: io, base: base}
}

// Base returns the base port.
func (u *PortUART) Base() uint16 { return u.base }

// PutByte implements Transport.
func (u *PortUART) PutByte(b byte) {
	for u.io.In8(u.base+_LSR)&_LSR_THRE == 0 {
	}
	u.io.Out8(u.base+_THR, b)
}

// Configure programs the divisor latch and line control register.
func (u *PortUART) Configure(lc LineConfig) error {
	lc = lc.withDefaults()
	lcr, err := lcr16550(lc)
	if err != nil {
		return err
	}
	hz, err := lc.baudHz()
	if err != nil {
		return err
	}
	div := (_UART16550_CLOCK + hz/2) / hz
	if div == 0 || div > 0xFFFF {
		return fmt.Errorf("%w: baud rate %s out of range", ErrInvalidLine, lc.Baud)
	}

	u.io.Out8(u.base+_IER, 0x00)
	u.io.Out8(u.base+_LCR, _LCR_DLAB)
	u.io.Out8(u.base+_THR, byte(div))
	u.io.Out8(u.base+_IER, byte(div>>8))
	u.io.Out8(u.base+_LCR, lcr)
	u.io.Out8(u.base+_FCR, _FCR_INIT)
	u.io.Out8(u.base+_MCR, _MCR_INIT)
	return nil
}

func lcr16550(lc LineConfig) (byte, error) {
	if err := lc.checkBits(); err != nil {
		return 0, err
	}
	v := byte(lc.DataBits - 5)
	switch lc.Stop {
	case uart.One:
	case uart.Two:
		v |= _LCR_STOP2
	case uart.OneHalf:
		// The 16550 only does 1.5 stop bits with 5 bit words.
		if lc.DataBits != 5 {
			return 0, fmt.Errorf("%w: 1.5 stop bits with %d data bits", ErrInvalidLine, lc.DataBits)
		}
		v |= _LCR_STOP2
	default:
		return 0, fmt.Errorf("%w: stop bits %d", ErrInvalidLine, lc.Stop)
	}
	switch lc.Parity {
	case uart.NoParity:
	case uart.Odd:
		v |= 0x08
	case uart.Even:
		v |= 0x18
	case uart.Mark:
		v |= 0x28
	case uart.Space:
		v |= 0x38
	default:
		return 0, fmt.Errorf("%w: parity %q", ErrInvalidLine, lc.Parity)
	}
	return v, nil
}

// MMIOUART is an ARM PL011 UART reached through memory-mapped registers.
type MMIOUART struct {
	regs  RegisterIO
	clock physic.Frequency
}

// NewMMIOUART returns a PL011 driven through regs. clock is the UART
// reference clock used to derive the baud rate divisor; zero selects
// DefaultUARTClock.
func NewMMIOUART(regs RegisterIO, clock physic.Frequency) *MMIOUART {
	if clock == 0 {
		clock = DefaultUARTClock
	}
	return &MMIOUART{regs: regs, clock: clock}
}

// PutByte implements Transport.
//
// The PL011 reports "transmit FIFO full" rather than "ready", so the wait
// loop spins while the flag is set.
func (u *MMIOUART) PutByte(b byte) {
	for u.regs.Read32(_FR)&_FR_TXFF != 0 {
	}
	u.regs.Write32(_DR, uint32(b))
}

// Configure disables the UART, programs the divisors and line control, and
// enables transmit and receive.
func (u *MMIOUART) Configure(lc LineConfig) error {
	lc = lc.withDefaults()
	lcrh, err := lcrhPL011(lc)
	if err != nil {
		return err
	}
	hz, err := lc.baudHz()
	if err != nil {
		return err
	}
	// Divisor in 1/64ths: clock / (16 * baud) * 64.
	ref := uint64(u.clock / physic.Hertz)
	div := (ref*4 + hz/2) / hz
	ibrd, fbrd := div>>6, div&0x3F
	if ibrd == 0 || ibrd > 0xFFFF {
		return fmt.Errorf("%w: baud rate %s out of range for %s clock", ErrInvalidLine, lc.Baud, u.clock)
	}

	u.regs.Write32(_CR, 0)
	for u.regs.Read32(_FR)&_FR_BUSY != 0 {
	}
	u.regs.Write32(_ICR, _ICR_ALL)
	u.regs.Write32(_IBRD, uint32(ibrd))
	u.regs.Write32(_FBRD, uint32(fbrd))
	// LCRH must follow the divisor writes, it latches them.
	u.regs.Write32(_LCRH, lcrh)
	u.regs.Write32(_IMSC, 0)
	u.regs.Write32(_CR, _CR_EN|_CR_TXE|_CR_RXE)
	return nil
}

func lcrhPL011(lc LineConfig) (uint32, error) {
	if err := lc.checkBits(); err != nil {
		return 0, err
	}
	v := uint32(_LCRH_FEN) | uint32(lc.DataBits-5)<<5
	switch lc.Stop {
	case uart.One:
	case uart.Two:
		v |= _LCRH_STP
	default:
		return 0, fmt.Errorf("%w: stop bits %d", ErrInvalidLine, lc.Stop)
	}
	switch lc.Parity {
	case uart.NoParity:
	case uart.Odd:
		v |= _LCRH_PEN
	case uart.Even:
		v |= _LCRH_PEN | _LCRH_EPS
	case uart.Mark:
		v |= _LCRH_PEN | _LCRH_SPS
	case uart.Space:
		v |= _LCRH_PEN | _LCRH_EPS | _LCRH_SPS
	default:
		return 0, fmt.Errorf("%w: parity %q", ErrInvalidLine, lc.Parity)
	}
	return v, nil
}
