// Package klogger is a serial console logger for kernels and firmware.
//
// Records are rendered into a fixed stack buffer and written byte by byte
// to a UART while holding a spin lock, so lines from different CPUs or
// interrupt handlers never interleave. The logging path does not allocate,
// does not sleep, and never returns an error: a record logged before Init
// is dropped, an overlong record is truncated, and a UART that never
// becomes ready makes the caller spin.
//
// Two UARTs are supported: the PC 16550 in the I/O port space and the ARM
// PL011 behind memory-mapped registers. Init selects one from Config.
package klogger

import (
	"errors"
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/physic"
)

var (
	ErrPkg           = errors.New("klogger")
	ErrNoBaseAddress = errors.New("memory-mapped UART requires a base address")
	ErrUnsupported   = errors.New("UART variant not supported on this platform")
	ErrInvalidLine   = errors.New("invalid line configuration")
	ErrUnknownLevel  = errors.New("unknown log level")
)

// Config holds the configuration for Init.
type Config struct {
	// Variant selects the UART kind.
	// Defaults to PortMapped if not provided.
	Variant Variant
	// Port is the base I/O port of a PortMapped UART.
	// Defaults to COM1 (0x3F8) if not provided.
	Port uint16
	// Base is the physical base address of a MemoryMapped UART.
	// Required for MemoryMapped, there is no portable default.
	Base uint64
	// UARTClock is the PL011 reference clock used for the baud divisor.
	// Defaults to DefaultUARTClock (24MHz) if not provided.
	UARTClock physic.Frequency
	// Line holds the line parameters. See LineConfig for defaults.
	Line LineConfig
	// SkipConfigure leaves the UART registers as firmware set them up.
	SkipConfigure bool
	// Options controls rendering and the level threshold.
	Options
}

// Options controls how a Console renders and filters records.
type Options struct {
	// Level is the most verbose level that is emitted.
	// Defaults to LevelTrace if not provided. Use SetMaxLevel(LevelOff)
	// to silence the console.
	Level Level
	// Color enables terminal styling of Error and Warn lines.
	Color bool
	// CRLF terminates lines with "\r\n".
	CRLF bool
	// Clock, if set, returns nanoseconds since boot and timestamps every
	// line.
	Clock func() uint64
}

// Console renders records and writes them to one Transport.
type Console struct {
	f        Formatter
	w        *SyncWriter
	maxLevel atomic.Uint32
}

// NewConsole returns a console writing to t. The console owns t from now
// on.
func NewConsole(opts Options, t Transport) *Console {
	c := &Console{
		f: Formatter{Color: opts.Color, CRLF: opts.CRLF, Clock: opts.Clock},
		w: NewSyncWriter(t),
	}
	if opts.Level == LevelOff {
		opts.Level = LevelTrace
	}
	c.maxLevel.Store(uint32(opts.Level))
	return c
}

// Enabled reports whether records at l are emitted.
func (c *Console) Enabled(l Level) bool {
	return l != LevelOff && l <= Level(c.maxLevel.Load())
}

// SetMaxLevel changes the most verbose level that is emitted.
func (c *Console) SetMaxLevel(l Level) {
	c.maxLevel.Store(uint32(l))
}

// MaxLevel returns the current threshold.
func (c *Console) MaxLevel() Level {
	return Level(c.maxLevel.Load())
}

// Log renders r and writes it as one line.
func (c *Console) Log(r Record) {
	if !c.Enabled(r.Level) {
		return
	}
	var buf [MaxLineLen]byte
	n := c.f.Render(r, buf[:])
	c.w.Write(buf[:n])
}

// Print writes s as is, without a level, target or line terminator.
func (c *Console) Print(s string) {
	c.w.WriteString(s)
}

// Println writes s followed by the line terminator in one critical section.
func (c *Console) Println(s string) {
	eol := "\n"
	if c.f.CRLF {
		eol = "\r\n"
	}
	WithTransport(c.w, func(t Transport) struct{} {
		for i := 0; i < len(s); i++ {
			t.PutByte(s[i])
		}
		for i := 0; i < len(eol); i++ {
			t.PutByte(eol[i])
		}
		return struct{}{}
	})
}

// Writer returns the synchronized writer behind the console.
func (c *Console) Writer() *SyncWriter {
	return c.w
}

// The process wide console. initLock serializes construction; readers
// only ever load the pointer, so logging stays lock-free until the
// transport lock.
var (
	global   atomic.Pointer[Console]
	initLock SpinLock
)

// Init opens and configures the UART described by c and installs the
// global console. Calling Init again after it succeeded does nothing and
// returns nil. If Init fails the console stays uninitialized and Init may
// be retried.
func Init(c Config) error {
	if global.Load() != nil {
		return nil
	}
	initLock.Lock()
	defer initLock.Unlock()
	if global.Load() != nil {
		return nil
	}
	c = c.withDefaults()
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPkg, err)
	}
	t, err := openTransport(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPkg, err)
	}
	global.Store(NewConsole(c.Options, t))
	return nil
}

// InitWithHardware installs the global console on a caller supplied
// transport. c.Options applies; the hardware fields of c are ignored. Like
// Init it is a no-op once a console is installed.
func InitWithHardware(c Config, t Transport) error {
	if t == nil {
		return fmt.Errorf("%w: nil transport", ErrPkg)
	}
	if global.Load() != nil {
		return nil
	}
	initLock.Lock()
	defer initLock.Unlock()
	if global.Load() == nil {
		global.Store(NewConsole(c.Options, t))
	}
	return nil
}

// Default returns the global console, or nil before Init.
func Default() *Console {
	return global.Load()
}

// Log writes r to the global console. Before Init it does nothing.
func Log(r Record) {
	if c := global.Load(); c != nil {
		c.Log(r)
	}
}

// Enabled reports whether the global console emits records at l. It is
// false before Init.
func Enabled(l Level) bool {
	if c := global.Load(); c != nil {
		return c.Enabled(l)
	}
	return false
}

// SetMaxLevel changes the global console threshold.
func SetMaxLevel(l Level) {
	if c := global.Load(); c != nil {
		c.SetMaxLevel(l)
	}
}

// Print writes s raw to the global console.
func Print(s string) {
	if c := global.Load(); c != nil {
		c.Print(s)
	}
}

// Println writes s and a line terminator to the global console.
func Println(s string) {
	if c := global.Load(); c != nil {
		c.Println(s)
	}
}

// configure builds the UART for c on top of the platform register access
// and programs it unless c.SkipConfigure is set.
func configure(c Config, pio PortIO, regs RegisterIO) (Transport, error) {
	switch c.Variant {
	case PortMapped:
		u := NewPortUART(pio, c.Port)
		if !c.SkipConfigure {
			if err := u.Configure(c.Line); err != nil {
				return nil, err
			}
		}
		return u, nil
	case MemoryMapped:
		u := NewMMIOUART(regs, c.UARTClock)
		if !c.SkipConfigure {
			if err := u.Configure(c.Line); err != nil {
				return nil, err
			}
		}
		return u, nil
	default:
		return nil, fmt.Errorf("%w: variant %d", ErrUnsupported, c.Variant)
	}
}

// validate rejects configurations before any hardware is touched.
func (c Config) validate() error {
	switch c.Variant {
	case PortMapped:
		_, err := lcr16550(c.Line)
		return err
	case MemoryMapped:
		if c.Base == 0 {
			return ErrNoBaseAddress
		}
		_, err := lcrhPL011(c.Line)
		return err
	default:
		return fmt.Errorf("%w: variant %d", ErrUnsupported, c.Variant)
	}
}

func (c Config) withDefaults() Config {
	if c.Variant == PortMapped && c.Port == 0 {
		c.Port = COM1
	}
	if c.UARTClock == 0 {
		c.UARTClock = DefaultUARTClock
	}
	c.Line = c.Line.withDefaults()
	return c
}
