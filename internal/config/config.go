// Package config loads the uartlog tool configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/uart"

	"github.com/michcald/klogger"
)

// DefaultFiles are searched, in order, when no config path is given.
var DefaultFiles = []string{"uartlog.yaml", "uartlog.yml"}

// Config is the on-disk form of a klogger.Config.
type Config struct {
	// Variant is "port" or "mmio".
	Variant string `yaml:"variant"`
	// Port is the 16550 base port.
	Port uint16 `yaml:"port"`
	// Base is the PL011 physical base address. Hex (0x...) is accepted.
	Base uint64 `yaml:"base"`
	// UARTClockHz is the PL011 reference clock.
	UARTClockHz int64 `yaml:"uart_clock_hz"`
	// SkipConfigure leaves the UART as firmware configured it.
	SkipConfigure bool `yaml:"skip_configure"`

	Baud     int64  `yaml:"baud"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"` // 1 or 2
	Parity   string `yaml:"parity"`    // N, O, E, M or S

	Level  string `yaml:"level"`
	Color  bool   `yaml:"color"`
	CRLF   bool   `yaml:"crlf"`
	Target string `yaml:"target"`
}

// DefaultConfig returns the default configuration: COM1 at 115200 8N1.
func DefaultConfig() *Config {
	return &Config{
		Variant:  "port",
		Port:     klogger.COM1,
		Baud:     115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Level:    "info",
		Target:   "uartlog",
	}
}

// Load reads configuration from path. If path is empty the DefaultFiles
// are tried; if none exists the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Klogger converts c to the configuration klogger.Init takes.
func (c *Config) Klogger() (klogger.Config, error) {
	var kc klogger.Config

	switch strings.ToLower(c.Variant) {
	case "", "port":
		kc.Variant = klogger.PortMapped
	case "mmio":
		kc.Variant = klogger.MemoryMapped
	default:
		return kc, fmt.Errorf("unknown variant %q, want port or mmio", c.Variant)
	}
	kc.Port = c.Port
	kc.Base = c.Base
	kc.UARTClock = physic.Frequency(c.UARTClockHz) * physic.Hertz
	kc.SkipConfigure = c.SkipConfigure

	kc.Line.Baud = physic.Frequency(c.Baud) * physic.Hertz
	kc.Line.DataBits = c.DataBits
	switch c.StopBits {
	case 0:
	case 1:
		kc.Line.Stop = uart.One
	case 2:
		kc.Line.Stop = uart.Two
	default:
		return kc, fmt.Errorf("unsupported stop bits %d", c.StopBits)
	}
	if c.Parity != "" {
		kc.Line.Parity = uart.Parity(strings.ToUpper(c.Parity)[0])
	}

	if c.Level != "" {
		lvl, err := klogger.ParseLevel(c.Level)
		if err != nil {
			return kc, err
		}
		if lvl == klogger.LevelOff {
			return kc, fmt.Errorf("level %q would discard every record", c.Level)
		}
		kc.Level = lvl
	}
	kc.Color = c.Color
	kc.CRLF = c.CRLF
	return kc, nil
}
