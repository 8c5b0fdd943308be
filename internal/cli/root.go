package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/michcald/klogger"
	"github.com/michcald/klogger/internal/config"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string

	variantOverride string
	portOverride    uint16
	baseOverride    uint64
	levelOverride   string
	targetOverride  string
	colorOverride   bool
	timestamps      bool
	lineLevel       string

	rootCmd = &cobra.Command{
		Use:   "uartlog",
		Short: "Write log lines straight to a UART",
		Long: `uartlog programs a 16550 (through /dev/port) or PL011 (through /dev/mem)
serial port and writes every line read from stdin to it as one log record.
It needs root.`,
		Example: `  # COM1 at 115200 8N1
  dmesg | sudo uartlog

  # PL011 on a board, colored, as warnings
  sudo uartlog --variant mmio --base 0x09000000 --color --as warn < notes.txt`,
		RunE: runForward,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindFlags(rootCmd)
}

// bindFlags registers the uartlog flags on cmd and resets their variables
// to the defaults.
func bindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./uartlog.yaml)")
	cmd.PersistentFlags().StringVar(&variantOverride, "variant", "", "UART variant: port or mmio")
	cmd.PersistentFlags().Uint16Var(&portOverride, "port", 0, "16550 base I/O port (default 0x3f8)")
	cmd.PersistentFlags().Uint64Var(&baseOverride, "base", 0, "PL011 physical base address")
	cmd.PersistentFlags().StringVar(&levelOverride, "level", "", "most verbose level emitted (error, warn, info, debug, trace)")
	cmd.PersistentFlags().StringVar(&targetOverride, "target", "", "target name printed before each message")
	cmd.PersistentFlags().BoolVar(&colorOverride, "color", false, "style error and warn lines")
	cmd.PersistentFlags().BoolVar(&timestamps, "timestamps", false, "prefix lines with nanoseconds since start")
	cmd.Flags().StringVar(&lineLevel, "as", "info", "level of the forwarded lines")
}

// setup loads the config, applies flag overrides and initializes the
// global console.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	applyOverrides(cmd, cfg)

	kc, err := consoleConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := klogger.Init(kc); err != nil {
		return nil, fmt.Errorf("failed to open UART: %w", err)
	}
	return cfg, nil
}

// applyOverrides copies the flags set on the command line over cfg.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if variantOverride != "" {
		cfg.Variant = variantOverride
	}
	if flags.Changed("port") {
		cfg.Port = portOverride
	}
	if flags.Changed("base") {
		cfg.Base = baseOverride
	}
	if levelOverride != "" {
		cfg.Level = levelOverride
	}
	if targetOverride != "" {
		cfg.Target = targetOverride
	}
	if colorOverride {
		cfg.Color = true
	}
}

// consoleConfig converts cfg and adds the --timestamps clock.
func consoleConfig(cfg *config.Config) (klogger.Config, error) {
	kc, err := cfg.Klogger()
	if err != nil {
		return kc, err
	}
	if timestamps {
		start := time.Now()
		kc.Clock = func() uint64 { return uint64(time.Since(start)) }
	}
	return kc, nil
}

// forwardLevel parses the --as level. Off has no slog equivalent that
// survives the round trip, so it is rejected.
func forwardLevel(s string) (klogger.Level, error) {
	l, err := klogger.ParseLevel(s)
	if err != nil {
		return l, err
	}
	if l == klogger.LevelOff {
		return l, fmt.Errorf("--as %q: forwarded lines need a level", s)
	}
	return l, nil
}

func runForward(cmd *cobra.Command, _ []string) error {
	as, err := forwardLevel(lineLevel)
	if err != nil {
		return err
	}
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	threshold := klogger.ToSlogLevel(klogger.Default().MaxLevel())
	logger := slog.New(klogger.NewHandler(&klogger.HandlerOptions{
		Level:  threshold,
		Target: cfg.Target,
	}))

	level := klogger.ToSlogLevel(as)
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		logger.Log(cmd.Context(), level, sc.Text())
	}
	return sc.Err()
}
