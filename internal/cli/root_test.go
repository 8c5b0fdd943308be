package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michcald/klogger"
	"github.com/michcald/klogger/internal/config"
)

// newTestCommand returns a command carrying the uartlog flags, parsed from
// args. The flag variables are reset to their defaults after the test.
func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "uartlog"}
	bindFlags(cmd)
	t.Cleanup(func() { bindFlags(&cobra.Command{Use: "reset"}) })
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyOverridesKeepsConfigWithoutFlags(t *testing.T) {
	cmd := newTestCommand(t)
	cfg := config.DefaultConfig()
	cfg.Port = 0x2F8
	cfg.Base = 0x1000

	applyOverrides(cmd, cfg)

	want := config.DefaultConfig()
	want.Port = 0x2F8
	want.Base = 0x1000
	assert.Equal(t, want, cfg)
}

func TestApplyOverridesFlagsWin(t *testing.T) {
	cmd := newTestCommand(t,
		"--variant", "mmio",
		"--base", "0x09000000",
		"--level", "debug",
		"--target", "dmesg",
		"--color",
	)
	cfg := config.DefaultConfig()

	applyOverrides(cmd, cfg)

	assert.Equal(t, "mmio", cfg.Variant)
	assert.Equal(t, uint64(0x09000000), cfg.Base)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "dmesg", cfg.Target)
	assert.True(t, cfg.Color)
	assert.Equal(t, klogger.COM1, cfg.Port)
}

func TestApplyOverridesExplicitZeroPort(t *testing.T) {
	cmd := newTestCommand(t, "--port", "0")
	cfg := config.DefaultConfig()

	applyOverrides(cmd, cfg)

	assert.Zero(t, cfg.Port)
}

func TestConsoleConfigTimestamps(t *testing.T) {
	newTestCommand(t)
	kc, err := consoleConfig(config.DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, kc.Clock)

	newTestCommand(t, "--timestamps")
	kc, err = consoleConfig(config.DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, kc.Clock)
	first := kc.Clock()
	assert.GreaterOrEqual(t, kc.Clock(), first)
}

func TestConsoleConfigRejectsBadLevel(t *testing.T) {
	cmd := newTestCommand(t, "--level", "loud")
	cfg := config.DefaultConfig()
	applyOverrides(cmd, cfg)

	_, err := consoleConfig(cfg)
	assert.ErrorIs(t, err, klogger.ErrUnknownLevel)
}

func TestForwardLevel(t *testing.T) {
	l, err := forwardLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, klogger.LevelWarn, l)

	_, err = forwardLevel("off")
	assert.ErrorContains(t, err, "need a level")

	_, err = forwardLevel("loud")
	assert.ErrorIs(t, err, klogger.ErrUnknownLevel)
}
