package cli

import (
	"github.com/spf13/cobra"

	"github.com/michcald/klogger"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Print one record per level",
	Long:  `Prints a banner and one record at every level, useful to check wiring and colors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		klogger.Println("uartlog demo")
		log := klogger.Module(cfg.Target)
		log.Error("error record")
		log.Warn("warn record")
		log.Info("info record")
		log.Debug("debug record")
		log.Trace("trace record")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
