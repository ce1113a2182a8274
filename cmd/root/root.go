// Package root contains the root command for the application.
package root

import (
	"github.com/spf13/cobra"

	"steam-ledger/internal/config"
	"steam-ledger/internal/logging"
)

var (
	// ConfigFile is the optional explicit config file path.
	ConfigFile string

	// Cfg holds the loaded configuration after PersistentPreRunE.
	Cfg *config.Config

	// Log is the shared logger instance for commands.
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "steam-ledger",
		Short: "Ingest Community Market confirmation emails into a local transaction ledger.",
		Long: `steam-ledger reads market purchase and sale confirmation emails from a
mailbox (or a local folder of message files), extracts the confirmed
transactions, and records them idempotently in a SQLite ledger. Repeated
runs over the same messages never double-count a trade.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
)

func init() {
	Cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()

		cfg, err := config.Initialize(ConfigFile)
		if err != nil {
			// A bare invocation just prints help; a missing or
			// incomplete config should not block that.
			if cmd == Cmd {
				return nil
			}
			return err
		}
		Cfg = cfg
		Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
		return nil
	}
}

// Init registers the root command's persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVarP(&ConfigFile, "config", "c", "", "Config file (default: config.yaml in ., .steam-ledger or $HOME/.steam-ledger)")
	Cmd.SilenceUsage = true
}
