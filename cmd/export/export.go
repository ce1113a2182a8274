// Package export implements the export command, dumping the stored ledger
// to a CSV or YAML file.
package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"steam-ledger/cmd/root"
	"steam-ledger/internal/export"
	"steam-ledger/internal/logging"
	"steam-ledger/internal/store"
)

var (
	output string
	format string
)

// Cmd is the export command.
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the recorded transactions to CSV or YAML",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (required)")
	Cmd.Flags().StringVarP(&format, "format", "f", export.FormatCSV, "Output format: csv or yaml")
	_ = Cmd.MarkFlagRequired("output")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := root.Cfg
	log := root.Log

	ledger, err := store.Open(cfg.Ingest.Database, log)
	if err != nil {
		return err
	}
	defer ledger.Close()

	if err := ledger.EnsureSchema(); err != nil {
		return err
	}

	transactions, err := ledger.All()
	if err != nil {
		return err
	}
	if err := export.Write(transactions, output, format); err != nil {
		return err
	}

	log.Info(fmt.Sprintf("exported %d transactions", len(transactions)),
		logging.Field{Key: logging.FieldOutputFile, Value: output})
	return nil
}
