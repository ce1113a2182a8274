// Package ingest implements the ingest command, which runs the fetch,
// parse and commit pipeline once.
package ingest

import (
	"github.com/spf13/cobra"

	"steam-ledger/cmd/root"
	"steam-ledger/internal/config"
	ingestion "steam-ledger/internal/ingest"
	"steam-ledger/internal/logging"
	"steam-ledger/internal/mailsource"
	"steam-ledger/internal/store"
)

var (
	update      bool
	markSeen    bool
	localFolder string
)

// Cmd is the ingest command.
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch confirmation emails and record their transactions",
	Long: `Fetch market confirmation emails, extract the confirmed transactions and
commit them to the ledger. By default every matching message is scanned;
with --update only messages newer than the latest stored transaction date
are listed.`,
	RunE: run,
}

func init() {
	Cmd.Flags().BoolVarP(&update, "update", "u", false, "Only scan messages after the last recorded transaction date")
	Cmd.Flags().BoolVarP(&markSeen, "mark-seen", "m", false, "Mark fetched emails as seen on the server")
	Cmd.Flags().StringVar(&localFolder, "local-folder", "", "Read message files from this directory instead of a mailbox")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := root.Cfg
	log := root.Log

	source := newSource(cfg, log)
	defer source.Close()

	ledger, err := store.Open(cfg.Ingest.Database, log)
	if err != nil {
		return err
	}
	defer ledger.Close()

	orchestrator := ingestion.New(source, ledger, ingestion.Options{
		Incremental: update,
		BatchSize:   cfg.Ingest.EmailsPerBatch,
		Workers:     cfg.Ingest.Threads,
	}, log)

	summary, err := orchestrator.Run()
	if err != nil {
		return err
	}

	log.Info("ingestion complete",
		logging.Field{Key: logging.FieldBatch, Value: summary.Batches},
		logging.Field{Key: logging.FieldCount, Value: summary.Messages},
		logging.Field{Key: logging.FieldAdded, Value: summary.Added},
		logging.Field{Key: logging.FieldDuplicates, Value: summary.Duplicates})
	return nil
}

// newSource picks the local directory source when one is configured (flag
// overriding config), otherwise the IMAP mailbox.
func newSource(cfg *config.Config, log logging.Logger) mailsource.Source {
	dir := localFolder
	if dir == "" {
		dir = cfg.Ingest.LocalFolder
	}
	if dir != "" {
		return mailsource.NewLocal(dir, log)
	}

	return mailsource.NewIMAP(mailsource.IMAPOptions{
		Address:    cfg.Email.Address,
		Server:     cfg.Email.Server,
		Folder:     cfg.Email.Folder,
		FromFilter: cfg.Email.FromFilter,
		SecretID:   cfg.Email.SecretID,
		MarkSeen:   markSeen || cfg.Ingest.MarkSeen,
	}, config.EnvCredentials{}, log)
}
