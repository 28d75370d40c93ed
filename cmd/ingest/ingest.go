// Package ingest handles importing transaction messages from backup files
package ingest

import (
	"salio/sms-ledger/cmd/root"
	"salio/sms-ledger/internal/importer"
	"salio/sms-ledger/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import <backup.xml>",
	Short: "Import new transaction messages from an SMS backup file",
	Long: `Import reads an SMS backup XML file, keeps only messages from the configured
provider address that are newer than the last stored transaction, parses and
categorizes them and appends them to the ledger.

Example:
  sms-ledger import sms-backup.xml`,
	Args: cobra.ExactArgs(1),
	Run:  ingestFunc,
}

func ingestFunc(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	backupPath := args[0]

	s, err := root.OpenStore()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open store")
	}
	defer s.Close()

	c, err := root.NewClassifier(ctx, s)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to initialize classifier")
	}

	coordinator := importer.New(s, c, root.Cfg.Provider.Address, root.Log)
	source := importer.NewBackupSource(backupPath, root.Log)

	count, err := coordinator.ImportNew(ctx, source)
	if err != nil {
		root.Log.WithError(err).Fatal("Import failed")
	}

	root.Log.Info("Import complete",
		logging.Field{Key: "file", Value: backupPath},
		logging.Field{Key: "imported", Value: count})
}
