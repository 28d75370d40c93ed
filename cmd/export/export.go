// Package export handles writing the ledger out as CSV
package export

import (
	"salio/sms-ledger/cmd/root"
	csvexport "salio/sms-ledger/internal/export"
	"salio/sms-ledger/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored transactions to a CSV file",
	Long: `Export writes every stored transaction record to a CSV file in insertion
order. Raw message bodies are not included in the output.

Example:
  sms-ledger export -o transactions.csv`,
	Run: exportFunc,
}

func exportFunc(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if root.OutputFile == "" {
		root.Log.Fatal("Output file is required, use -o")
	}

	s, err := root.OpenStore()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open store")
	}
	defer s.Close()

	records, err := s.All(ctx)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to read transactions")
	}

	delimiter := []rune(root.Cfg.Export.Delimiter)[0]
	if err := csvexport.WriteRecords(records, root.OutputFile, delimiter, root.Log); err != nil {
		root.Log.WithError(err).Fatal("Export failed")
	}

	root.Log.Info("Export complete",
		logging.Field{Key: "file", Value: root.OutputFile},
		logging.Field{Key: "records", Value: len(records)})
}
