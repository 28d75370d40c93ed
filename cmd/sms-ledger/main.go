// Package main provides the entry point for the sms-ledger CLI application.
package main

import (
	"os"

	exportcmd "salio/sms-ledger/cmd/export"
	"salio/sms-ledger/cmd/ingest"
	"salio/sms-ledger/cmd/predict"
	reportcmd "salio/sms-ledger/cmd/report"
	"salio/sms-ledger/cmd/root"
	"salio/sms-ledger/cmd/train"
)

func main() {
	root.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(train.Cmd)
	root.Cmd.AddCommand(predict.Cmd)
	root.Cmd.AddCommand(reportcmd.Cmd)
	root.Cmd.AddCommand(exportcmd.Cmd)

	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
