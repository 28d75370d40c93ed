// Package train handles online training of the transaction classifier
package train

import (
	"strings"

	"salio/sms-ledger/cmd/root"
	"salio/sms-ledger/internal/classifier"
	"salio/sms-ledger/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the train command
var Cmd = &cobra.Command{
	Use:   "train",
	Short: "Train the classifier on a single corrected example",
	Long: `Train applies one gradient step to the classifier using a transaction message
and the category it should have been assigned, then persists the updated model.

Example:
  sms-ledger train -m "XYZ123 Confirmed. Ksh500.00 paid to ACME STORE ..." -c FOOD`,
	Run: trainFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.MessageText, "message", "m", "", "Transaction message text")
	Cmd.Flags().StringVarP(&root.CategoryName, "category", "c", "", "Correct category for the message")
	_ = Cmd.MarkFlagRequired("message")
	_ = Cmd.MarkFlagRequired("category")
}

func trainFunc(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	s, err := root.OpenStore()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open store")
	}
	defer s.Close()

	c, err := root.NewClassifier(ctx, s)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to initialize classifier")
	}

	category := strings.TrimPrefix(root.CategoryName, classifier.PredictionPrefix)
	if err := c.Train(ctx, root.MessageText, category); err != nil {
		root.Log.WithError(err).Fatal("Training failed")
	}

	root.Log.Info("Model updated", logging.Field{Key: "category", Value: category})
}
