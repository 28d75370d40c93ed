// Package predict handles one-off category predictions for messages
package predict

import (
	"fmt"
	"sort"

	"salio/sms-ledger/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the predict command
var Cmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the category of a transaction message",
	Long: `Predict parses a transaction message and prints the category the current model
assigns to it, together with the per-category probabilities.

Example:
  sms-ledger predict -m "XYZ123 Confirmed. Ksh500.00 paid to ACME STORE ..."`,
	Run: predictFunc,
}

var showProbabilities bool

func init() {
	Cmd.Flags().StringVarP(&root.MessageText, "message", "m", "", "Transaction message text")
	Cmd.Flags().BoolVarP(&showProbabilities, "probabilities", "p", false, "Print per-category probabilities")
	_ = Cmd.MarkFlagRequired("message")
}

func predictFunc(cmd *cobra.Command, args []string) {
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

	category, err := c.Predict(root.MessageText)
	if err != nil {
		root.Log.WithError(err).Fatal("Prediction failed")
	}
	fmt.Println(category)

	if showProbabilities {
		probabilities, err := c.Probabilities(root.MessageText)
		if err != nil {
			root.Log.WithError(err).Fatal("Failed to compute probabilities")
		}

		names := make([]string, 0, len(probabilities))
		for name := range probabilities {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			return probabilities[names[i]] > probabilities[names[j]]
		})
		for _, name := range names {
			fmt.Printf("%-12s %.4f\n", name, probabilities[name])
		}
	}
}
