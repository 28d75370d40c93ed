// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"salio/sms-ledger/internal/classifier"
	"salio/sms-ledger/internal/config"
	"salio/sms-ledger/internal/logging"
	"salio/sms-ledger/internal/store"

	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cfg holds the loaded application configuration
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "sms-ledger",
		Short: "A CLI tool to import, classify and report on mobile-money SMS transactions.",
		Long: `sms-ledger parses M-PESA style transaction messages into structured records,
categorizes them with an online-trainable classifier and answers balance and
yearly spending questions from the resulting ledger.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to sms-ledger!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()

			cfg, err := config.Get()
			if err != nil {
				Log.WithError(err).Fatal("Failed to load configuration")
			}
			Cfg = cfg
			Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
		},
	}

	// Common flags shared by the message-oriented commands
	MessageText  string
	CategoryName string
	OutputFile   string
	ReportYear   int
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&OutputFile, "output", "o", "", "Output file")
}

// OpenStore opens the transaction store named by the configuration.
func OpenStore() (*store.Store, error) {
	s, err := store.Open(Cfg.Database.Path, Log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", Cfg.Database.Path, err)
	}
	return s, nil
}

// NewClassifier builds the classifier on top of the store's key-value table
// and loads or seeds its model state.
func NewClassifier(ctx context.Context, s *store.Store) (*classifier.Classifier, error) {
	c := classifier.New(s, Cfg.Classifier.LearningRate, Log)
	if err := c.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}
	return c, nil
}
