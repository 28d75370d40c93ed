// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	Provider struct {
		// Address is the sender address of the mobile-money provider whose
		// messages are imported.
		Address string `mapstructure:"address" yaml:"address"`
	} `mapstructure:"provider" yaml:"provider"`

	Classifier struct {
		LearningRate float64 `mapstructure:"learning_rate" yaml:"learning_rate"`
	} `mapstructure:"classifier" yaml:"classifier"`

	Export struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"export" yaml:"export"`
}

var (
	envOnce    sync.Once
	configOnce sync.Once
	global     *Config
	globalErr  error
)

// LoadEnv loads environment variables from a .env file if one exists.
// Missing files are not an error.
func LoadEnv() {
	envOnce.Do(func() {
		if _, err := os.Stat(".env"); err == nil {
			_ = godotenv.Load(".env")
		}
	})
}

// Load initializes the configuration with hierarchical loading:
// defaults, then an optional config file, then environment variables.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.sms-ledger")
	v.AddConfigPath(".sms-ledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SMS_LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A malformed config file should not silently fall back to defaults.
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Get returns the process-wide configuration, loading it on first use.
func Get() (*Config, error) {
	configOnce.Do(func() {
		LoadEnv()
		global, globalErr = Load()
	})
	return global, globalErr
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.path", "salio.db")

	v.SetDefault("provider.address", "MPESA")

	v.SetDefault("classifier.learning_rate", 0.01)

	v.SetDefault("export.delimiter", ",")
}

// validateConfig validates the configuration values.
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if config.Provider.Address == "" {
		return fmt.Errorf("provider.address must not be empty")
	}

	if config.Classifier.LearningRate <= 0 || config.Classifier.LearningRate >= 1 {
		return fmt.Errorf("classifier.learning_rate must be in (0, 1), got: %f", config.Classifier.LearningRate)
	}

	if len(config.Export.Delimiter) != 1 {
		return fmt.Errorf("export delimiter must be a single character, got: %s", config.Export.Delimiter)
	}

	return nil
}
