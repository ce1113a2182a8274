// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Email struct {
		Address    string `mapstructure:"address" yaml:"address"`
		Server     string `mapstructure:"server" yaml:"server"`
		Folder     string `mapstructure:"folder" yaml:"folder"`
		FromFilter string `mapstructure:"from_filter" yaml:"from_filter"`
		SecretID   string `mapstructure:"secret_id" yaml:"secret_id"`
	} `mapstructure:"email" yaml:"email"`

	Ingest struct {
		Threads        int    `mapstructure:"threads" yaml:"threads"`
		Database       string `mapstructure:"database" yaml:"database"`
		LocalFolder    string `mapstructure:"local_folder" yaml:"local_folder"`
		EmailsPerBatch int    `mapstructure:"emails_per_batch" yaml:"emails_per_batch"`
		MarkSeen       bool   `mapstructure:"mark_seen" yaml:"mark_seen"`
	} `mapstructure:"ingest" yaml:"ingest"`
}

// LoadEnv loads environment variables from a .env file if one exists.
// Missing files are not an error.
func LoadEnv() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// Initialize loads configuration with hierarchical precedence: defaults,
// then an optional config file, then STEAM_* environment variables. An
// explicit configFile path overrides the search locations.
func Initialize(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.steam-ledger")
		v.AddConfigPath(".steam-ledger")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STEAM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configFile != "" {
				return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("email.folder", "INBOX")
	v.SetDefault("email.from_filter", "Steam Store")
	v.SetDefault("email.secret_id", "steam-ledger")

	v.SetDefault("ingest.threads", 4)
	v.SetDefault("ingest.database", "steam-ledger.db")
	v.SetDefault("ingest.emails_per_batch", 100)
	v.SetDefault("ingest.mark_seen", false)
}

func validate(config *Config) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[config.Log.Level] {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}
	if config.Ingest.Threads < 1 {
		return fmt.Errorf("ingest.threads must be at least 1, got %d", config.Ingest.Threads)
	}
	if config.Ingest.Database == "" {
		return fmt.Errorf("ingest.database must be set")
	}
	// Remote ingestion needs a mailbox; local-folder runs do not.
	if config.Ingest.LocalFolder == "" {
		if config.Email.Address == "" || config.Email.Server == "" {
			return fmt.Errorf("email.address and email.server must be set unless ingest.local_folder is configured")
		}
	}
	return nil
}
