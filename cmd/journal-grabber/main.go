// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the journal-grabber CLI. Profiles,
// manual runs, catalog queries, and the polling daemon are subcommands.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/journal-grabber/internal/logging"
	"github.com/pdiddy/journal-grabber/internal/service"
	"github.com/pdiddy/journal-grabber/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the journal-grabber CLI.
var rootCmd = &cobra.Command{
	Use:   "journal-grabber",
	Short: "Profile-driven arXiv polling and PDF collection",
	Long: `journal-grabber polls arXiv on a per-profile schedule, downloads new
papers as PDFs, and keeps a deduplicated catalog of everything collected.

Profiles pair a set of topics (arXiv categories and free-text keywords)
with a polling frequency and a download directory. The serve command runs
the polling daemon; profile, run, and catalog manage and inspect state.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./journal-grabber.yaml or ~/.config/journal-grabber/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "catalog database path (overrides config)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("journal-grabber")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "journal-grabber"))
		}
	}

	viper.SetEnvPrefix("JOURNAL_GRABBER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	if viper.IsSet("storage.database_path") {
		cfg.Storage.DatabasePath = viper.GetString("storage.database_path")
	}
	if db, _ := rootCmd.PersistentFlags().GetString("db"); db != "" {
		cfg.Storage.DatabasePath = db
	}

	if viper.IsSet("search.max_results") {
		cfg.Search.MaxResults = viper.GetInt("search.max_results")
	}
	if viper.IsSet("search.window_days") {
		cfg.Search.WindowDays = viper.GetInt("search.window_days")
	}
	if viper.IsSet("search.api_delay") {
		cfg.Search.APIDelay = viper.GetDuration("search.api_delay")
	}
	if viper.IsSet("search.timeout") {
		cfg.Search.Timeout = viper.GetDuration("search.timeout")
	}

	if viper.IsSet("download.max_size_mb") {
		cfg.Download.MaxSizeMB = viper.GetInt("download.max_size_mb")
	}
	if viper.IsSet("download.default_dir") {
		cfg.Download.DefaultDir = viper.GetString("download.default_dir")
	}
	if viper.IsSet("download.timeout") {
		cfg.Download.Timeout = viper.GetDuration("download.timeout")
	}

	if viper.IsSet("scheduler.poll_interval") {
		cfg.Scheduler.PollInterval = viper.GetDuration("scheduler.poll_interval")
	}
	if viper.IsSet("scheduler.min_frequency_hours") {
		cfg.Scheduler.MinFrequencyHours = viper.GetInt("scheduler.min_frequency_hours")
	}
	if viper.IsSet("scheduler.max_frequency_hours") {
		cfg.Scheduler.MaxFrequencyHours = viper.GetInt("scheduler.max_frequency_hours")
	}

	cfg.Zotero.Enabled = viper.GetBool("zotero.enabled")
	if viper.IsSet("zotero.api_key") {
		cfg.Zotero.APIKey = viper.GetString("zotero.api_key")
	}
	if viper.IsSet("zotero.user_id") {
		cfg.Zotero.UserID = viper.GetString("zotero.user_id")
	}
	if viper.IsSet("zotero.group_id") {
		cfg.Zotero.GroupID = viper.GetString("zotero.group_id")
	}

	if viper.IsSet("logging.level") {
		cfg.Logging.Level = viper.GetString("logging.level")
	}
	return cfg
}

// newService builds the logger and the service from the loaded config.
func newService() (*service.Service, *zap.Logger, error) {
	cfg := loadConfig()

	log, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}

	svc, err := service.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return svc, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
