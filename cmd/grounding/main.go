// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the grounding CLI, which asks a
// Gemini model grounded questions and renders the answers as Markdown with
// footnoted sources.
package main

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grounding/internal/logcfg"
	"github.com/pdiddy/grounding/internal/secrets"
	"github.com/pdiddy/grounding/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logCloser releases the log file opened by the root pre-run.
var logCloser io.Closer

// secretDefault returns fallback if it is set, or the secret value for key otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the grounding CLI.
var rootCmd = &cobra.Command{
	Use:   "grounding",
	Short: "Grounded Gemini answers with footnoted sources",
	Long: `grounding sends a prompt to a Gemini model with Google Search (or a
Vertex AI Search datastore) grounding enabled and prints the answer as
Markdown: each grounded span is followed by footnote markers, and a
"Grounding Sources" section lists the queries and the cited pages.

Answers are recorded in a local history that can be listed, searched,
and exported. Saved transcripts can be re-rendered offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := logcfg.Configure(types.LogConfig{
			Level: viper.GetString("log.level"),
			File:  viper.GetString("log.file"),
		}, os.Stderr)
		if err != nil {
			return err
		}
		logCloser = closer

		if cfg := viper.ConfigFileUsed(); cfg != "" {
			logrus.Debugf("using config file %s", cfg)
		}

		envFiles, err := secrets.LoadEnv(".env")
		if err != nil {
			return err
		}
		if len(envFiles) > 0 {
			logrus.Debugf("loaded environment from %v", envFiles)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logrus.Debugf("loaded secrets: %v", keys)
		}
		if set, err := secrets.ExportCredentials(s); err != nil {
			return err
		} else if set {
			logrus.Debug("GOOGLE_APPLICATION_CREDENTIALS set from .secrets/")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./grounding.yaml or ~/.config/grounding/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file (rotated)")
	rootCmd.PersistentFlags().String("archive-dir", defaultArchiveDir(), "directory holding the answer history database")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("archive.dir", rootCmd.PersistentFlags().Lookup("archive-dir"))
	viper.SetDefault("archive.max_results", 20)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grounding")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grounding"))
		}
	}

	viper.SetEnvPrefix("GROUNDING")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; flags and environment still apply.
	viper.ReadInConfig()
}

func defaultArchiveDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "grounding")
	}
	return ".grounding"
}

// archiveConfig reads the history settings from viper.
func archiveConfig() types.ArchiveConfig {
	return types.ArchiveConfig{
		Dir:        viper.GetString("archive.dir"),
		MaxResults: viper.GetInt("archive.max_results"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
