// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cardio-medqa CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/cardio-medqa/internal/config"
	"github.com/pdiddy/cardio-medqa/internal/logging"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// configErr holds a config file read failure from initConfig. It is
// reported when a command runs so --help still works.
var configErr error

// flushLogs syncs the installed logger.
var flushLogs = func() {}

// rootCmd is the base command for the cardio-medqa CLI.
var rootCmd = &cobra.Command{
	Use:   "cardio-medqa",
	Short: "Build a cardiology evaluation subset from the MEDQA corpus",
	Long: `cardio-medqa extracts heart-disease questions from the MEDQA corpus and
converts them into evaluation-ready JSON-lines.

  extract   corpus -> heart_disease.jsonl, heart_disease_all.jsonl
  convert   heart_disease.jsonl -> heart_disease_mcq.jsonl, cardio_eval.jsonl
  run       extract then convert
  catalog   index and browse the accepted questions in SQLite

Settings come from flags, CARDIO_MEDQA_* environment variables, and
cardio-medqa.yaml, in that order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		flush, err := logging.Install(types.LoggingConfig{
			Level:  viper.GetString(config.KeyLoggingLevel),
			Format: viper.GetString(config.KeyLoggingFormat),
		}, zapcore.Lock(os.Stderr))
		if err != nil {
			return err
		}
		flushLogs = flush
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLogs()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	d := config.Defaults()
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cardio-medqa.yaml or ~/.config/cardio-medqa/cardio-medqa.yaml)")
	rootCmd.PersistentFlags().String("log-level", d.Logging.Level, "diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", d.Logging.Format, "diagnostic log format: console or json")

	_ = viper.BindPFlag(config.KeyLoggingLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLoggingFormat, rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(config.Name)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", config.Name))
		}
	}

	config.SetupEnv(viper.GetViper())

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	case errors.As(err, &notFound) && cfgFile == "":
	default:
		configErr = fmt.Errorf("reading config file: %w", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
