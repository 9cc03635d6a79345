// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cardio-medqa/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration after applying defaults, the config file,
and CARDIO_MEDQA_* environment variables. The output is a valid
cardio-medqa.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return config.WriteYAML(os.Stdout, cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
