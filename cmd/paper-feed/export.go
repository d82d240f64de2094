// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-feed/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the store to stdout as YAML or JSON",
	Long: `Export reads the JSON store and writes it to stdout, either as YAML
(default) or re-encoded JSON. A missing or unreadable store is an error.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := feedConfig(viper.GetViper())
	if err != nil {
		return err
	}

	s, err := loadStore(cmd, cfg.StorePath)
	if err != nil {
		return err
	}

	switch format {
	case "yaml", "":
		return store.ExportYAML(s, cmd.OutOrStdout())
	case "json":
		return store.ExportJSON(s, cmd.OutOrStdout())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}
