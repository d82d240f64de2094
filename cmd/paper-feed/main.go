// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-feed CLI. Running the
// binary with no arguments performs one update of the paper store.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command. On its own it runs one fetch-and-merge.
var rootCmd = &cobra.Command{
	Use:   "paper-feed",
	Short: "Keep a capped JSON store of the newest arXiv papers",
	Long: `paper-feed fetches the newest arXiv submissions for a fixed set of
categories, merges them into a local JSON store without duplicating known
papers, keeps the first 100 entries, and writes the store back.

Run without arguments to perform one update. Subcommands schedule updates,
inspect or export the store, and maintain an optional SQLite search index.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runFetch,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-feed.yaml or $XDG_CONFIG_HOME/paper-feed/paper-feed.yaml)")
	bindFeedFlags(rootCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-feed")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "paper-feed"))
	}

	viper.SetEnvPrefix("PAPER_FEED")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
