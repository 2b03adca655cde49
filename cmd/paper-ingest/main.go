// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-ingest CLI. Each subcommand
// is a thin shell over the internal packages: import runs the ingestion
// pipeline, classify shows how an input would be treated.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paper-ingest CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-ingest",
	Short: "Import papers into a content-addressed store",
	Long: `paper-ingest turns URLs, DOIs, arXiv identifiers, and local PDF files into
validated, deduplicated documents with merged metadata. Documents are stored
under <data-dir>/files/<sha256>.pdf and each import prints a metadata draft.

Configuration comes from paper-ingest.yaml (current directory or
~/.config/paper-ingest/), PAPER_INGEST_* environment variables, and flags.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-ingest.yaml or ~/.config/paper-ingest/paper-ingest.yaml)")
	pf.String("data-dir", "", "application data root; documents are stored in <data-dir>/files")
	pf.String("log-mode", "", "logger preset: development, production, or off")
	pf.BoolP("verbose", "v", false, "log pipeline state transitions")

	bindFlag("data_dir", pf.Lookup("data-dir"))
	bindFlag("log_mode", pf.Lookup("log-mode"))
	setDefaults(viper.GetViper())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-ingest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-ingest"))
		}
	}

	viper.SetEnvPrefix("PAPER_INGEST")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
