package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "servicecore",
	Short:        "Run the auction catalogue and search services",
	Long:         `Serve the auction or search API over HTTP with a cache-aside layer in front of the store.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd)
}

var configPath string
