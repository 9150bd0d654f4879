package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tgflow",
	Short: "tgflow runs declarative Telegram bot conversations",
	Long:  `tgflow hosts multi-step bot conversations described as flows of fields and widgets, with browse, search and settings controllers on top.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "tgflow.yaml", "Path to the configuration file")
}
