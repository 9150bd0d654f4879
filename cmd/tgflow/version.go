package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tgflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tgflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tgflow version %s\n", strings.TrimSpace(tgflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
