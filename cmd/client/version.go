package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version and date",
	Args:  cobra.NoArgs,
	// version needs neither the config nor the server.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "GophNotes Client\nVersion: %s\nBuild Date: %s\n", orNA(version), orNA(buildDate))
	},
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
