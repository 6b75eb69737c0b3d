package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"corec/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show corec build fingerprint",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := version.Version
		if v == "" {
			v = "dev"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "corec %s\n", v)
		if version.GitCommit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", version.BuildDate)
		}
		return nil
	},
}
