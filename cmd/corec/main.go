package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"corec/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "corec",
	Short: "corec analysis and lowering core",
	Long:  `corec resolves, typechecks, bound-checks, and lowers a pre-parsed syntax tree to MIR.`,
}

// main configures the root CLI command and executes it, exiting with
// status 1 on failure.
func main() {
	rootCmd.Version = version.Version
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 256, "maximum diagnostics to retain per file")
	rootCmd.PersistentFlags().Int("jobs", 0, "max parallel lowering workers (0=auto)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
