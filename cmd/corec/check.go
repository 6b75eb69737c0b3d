package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"corec/internal/config"
	"corec/internal/diagfmt"
	"corec/internal/driver"
	"corec/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check <fixture.json>...",
	Short: "Run the core pipeline over one or more JSON-encoded syntax tree fixtures",
	Long: `check resolves, typechecks, bound-checks, and MIR-lowers each fixture,
printing its diagnostics. Each fixture is treated as an independent
compilation unit; only the string interner is shared across them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("disk-cache", false, "enable the on-disk incremental cache")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	cfg, err := config.LoadFromDir(cwd)
	if err != nil {
		return fmt.Errorf("failed to load corec.toml: %w", err)
	}
	if !cmd.Flags().Changed("max-diagnostics") && cfg.Diagnostics.Capacity > 0 {
		maxDiagnostics = cfg.Diagnostics.Capacity
	}

	var cache *driver.DiskCache
	if enableDiskCache {
		cache, err = driver.OpenDiskCache(cfg.Cache.Dir)
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
	}

	strings := source.NewInterner()
	fileSet := source.NewFileSet()
	result, err := driver.Compile(cmd.Context(), strings, fileSet, args, driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		Cache:          cache,
	})
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	pathMode := cfg.PathMode()
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout) && cfg.Diagnostics.Color)

	switch format {
	case "pretty":
		for i, fr := range result.Files {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "== %s ==\n", fr.Path)
			diagfmt.Pretty(os.Stdout, fr.Bag, fileSet, diagfmt.PrettyOpts{
				Color:     useColor,
				Context:   2,
				PathMode:  pathMode,
				ShowNotes: withNotes,
			})
		}
	case "json":
		if err := diagfmt.JSON(os.Stdout, result.Bag, fileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}

	if result.Bag.HasErrors() {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
