// Package main provides the CLI entry point for formulatrace.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/output"
)

var (
	outputPath   string
	pretty       bool
	mode         string
	resultsSheet string
	maxPending   int
	workers      int
	configPath   string
	outDir       string
	verbose      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "formulatrace [input.xlsx]",
		Short: "Trace the formula network of an Excel workbook",
		Long: `formulatrace finds the input and output cells of an Excel workbook,
traces every output formula down to its inputs and synthesizes one
expression per output. The report is written as JSON.`,
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	flags.BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	flags.StringVar(&mode, "mode", "standard", "Analysis mode: light, standard, verbose")
	flags.StringVar(&resultsSheet, "results-sheet", "", "Sheet holding the output cells (default: 测算结果输出)")
	flags.IntVar(&maxPending, "max-pending", 0, "Pending queue bound per trace (default: 3000)")
	flags.IntVar(&workers, "workers", 1, "Number of outputs traced in parallel")
	flags.StringVar(&configPath, "config", "", "TOML configuration file")
	flags.StringVar(&outDir, "out-dir", "", "Directory for the report, text listings and tree files")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts, err := buildOptions(cmd.Flags())
	if err != nil {
		return err
	}
	opts.Logger = logger

	report, err := formulatrace.Analyze(inputPath, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	jsonData, err := output.ToJSON(report, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if outDir == "" {
		fmt.Println(string(jsonData))
	}

	if outDir != "" {
		if err := output.WriteDir(outDir, report, pretty); err != nil {
			return fmt.Errorf("failed to write output directory: %w", err)
		}
	}

	if outputPath != "" || outDir != "" {
		output.PrintSummary(cmd.ErrOrStderr(), report)
	}
	return nil
}

// buildOptions layers the configuration file over the defaults, then the
// flags the user set explicitly over both.
func buildOptions(flags *pflag.FlagSet) (formulatrace.Options, error) {
	opts := formulatrace.DefaultOptions()
	if configPath != "" {
		loaded, err := formulatrace.LoadOptionsFile(configPath)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	if flags.Changed("mode") || configPath == "" {
		m, err := formulatrace.ParseMode(mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = m
	}
	if flags.Changed("results-sheet") {
		opts.ResultsSheet = resultsSheet
	}
	if flags.Changed("max-pending") {
		if maxPending < 1 {
			return opts, fmt.Errorf("invalid --max-pending: %d (must be positive)", maxPending)
		}
		opts.MaxPending = maxPending
	}
	if flags.Changed("workers") {
		if workers < 1 {
			return opts, fmt.Errorf("invalid --workers: %d (must be positive)", workers)
		}
		opts.Workers = workers
	}
	return opts, nil
}
