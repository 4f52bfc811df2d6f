// Package main provides the CLI entry point for scanfmt-go.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tkoide3/scanfmt-go/pkg/scanfmt"
	"github.com/tkoide3/scanfmt-go/pkg/scanfmt/config"
	"github.com/tkoide3/scanfmt-go/pkg/scanfmt/worksheet"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	sheetName  string
	outputPath string
	layoutPath string
	quiet      bool
	verbose    bool
)

func main() {
	// Optional .env for local defaults; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "scanfmt [input.xlsx]",
		Short: "Post-process merged vulnerability-scan worksheets",
		Long: `scanfmt-go cleans up a worksheet of merged vulnerability-scan findings:
it hides metadata columns, sorts and deduplicates findings, normalizes row
heights, and restricts the view to actionable severities.`,
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE:    run,
	}

	rootCmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to process (default: active sheet)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: save in place)")
	rootCmd.Flags().StringVar(&layoutPath, "layout", "", "Layout YAML file (env: SCANFMT_LAYOUT)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	log := newLogger()

	if layoutPath == "" {
		layoutPath = os.Getenv("SCANFMT_LAYOUT")
	}
	layout, err := config.Load(layoutPath)
	if err != nil {
		return fmt.Errorf("loading layout: %w", err)
	}

	ws, err := worksheet.OpenExcel(inputPath, sheetName)
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer ws.Close()

	report, err := scanfmt.ProcessWorksheet(ws, scanfmt.Options{
		Layout: layout,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("processing %s: %w", inputPath, err)
	}

	if outputPath != "" {
		err = ws.SaveAs(outputPath)
	} else {
		err = ws.Save()
	}
	if err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}

	log.Info().
		Str("sheet", ws.Sheet()).
		Int("duplicates_removed", report.DuplicatesRemoved).
		Int("rows_hidden", report.RowsHidden).
		Msg("done")
	return nil
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if v := os.Getenv("SCANFMT_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.ErrorLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
