package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"energyreport/internal/apperr"
	"energyreport/internal/config"
	"energyreport/internal/dataset"
	"energyreport/internal/logging"
	"energyreport/internal/report"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := execute(ctx, newRootCmd(os.Stdout, os.Stderr), os.Stderr); err != nil {
		cancel()
		os.Exit(1)
	}
}

// reportedError marks an error that has already been written to stderr.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// execute runs cmd and prints errors that no command reported itself, such
// as unknown flags or missing required flags.
func execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) error {
	err := cmd.ExecuteContext(ctx)
	var reported reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return err
}

type options struct {
	configPath string

	input     string
	sheet     string
	output    string
	workbook  string
	markdown  string
	panelsDir string
	focusYear int
	author    string
	studentID string
	logLevel  string
	logFormat string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "energyreport",
		Short:         "Render the electricity production and urbanisation report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVarP(&opts.input, "input", "i", "", "input table (.csv or .xlsx)")
	root.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "worksheet to read from an .xlsx input")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (text, json)")

	root.AddCommand(
		newRenderCmd(opts),
		newExtractCmd(opts),
	)
	return root
}

func newRenderCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the 2x2 chart report",
		Long: `Load the indicator table, render the bar, pie, line and horizontal bar
panels and assemble them into one image.

Settings come from defaults, then the --config file, then REPORT_* environment
variables, then flags. A .env file in the working directory is read first.

Example: energyreport render -i Electricity.csv -o report.png --workbook tables.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, opts)
			if err != nil {
				return err
			}

			res, err := report.Run(cmd.Context(), cfg, logger)
			if err != nil {
				return logError(logger, "report failed", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", res.Output)
			if res.Workbook != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", res.Workbook)
			}
			if res.Markdown != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Digest written to %s\n", res.Markdown)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "report image path (png, jpg, tif, svg, pdf, eps)")
	cmd.Flags().StringVar(&opts.workbook, "workbook", "", "also write the derived tables to this .xlsx file")
	cmd.Flags().StringVar(&opts.markdown, "markdown", "", "also write a markdown digest of the series to this file")
	cmd.Flags().StringVar(&opts.panelsDir, "panels-dir", "", "also save each panel as a PNG in this directory")
	cmd.Flags().IntVar(&opts.focusYear, "focus-year", 0, "year drawn by the pie and horizontal bar panels")
	cmd.Flags().StringVar(&opts.author, "author", "", "author name printed under the commentary")
	cmd.Flags().StringVar(&opts.studentID, "student-id", "", "student id printed under the author name")

	return cmd
}

func newExtractCmd(opts *options) *cobra.Command {
	var indicator string
	var countries []string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the year indexed table of one indicator as CSV",
		Long: `Extract one indicator for the configured countries and print it with one
row per year and one column per country.

Example: energyreport extract -i Electricity.csv --indicator "Urban population (% of total population)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("countries") {
				cfg.Countries = countries
			}

			raw, err := dataset.Load(cfg.Input, cfg.Sheet)
			if err != nil {
				return logError(logger, "failed to load input", err)
			}
			wide, years := dataset.Extract(raw, indicator, cfg.Countries)
			if wide.Len() == 0 {
				logger.Warn("indicator has no rows for the selected countries", slog.String("indicator", indicator))
			} else if missing := dataset.MissingCountries(cfg.Countries, wide); len(missing) > 0 {
				logger.Warn("countries missing from indicator", slog.Any("countries", missing))
			}
			if err := years.WriteCSV(cmd.OutOrStdout()); err != nil {
				return logError(logger, "failed to write table", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indicator, "indicator", "", "series name to extract (required)")
	cmd.Flags().StringSliceVar(&countries, "countries", nil, "countries to keep (default: configured list)")
	_ = cmd.MarkFlagRequired("indicator")

	return cmd
}

// setup loads the configuration, applies the flags that were set on the
// command line and builds the logger.
func setup(cmd *cobra.Command, opts *options) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, configError(cmd, err)
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("input", func() { cfg.Input = opts.input })
	set("sheet", func() { cfg.Sheet = opts.sheet })
	set("log-level", func() { cfg.Logging.Level = opts.logLevel })
	set("log-format", func() { cfg.Logging.Format = opts.logFormat })
	if flags.Lookup("output") != nil {
		set("output", func() { cfg.Output = opts.output })
		set("workbook", func() { cfg.Workbook = opts.workbook })
		set("markdown", func() { cfg.Markdown = opts.markdown })
		set("panels-dir", func() { cfg.PanelsDir = opts.panelsDir })
		set("focus-year", func() { cfg.FocusYear = opts.focusYear })
		set("author", func() { cfg.Report.Author = opts.author })
		set("student-id", func() { cfg.Report.StudentID = opts.studentID })
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, configError(cmd, err)
	}
	return cfg, logging.New(cfg.Logging, cmd.ErrOrStderr()), nil
}

// configError reports err before a logger exists.
func configError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	return reportedError{err}
}

// logError logs err once and marks it as reported.
func logError(logger *slog.Logger, msg string, err error) error {
	attrs := []any{slog.String("error", err.Error())}
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		attrs = append(attrs, slog.String("type", string(ae.Type)))
		for k, v := range ae.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	logger.Error(msg, attrs...)
	return reportedError{err}
}
