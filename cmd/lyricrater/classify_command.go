package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lyricrater/internal/config"
	"lyricrater/internal/dataset"
	"lyricrater/internal/labeler"
	"lyricrater/internal/rating"
	"lyricrater/internal/services/llm"
)

type classifyOptions struct {
	provider   string
	model      string
	apiKey     string
	reason     bool
	noReason   bool
	maxRetries int
	baseDelay  time.Duration
	csvPath    string
	xlsxPath   string
	noTable    bool
	jsonOut    bool
}

type classifyOutput struct {
	Report  labeler.Report `json:"report"`
	Columns []string       `json:"columns"`
	Rows    [][]string     `json:"rows"`
	Exports []string       `json:"exports,omitempty"`
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var opts classifyOptions

	cmd := &cobra.Command{
		Use:   "classify [FILE|-]",
		Short: "Label every song in a dataset with an age rating",
		Long: `Label every row of a CSV, TSV, or XLSX file that has Title and Lyric columns.

With no FILE, or when FILE is -, tab-separated rows pasted from a spreadsheet
are read from stdin. Rows are sent to the provider one at a time; rate-limited
or failed calls are retried with exponential backoff. Rows that still fail are
labeled Error and the run continues.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts.applyDefaults(cmd, cfg)

			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			table, err := loadInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			// Fail on missing columns before a client is even built.
			if err := table.Require(labeler.ColumnTitle, labeler.ColumnLyric); err != nil {
				return err
			}

			providerCfg, err := llm.FromConfig(cfg, opts.provider)
			if err != nil {
				return err
			}
			if opts.model != "" {
				providerCfg.Model = opts.model
			}
			if opts.apiKey != "" {
				providerCfg.APIKey = opts.apiKey
			}
			client, err := llm.New(providerCfg)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			showProgress := !opts.jsonOut && shouldColorize(stderr)
			report, runErr := labeler.Run(cmd.Context(), table, client, labeler.Options{
				IncludeReason: opts.includeReason(),
				Logger:        logger,
				RetryOptions: []rating.RetryOption{
					rating.WithMaxRetries(opts.maxRetries),
					rating.WithBaseDelay(opts.baseDelay),
					rating.WithCallTimeout(time.Duration(cfg.Classification.CallTimeoutSeconds) * time.Second),
				},
				Progress: func(done, total int, result rating.Result) {
					if showProgress {
						fmt.Fprintf(stderr, "\rRated %d/%d", done, total)
						if done == total {
							fmt.Fprintln(stderr)
						}
					}
				},
			})
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}
			if showProgress && runErr != nil {
				fmt.Fprintln(stderr)
			}

			exports, err := exportResults(table, opts.csvPath, opts.xlsxPath)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				if err := writeJSON(cmd, classifyOutput{Report: report, Columns: table.Columns, Rows: table.Rows, Exports: exports}); err != nil {
					return err
				}
				return runErr
			}

			out := cmd.OutOrStdout()
			if !opts.noTable && table.Len() > 0 {
				fmt.Fprintln(out, renderResultsTable(table, cfg.Output.LyricPreviewChars))
			}
			writeSummary(out, report, exports, shouldColorize(out))
			return runErr
		},
	}

	cmd.Flags().StringVarP(&opts.provider, "provider", "p", "", "Provider to use (gemini, deepseek, claude)")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model override for the selected provider")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key override (prefer the config file or environment)")
	cmd.Flags().BoolVar(&opts.reason, "reason", false, "Ask the model for a short reason")
	cmd.Flags().BoolVar(&opts.noReason, "no-reason", false, "Do not ask the model for a reason")
	cmd.Flags().IntVar(&opts.maxRetries, "max-retries", 0, "Attempts per row before giving up (default from config)")
	cmd.Flags().DurationVar(&opts.baseDelay, "base-delay", 0, "First backoff delay, doubled after each failure (default from config)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "Write labeled rows to this CSV file")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "Write labeled rows to this XLSX file")
	cmd.Flags().BoolVar(&opts.noTable, "no-table", false, "Skip the results table")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the report and rows as JSON")
	cmd.MarkFlagsMutuallyExclusive("reason", "no-reason")

	return cmd
}

func (o *classifyOptions) applyDefaults(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("reason") && !flags.Changed("no-reason") {
		o.reason = cfg.Classification.IncludeReason
	}
	if !flags.Changed("max-retries") {
		o.maxRetries = cfg.Classification.MaxRetries
	}
	if !flags.Changed("base-delay") {
		o.baseDelay = time.Duration(cfg.Classification.BaseDelaySeconds) * time.Second
	}
	if o.csvPath == "" {
		o.csvPath = cfg.Output.CSVPath
	}
	if o.xlsxPath == "" {
		o.xlsxPath = cfg.Output.XLSXPath
	}
	o.provider = strings.TrimSpace(o.provider)
	o.model = strings.TrimSpace(o.model)
	o.apiKey = strings.TrimSpace(o.apiKey)
}

func (o *classifyOptions) includeReason() bool {
	return o.reason && !o.noReason
}

func loadInput(stdin io.Reader, input string) (*dataset.Table, error) {
	if input == "-" {
		return dataset.ReadTSV(stdin)
	}
	return dataset.Load(input)
}

func exportResults(table *dataset.Table, csvPath, xlsxPath string) ([]string, error) {
	var written []string
	for _, path := range []string{csvPath, xlsxPath} {
		if path == "" {
			continue
		}
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return written, fmt.Errorf("resolve export path: %w", err)
		}
		if err := dataset.Export(expanded, table); err != nil {
			return written, fmt.Errorf("export %s: %w", expanded, err)
		}
		written = append(written, expanded)
	}
	return written, nil
}

func writeSummary(out io.Writer, report labeler.Report, exports []string, colorize bool) {
	fmt.Fprintln(out, "Summary")
	for _, r := range rating.All() {
		count := report.Count(r)
		fmt.Fprintln(out, renderStatusLine(r.String(), ratingStatus(r, count), fmt.Sprintf("%d", count), colorize))
	}
	runKind := statusOK
	runMessage := fmt.Sprintf("%d/%d rows in %s", report.Processed, report.Total, report.Elapsed.Round(time.Millisecond))
	if !report.Complete() {
		runKind = statusWarn
		runMessage += " (interrupted)"
	}
	fmt.Fprintln(out, renderStatusLine("Run "+shortRunID(report.RunID), runKind, runMessage, colorize))
	for _, path := range exports {
		fmt.Fprintln(out, renderStatusLine("Saved", statusInfo, path, colorize))
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
