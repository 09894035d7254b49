package labeler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lyricrater/internal/dataset"
	"lyricrater/internal/logging"
	"lyricrater/internal/rating"
	"lyricrater/internal/services"
)

// Column names read from and written to the dataset.
const (
	ColumnTitle     = "Title"
	ColumnLyric     = "Lyric"
	ColumnPredicted = "Predicted Rating"
	ColumnReason    = "Reason"
)

// ProgressFunc is called after every row with the number of rows finished.
type ProgressFunc func(done, total int, result rating.Result)

// Options configures a run.
type Options struct {
	IncludeReason bool
	RetryOptions  []rating.RetryOption
	Logger        *slog.Logger
	Progress      ProgressFunc
}

// Report summarizes a run.
type Report struct {
	RunID     string                `json:"run_id"`
	Provider  string                `json:"provider"`
	Total     int                   `json:"total"`
	Processed int                   `json:"processed"`
	Errors    int                   `json:"errors"`
	Counts    map[rating.Rating]int `json:"counts"`
	Elapsed   time.Duration         `json:"elapsed_ns"`
}

// Count returns how many rows received r.
func (rep Report) Count(r rating.Rating) int {
	return rep.Counts[r]
}

// Complete reports whether every row was processed.
func (rep Report) Complete() bool {
	return rep.Processed == rep.Total
}

// Run labels every row of table in place. Missing Title or Lyric columns fail
// before any provider call. Per-row failures become Error results and never
// abort the run; only cancellation of ctx stops it early, in which case the
// partial report is returned with ctx.Err() and the interrupted row is left
// blank.
//
// The Reason column is written when opts.IncludeReason is set. Otherwise it
// only appears if a row fails, and then carries just the failure text.
func Run(ctx context.Context, table *dataset.Table, classifier rating.Classifier, opts Options) (Report, error) {
	if table == nil {
		return Report{}, services.Wrap(services.ErrValidation, "labeler", "run", "no input table", nil)
	}
	if err := table.Require(ColumnTitle, ColumnLyric); err != nil {
		return Report{}, err
	}
	if classifier == nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "labeler", "run", "no classifier", nil)
	}

	report := Report{
		RunID:    uuid.NewString(),
		Provider: classifier.Name(),
		Total:    table.Len(),
		Counts:   make(map[rating.Rating]int, len(rating.All())),
	}
	ctx = services.WithRunID(ctx, report.RunID)
	ctx = services.WithProvider(ctx, report.Provider)

	logger := logging.NewComponentLogger(opts.Logger, "labeler")
	retryOpts := append([]rating.RetryOption{rating.WithLogger(logger)}, opts.RetryOptions...)
	retrier := rating.NewRetrier(classifier, retryOpts...)
	sampler := logging.NewProgressSampler(10)

	// Clear stale output columns so an interrupted run never shows old values.
	table.SetColumn(ColumnPredicted, nil)
	if opts.IncludeReason || table.ColumnIndex(ColumnReason) >= 0 {
		table.SetColumn(ColumnReason, nil)
	}

	start := time.Now()
	logging.WithContext(ctx, logger).Info("labeling started",
		logging.Int("rows", report.Total),
		logging.Bool("include_reason", opts.IncludeReason),
	)

	cancelled := func(err error) (Report, error) {
		report.Elapsed = time.Since(start)
		logging.WithContext(ctx, logger).Warn("labeling cancelled",
			logging.Int("processed", report.Processed),
			logging.Int("rows", report.Total),
		)
		return report, err
	}

	for i := range table.Rows {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}

		rowCtx := services.WithRow(ctx, i+1)
		result := retrier.Classify(rowCtx, rating.Request{
			Title:         table.Cell(i, ColumnTitle),
			Lyric:         table.Cell(i, ColumnLyric),
			IncludeReason: opts.IncludeReason,
		})
		// A result produced while ctx was being cancelled describes the
		// interruption, not the row.
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		table.SetCell(i, ColumnPredicted, result.Rating.String())
		if opts.IncludeReason || result.IsError {
			table.SetCell(i, ColumnReason, result.Reason)
		}

		report.Processed++
		report.Counts[result.Rating]++
		if result.IsError {
			report.Errors++
		}

		rowLogger := logging.WithContext(rowCtx, logger)
		rowLogger.Debug("row labeled",
			logging.String("rating", result.Rating.String()),
			logging.Bool("error", result.IsError),
		)
		if sampler.ShouldLog(report.Processed, report.Total) {
			rowLogger.Info("labeling progress",
				logging.Int("done", report.Processed),
				logging.Int("total", report.Total),
				logging.Int("errors", report.Errors),
			)
		}
		if opts.Progress != nil {
			opts.Progress(report.Processed, report.Total, result)
		}
	}

	report.Elapsed = time.Since(start)
	logging.WithContext(ctx, logger).Info("labeling finished",
		logging.Int("rows", report.Total),
		logging.Int("errors", report.Errors),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}
