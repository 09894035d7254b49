package labeler_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lyricrater/internal/dataset"
	"lyricrater/internal/labeler"
	"lyricrater/internal/rating"
	"lyricrater/internal/services"
)

// fakeClassifier answers by looking for a known title inside the prompt.
type fakeClassifier struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   int
}

func (f *fakeClassifier) Name() string { return "fake" }

func (f *fakeClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for title, err := range f.errs {
		if strings.Contains(prompt, title) {
			return "", err
		}
	}
	for title, reply := range f.replies {
		if strings.Contains(prompt, title) {
			return reply, nil
		}
	}
	return `{"rating":"SU","reason":"default"}`, nil
}

func noSleep() []rating.RetryOption {
	return []rating.RetryOption{rating.WithSleeper(func(time.Duration) {})}
}

func songs() *dataset.Table {
	return &dataset.Table{
		Columns: []string{"Title", "Artist", "Lyric"},
		Rows: [][]string{
			{"Lagu Anak", "A", "bermain di taman"},
			{"Lagu Patah Hati", "B", "aku menangis"},
			{"Lagu Pesta", "C", "minum sampai pagi"},
		},
	}
}

func TestRunLabelsEveryRowInOrder(t *testing.T) {
	classifier := &fakeClassifier{replies: map[string]string{
		"Lagu Anak":       `{"rating":"SU","reason":"Aman untuk anak."}`,
		"Lagu Patah Hati": "```json\n{\"rating\":\"13+\",\"reason\":\"Tema sedih.\"}\n```",
		"Lagu Pesta":      `{"rating":"17+","reason":"Alkohol."}`,
	}}
	table := songs()
	var progress []int

	report, err := labeler.Run(context.Background(), table, classifier, labeler.Options{
		IncludeReason: true,
		RetryOptions:  noSleep(),
		Progress: func(done, total int, result rating.Result) {
			if total != 3 {
				t.Errorf("unexpected total %d", total)
			}
			progress = append(progress, done)
		},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := &dataset.Table{
		Columns: []string{"Title", "Artist", "Lyric", "Predicted Rating", "Reason"},
		Rows: [][]string{
			{"Lagu Anak", "A", "bermain di taman", "SU", "Aman untuk anak."},
			{"Lagu Patah Hati", "B", "aku menangis", "13+", "Tema sedih."},
			{"Lagu Pesta", "C", "minum sampai pagi", "17+", "Alkohol."},
		},
	}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, progress); diff != "" {
		t.Fatalf("progress mismatch (-want +got):\n%s", diff)
	}
	if report.RunID == "" || report.Provider != "fake" {
		t.Fatalf("unexpected report identity: %+v", report)
	}
	if !report.Complete() || report.Errors != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Count(rating.RatingSU) != 1 || report.Count(rating.Rating13) != 1 || report.Count(rating.Rating17) != 1 {
		t.Fatalf("unexpected counts: %v", report.Counts)
	}
}

func TestRunMissingColumnMakesNoProviderCalls(t *testing.T) {
	classifier := &fakeClassifier{}
	table := &dataset.Table{Columns: []string{"Title", "Artist"}, Rows: [][]string{{"x", "y"}}}
	before := table.Clone()

	_, err := labeler.Run(context.Background(), table, classifier, labeler.Options{RetryOptions: noSleep()})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if classifier.calls != 0 {
		t.Fatalf("expected zero provider calls, got %d", classifier.calls)
	}
	if diff := cmp.Diff(before, table); diff != "" {
		t.Fatalf("table should be untouched (-want +got):\n%s", diff)
	}
}

func TestRunRowFailureDoesNotAbort(t *testing.T) {
	classifier := &fakeClassifier{
		errs: map[string]error{
			"Lagu Patah Hati": &services.ProviderError{Provider: "fake", Kind: services.FailureSafety, Message: "blocked"},
		},
	}
	table := songs()

	report, err := labeler.Run(context.Background(), table, classifier, labeler.Options{IncludeReason: true, RetryOptions: noSleep()})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := table.Cell(1, labeler.ColumnPredicted); got != "Error" {
		t.Fatalf("expected Error rating, got %q", got)
	}
	if got := table.Cell(1, labeler.ColumnReason); !strings.HasPrefix(got, "Gagal mendapatkan rating: ") {
		t.Fatalf("unexpected reason %q", got)
	}
	if table.Cell(2, labeler.ColumnPredicted) != "SU" {
		t.Fatal("rows after a failure must still be labeled")
	}
	if report.Errors != 1 || report.Count(rating.RatingError) != 1 || report.Processed != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRunWithoutReasonOmitsReasonColumn(t *testing.T) {
	classifier := &fakeClassifier{replies: map[string]string{"Lagu": `{"rating":"21+","reason":"ignored"}`}}
	table := songs()

	if _, err := labeler.Run(context.Background(), table, classifier, labeler.Options{RetryOptions: noSleep()}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if idx := table.ColumnIndex(labeler.ColumnReason); idx >= 0 {
		t.Fatalf("Reason column appended without reasoning: %v", table.Columns)
	}
	for i := range table.Rows {
		if got := table.Cell(i, labeler.ColumnPredicted); got != "21+" {
			t.Fatalf("row %d rating = %q", i, got)
		}
	}
}

func TestRunWithoutReasonKeepsFailureText(t *testing.T) {
	classifier := &fakeClassifier{
		replies: map[string]string{"Lagu": `{"rating":"13+","reason":"ignored"}`},
		errs: map[string]error{"Lagu Patah Hati": &services.ProviderError{
			Provider: "fake",
			Kind:     services.FailureAuth,
			Message:  "bad key",
		}},
	}
	table := songs()

	report, err := labeler.Run(context.Background(), table, classifier, labeler.Options{RetryOptions: noSleep()})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Errors != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := table.Cell(1, labeler.ColumnReason); !strings.HasPrefix(got, "Gagal mendapatkan rating: ") {
		t.Fatalf("error row reason = %q", got)
	}
	if got := table.Cell(0, labeler.ColumnReason); got != "" {
		t.Fatalf("successful row reason = %q, want blank", got)
	}
	if got := table.Cell(2, labeler.ColumnReason); got != "" {
		t.Fatalf("successful row reason = %q, want blank", got)
	}
}

func TestRunOverwritesExistingOutputColumns(t *testing.T) {
	table := &dataset.Table{
		Columns: []string{"Title", "Lyric", "Reason", "Predicted Rating"},
		Rows:    [][]string{{"Lagu Anak", "l", "old reason", "21+"}},
	}
	if _, err := labeler.Run(context.Background(), table, &fakeClassifier{}, labeler.Options{IncludeReason: true, RetryOptions: noSleep()}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := &dataset.Table{
		Columns: []string{"Title", "Lyric", "Reason", "Predicted Rating"},
		Rows:    [][]string{{"Lagu Anak", "l", "default", "SU"}},
	}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStopsBetweenRowsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	classifier := &fakeClassifier{}
	table := songs()

	report, err := labeler.Run(ctx, table, classifier, labeler.Options{
		RetryOptions: noSleep(),
		Progress: func(done, total int, result rating.Result) {
			if done == 1 {
				cancel()
			}
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Processed != 1 || report.Complete() {
		t.Fatalf("unexpected report: %+v", report)
	}
	if classifier.calls != 1 {
		t.Fatalf("expected one provider call, got %d", classifier.calls)
	}
	if table.Cell(0, labeler.ColumnPredicted) != "SU" || table.Cell(1, labeler.ColumnPredicted) != "" {
		t.Fatalf("unexpected partial labels: %v", table.Rows)
	}
}

// cancellingClassifier cancels the run from inside the provider call and then
// fails the way a provider does when its request context goes away.
type cancellingClassifier struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingClassifier) Name() string { return "fake" }

func (c *cancellingClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	c.calls++
	if strings.Contains(prompt, "Lagu Pesta") {
		c.cancel()
		return "", ctx.Err()
	}
	return `{"rating":"SU","reason":"ok"}`, nil
}

func TestRunCancelledDuringFinalRow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	classifier := &cancellingClassifier{cancel: cancel}
	table := songs()

	report, err := labeler.Run(ctx, table, classifier, labeler.Options{IncludeReason: true, RetryOptions: noSleep()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Complete() || report.Processed != 2 || report.Errors != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := table.Cell(2, labeler.ColumnPredicted); got != "" {
		t.Fatalf("interrupted row rating = %q, want blank", got)
	}
	if got := table.Cell(2, labeler.ColumnReason); got != "" {
		t.Fatalf("interrupted row reason = %q, want blank", got)
	}
	if classifier.calls != 3 {
		t.Fatalf("expected three provider calls, got %d", classifier.calls)
	}
}

func TestRunEmptyLyricStillClassified(t *testing.T) {
	classifier := &fakeClassifier{}
	table := &dataset.Table{Columns: []string{"Title", "Lyric"}, Rows: [][]string{{"", ""}}}
	if _, err := labeler.Run(context.Background(), table, classifier, labeler.Options{RetryOptions: noSleep()}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if classifier.calls != 1 {
		t.Fatalf("expected blank row to be sent, got %d calls", classifier.calls)
	}
}
