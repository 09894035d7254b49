// Package labeler drives a labeling run: it validates the input table, feeds
// each row through the rating retrier in order, and writes the predicted
// rating and reason back into the table.
package labeler
