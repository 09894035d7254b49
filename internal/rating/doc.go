// Package rating turns one song (title + lyric) into an age-rating prediction.
//
// The package owns the classification core shared by every provider:
//
//   - BuildPrompt renders the fixed Indonesian classification instructions
//     with or without a request for reasoning.
//   - Normalize converts raw provider text into a Result whose Rating is
//     always one of the closed set of categories or sentinels.
//   - Retrier drives a Classifier through a bounded exponential backoff and
//     never returns an error: persistent failures become Error results.
//
// Provider adapters live under internal/services and satisfy Classifier
// structurally; this package never imports them.
package rating
