// Package services defines shared utilities consumed by the labeling pipeline
// and the provider integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, row numbers, and provider
//     names for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     validation, configuration, transient, and terminal failures apart.
//   - ProviderError, the typed failure every provider adapter returns. Its
//     FailureKind decides whether the retry loop backs off or gives up.
//
// Use these helpers when wiring new providers so operational behaviour (error
// handling, observability, retries) stays uniform across the pipeline.
package services
