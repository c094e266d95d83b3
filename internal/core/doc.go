// Package core provides the data pipeline behind the indicator dashboard.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the web dashboard, the envdash CLI, and tests without
// modification.
//
// # Pipeline
//
// Every selection runs the same synchronous pipeline:
//
//	Load -> SelectIndicator -> Table / ChartSeries / Summarize / ExportCSV
//
//   - Loader: reads the CSV through a text dataframe, trims headers and the
//     country/indicator name cells, keeps one country, coerces Year and Value
//     and drops rows where either fails. See [Load].
//   - Filter: [Indicators] lists the sorted distinct names, [SelectIndicator]
//     picks the subset and its code ("N/A" when nothing matches).
//   - Views: pure functions over a subset. Nothing here mutates its input.
//
// # Memoization
//
// Loading is the only I/O-bound step. [Cache] keeps one [Dataset] per source
// path and reloads only when the file's size or modification time changes.
// Each fresh load is reported to an optional [LoadRecorder].
//
// # Error Handling
//
// Load failures are returned as [*DataLoadError] and are fatal for the
// caller. Rows that fail numeric coercion are dropped silently. An indicator
// with no rows is not an error; the views degrade to empty output and a
// "no data" summary.
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - DATA001-DATA004: source problems (missing, unreadable, columns, empty)
//   - FILE001-FILE002: CSV format and encoding
//   - REQ001-REQ002: cancelled or timed out requests
//   - RATE001: rate limiting
package core
