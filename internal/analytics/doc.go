// Package analytics computes pull-based summaries over the reading log:
// descriptive statistics, time-bucketed averages, linear trend fits and
// data-quality scores.
//
// Nothing here is streamed or cached — every call fetches the readings it
// needs, sorts them by event time (ingestion order is never trusted) and
// computes in memory within the caller's request boundary. Long windows
// over high-frequency data are the caller's responsibility to cap.
//
// # Heuristics
//
// Two outputs are deliberately ad hoc and must not be over-interpreted:
//
//   - Trend.Confidence is min(r² × n/10, 1.0) — a "more points, better
//     fit" heuristic, not a statistical confidence interval.
//   - Quality.Accuracy is a variance-to-mean-square noise ratio, a proxy
//     for signal noisiness; no external ground truth exists.
//
// Both formulas are preserved exactly for behavioural compatibility with
// the systems this package replaces.
package analytics
