// Package ingestion turns transcript sources into indexed embedding records.
//
// The Pipeline processes sources in sequential batches with bounded
// parallelism inside each batch. Each source walks a small state machine:
// discovered, deduplicated (already indexed, skipped), chunked, embedded,
// indexed, done, or failed. One failing source never aborts its batch; the
// caller gets per-source results plus done/skipped/failed totals.
//
// Embedding calls are retried with bounded exponential backoff since model
// endpoints drop out transiently. Record insertion for a source is a single
// atomic storage call.
package ingestion
