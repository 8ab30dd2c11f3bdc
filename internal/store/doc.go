// Package store provides SQLite-backed persistence for the product catalog
// and the order book.
//
// The store keeps the record-oriented contract of the spreadsheet the tool
// was built around (each table is a sheet, each record a row, rows listed in
// insertion order) and fixes its two hazards:
//
//   - Stable identity: records are addressed by id, never by row position,
//     so a delete cannot shift the target of a later update.
//   - Compare-and-swap: every record carries a version. Updates and deletes
//     given a non-zero expected version fail with ErrConflict when another
//     session changed the record first.
//
// # Ordering
//
// All list queries use ORDER BY seq ASC, where seq is the insertion counter.
// This is the "row order" callers see.
//
// # Connection
//
// Open pins the pool to a single connection running in WAL mode with
// synchronous=NORMAL, a five second busy timeout and foreign keys enforced.
// Schema changes after the initial tables are tracked in PRAGMA user_version.
//
// Money columns hold integer minor units (model.Amount).
package store
