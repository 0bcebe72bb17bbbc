// Package finance holds the pure aggregation, recurrence and reporting logic
// over ledger records. Nothing in this package performs I/O or mutates its
// inputs, so every function is safe to call concurrently.
package finance
