// Package source provides the record sources the directory loads from. Each
// source streams users once, in source order, and fails with an error
// wrapping sentinel.ErrUnavailable when the underlying data cannot be read.
package source
