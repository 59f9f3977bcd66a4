// Package index holds the four structures the directory answers queries
// from. All of them store *models.Record pointers and never copy user data,
// so flipping a record's soft-delete flag is visible through every index at
// once. Each index guards itself with its own lock.
package index
