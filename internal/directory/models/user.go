package models

import "sync/atomic"

// User is the public view of a directory entry. Values handed to callers are
// snapshots; mutating them never touches the indexes.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	DOB     string `json:"dob"`
	Country string `json:"country"`
}

// Record is the single owned copy of a user shared by pointer across every
// index. Birth is the normalized birth time in Unix seconds.
type Record struct {
	User
	Birth int64

	deleted atomic.Bool
}

// NewRecord wraps a loaded user with its normalized birth time.
func NewRecord(u User, birth int64) *Record {
	return &Record{User: u, Birth: birth}
}

// Deleted reports whether the record has been soft-deleted.
func (r *Record) Deleted() bool {
	return r.deleted.Load()
}

// MarkDeleted flips the soft-delete flag. Only the first caller gets true,
// which is what serializes concurrent deletes of the same id.
func (r *Record) MarkDeleted() bool {
	return r.deleted.CompareAndSwap(false, true)
}

// Snapshot returns a copy of the user fields.
func (r *Record) Snapshot() User {
	return r.User
}

// Snapshots copies the user fields of every record, preserving order.
func Snapshots(records []*Record) []User {
	users := make([]User, 0, len(records))
	for _, r := range records {
		users = append(users, r.Snapshot())
	}
	return users
}
