package index

import (
	"sync"

	"userdir/internal/directory/models"
)

// IdentityIndex maps a user id to its record.
type IdentityIndex struct {
	mu      sync.RWMutex
	records map[string]*models.Record
}

func NewIdentityIndex() *IdentityIndex {
	return &IdentityIndex{records: make(map[string]*models.Record)}
}

func (x *IdentityIndex) Get(id string) (*models.Record, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	rec, ok := x.records[id]
	return rec, ok
}

// Set stores rec under id, replacing any previous record.
func (x *IdentityIndex) Set(id string, rec *models.Record) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.records[id] = rec
}

// SetIfAbsent stores rec only when id is unused and reports whether it did.
func (x *IdentityIndex) SetIfAbsent(id string, rec *models.Record) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.records[id]; ok {
		return false
	}
	x.records[id] = rec
	return true
}

func (x *IdentityIndex) Remove(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.records, id)
}

func (x *IdentityIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}
