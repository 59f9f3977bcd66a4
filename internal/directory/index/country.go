package index

import (
	"sort"
	"strings"
	"sync"

	"userdir/internal/directory/models"
)

// CountryIndex groups records by uppercased country code.
type CountryIndex struct {
	mu        sync.RWMutex
	countries map[string]map[string]*models.Record
}

func NewCountryIndex() *CountryIndex {
	return &CountryIndex{countries: make(map[string]map[string]*models.Record)}
}

// NormalizeCountry is the key form every country code is stored and looked
// up under.
func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (x *CountryIndex) Insert(code string, rec *models.Record) {
	key := NormalizeCountry(code)

	x.mu.Lock()
	defer x.mu.Unlock()
	bucket, ok := x.countries[key]
	if !ok {
		bucket = make(map[string]*models.Record)
		x.countries[key] = bucket
	}
	bucket[rec.ID] = rec
}

// Remove drops a single record from the bucket of code. Empty buckets are
// discarded.
func (x *CountryIndex) Remove(code, id string) {
	key := NormalizeCountry(code)

	x.mu.Lock()
	defer x.mu.Unlock()
	bucket, ok := x.countries[key]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(x.countries, key)
	}
}

// Get returns the live records of a country ordered by ID.
func (x *CountryIndex) Get(code string) []*models.Record {
	key := NormalizeCountry(code)

	x.mu.RLock()
	defer x.mu.RUnlock()
	live := make(map[string]*models.Record, len(x.countries[key]))
	for id, rec := range x.countries[key] {
		if !rec.Deleted() {
			live[id] = rec
		}
	}
	return sortedByID(live)
}

// Countries lists every code with at least one record, sorted.
func (x *CountryIndex) Countries() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	codes := make([]string, 0, len(x.countries))
	for code := range x.countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (x *CountryIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.countries)
}
