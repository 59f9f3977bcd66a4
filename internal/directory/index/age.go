package index

import (
	"sync"

	"github.com/google/btree"

	"userdir/internal/directory/models"
)

const ageTreeDegree = 32

type ageItem struct {
	birth int64
	id    string
	rec   *models.Record
}

func ageLess(a, b ageItem) bool {
	if a.birth != b.birth {
		return a.birth < b.birth
	}
	return a.id < b.id
}

// AgeIndex orders records by normalized birth time. Ties are broken by ID so
// several people born on the same day coexist and can be deleted one by one.
type AgeIndex struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[ageItem]
}

// NewAgeIndex creates an empty age index.
func NewAgeIndex() *AgeIndex {
	return &AgeIndex{tree: btree.NewG[ageItem](ageTreeDegree, ageLess)}
}

// Insert adds rec under (rec.Birth, rec.ID).
func (x *AgeIndex) Insert(rec *models.Record) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.tree.ReplaceOrInsert(ageItem{birth: rec.Birth, id: rec.ID, rec: rec})
}

// Delete removes exactly the entry for (birth, id). Other records sharing the
// birth time are untouched.
func (x *AgeIndex) Delete(birth int64, id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.tree.Delete(ageItem{birth: birth, id: id})
	return ok
}

// Range returns every live record with minExclusive < birth <= maxInclusive,
// ordered by birth time then ID.
func (x *AgeIndex) Range(minExclusive, maxInclusive int64) []*models.Record {
	out := []*models.Record{}
	if minExclusive >= maxInclusive {
		return out
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	x.tree.AscendGreaterOrEqual(ageItem{birth: minExclusive + 1}, func(it ageItem) bool {
		if it.birth > maxInclusive {
			return false
		}
		if !it.rec.Deleted() {
			out = append(out, it.rec)
		}
		return true
	})
	return out
}

// Len returns the number of entries in the tree.
func (x *AgeIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.tree.Len()
}
