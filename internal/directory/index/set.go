package index

import "userdir/internal/directory/models"

// Set bundles one instance of every index. A Set is built privately during a
// load and only published once the load has finished.
type Set struct {
	Identity  *IdentityIndex
	Names     *NameIndex
	Ages      *AgeIndex
	Countries *CountryIndex
}

func NewSet() *Set {
	return &Set{
		Identity:  NewIdentityIndex(),
		Names:     NewNameIndex(),
		Ages:      NewAgeIndex(),
		Countries: NewCountryIndex(),
	}
}

// Add indexes rec everywhere. It returns false, touching nothing, when the id
// is already taken.
func (s *Set) Add(rec *models.Record) bool {
	if !s.Identity.SetIfAbsent(rec.ID, rec) {
		return false
	}
	s.Names.Insert(rec.Name, rec)
	s.Countries.Insert(rec.Country, rec)
	s.Ages.Insert(rec)
	return true
}

// Remove structurally removes rec from every index. Callers flip the
// soft-delete flag first so readers racing with Remove already skip it.
func (s *Set) Remove(rec *models.Record) {
	s.Countries.Remove(rec.Country, rec.ID)
	s.Ages.Delete(rec.Birth, rec.ID)
	s.Names.Remove(rec.Name, rec)
	s.Identity.Remove(rec.ID)
}
