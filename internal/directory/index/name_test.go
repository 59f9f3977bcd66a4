package index

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"userdir/internal/directory/models"
)

type NameIndexSuite struct {
	suite.Suite
	index *NameIndex
}

func TestNameIndexSuite(t *testing.T) {
	suite.Run(t, new(NameIndexSuite))
}

func (s *NameIndexSuite) SetupTest() {
	s.index = NewNameIndex()
}

func (s *NameIndexSuite) add(id, name string) *models.Record {
	rec := models.NewRecord(models.User{ID: id, Name: name}, 0)
	s.index.Insert(name, rec)
	return rec
}

func ids(records []*models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func (s *NameIndexSuite) TestNameKeys() {
	s.Run("full name then every token after the first", func() {
		s.Equal([]string{"anna maria lopez", "maria", "lopez"}, NameKeys("Anna Maria Lopez"))
	})

	s.Run("short tokens are padded", func() {
		s.Equal([]string{"ann jo smith", "jo ", "smith"}, NameKeys("Ann Jo Smith"))
	})

	s.Run("collapses repeated whitespace", func() {
		s.Equal([]string{"anna lopez", "lopez"}, NameKeys("  Anna   Lopez "))
	})

	s.Run("short single name is padded", func() {
		s.Equal([]string{"al "}, NameKeys("Al"))
	})

	s.Run("blank name has no keys", func() {
		s.Empty(NameKeys("   "))
	})
}

// TestSearchCompleteness verifies every token of a name finds the user exactly once.
func (s *NameIndexSuite) TestSearchCompleteness() {
	s.add("1", "Anna Maria Lopez")

	for _, query := range []string{"Anna", "Maria", "Lopez", "anna maria", "LOP", "Anna Maria Lopez"} {
		s.Run(query, func() {
			s.Equal([]string{"1"}, ids(s.index.Search(query)))
		})
	}

	s.Run("unknown prefix returns empty", func() {
		s.Empty(s.index.Search("Zed"))
	})

	s.Run("mid-word text does not match", func() {
		s.Empty(s.index.Search("aria"))
	})
}

func (s *NameIndexSuite) TestShortTokens() {
	s.add("1", "Ann Jo Smith")
	s.add("2", "John Jones")

	s.Run("short middle name is searchable", func() {
		s.Equal([]string{"1"}, ids(s.index.Search("Jo")))
	})

	s.Run("longer prefix still finds longer tokens", func() {
		s.Equal([]string{"2"}, ids(s.index.Search("Jon")))
		s.Equal([]string{"2"}, ids(s.index.Search("john")))
	})
}

func (s *NameIndexSuite) TestDuplicateFreeResults() {
	// "maria" is reachable through the full name and through the second token.
	s.add("1", "Maria Maria")
	s.add("2", "Mariana Smith")

	s.Equal([]string{"1", "2"}, ids(s.index.Search("maria")))
}

func (s *NameIndexSuite) TestDeletedRecordsAreFiltered() {
	rec := s.add("1", "Anna Maria Lopez")
	s.add("2", "Anna Smith")
	rec.MarkDeleted()

	s.Equal([]string{"2"}, ids(s.index.Search("anna")))
	s.Empty(s.index.Search("lopez"))
}

func (s *NameIndexSuite) TestRemove() {
	s.Run("removes the record from every key", func() {
		rec := s.add("1", "Anna Maria Lopez")
		s.index.Remove(rec.Name, rec)

		s.Empty(s.index.Search("anna"))
		s.Empty(s.index.Search("maria"))
		s.Empty(s.index.Search("lopez"))
		s.Equal(0, s.index.Len())
	})

	s.Run("prunes empty nodes back to the root", func() {
		idx := NewNameIndex()
		rec := models.NewRecord(models.User{ID: "1", Name: "Anna Maria Lopez"}, 0)
		idx.Insert(rec.Name, rec)
		s.Greater(idx.nodeCount(), 1)

		idx.Remove(rec.Name, rec)
		s.Equal(1, idx.nodeCount())
	})

	s.Run("keeps records sharing a key", func() {
		idx := NewNameIndex()
		a := models.NewRecord(models.User{ID: "a", Name: "Ann Lopez"}, 0)
		b := models.NewRecord(models.User{ID: "b", Name: "Bob Lopez"}, 0)
		idx.Insert(a.Name, a)
		idx.Insert(b.Name, b)

		idx.Remove(a.Name, a)
		s.Equal([]string{"b"}, ids(idx.Search("lopez")))
		s.Equal([]string{"b"}, ids(idx.Search("bob")))
		s.Empty(idx.Search("ann"))
	})

	s.Run("keeps nodes that lead to longer keys", func() {
		idx := NewNameIndex()
		short := models.NewRecord(models.User{ID: "s", Name: "Zed Ann"}, 0)
		long := models.NewRecord(models.User{ID: "l", Name: "Zed Anna"}, 0)
		idx.Insert(short.Name, short)
		idx.Insert(long.Name, long)

		idx.Remove(short.Name, short)
		s.Equal([]string{"l"}, ids(idx.Search("ann")))
	})

	s.Run("removing an unknown record is a no-op", func() {
		idx := NewNameIndex()
		rec := models.NewRecord(models.User{ID: "1", Name: "Anna"}, 0)
		idx.Insert(rec.Name, rec)
		ghost := models.NewRecord(models.User{ID: "2", Name: "Anna"}, 0)

		idx.Remove(ghost.Name, ghost)
		s.Equal([]string{"1"}, ids(idx.Search("anna")))
	})
}
