package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresQuery(t *testing.T) {
	const columns = `SELECT id, coalesce(email, ''), name, dob, country FROM `

	t.Run("plain table is ordered by id", func(t *testing.T) {
		p := NewPostgres(nil, "users")
		assert.Equal(t, columns+`"users" ORDER BY "id"`, p.query())
	})

	t.Run("schema qualified", func(t *testing.T) {
		p := NewPostgres(nil, "directory.users")
		assert.Equal(t, columns+`"directory"."users" ORDER BY "id"`, p.query())
	})

	t.Run("quotes are escaped", func(t *testing.T) {
		p := NewPostgres(nil, `us"ers`)
		assert.Equal(t, columns+`"us""ers" ORDER BY "id"`, p.query())
	})

	t.Run("configured order columns", func(t *testing.T) {
		p := NewPostgres(nil, "users", WithOrderBy("created_at", "id"))
		assert.Equal(t, columns+`"users" ORDER BY "created_at", "id"`, p.query())
	})

	t.Run("empty order keeps the default", func(t *testing.T) {
		p := NewPostgres(nil, "users", WithOrderBy())
		assert.Equal(t, columns+`"users" ORDER BY "id"`, p.query())
	})
}
