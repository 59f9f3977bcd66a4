package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"userdir/internal/directory/models"
	"userdir/pkg/platform/sentinel"
)

// Querier is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DefaultOrderBy orders rows by id when no ordering column is configured.
const DefaultOrderBy = "id"

// Postgres streams users from a table with text columns
// id, email, name, dob (D/M/YYYY) and country. Rows come back in orderBy
// order so every load sees the same sequence.
type Postgres struct {
	db      Querier
	table   string
	orderBy []string
}

type PostgresOption func(*Postgres)

// WithOrderBy sets the columns rows are streamed by. Pick a column that
// breaks ties between rows sharing an id (an insertion timestamp or serial)
// to make "first record wins" deterministic for duplicates.
func WithOrderBy(columns ...string) PostgresOption {
	return func(p *Postgres) {
		if len(columns) > 0 {
			p.orderBy = columns
		}
	}
}

// NewPostgres reads from table, which may be schema-qualified ("public.users").
func NewPostgres(db Querier, table string, opts ...PostgresOption) *Postgres {
	p := &Postgres{db: db, table: table, orderBy: []string{DefaultOrderBy}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Postgres) query() string {
	ident := pgx.Identifier(strings.Split(p.table, "."))
	order := make([]string, len(p.orderBy))
	for i, col := range p.orderBy {
		order[i] = pgx.Identifier{col}.Sanitize()
	}
	return fmt.Sprintf(
		`SELECT id, coalesce(email, ''), name, dob, country FROM %s ORDER BY %s`,
		ident.Sanitize(),
		strings.Join(order, ", "),
	)
}

// StreamUsers runs a single query and invokes fn once per row.
func (p *Postgres) StreamUsers(ctx context.Context, fn func(models.User) error) error {
	rows, err := p.db.Query(ctx, p.query())
	if err != nil {
		return fmt.Errorf("query %s: %w: %w", p.table, sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.DOB, &u.Country); err != nil {
			return fmt.Errorf("scan %s: %w: %w", p.table, sentinel.ErrUnavailable, err)
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read %s: %w: %w", p.table, sentinel.ErrUnavailable, err)
	}
	return nil
}
