package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"userdir/internal/directory/models"
	"userdir/pkg/platform/sentinel"
)

// Column names expected in the CSV header. Email is passed through untouched.
const (
	ColumnID      = "Id"
	ColumnEmail   = "Email"
	ColumnName    = "Name"
	ColumnDOB     = "DOB"
	ColumnCountry = "Country"
)

var requiredColumns = []string{ColumnID, ColumnName, ColumnDOB, ColumnCountry}

// CSV streams users from a delimited file with a header row.
type CSV struct {
	path  string
	comma rune
}

type CSVOption func(*CSV)

// WithComma sets the field delimiter. Defaults to ','.
func WithComma(r rune) CSVOption {
	return func(c *CSV) {
		c.comma = r
	}
}

func NewCSV(path string, opts ...CSVOption) *CSV {
	c := &CSV{path: path, comma: ','}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StreamUsers opens the file and invokes fn once per data row.
func (c *CSV) StreamUsers(ctx context.Context, fn func(models.User) error) error {
	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", c.path, sentinel.ErrUnavailable, err)
	}
	defer f.Close()

	if err := ReadCSV(ctx, f, c.comma, fn); err != nil {
		return fmt.Errorf("read %s: %w", c.path, err)
	}
	return nil
}

// ReadCSV streams users from r. Columns are matched by header name, ignoring
// case and surrounding spaces; their order in the file does not matter.
func ReadCSV(ctx context.Context, r io.Reader, comma rune, fn func(models.User) error) error {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("missing header row: %w", sentinel.ErrUnavailable)
	}
	if err != nil {
		return fmt.Errorf("parse header: %w: %w", sentinel.ErrUnavailable, err)
	}
	cols, err := columnIndexes(header)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse row: %w: %w", sentinel.ErrUnavailable, err)
		}
		if err := fn(cols.user(row)); err != nil {
			return err
		}
	}
}

type columns map[string]int

func columnIndexes(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		for _, known := range []string{ColumnID, ColumnEmail, ColumnName, ColumnDOB, ColumnCountry} {
			if strings.EqualFold(name, known) {
				cols[known] = i
			}
		}
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("header is missing column %q: %w", required, sentinel.ErrUnavailable)
		}
	}
	return cols, nil
}

func (c columns) field(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columns) user(row []string) models.User {
	return models.User{
		ID:      c.field(row, ColumnID),
		Email:   c.field(row, ColumnEmail),
		Name:    c.field(row, ColumnName),
		DOB:     c.field(row, ColumnDOB),
		Country: c.field(row, ColumnCountry),
	}
}
