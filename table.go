package tabular

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

// Table is a semi-structured table: Columns describe the rows but rows may carry more, fewer or
// other columns.
//
// A table is either materialized, in which case its rows are held in memory and can be traversed
// any number of times, or streamed, in which case Rows can be consumed only once and later
// traversals yield nothing.
type Table interface {
	Columns() []Column
	SetColumns(cols ...Column)
	AddColumns(cols ...Column)

	Rows() iter.Seq2[*Row, error]

	// Materialize returns an equivalent table that can be traversed repeatedly,
	// possibly the table itself.
	Materialize() (*MaterializedTable, error)
	Materialized() bool

	// With returns a streamed table whose rows are the rows of this table passed through
	// transform. Rows are transformed lazily, as the returned table is consumed.
	With(transform func(*Row) *Row) Table
	Copy() Table
}

type columnList struct {
	columns []Column
}

func (c *columnList) Columns() []Column {
	return c.columns
}

func (c *columnList) SetColumns(cols ...Column) {
	c.columns = slices.Clone(cols)
}

func (c *columnList) AddColumns(cols ...Column) {
	c.columns = append(c.columns, cols...)
}

func cloneRow(r *Row) *Row {
	return r.Clone()
}

// UnfoldWith expands every row of t into zero or more rows. Since the transform is arbitrary,
// the result has no columns.
func UnfoldWith(t Table, transform func(*Row) []*Row) (*MaterializedTable, error) {
	if t == nil {
		return nil, ErrMissingArgument("table")
	}
	result := &MaterializedTable{}
	for row, err := range t.Rows() {
		if err != nil {
			return nil, err
		}
		result.Add(transform(row)...)
	}
	return result, nil
}

// Equal reports whether two tables have the same column names and the same rows in the same
// order. Streamed arguments are consumed.
func Equal(a, b Table) (bool, error) {
	if a == nil || b == nil {
		return a == b, nil
	}
	ma, err := a.Materialize()
	if err != nil {
		return false, err
	}
	mb, err := b.Materialize()
	if err != nil {
		return false, err
	}
	if !slices.Equal(Names(ma.Columns()), Names(mb.Columns())) {
		return false, nil
	}
	return slices.EqualFunc(ma.rows, mb.rows, (*Row).Equal), nil
}

// Print writes one line per row of t: the row itself if no columns are given, otherwise the
// values of the given columns.
func Print(w io.Writer, t Table, cols ...string) error {
	count := 1
	for row, err := range t.Rows() {
		if err != nil {
			return err
		}
		var line string
		switch len(cols) {
		case 0:
			line = row.String()
		case 1:
			line = row.GetOr(cols[0], "<missing>")
		default:
			parts := make([]string, len(cols))
			for i, col := range cols {
				parts[i] = fmt.Sprintf("%s=%s", col, row.GetOr(col, "<missing>"))
			}
			line = strings.Join(parts, ", ")
		}
		if _, err := fmt.Fprintf(w, "%d:%s\n", count, line); err != nil {
			return ErrWrite(err)
		}
		count++
	}
	return nil
}
