package tabular

import (
	"iter"
	"slices"
)

// MaterializedTable holds its rows in memory. It can be traversed repeatedly and can acquire and
// lose rows.
type MaterializedTable struct {
	columnList
	rows []*Row
}

// NewMaterialized collects rows into a new table with a copy of columns.
func NewMaterialized(columns []Column, rows iter.Seq[*Row]) (*MaterializedTable, error) {
	if rows == nil {
		return nil, ErrMissingArgument("rows")
	}
	t := &MaterializedTable{columnList: columnList{columns: slices.Clone(columns)}}
	for row := range rows {
		t.Add(row)
	}
	return t, nil
}

// NewTable builds a materialized table from column names and rows of values.
func NewTable(cols []string, rows ...[]string) *MaterializedTable {
	t := &MaterializedTable{columnList: columnList{columns: Cols(cols...)}}
	for _, vals := range rows {
		t.Add(RowOf(cols, vals))
	}
	return t
}

func (t *MaterializedTable) Rows() iter.Seq2[*Row, error] {
	rows := t.rows
	return func(yield func(*Row, error) bool) {
		for _, row := range rows {
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Materialize returns t itself.
func (t *MaterializedTable) Materialize() (*MaterializedTable, error) {
	return t, nil
}

func (t *MaterializedTable) Materialized() bool {
	return true
}

func (t *MaterializedTable) With(transform func(*Row) *Row) Table {
	rows := t.rows
	i := 0
	return newStreamed(slices.Clone(t.columns), &funcCursor{
		nextFn: func() (*Row, bool, error) {
			if i >= len(rows) {
				return nil, false, nil
			}
			row := rows[i]
			i++
			return transform(row), true, nil
		},
	})
}

func (t *MaterializedTable) Copy() Table {
	return t.With(cloneRow)
}

// Add appends rows, ignoring nil ones.
func (t *MaterializedTable) Add(rows ...*Row) *MaterializedTable {
	for _, row := range rows {
		if row != nil {
			t.rows = append(t.rows, row)
		}
	}
	return t
}

// Remove drops the first row equal to each of the given rows.
func (t *MaterializedTable) Remove(rows ...*Row) *MaterializedTable {
	for _, row := range rows {
		if i := slices.IndexFunc(t.rows, row.Equal); i >= 0 {
			t.rows = slices.Delete(t.rows, i, i+1)
		}
	}
	return t
}

func (t *MaterializedTable) Len() int {
	return len(t.rows)
}

func (t *MaterializedTable) Row(i int) *Row {
	return t.rows[i]
}

// RowSlice returns a copy of the row list; the rows themselves are shared.
func (t *MaterializedTable) RowSlice() []*Row {
	return slices.Clone(t.rows)
}

// TableBuilder assembles a materialized table step by step.
type TableBuilder struct {
	cols []Column
	rows []*Row
}

func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

func (b *TableBuilder) Cols(names ...string) *TableBuilder {
	b.cols = append(b.cols, Cols(names...)...)
	return b
}

func (b *TableBuilder) Columns(cols ...Column) *TableBuilder {
	b.cols = append(b.cols, cols...)
	return b
}

// Row adds a row whose values line up with the columns declared so far.
func (b *TableBuilder) Row(vals ...string) *TableBuilder {
	b.rows = append(b.rows, RowOf(Names(b.cols), vals))
	return b
}

func (b *TableBuilder) Rows(rows ...*Row) *TableBuilder {
	b.rows = append(b.rows, rows...)
	return b
}

func (b *TableBuilder) Build() *MaterializedTable {
	t := &MaterializedTable{columnList: columnList{columns: slices.Clone(b.cols)}}
	return t.Add(b.rows...)
}
