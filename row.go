package tabular

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

// Row is a mutable record of text values keyed by column name.
// A column may simply be absent from a row. The zero value is an empty row.
type Row struct {
	data map[string]string
}

func NewRow() *Row {
	return &Row{data: make(map[string]string)}
}

// RowOf zips column names with values; names without a value are left absent.
func RowOf(cols []string, vals []string) *Row {
	r := NewRow()
	for i, col := range cols {
		if i >= len(vals) {
			break
		}
		r.data[col] = vals[i]
	}
	return r
}

func rowFromMap(data map[string]string) *Row {
	if data == nil {
		data = make(map[string]string)
	}
	return &Row{data: data}
}

func (r *Row) Get(col string) (string, bool) {
	v, ok := r.data[col]
	return v, ok
}

func (r *Row) GetOr(col, fallback string) string {
	if v, ok := r.data[col]; ok {
		return v
	}
	return fallback
}

// MustGet is Get for callers that require the column to be there.
func (r *Row) MustGet(col string) (string, error) {
	v, ok := r.data[col]
	if !ok {
		return "", ErrColumnNotFound(col)
	}
	return v, nil
}

func (r *Row) Has(cols ...string) bool {
	for _, col := range cols {
		if _, ok := r.data[col]; !ok {
			return false
		}
	}
	return true
}

func (r *Row) Set(col, value string) *Row {
	if r.data == nil {
		r.data = make(map[string]string)
	}
	r.data[col] = value
	return r
}

// Merge copies the values of rows into r in order, so later rows overwrite earlier ones.
func (r *Row) Merge(rows ...*Row) *Row {
	for _, other := range rows {
		if other == nil || len(other.data) == 0 {
			continue
		}
		if r.data == nil {
			r.data = make(map[string]string, len(other.data))
		}
		maps.Copy(r.data, other.data)
	}
	return r
}

func (r *Row) Remove(cols ...string) *Row {
	for _, col := range cols {
		delete(r.data, col)
	}
	return r
}

// RemoveRow drops from r every column that other has.
func (r *Row) RemoveRow(other *Row) *Row {
	if other == nil {
		return r
	}
	for col := range other.data {
		delete(r.data, col)
	}
	return r
}

func (r *Row) Extract(cols ...string) *Row {
	result := NewRow()
	for _, col := range cols {
		if v, ok := r.data[col]; ok {
			result.data[col] = v
		}
	}
	return result
}

func (r *Row) Size() int {
	return len(r.data)
}

func (r *Row) Clone() *Row {
	return &Row{data: maps.Clone(r.data)}
}

func (r *Row) Columns() []string {
	return slices.Sorted(maps.Keys(r.data))
}

func (r *Row) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, col := range r.Columns() {
			if !yield(col, r.data[col]) {
				return
			}
		}
	}
}

func (r *Row) Equal(other *Row) bool {
	if r == nil || other == nil {
		return r == other
	}
	return maps.Equal(r.data, other.data)
}

func (r *Row) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for col, v := range r.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s=%s", col, v)
	}
	b.WriteByte('}')
	return b.String()
}
