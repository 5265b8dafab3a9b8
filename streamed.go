package tabular

import (
	"iter"
	"log/slog"
	"slices"
)

type cursor interface {
	next() (*Row, bool, error)
	close() error
}

type funcCursor struct {
	nextFn  func() (*Row, bool, error)
	closeFn func() error
}

func (c *funcCursor) next() (*Row, bool, error) {
	return c.nextFn()
}

func (c *funcCursor) close() error {
	if c.closeFn == nil {
		return nil
	}
	return c.closeFn()
}

// StreamedTable is a table backed by a single-use cursor.
type StreamedTable struct {
	columnList
	cur  cursor
	done bool
}

func newStreamed(columns []Column, cur cursor) *StreamedTable {
	return &StreamedTable{
		columnList: columnList{columns: columns},
		cur:        cur,
	}
}

// NewStreamed wraps a sequence of rows. The sequence is pulled one row at a time and never
// restarted.
func NewStreamed(columns []Column, rows iter.Seq[*Row]) (*StreamedTable, error) {
	if rows == nil {
		return nil, ErrMissingArgument("rows")
	}
	next, stop := iter.Pull(rows)
	return newStreamed(slices.Clone(columns), &funcCursor{
		nextFn: func() (*Row, bool, error) {
			row, ok := next()
			return row, ok, nil
		},
		closeFn: func() error {
			stop()
			return nil
		},
	}), nil
}

func (t *StreamedTable) step() (*Row, bool, error) {
	if t.done {
		return nil, false, nil
	}
	row, ok, err := t.cur.next()
	if err != nil || !ok {
		t.finish()
		return nil, false, err
	}
	return row, true, nil
}

func (t *StreamedTable) finish() {
	if t.done {
		return
	}
	t.done = true
	if err := t.cur.close(); err != nil {
		slog.Warn("could not close table stream", "error", err)
	}
}

func (t *StreamedTable) Rows() iter.Seq2[*Row, error] {
	return func(yield func(*Row, error) bool) {
		for {
			row, ok, err := t.step()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Close releases the resource behind the cursor. Rows yields nothing afterwards.
func (t *StreamedTable) Close() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.cur.close()
}

// Exhausted reports whether the cursor has been drained or closed.
func (t *StreamedTable) Exhausted() bool {
	return t.done
}

// Materialize drains the cursor into a new materialized table.
func (t *StreamedTable) Materialize() (*MaterializedTable, error) {
	var rows []*Row
	for row, err := range t.Rows() {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return &MaterializedTable{
		columnList: columnList{columns: slices.Clone(t.columns)},
		rows:       rows,
	}, nil
}

func (t *StreamedTable) Materialized() bool {
	return false
}

func (t *StreamedTable) With(transform func(*Row) *Row) Table {
	view := newStreamed(slices.Clone(t.columns), nil)
	view.cur = &funcCursor{
		nextFn: func() (*Row, bool, error) {
			row, ok, err := t.step()
			if err != nil || !ok {
				return nil, false, err
			}
			// t may resolve its columns on its first row.
			if len(view.columns) == 0 {
				view.columns = slices.Clone(t.columns)
			}
			return transform(row), true, nil
		},
		closeFn: t.Close,
	}
	return view
}

func (t *StreamedTable) Copy() Table {
	return t.With(cloneRow)
}
