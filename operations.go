package tabular

import (
	"log/slog"
	"slices"
	"strings"
)

// Key concatenates the values of cols in row, reading absent values as empty text.
// There is no separator, so "a"+"bc" and "ab"+"c" produce the same key.
func Key(row *Row, cols []string) string {
	var b strings.Builder
	for _, col := range cols {
		v, _ := row.Get(col)
		b.WriteString(v)
	}
	return b.String()
}

type IndexClause struct {
	table Table
}

// Index indexes a table by the concatenated values of one or more columns.
func Index(t Table) *IndexClause {
	return &IndexClause{table: t}
}

// Using maps keys to rows. Rows with an empty key are left out, and of rows sharing a key the
// last one traversed wins.
func (c *IndexClause) Using(cols ...string) (map[string]*Row, error) {
	if c.table == nil {
		return nil, ErrMissingArgument("table")
	}
	index := make(map[string]*Row)
	for row, err := range c.table.Rows() {
		if err != nil {
			return nil, err
		}
		key := Key(row, cols)
		if key == "" {
			continue
		}
		index[key] = row
	}
	return index, nil
}

// Over narrows the index to the values of a single column.
func (c *IndexClause) Over(col string) *ValueIndexClause {
	return &ValueIndexClause{index: c, col: col}
}

type ValueIndexClause struct {
	index *IndexClause
	col   string
}

// Using maps keys to the value of the column in the indexed row. Rows without that value are
// left out.
func (c *ValueIndexClause) Using(cols ...string) (map[string]string, error) {
	rows, err := c.index.Using(cols...)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for key, row := range rows {
		if v, ok := row.Get(c.col); ok {
			values[key] = v
		}
	}
	return values, nil
}

func (c *ValueIndexClause) Over(col string) *ValueIndexClause {
	return c.index.Over(col)
}

type ExistClause struct {
	table Table
}

// IndexExist collects the keys of a table, for membership lookups.
func IndexExist(t Table) *ExistClause {
	return &ExistClause{table: t}
}

func (c *ExistClause) Using(cols ...string) (map[string]struct{}, error) {
	if c.table == nil {
		return nil, ErrMissingArgument("table")
	}
	keys := make(map[string]struct{})
	for row, err := range c.table.Rows() {
		if err != nil {
			return nil, err
		}
		if key := Key(row, cols); key != "" {
			keys[key] = struct{}{}
		}
	}
	return keys, nil
}

type GroupClause struct {
	table Table
}

// Group groups the rows of a table by the concatenated values of one or more columns.
func Group(t Table) *GroupClause {
	return &GroupClause{table: t}
}

// By maps keys to their rows in traversal order. Rows with an empty key are left out.
func (c *GroupClause) By(cols ...string) (map[string][]*Row, error) {
	if c.table == nil {
		return nil, ErrMissingArgument("table")
	}
	groups := make(map[string][]*Row)
	for row, err := range c.table.Rows() {
		if err != nil {
			return nil, err
		}
		key := Key(row, cols)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], row)
	}
	return groups, nil
}

// ColumnMatch pairs a column of the joining table with a column of the joined one.
type ColumnMatch struct {
	Source string
	Target string
}

func Match(col string) ColumnMatch {
	return ColumnMatch{Source: col, Target: col}
}

func MatchPair(source, target string) ColumnMatch {
	return ColumnMatch{Source: source, Target: target}
}

type WithClause struct {
	source Table
}

// Join joins the rows of source with the rows of another table that have the same values in
// some columns. Source is modified in place.
func Join(source Table) *WithClause {
	return &WithClause{source: source}
}

func (c *WithClause) With(target Table) *JoinClause {
	return &JoinClause{
		source:   c.source,
		target:   target,
		merge:    mergeRows,
		fallback: func(*Row) {},
	}
}

func mergeRows(source, target *Row) {
	source.Merge(target)
}

type JoinClause struct {
	source      Table
	target      Table
	merge       func(source, target *Row)
	fallback    func(source *Row)
	customMerge bool
}

// Using replaces the function applied to matching rows. By default the target row is merged
// into the source row.
func (c *JoinClause) Using(merge func(source, target *Row)) *JoinClause {
	if merge != nil {
		c.merge = merge
		c.customMerge = true
	}
	return c
}

// FallbackWith sets the function applied to source rows without a match.
func (c *JoinClause) FallbackWith(fallback func(source *Row)) *JoinClause {
	if fallback != nil {
		c.fallback = fallback
	}
	return c
}

// BasedOn runs the join. The target is indexed on its side of the matches, with the same
// duplicate policy as Index. With the default merge, the source also acquires the target
// columns it lacks, other than the matched ones.
func (c *JoinClause) BasedOn(matches ...ColumnMatch) error {
	if c.source == nil {
		return ErrMissingArgument("source")
	}
	if c.target == nil {
		return ErrMissingArgument("target")
	}
	sourceCols := make([]string, len(matches))
	targetCols := make([]string, len(matches))
	for i, m := range matches {
		sourceCols[i] = m.Source
		targetCols[i] = m.Target
	}

	targetIndex, err := Index(c.target).Using(targetCols...)
	if err != nil {
		return err
	}

	matched, unmatched := 0, 0
	for row, err := range c.source.Rows() {
		if err != nil {
			return err
		}
		if target, ok := targetIndex[Key(row, sourceCols)]; ok {
			c.merge(row, target)
			matched++
		} else {
			c.fallback(row)
			unmatched++
		}
	}

	if !c.customMerge {
		for _, col := range c.target.Columns() {
			if containsColumn(c.source.Columns(), col.Name) || slices.Contains(targetCols, col.Name) {
				continue
			}
			c.source.AddColumns(col)
		}
	}
	slog.Debug("joined tables",
		"matches", len(matches),
		"target_keys", len(targetIndex),
		"matched", matched,
		"unmatched", unmatched)
	return nil
}
