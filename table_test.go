package tabular

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func countRows(t *testing.T, table Table) int {
	t.Helper()
	n := 0
	for _, err := range table.Rows() {
		if err != nil {
			t.Fatal(err)
		}
		n++
	}
	return n
}

func mustEqual(t *testing.T, want, got Table) {
	t.Helper()
	eq, err := Equal(want, got)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		mw, _ := want.Materialize()
		mg, _ := got.Materialize()
		t.Fatalf("tables differ:\nwant %v %v\ngot  %v %v", Names(mw.Columns()), mw.rows, Names(mg.Columns()), mg.rows)
	}
}

func TestTable_BuiltTablesAreMaterialized(t *testing.T) {
	table := NewTable([]string{"c1", "c2"}, []string{"v1", "v2"}, []string{"v3", "v4"})
	if !table.Materialized() {
		t.Fatal("expected a materialized table")
	}
	m, err := table.Materialize()
	if err != nil {
		t.Fatal(err)
	}
	if m != table {
		t.Fatal("materializing a materialized table must return the same instance")
	}
	if countRows(t, table) != 2 || countRows(t, table) != 2 {
		t.Fatal("materialized tables can be traversed repeatedly")
	}
}

func TestTable_DropColumn(t *testing.T) {
	var table Table = NewTable([]string{"c1", "c2"}, []string{"v1", "v2"}, []string{"v3", "v4"})

	table = table.With(func(r *Row) *Row { return r.Remove("c1") })
	if table.Materialized() {
		t.Fatal("a derived table is streamed")
	}

	m, err := table.Materialize()
	if err != nil {
		t.Fatal(err)
	}
	if !m.Materialized() {
		t.Fatal("expected materialized table")
	}
	for row := range m.Rows() {
		if row.Has("c1") {
			t.Fatalf("c1 should be gone from %v", row)
		}
	}
}

func TestTable_ExtractColumn(t *testing.T) {
	table := NewTable([]string{"c1", "c2"}, []string{"v1", "v2"}, []string{"v3", "v4"})

	view := table.With(func(r *Row) *Row { return r.Extract("c1") })
	for row, err := range view.Rows() {
		if err != nil {
			t.Fatal(err)
		}
		if row.Has("c2") {
			t.Fatalf("c2 should be gone from %v", row)
		}
	}
}

func TestTable_StreamedOnce(t *testing.T) {
	table, err := NewStreamed(Cols("c"), slices.Values([]*Row{
		NewRow().Set("c", "1"),
		NewRow().Set("c", "2"),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if n := countRows(t, table); n != 2 {
		t.Fatalf("expected 2 rows on first traversal, got %d", n)
	}
	if n := countRows(t, table); n != 0 {
		t.Fatalf("expected no rows on second traversal, got %d", n)
	}
	if !table.Exhausted() {
		t.Fatal("expected table to be exhausted")
	}
}

func TestTable_MaterializeMakesRepeatable(t *testing.T) {
	table, err := NewCsv().ParseString("c1,c2\n1,2\n3,4\n")
	if err != nil {
		t.Fatal(err)
	}
	m, err := table.Materialize()
	if err != nil {
		t.Fatal(err)
	}
	first := m.RowSlice()
	second := m.RowSlice()
	if len(first) != 2 || !slices.EqualFunc(first, second, (*Row).Equal) {
		t.Fatalf("unexpected traversals %v %v", first, second)
	}
	if countRows(t, table) != 0 {
		t.Fatal("the streamed table was drained by materialization")
	}
}

func TestTable_CopyIsIndependent(t *testing.T) {
	t1 := NewTable([]string{"c1", "c2"}, []string{"v1", "v2"}, []string{"v3", "v4"})

	t2, err := t1.With((*Row).Clone).Materialize()
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, t1, t2)
	mustEqual(t, t2, t1.Copy())

	t2.Row(0).Set("c1", "changed")
	if v, _ := t1.Row(0).Get("c1"); v != "v1" {
		t.Fatal("copies must not share rows")
	}
}

func TestTable_ViewColumnsAreIndependent(t *testing.T) {
	t1 := NewTable([]string{"c1", "c2"}, []string{"v1", "v2"})
	view := t1.With(func(r *Row) *Row { return r })

	view.AddColumns(Col("c3"))
	if len(t1.Columns()) != 2 {
		t.Fatal("adding a column to a view must not affect the source")
	}
	t1.SetColumns(Col("only"))
	if len(view.Columns()) != 3 {
		t.Fatal("changing the source must not affect the view")
	}
}

func TestTable_ViewSharesColumnProperties(t *testing.T) {
	t1 := NewTable([]string{"c1"})
	view := t1.With(func(r *Row) *Row { return r })
	t1.Columns()[0].Properties.Set("kind", "text")
	if _, err := GetProp[string](view.Columns()[0].Properties, "kind"); err != nil {
		t.Fatalf("column properties should be shared: %v", err)
	}
}

func TestTable_ViewAdvancesWithSource(t *testing.T) {
	source, err := NewCsv().ParseString("c\n1\n2\n3\n")
	if err != nil {
		t.Fatal(err)
	}
	view := source.With(func(r *Row) *Row { return r })

	next := 0
	for row, err := range view.Rows() {
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := row.Get("c"); v != "1" {
			t.Fatalf("unexpected row %v", row)
		}
		next++
		break
	}
	rest := countRows(t, source)
	if next != 1 || rest != 2 {
		t.Fatalf("expected source to continue after the view, got %d then %d", next, rest)
	}
	if countRows(t, view) != 0 {
		t.Fatal("view should be exhausted with its source")
	}
}

func TestTable_Preconditions(t *testing.T) {
	if _, err := NewMaterialized(nil, nil); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	if _, err := NewStreamed(nil, nil); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	if _, err := UnfoldWith(nil, nil); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestTable_AddRemove(t *testing.T) {
	table, err := NewMaterialized(Cols("c"), slices.Values([]*Row{NewRow().Set("c", "1")}))
	if err != nil {
		t.Fatal(err)
	}
	r2 := NewRow().Set("c", "2")
	table.Add(r2, nil, NewRow().Set("c", "3"))
	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}
	table.Remove(NewRow().Set("c", "1"), r2)
	if table.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", table.Len())
	}
	if v, _ := table.Row(0).Get("c"); v != "3" {
		t.Fatalf("unexpected remaining row %v", table.Row(0))
	}
}

func TestTable_UnfoldWith(t *testing.T) {
	table := NewTable([]string{"k", "v"}, []string{"a", "1"}, []string{"b", "2"})
	unfolded, err := UnfoldWith(table, func(r *Row) []*Row {
		return []*Row{r.Extract("k"), r.Extract("v")}
	})
	if err != nil {
		t.Fatal(err)
	}
	if unfolded.Len() != 4 || len(unfolded.Columns()) != 0 {
		t.Fatalf("unexpected unfolded table: %d rows, %d columns", unfolded.Len(), len(unfolded.Columns()))
	}
}

func TestTable_Builder(t *testing.T) {
	built := NewTableBuilder().Cols("c1", "c2").Row("1", "2").Row("3").Build()
	want := NewTable([]string{"c1", "c2"}, []string{"1", "2"}, []string{"3"})
	mustEqual(t, want, built)
	if built.Row(1).Has("c2") {
		t.Fatal("short rows leave trailing columns absent")
	}
}

func TestTable_Equal(t *testing.T) {
	a := NewTable([]string{"c1"}, []string{"1"})
	b := NewTable([]string{"c1"}, []string{"2"})
	c := NewTable([]string{"d1"}, []string{"1"})
	if eq, _ := Equal(a, b); eq {
		t.Fatal("different rows")
	}
	if eq, _ := Equal(a, c); eq {
		t.Fatal("different columns")
	}
}

func TestPrint(t *testing.T) {
	table := NewTable([]string{"c1", "c2"}, []string{"1", "2"}, []string{"3"})

	var b strings.Builder
	if err := Print(&b, table, "c1", "c2"); err != nil {
		t.Fatal(err)
	}
	want := "1:c1=1, c2=2\n2:c1=3, c2=<missing>\n"
	if b.String() != want {
		t.Fatalf("expected %q, got %q", want, b.String())
	}

	b.Reset()
	if err := Print(&b, table, "c2"); err != nil {
		t.Fatal(err)
	}
	if want := "1:2\n2:<missing>\n"; b.String() != want {
		t.Fatalf("expected %q, got %q", want, b.String())
	}

	b.Reset()
	if err := Print(&b, table); err != nil {
		t.Fatal(err)
	}
	if want := "1:{c1=1, c2=2}\n2:{c1=3}\n"; b.String() != want {
		t.Fatalf("expected %q, got %q", want, b.String())
	}
}
