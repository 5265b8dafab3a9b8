package tabular_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/longlodw/tabular"
)

// Example parses two CSV sources, joins them on a shared column and prints the result.
func Example() {
	people, err := tabular.NewCsv().ParseString("id,name\n1,alice\n2,bob\n3,carol\n")
	if err != nil {
		panic(err)
	}
	cities, err := tabular.NewCsv().ParseString("id,city\n1,paris\n3,oslo\n")
	if err != nil {
		panic(err)
	}

	// The source is modified in place, so it must be materialized first.
	source, err := people.Materialize()
	if err != nil {
		panic(err)
	}
	if err := tabular.Join(source).With(cities).BasedOn(tabular.Match("id")); err != nil {
		panic(err)
	}

	out, err := tabular.NewCsv().SerializeString(source)
	if err != nil {
		panic(err)
	}
	fmt.Print(out)
	// Output:
	// id,name,city
	// 1,alice,paris
	// 2,bob
	// 3,carol,oslo
}

func ExampleGroup() {
	table := tabular.NewTable([]string{"team", "member"},
		[]string{"red", "ann"},
		[]string{"blue", "ben"},
		[]string{"red", "cat"})

	groups, err := tabular.Group(table).By("team")
	if err != nil {
		panic(err)
	}
	for _, team := range []string{"blue", "red"} {
		fmt.Println(team, len(groups[team]))
	}
	// Output:
	// blue 1
	// red 2
}

func ExampleDB() {
	dir, err := os.MkdirTemp("", "tabular_example_")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	db, err := tabular.OpenDB(filepath.Join(dir, "tables.db"), 0600, nil)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	table := tabular.NewTable([]string{"k", "v"}, []string{"a", "1"}, []string{"b", "2"})
	if err := db.Save("pairs", table); err != nil {
		panic(err)
	}

	loaded, err := db.Load("pairs")
	if err != nil {
		panic(err)
	}
	if err := tabular.Print(os.Stdout, loaded, "v"); err != nil {
		panic(err)
	}
	// Output:
	// 1:1
	// 2:2
}
