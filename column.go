package tabular

// Column names a column of a table. It describes rows but does not constrain them.
type Column struct {
	Name       string      `json:"name" msgpack:"name"`
	Properties *Properties `json:"properties,omitempty" msgpack:"properties,omitempty"`
}

func Col(name string) Column {
	return Column{Name: name, Properties: Props()}
}

func Cols(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Col(name)
	}
	return cols
}

func Names(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func containsColumn(cols []Column, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}
