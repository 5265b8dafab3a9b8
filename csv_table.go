package tabular

import (
	"io"
	"slices"
	"strconv"
)

func syntheticColumn(i int) Column {
	return Col("column-" + strconv.Itoa(i))
}

// csvCursor produces the rows of a parsed table and resolves its columns from the directives,
// the header or the first record, in that order of precedence.
type csvCursor struct {
	csv      *Csv
	src      *sourceReader
	reader   *recordReader
	closeFn  func() error
	table    *StreamedTable
	cols     []Column
	resolved bool
	count    int
}

func (pc *csvCursor) start() error {
	pc.resolved = len(pc.csv.Columns) > 0
	pc.cols = slices.Clone(pc.csv.Columns)
	if !pc.csv.HasHeader {
		return nil
	}
	header, err := pc.reader.read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return pc.classify(err)
	}
	if pc.resolved {
		return nil
	}
	cols := make([]Column, len(header))
	for i, name := range header {
		if name == "" {
			cols[i] = syntheticColumn(i)
			continue
		}
		cols[i] = Col(name)
	}
	pc.resolve(cols)
	return nil
}

func (pc *csvCursor) resolve(cols []Column) {
	pc.resolved = true
	pc.cols = cols
	pc.table.columns = slices.Clone(cols)
	pc.csv.Columns = slices.Clone(cols)
}

func (pc *csvCursor) classify(err error) error {
	if pc.src.err != nil {
		return ErrRead(pc.src.err)
	}
	// Anything else, malformed records and undecodable bytes alike, is a bad source.
	return ErrSourceUnreadable(err)
}

func (pc *csvCursor) next() (*Row, bool, error) {
	if pc.csv.MaxRows > 0 && pc.count >= pc.csv.MaxRows {
		return nil, false, nil
	}
	record, err := pc.reader.read()
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pc.classify(err)
	}
	pc.count++
	if !pc.resolved {
		cols := make([]Column, len(record))
		for i := range record {
			cols[i] = syntheticColumn(i)
		}
		pc.resolve(cols)
	}
	data := make(map[string]string, len(pc.cols))
	for i, col := range pc.cols {
		if i >= len(record) {
			break
		}
		data[col.Name] = record[i]
	}
	return rowFromMap(data), true, nil
}

func (pc *csvCursor) close() error {
	return pc.closeFn()
}
