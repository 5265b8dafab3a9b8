package tabular

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const DefaultEncoding = "UTF-8"

// Csv holds the directives to convert between tables and CSV streams.
//
// Columns plays a special role. When parsing, non-empty Columns supersede any header in the
// data, which is then discarded. When serialising, non-empty Columns supersede the columns of
// the table. In both directions records are truncated to the expected number of columns, which
// subsets the data vertically just as MaxRows subsets it horizontally. After parsing or
// serialising, empty Columns are set to the columns actually used.
type Csv struct {
	HasHeader bool     `json:"hasHeader" msgpack:"hasHeader"`
	Delimiter rune     `json:"delimiter" msgpack:"delimiter"`
	Quote     rune     `json:"quote" msgpack:"quote"`
	Encoding  string   `json:"encoding" msgpack:"encoding"`
	MaxRows   int      `json:"rows" msgpack:"rows"` // <= 0 is unbounded
	Columns   []Column `json:"columns" msgpack:"columns"`
}

func NewCsv() *Csv {
	return &Csv{
		HasHeader: true,
		Delimiter: ',',
		Quote:     '"',
		Encoding:  DefaultEncoding,
	}
}

func (c *Csv) WithHeader(hasHeader bool) *Csv {
	c.HasHeader = hasHeader
	return c
}

func (c *Csv) WithDelimiter(delim rune) *Csv {
	c.Delimiter = delim
	return c
}

func (c *Csv) WithQuote(quote rune) *Csv {
	c.Quote = quote
	return c
}

func (c *Csv) WithEncoding(name string) *Csv {
	c.Encoding = name
	return c
}

// WithMaxRows limits parsing to the first n records after any header. Zero or a negative n
// reads every record; it does not yield an empty table.
func (c *Csv) WithMaxRows(n int) *Csv {
	c.MaxRows = n
	return c
}

func (c *Csv) WithColumns(names ...string) *Csv {
	c.Columns = append(c.Columns, Cols(names...)...)
	return c
}

func (c *Csv) WithCols(cols ...Column) *Csv {
	c.Columns = append(c.Columns, cols...)
	return c
}

func (c *Csv) validate() error {
	switch {
	case c.Delimiter == 0 || !utf8.ValidRune(c.Delimiter) || c.Delimiter == utf8.RuneError:
		return ErrBadDirective("invalid delimiter")
	case c.Quote == 0 || !utf8.ValidRune(c.Quote) || c.Quote == utf8.RuneError:
		return ErrBadDirective("invalid quote")
	case c.Delimiter == c.Quote:
		return ErrBadDirective("delimiter and quote must differ")
	case c.Delimiter == '\r' || c.Delimiter == '\n' || c.Quote == '\r' || c.Quote == '\n':
		return ErrBadDirective("delimiter and quote cannot be line breaks")
	}
	return nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" || strings.EqualFold(name, DefaultEncoding) || strings.EqualFold(name, "UTF8") {
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %s is not supported", name)
	}
	return enc, nil
}

// Parse returns a streamed table over the CSV data in r. If r is an io.Closer it is closed once
// the table is exhausted or closed, or when parsing fails.
func (c *Csv) Parse(r io.Reader) (*StreamedTable, error) {
	if r == nil {
		return nil, ErrMissingArgument("source")
	}
	closeSource := func() error {
		if closer, ok := r.(io.Closer); ok {
			return closer.Close()
		}
		return nil
	}
	if err := c.validate(); err != nil {
		return nil, errors.Join(err, closeSource())
	}
	enc, err := lookupEncoding(c.Encoding)
	if err != nil {
		return nil, errors.Join(ErrUnknownEncoding(c.Encoding, err), closeSource())
	}
	src := &sourceReader{r: r}
	pc := &csvCursor{
		csv:     c,
		src:     src,
		reader:  newRecordReader(transform.NewReader(src, enc.NewDecoder()), c.Delimiter, c.Quote),
		closeFn: closeSource,
	}
	t := newStreamed(slices.Clone(c.Columns), pc)
	pc.table = t
	if err := pc.start(); err != nil {
		return nil, errors.Join(err, closeSource())
	}
	return t, nil
}

func (c *Csv) ParseString(s string) (*StreamedTable, error) {
	return c.Parse(strings.NewReader(s))
}

// ParseFile opens path and parses it; the file is closed with the table.
func (c *Csv) ParseFile(path string) (*StreamedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrSourceUnreadable(err)
	}
	return c.Parse(f)
}

// Serialize writes t to w. w is not closed.
func (c *Csv) Serialize(t Table, w io.Writer) error {
	if t == nil {
		return ErrMissingArgument("table")
	}
	if w == nil {
		return ErrMissingArgument("sink")
	}
	if err := c.validate(); err != nil {
		return err
	}
	enc, err := lookupEncoding(c.Encoding)
	if err != nil {
		return ErrBadDirective(err.Error())
	}

	next, stop := iter.Pull2(t.Rows())
	defer stop()
	// A streamed table may only learn its columns from its first record.
	first, err, ok := next()
	if err != nil {
		return err
	}

	columns := c.Columns
	if len(columns) == 0 {
		columns = t.Columns()
	}

	tw := transform.NewWriter(w, enc.NewEncoder())
	bw := bufio.NewWriter(tw)
	rw := newRecordWriter(bw, c.Delimiter, c.Quote)

	if c.HasHeader {
		if err := rw.write(Names(columns)); err != nil {
			return ErrWrite(err)
		}
	}
	count := 0
	for row := first; ok; row, err, ok = next() {
		if err != nil {
			return err
		}
		record := make([]string, 0, len(columns))
		for _, col := range columns {
			if v, ok := row.Get(col.Name); ok && v != "" {
				record = append(record, v)
			}
		}
		if err := rw.write(record); err != nil {
			return ErrWrite(err)
		}
		count++
	}
	if err := bw.Flush(); err != nil {
		return ErrWrite(err)
	}
	if err := tw.Close(); err != nil {
		return ErrWrite(err)
	}

	if len(c.Columns) == 0 {
		c.Columns = slices.Clone(columns)
	}
	slog.Debug("serialised table", "rows", count, "columns", len(columns))
	return nil
}

// SerializeFile writes t to a file the codec creates and closes.
func (c *Csv) SerializeFile(t Table, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return ErrWrite(err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, ErrWrite(cerr))
		}
	}()
	return c.Serialize(t, f)
}

// Convert serialises t in memory and returns a reader over the result.
func (c *Csv) Convert(t Table) (io.Reader, error) {
	var buf bytes.Buffer
	if err := c.Serialize(t, &buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (c *Csv) SerializeString(t Table) (string, error) {
	var b strings.Builder
	if err := c.Serialize(t, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
