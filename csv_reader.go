package tabular

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrUnterminatedQuote = errors.New("unterminated quoted field")

// ParseError locates a malformed record in the source.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// sourceReader remembers failures of the underlying reader so they can be told apart from
// decoding failures.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

type recordReader struct {
	r     *bufio.Reader
	delim rune
	quote rune
	line  int
}

func newRecordReader(r io.Reader, delim, quote rune) *recordReader {
	return &recordReader{
		r:     bufio.NewReader(r),
		delim: delim,
		quote: quote,
	}
}

// read returns the next non-blank record, or io.EOF.
func (rr *recordReader) read() ([]string, error) {
	for {
		fields, quoted, err := rr.readRecord()
		if err != nil {
			return nil, err
		}
		if len(fields) == 1 && fields[0] == "" && !quoted {
			continue
		}
		return fields, nil
	}
}

func (rr *recordReader) readRecord() ([]string, bool, error) {
	var (
		fields     []string
		field      strings.Builder
		inQuotes   bool
		quotedSeen bool
		fieldStart = true
		sawAny     bool
	)
	rr.line++
	startLine := rr.line
	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
		fieldStart = true
	}
	for {
		c, _, err := rr.r.ReadRune()
		if err == io.EOF {
			if inQuotes {
				return nil, false, &ParseError{Line: startLine, Err: ErrUnterminatedQuote}
			}
			if !sawAny {
				return nil, false, io.EOF
			}
			endField()
			return fields, quotedSeen, nil
		}
		if err != nil {
			return nil, false, err
		}
		sawAny = true

		if inQuotes {
			if c == rr.quote {
				n, _, err := rr.r.ReadRune()
				switch {
				case err == nil && n == rr.quote:
					field.WriteRune(c)
					continue
				case err == nil:
					_ = rr.r.UnreadRune()
				case err != io.EOF:
					return nil, false, err
				}
				inQuotes = false
				continue
			}
			if c == '\n' {
				rr.line++
			}
			field.WriteRune(c)
			continue
		}

		switch {
		case c == rr.delim:
			endField()
		case c == '\n':
			endField()
			return fields, quotedSeen, nil
		case c == '\r':
			n, _, err := rr.r.ReadRune()
			if err == nil && n != '\n' {
				_ = rr.r.UnreadRune()
				field.WriteRune(c)
				fieldStart = false
				continue
			}
			if err != nil && err != io.EOF {
				return nil, false, err
			}
			endField()
			return fields, quotedSeen, nil
		case c == rr.quote && fieldStart:
			inQuotes = true
			quotedSeen = true
			fieldStart = false
		default:
			field.WriteRune(c)
			fieldStart = false
		}
	}
}
