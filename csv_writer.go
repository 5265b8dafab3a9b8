package tabular

import (
	"bufio"
	"strings"
)

type recordWriter struct {
	w     *bufio.Writer
	delim rune
	quote rune
}

func newRecordWriter(w *bufio.Writer, delim, quote rune) *recordWriter {
	return &recordWriter{w: w, delim: delim, quote: quote}
}

func (rw *recordWriter) write(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := rw.w.WriteRune(rw.delim); err != nil {
				return err
			}
		}
		if !rw.needsQuotes(f) {
			if _, err := rw.w.WriteString(f); err != nil {
				return err
			}
			continue
		}
		if _, err := rw.w.WriteRune(rw.quote); err != nil {
			return err
		}
		for _, c := range f {
			if c == rw.quote {
				if _, err := rw.w.WriteRune(rw.quote); err != nil {
					return err
				}
			}
			if _, err := rw.w.WriteRune(c); err != nil {
				return err
			}
		}
		if _, err := rw.w.WriteRune(rw.quote); err != nil {
			return err
		}
	}
	return rw.w.WriteByte('\n')
}

func (rw *recordWriter) needsQuotes(f string) bool {
	return strings.ContainsRune(f, rw.delim) ||
		strings.ContainsRune(f, rw.quote) ||
		strings.ContainsAny(f, "\r\n")
}
