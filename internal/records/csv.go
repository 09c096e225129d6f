package records

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const bom = '\uFEFF'

// Reader streams client records out of delimited text. It is deliberately
// lenient: quotes may open anywhere in a field, an unterminated quote runs
// to end of input, CR and CRLF count as line breaks, every field is
// trimmed, short rows are padded with empty strings, and trailing blank
// rows are dropped. The only errors it returns come from the underlying
// io.Reader.
type Reader struct {
	in      *bufio.Reader
	started bool
	done    bool
	back    rune
	hasBack bool

	headers []string
	blank   [][]string // blank rows held back until a non-blank row follows
	queue   [][]string
}

func NewReader(r io.Reader) *Reader {
	return &Reader{in: bufio.NewReader(r)}
}

// Next returns the next record, or io.EOF once the input is exhausted.
func (cr *Reader) Next() (Record, error) {
	for {
		if len(cr.queue) > 0 {
			row := cr.queue[0]
			cr.queue = cr.queue[1:]
			if cr.headers == nil {
				cr.headers = headerKeys(row)
				continue
			}
			return newRecord(cr.headers, row), nil
		}
		if cr.done {
			return Record{}, io.EOF
		}

		row, eof, err := cr.readRow()
		if err != nil {
			return Record{}, err
		}
		cr.done = eof

		if blankRow(row) {
			cr.blank = append(cr.blank, row)
			continue
		}
		cr.queue = append(cr.queue, cr.blank...)
		cr.queue = append(cr.queue, row)
		cr.blank = nil
	}
}

// Headers returns the normalized header row, or nil before the first
// record has been read.
func (cr *Reader) Headers() []string {
	return cr.headers
}

// ReadAll drains the reader.
func (cr *Reader) ReadAll() ([]Record, error) {
	out := []Record{}
	for {
		rec, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Parse reads every record out of text. Input with no rows yields an
// empty slice.
func Parse(text string) []Record {
	out, _ := NewReader(strings.NewReader(text)).ReadAll()
	return out
}

func (cr *Reader) readRune() (rune, error) {
	if cr.hasBack {
		cr.hasBack = false
		return cr.back, nil
	}
	ch, _, err := cr.in.ReadRune()
	if err != nil {
		return 0, err
	}
	if !cr.started {
		cr.started = true
		if ch == bom {
			return cr.readRune()
		}
	}
	if ch == '\r' {
		if next, _, err := cr.in.ReadRune(); err == nil && next != '\n' {
			_ = cr.in.UnreadRune()
		}
		return '\n', nil
	}
	return ch, nil
}

// readRow reads up to and including the next unquoted line break. eof is
// true when the input ended before one was found.
func (cr *Reader) readRow() (row []string, eof bool, err error) {
	var (
		field    strings.Builder
		inQuotes bool
	)
	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}

	for {
		ch, err := cr.readRune()
		if errors.Is(err, io.EOF) {
			endField()
			return row, true, nil
		}
		if err != nil {
			return nil, false, err
		}

		if inQuotes {
			if ch != '"' {
				field.WriteRune(ch)
				continue
			}
			next, err := cr.readRune()
			if err == nil && next == '"' {
				field.WriteByte('"')
				continue
			}
			inQuotes = false
			if err == nil {
				cr.back, cr.hasBack = next, true
			}
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case ',':
			endField()
		case '\n':
			endField()
			return row, false, nil
		default:
			field.WriteRune(ch)
		}
	}
}

func headerKeys(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers
}

func blankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
