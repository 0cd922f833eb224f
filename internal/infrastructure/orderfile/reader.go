// Package orderfile reads flat order-export files where order-level columns
// are repeated on every line-item row.
package orderfile

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Row is one data row of an export, addressable by column label.
type Row struct {
	// Index is the zero-based position of the row among data rows.
	Index int
	// LineNumber is the 1-based file line, header included.
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header label, empty if absent
func (r *Row) Get(label string) string {
	return r.Data[label]
}

// GetOrDefault returns the column value, or defaultVal when absent or empty
func (r *Row) GetOrDefault(label, defaultVal string) string {
	if val, ok := r.Data[label]; ok && val != "" {
		return val
	}
	return defaultVal
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Reader streams rows from a delimited order export. It validates the
// encoding, strips a UTF-8 BOM, and parses the header row up front so that
// rows can be read lazily one at a time.
type Reader struct {
	reader    *csv.Reader
	headers   []string
	headerMap map[string]int
	rowIndex  int
	line      int
}

// Option is a functional option for Reader configuration
type Option func(*readerConfig)

type readerConfig struct {
	delimiter rune
}

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) Option {
	return func(c *readerConfig) {
		c.delimiter = d
	}
}

// NewReader creates a streaming reader over an export file
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	cfg := &readerConfig{delimiter: ','}
	for _, opt := range opts {
		opt(cfg)
	}

	buf := bufio.NewReader(r)

	// Strip UTF-8 BOM if present
	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	if err := validateUTF8(buf); err != nil {
		return nil, err
	}

	cr := csv.NewReader(buf)
	cr.Comma = cfg.delimiter
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // exports routinely have ragged rows

	or := &Reader{
		reader:    cr,
		headerMap: make(map[string]int),
	}
	if err := or.parseHeader(); err != nil {
		return nil, err
	}
	return or, nil
}

// validateUTF8 checks that the leading content is valid UTF-8
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	// A full buffer may end mid-rune; trim up to 3 trailing bytes before checking.
	if len(content) == checkSize {
		for i := 0; i < 3 && len(content) > 0; i++ {
			if utf8.Valid(content) {
				break
			}
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

func (r *Reader) parseHeader() error {
	record, err := r.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	r.headers = make([]string, len(record))
	for i, h := range record {
		header := strings.TrimSpace(h)
		r.headers[i] = header
		r.headerMap[header] = i
	}
	if len(r.headers) == 0 {
		return ErrMissingHeader
	}
	r.line = 1
	return nil
}

// Headers returns the parsed header labels
func (r *Reader) Headers() []string {
	return r.headers
}

// HasHeader checks whether a column label is present
func (r *Reader) HasHeader(label string) bool {
	_, ok := r.headerMap[label]
	return ok
}

// Next reads the next non-empty data row. It returns io.EOF when the file is
// exhausted. Completely empty rows are skipped and do not consume an index.
func (r *Reader) Next() (*Row, error) {
	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		r.line++
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", r.line, err)
		}

		row := &Row{
			Index:      r.rowIndex,
			LineNumber: r.line,
			Data:       make(map[string]string, len(r.headers)),
		}
		for i, header := range r.headers {
			if i < len(record) {
				row.Data[header] = strings.TrimSpace(record[i])
			} else {
				row.Data[header] = ""
			}
		}

		if row.IsEmpty() {
			continue
		}
		r.rowIndex++
		return row, nil
	}
}

// RowsRead returns the number of data rows returned so far
func (r *Reader) RowsRead() int {
	return r.rowIndex
}

// CountRows parses the header and counts the non-empty data rows of an export.
// It consumes the reader; callers reopen the file to stream the rows afterwards.
func CountRows(r io.Reader, opts ...Option) (int, error) {
	or, err := NewReader(r, opts...)
	if err != nil {
		return 0, err
	}
	count := 0
	for {
		_, err := or.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		count++
	}
}
