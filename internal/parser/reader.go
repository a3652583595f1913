package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const maxLineLength = 1 << 20

// LineReader feeds a line-oriented text source to a per-line handler and
// offers left-to-right field extraction on the current line. Extraction
// never crosses into the next line: running out of fields yields empty
// strings, zeros or NaN rather than errors, because the X-Plane formats
// routinely omit trailing columns.
type LineReader struct {
	name    string
	scanner *bufio.Scanner
	closers []io.Closer

	line   string
	pos    int
	lineNo int

	version     int
	versionText string
}

// NewLineReader wraps r. name identifies the source in errors and logs.
func NewLineReader(r io.Reader, name string) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineLength)
	return &LineReader{name: name, scanner: sc}
}

// Open opens a data file for reading. Files ending in .gz or .zst are
// decompressed on the fly.
func Open(path string) (*LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var r io.Reader = f
	closers := []io.Closer{f}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, newBadFormat(path, 0, "invalid gzip stream: %v", err)
		}
		r = gz
		closers = append([]io.Closer{gz}, closers...)
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, newBadFormat(path, 0, "invalid zstd stream: %v", err)
		}
		rc := zr.IOReadCloser()
		r = rc
		closers = append([]io.Closer{rc}, closers...)
	}

	lr := NewLineReader(r, path)
	lr.closers = closers
	return lr, nil
}

// Close releases the underlying file, if the reader owns one.
func (r *LineReader) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func (r *LineReader) Name() string {
	return r.name
}

// ReadHeader consumes the two header lines common to the X-Plane data
// files: a format tag ("A" or "I") and "<version> <free text>".
func (r *LineReader) ReadHeader() error {
	if !r.next() {
		if err := r.scanner.Err(); err != nil {
			return fmt.Errorf("failed to read %s: %w", r.name, err)
		}
		return newBadFormat(r.name, 1, "missing format tag")
	}

	tag := strings.TrimSpace(strings.TrimPrefix(r.line, "\ufeff"))
	if tag != "A" && tag != "I" {
		return newBadFormat(r.name, r.lineNo, "unexpected format tag %q", tag)
	}

	if !r.next() {
		if err := r.scanner.Err(); err != nil {
			return fmt.Errorf("failed to read %s: %w", r.name, err)
		}
		return newBadFormat(r.name, 2, "missing version line")
	}
	r.version = r.Int()
	r.versionText = r.RestOfLine()
	return nil
}

// Version returns the numeric version read by ReadHeader.
func (r *LineReader) Version() int {
	return r.version
}

func (r *LineReader) VersionText() string {
	return r.versionText
}

// ForEachLine calls fn once per remaining line with the cursor reset to
// the start of that line. Iteration stops at the end of input or at the
// first error returned by fn.
func (r *LineReader) ForEachLine(fn func() error) error {
	for r.next() {
		if err := fn(); err != nil {
			return err
		}
	}
	if err := r.scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s at line %d: %w", r.name, r.lineNo, err)
	}
	return nil
}

func (r *LineReader) next() bool {
	if !r.scanner.Scan() {
		return false
	}
	r.line = strings.TrimRight(r.scanner.Text(), "\r")
	r.pos = 0
	r.lineNo++
	return true
}

func (r *LineReader) LineNumber() int {
	return r.lineNo
}

// Line returns the full text of the current line.
func (r *LineReader) Line() string {
	return r.line
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func (r *LineReader) skipSpace() {
	for r.pos < len(r.line) && isSpace(r.line[r.pos]) {
		r.pos++
	}
}

// EOL reports whether only whitespace remains on the current line.
func (r *LineReader) EOL() bool {
	r.skipSpace()
	return r.pos >= len(r.line)
}

// Word returns the next whitespace-delimited token, or "" at end of line.
func (r *LineReader) Word() string {
	r.skipSpace()
	start := r.pos
	for r.pos < len(r.line) && !isSpace(r.line[r.pos]) {
		r.pos++
	}
	return r.line[start:r.pos]
}

// RestOfLine returns everything left on the line with surrounding
// whitespace removed.
func (r *LineReader) RestOfLine() string {
	r.skipSpace()
	s := r.line[r.pos:]
	r.pos = len(r.line)
	return strings.TrimRight(s, " \t")
}

// Delimited returns the text up to the next delim (or end of line) and
// consumes the delimiter. The token is trimmed of surrounding spaces.
func (r *LineReader) Delimited(delim byte) string {
	start := r.pos
	for r.pos < len(r.line) && r.line[r.pos] != delim {
		r.pos++
	}
	tok := r.line[start:r.pos]
	if r.pos < len(r.line) {
		r.pos++
	}
	return strings.TrimSpace(tok)
}

// CSV returns the next comma separated value. Values enclosed in double
// quotes may contain commas; a doubled quote inside them is a literal quote.
func (r *LineReader) CSV() string {
	r.skipSpace()
	if r.pos >= len(r.line) || r.line[r.pos] != '"' {
		return r.Delimited(',')
	}

	r.pos++
	var sb strings.Builder
	for r.pos < len(r.line) {
		c := r.line[r.pos]
		if c == '"' {
			if r.pos+1 < len(r.line) && r.line[r.pos+1] == '"' {
				sb.WriteByte('"')
				r.pos += 2
				continue
			}
			r.pos++
			break
		}
		sb.WriteByte(c)
		r.pos++
	}
	// drop anything between the closing quote and the next comma
	r.Delimited(',')
	return sb.String()
}

// Int parses an optionally signed run of digits. It returns 0 and leaves
// the cursor alone when no digits are found.
func (r *LineReader) Int() int {
	r.skipSpace()
	start := r.pos
	p := r.pos
	if p < len(r.line) && (r.line[p] == '-' || r.line[p] == '+') {
		p++
	}
	digitsStart := p
	for p < len(r.line) && r.line[p] >= '0' && r.line[p] <= '9' {
		p++
	}
	if p == digitsStart {
		return 0
	}
	v, err := strconv.Atoi(r.line[start:p])
	if err != nil {
		return 0
	}
	r.pos = p
	return v
}

// Double parses the next word as a decimal number, independent of the
// process locale. NaN is returned when the word is not a number.
func (r *LineReader) Double() float64 {
	w := r.Word()
	if w == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
