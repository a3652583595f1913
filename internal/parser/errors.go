package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrBadFormat marks a file whose header or structure cannot be read.
	// The whole file is rejected.
	ErrBadFormat = errors.New("bad format")

	// ErrMalformedRecord marks a single line that violates the field
	// grammar of its file, e.g. an unknown enumerated code. Only that
	// record is affected.
	ErrMalformedRecord = errors.New("malformed record")
)

// ParseError carries the position of a parse failure.
type ParseError struct {
	File    string
	Line    int
	Record  string
	Message string
	Kind    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v at %s:%d: %s", e.Kind, e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%v in %s: %s", e.Kind, e.File, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func newBadFormat(file string, line int, format string, args ...any) *ParseError {
	return &ParseError{File: file, Line: line, Kind: ErrBadFormat, Message: fmt.Sprintf(format, args...)}
}

func newMalformed(file string, line int, record, format string, args ...any) *ParseError {
	return &ParseError{File: file, Line: line, Record: record, Kind: ErrMalformedRecord, Message: fmt.Sprintf(format, args...)}
}
