package parser

import "errors"

// recordSink holds the callbacks every record parser exposes. Parsers
// never swallow errors: a per-record failure is handed to the error
// handler, and without one it aborts Load.
type recordSink[T any] struct {
	acceptor func(T) error
	onError  func(error) error
}

// SetAcceptor installs the callback receiving each parsed record. An
// error returned by the acceptor stops the parser and is returned by Load.
func (s *recordSink[T]) SetAcceptor(fn func(T) error) {
	s.acceptor = fn
}

// SetErrorHandler installs the callback receiving per-record parse
// errors. Returning nil continues with the next line.
func (s *recordSink[T]) SetErrorHandler(fn func(error) error) {
	s.onError = fn
}

func (s *recordSink[T]) accept(rec T) error {
	if s.acceptor == nil {
		return nil
	}
	return s.acceptor(rec)
}

func (s *recordSink[T]) fail(err error) error {
	if s.onError == nil {
		return err
	}
	return s.onError(err)
}

// errEndOfData stops line iteration at an explicit "99" end marker.
var errEndOfData = errors.New("end of data")

func ignoreEndOfData(err error) error {
	if errors.Is(err, errEndOfData) {
		return nil
	}
	return err
}
