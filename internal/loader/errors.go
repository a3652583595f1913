package loader

import (
	"errors"
	"fmt"
)

// ErrUnresolvedReference marks a fix or runway reference that could not
// be found in the World. Only the referencing procedure or airway
// segment is dropped.
var ErrUnresolvedReference = errors.New("unresolved reference")

type ResolveError struct {
	Airport   string
	Procedure string
	Fix       string
	Region    string
}

func (e *ResolveError) Error() string {
	if e.Procedure == "" {
		return fmt.Sprintf("%v: fix %s/%s", ErrUnresolvedReference, e.Fix, e.Region)
	}
	return fmt.Sprintf("%v: fix %s/%s in %s at %s", ErrUnresolvedReference, e.Fix, e.Region, e.Procedure, e.Airport)
}

func (e *ResolveError) Unwrap() error {
	return ErrUnresolvedReference
}
