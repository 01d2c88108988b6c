package nb

import (
	"errors"
	"fmt"
)

// ErrCollaborator is wrapped by every error caused by nb reporting failure.
var ErrCollaborator = errors.New("nb command failed")

// QueryError carries the failure message nb produced for a query.
type QueryError struct {
	Query   Query
	Message string
}

func (e *QueryError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Query, ErrCollaborator)
	}
	return fmt.Sprintf("%s: %v: %s", e.Query, ErrCollaborator, e.Message)
}

func (e *QueryError) Unwrap() error { return ErrCollaborator }

// Error returns nil for an OK result and a *QueryError otherwise.
func (r Result) Error(q Query) error {
	if r.OK {
		return nil
	}
	return &QueryError{Query: q, Message: r.Err}
}
