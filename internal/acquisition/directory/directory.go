// Package directory defines the DirectorySource contract and its decorators.
// The source is an opaque paginated lookup: a query and an optional cursor in,
// a page of records and the next cursor out.
package directory

import (
	"context"
	"errors"
)

// ErrUnavailable marks upstream failures worth retrying.
var ErrUnavailable = errors.New("directory unavailable")

// Record is one raw business entry returned by the upstream directory.
type Record struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Website     string  `json:"website"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	MapLink     string  `json:"mapLink"`
}

// Page is one result page. An empty NextCursor means the query is exhausted.
type Page struct {
	Records    []Record
	NextCursor string
}

// Source is the DirectorySource.
type Source interface {
	Search(ctx context.Context, query string, pageSize int, cursor string) (Page, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, query string, pageSize int, cursor string) (Page, error)

func (f SourceFunc) Search(ctx context.Context, query string, pageSize int, cursor string) (Page, error) {
	return f(ctx, query, pageSize, cursor)
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsRetryable reports whether a failed Search may succeed if repeated.
// Context cancellation and errors wrapped with Permanent are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perm permanentError
	return !errors.As(err, &perm)
}
