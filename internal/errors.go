package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// QueryErrorKind classifies query failures. All kinds are recoverable: the
// caller skips the offending database and continues with the others.
type QueryErrorKind int

const (
	// QueryNotFound: the file vanished between discovery and open.
	QueryNotFound QueryErrorKind = iota
	// QueryAccessDenied: permissions, or a writer lock held by the owning app.
	QueryAccessDenied
	// QuerySchemaMismatch: expected table or column absent.
	QuerySchemaMismatch
	// QueryFailed: malformed SQL, parameter mismatch, or timeout.
	QueryFailed
)

func (k QueryErrorKind) String() string {
	switch k {
	case QueryNotFound:
		return "not-found"
	case QueryAccessDenied:
		return "access-denied"
	case QuerySchemaMismatch:
		return "schema-mismatch"
	default:
		return "query-failed"
	}
}

// QueryError is a typed error from executing a read query against one
// database. It carries the offending path and a redacted query fragment
// for diagnostics.
type QueryError struct {
	Kind  QueryErrorKind
	Path  string
	Query string // redacted fragment, never full parameter values
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error [%s] %s (%s): %v", e.Kind, e.Path, e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps err with its classification and a redacted fragment
// of the query that produced it.
func NewQueryError(path, query string, err error) *QueryError {
	return &QueryError{
		Kind:  classifyQueryError(err),
		Path:  path,
		Query: redactQuery(query),
		Err:   err,
	}
}

// classifyQueryError maps a driver or filesystem error onto the taxonomy.
// Driver error strings are matched loosely because modernc.org/sqlite does
// not export stable sentinel errors for these conditions.
func classifyQueryError(err error) QueryErrorKind {
	if err == nil {
		return QueryFailed
	}
	if errors.Is(err, os.ErrNotExist) {
		return QueryNotFound
	}
	if errors.Is(err, os.ErrPermission) {
		return QueryAccessDenied
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return QueryFailed
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such file"), strings.Contains(msg, "unable to open database"):
		return QueryNotFound
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "busy"),
		strings.Contains(msg, "permission denied"), strings.Contains(msg, "readonly"):
		return QueryAccessDenied
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"):
		return QuerySchemaMismatch
	default:
		return QueryFailed
	}
}

// redactQuery keeps only the leading clause of a query so diagnostics never
// echo bound values or long key lists.
func redactQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	const maxLen = 60
	if len(query) > maxLen {
		return query[:maxLen] + "..."
	}
	return query
}

// DiscoveryError represents a database file that failed validation during
// discovery.
type DiscoveryError struct {
	Path string
	Op   string // "stat", "open", "validate"
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// SchemaError represents a database whose format could not be extracted.
type SchemaError struct {
	Path string
	Kind SchemaKind
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error [%s] %s: %v", e.Kind, e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// failureCategory renders err as a short category string for the result's
// failure ledger.
func failureCategory(err error) string {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind.String()
	}
	var de *DiscoveryError
	if errors.As(err, &de) {
		return "discovery-" + de.Op
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return "schema"
	}
	return "internal"
}
