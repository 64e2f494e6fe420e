package internal

import (
	"context"
	"database/sql"
	"time"
)

// Executor runs parameterized read-only queries against one database with a
// bounded timeout per call. Queries are never string-interpolated: parameter
// binding only, even though inputs are locally generated.
type Executor struct {
	db      *sql.DB
	path    string
	timeout time.Duration
}

// NewExecutor wraps an open database. A non-positive timeout falls back to
// DefaultQueryTimeout.
func NewExecutor(db *sql.DB, path string, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Executor{db: db, path: path, timeout: timeout}
}

// Path returns the database file path this executor reads.
func (e *Executor) Path() string {
	return e.path
}

// QueryValue fetches the single value stored under key in table. Missing
// keys return ok=false with no error; everything else surfaces as a typed
// *QueryError, recoverable by skipping this database.
func (e *Executor) QueryValue(table, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	var query string
	switch table {
	case "ItemTable":
		query = "SELECT value FROM ItemTable WHERE key = ?"
	case "cursorDiskKV":
		query = "SELECT value FROM cursorDiskKV WHERE key = ?"
	default:
		return nil, false, NewQueryError(e.path, "SELECT value FROM "+table, errUnknownTable(table))
	}

	var value []byte
	err := e.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, NewQueryError(e.path, query, err)
	}
	return value, true, nil
}

// QueryPrefix returns all key/value rows in table whose key matches the
// LIKE pattern, e.g. "bubbleId:%".
func (e *Executor) QueryPrefix(table, pattern string) ([]KeyValue, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	var query string
	switch table {
	case "ItemTable":
		query = "SELECT key, value FROM ItemTable WHERE key LIKE ? AND value IS NOT NULL"
	case "cursorDiskKV":
		query = "SELECT key, value FROM cursorDiskKV WHERE key LIKE ? AND value IS NOT NULL"
	default:
		return nil, NewQueryError(e.path, "SELECT key, value FROM "+table, errUnknownTable(table))
	}

	rows, err := e.db.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, NewQueryError(e.path, query, err)
	}
	defer rows.Close()

	var pairs []KeyValue
	for rows.Next() {
		var kv KeyValue
		var value sql.NullString
		if err := rows.Scan(&kv.Key, &value); err != nil {
			return nil, NewQueryError(e.path, query, err)
		}
		if value.Valid {
			kv.Value = []byte(value.String)
			pairs = append(pairs, kv)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError(e.path, query, err)
	}

	return pairs, nil
}

// KeyValue is one row from a key-value storage table.
type KeyValue struct {
	Key   string
	Value []byte
}

type errUnknownTable string

func (e errUnknownTable) Error() string {
	return "unknown storage table: " + string(e)
}
