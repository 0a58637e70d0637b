// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package driver defines the wire-level contract between the
// marshalling engine and the underlying store: a prepared statement
// that accepts typed parameter bindings by 1-based position, steps
// through result rows, and exposes result columns typed as one of five
// fundamental kinds.
//
// The engine is agnostic to the backing implementation. Package
// sqlbind/sqlite3 provides one over a real SQLite connection; tests use
// scripted in-memory implementations.
package driver

import "github.com/sqlbind/sqlbind/codes"

// ColumnType enumerates the five fundamental column kinds.
type ColumnType int

const (
	Integer ColumnType = 1
	Float   ColumnType = 2
	Text    ColumnType = 3
	Blob    ColumnType = 4
	Null    ColumnType = 5
)

// String returns the conventional name of the column type.
func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case Text:
		return "TEXT"
	case Blob:
		return "BLOB"
	case Null:
		return "NULL"
	}
	return "UNKNOWN"
}

// Conn is an open connection to the store. It prepares statements and
// reports diagnostics for the most recent failure.
type Conn interface {
	// Prepare parses the first statement out of query. It returns the
	// prepared statement, the remaining unparsed text, and a result
	// code. A query containing only whitespace or comments yields a nil
	// statement, an empty tail and codes.OK.
	Prepare(query string) (stmt Stmt, tail string, code codes.Code)

	// ErrMsg returns the connection-scoped message describing the most
	// recent error, or the empty string when there is none.
	ErrMsg() string

	// ErrOffset returns the byte offset into the SQL text at which the
	// most recent error was detected, or -1 when unknown.
	ErrOffset() int

	// Close releases the connection. Statements prepared on the
	// connection must be finalized first.
	Close() error
}

// Stmt is a prepared statement. Parameters are addressed by 1-based
// position, result columns by 0-based position. A Stmt is not safe for
// concurrent use; serialization is the caller's responsibility.
type Stmt interface {
	// Conn returns the owning connection, or nil when the statement
	// was prepared outside this package's control.
	Conn() Conn

	// SQL returns the statement's source text.
	SQL() string

	// BindParameterCount returns the number of parameters in the
	// statement.
	BindParameterCount() int

	// BindParameterIndex returns the 1-based index of the named
	// parameter, or zero when the statement has no parameter with that
	// exact name (including its leading sigil, if any).
	BindParameterIndex(name string) int

	BindInt64(i int, v int64) codes.Code
	BindDouble(i int, v float64) codes.Code
	BindText(i int, v string) codes.Code
	BindBlob(i int, v []byte) codes.Code
	BindNull(i int) codes.Code

	// Step advances the statement. It returns codes.Row when a row is
	// available, codes.Done when the statement has finished, and an
	// error-class code otherwise.
	Step() codes.Code

	// Reset rewinds the statement so it may be stepped again. Bindings
	// are retained.
	Reset() codes.Code

	// ColumnCount returns the number of result columns. It is zero
	// until the statement produces rows.
	ColumnCount() int

	// ColumnName returns the name of column i.
	ColumnName(i int) string

	// ColumnType returns the declared type of column i in the current
	// row.
	ColumnType(i int) ColumnType

	ColumnInt64(i int) int64
	ColumnDouble(i int) float64
	ColumnText(i int) string

	// ColumnBlob returns the raw bytes of column i, or nil when the
	// column is NULL.
	ColumnBlob(i int) []byte

	// Finalize releases the statement. It is safe to call after an
	// error and must be called exactly once.
	Finalize() codes.Code
}
