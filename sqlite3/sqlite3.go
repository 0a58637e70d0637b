// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package sqlite3 adapts a SQLite connection, via
// github.com/mattn/go-sqlite3, to the driver contract.
//
// The adapter works at the database/sql/driver level rather than the C
// API: bindings are accumulated and handed over when the first Step
// starts the query. Two SQLite niceties are consequently approximated:
// error byte offsets are not available, and TEXT cells reach us as raw
// bytes, so they are told apart from BLOB cells using the declared
// column type where the schema provides one.
package sqlite3

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	gosqlite3 "github.com/mattn/go-sqlite3"

	"github.com/sqlbind/sqlbind/codes"
	"github.com/sqlbind/sqlbind/driver"
	"github.com/sqlbind/sqlbind/internal/sqltext"

	sqldriver "database/sql/driver"
)

// timeFormat matches the textual form the bind engine writes time
// values in.
const timeFormat = "2006-01-02 15:04:05.999999999Z07:00"

var sqliteDriver = &gosqlite3.SQLiteDriver{}

// Conn is a single SQLite connection. It is not safe for concurrent
// use.
type Conn struct {
	ci      sqldriver.Conn
	lastMsg string
}

// Open opens the SQLite database named by dsn, which accepts the same
// forms as mattn/go-sqlite3 (a file path, ":memory:", or a file: URI
// with options).
func Open(dsn string) (*Conn, error) {
	ci, err := sqliteDriver.Open(dsn)
	if err != nil {
		return nil, err
	}
	return &Conn{ci: ci}, nil
}

// Prepare parses the first statement out of query and prepares it,
// returning the remaining text as the tail.
func (c *Conn) Prepare(query string) (driver.Stmt, string, codes.Code) {
	head, tail := sqltext.SplitFirst(query)
	if head == "" {
		return nil, tail, codes.OK
	}
	inner, err := c.ci.Prepare(head)
	if err != nil {
		return nil, tail, c.fail(err)
	}
	return &Stmt{
		conn:   c,
		inner:  inner,
		sql:    head,
		params: sqltext.Params(head),
	}, tail, codes.OK
}

// ErrMsg returns the message of the most recent error on this
// connection.
func (c *Conn) ErrMsg() string {
	return c.lastMsg
}

// ErrOffset always returns -1: the driver does not expose SQL error
// offsets.
func (c *Conn) ErrOffset() int {
	return -1
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.ci.Close()
}

// fail records the error's message and returns its result code.
func (c *Conn) fail(err error) codes.Code {
	c.lastMsg = err.Error()
	return errCode(err)
}

func errCode(err error) codes.Code {
	var se gosqlite3.Error
	if errors.As(err, &se) {
		if se.ExtendedCode != 0 {
			return codes.Code(se.ExtendedCode)
		}
		return codes.Code(se.Code)
	}
	return codes.Error
}

// Stmt is a prepared SQLite statement. Bindings accumulate until the
// first Step, which starts the query and hands them over in one batch.
type Stmt struct {
	conn   *Conn
	inner  sqldriver.Stmt
	sql    string
	params []string

	binds []sqldriver.NamedValue

	rows  sqldriver.Rows
	buf   []sqldriver.Value
	cols  []string
	decls []string
}

func (s *Stmt) Conn() driver.Conn {
	return s.conn
}

func (s *Stmt) SQL() string {
	return s.sql
}

func (s *Stmt) BindParameterCount() int {
	return len(s.params)
}

func (s *Stmt) BindParameterIndex(name string) int {
	for i, p := range s.params {
		if p != "" && p == name {
			return i + 1
		}
	}
	return 0
}

func (s *Stmt) bind(i int, v sqldriver.Value) codes.Code {
	if i < 1 || i > len(s.params) {
		return codes.Range
	}
	if s.rows != nil {
		return codes.Misuse
	}
	if s.binds == nil {
		s.binds = make([]sqldriver.NamedValue, len(s.params))
		for j := range s.binds {
			s.binds[j].Ordinal = j + 1
		}
	}
	s.binds[i-1].Value = v
	return codes.OK
}

func (s *Stmt) BindInt64(i int, v int64) codes.Code {
	return s.bind(i, v)
}

func (s *Stmt) BindDouble(i int, v float64) codes.Code {
	return s.bind(i, v)
}

func (s *Stmt) BindText(i int, v string) codes.Code {
	return s.bind(i, v)
}

func (s *Stmt) BindBlob(i int, v []byte) codes.Code {
	return s.bind(i, v)
}

func (s *Stmt) BindNull(i int) codes.Code {
	return s.bind(i, nil)
}

// Step starts the query on first call, then fetches one row per call.
func (s *Stmt) Step() codes.Code {
	if s.rows == nil {
		if code := s.start(); code != codes.OK {
			return code
		}
	}
	err := s.rows.Next(s.buf)
	if err == io.EOF {
		return codes.Done
	}
	if err != nil {
		return s.conn.fail(err)
	}
	return codes.Row
}

func (s *Stmt) start() codes.Code {
	if s.binds == nil {
		s.binds = make([]sqldriver.NamedValue, len(s.params))
		for j := range s.binds {
			s.binds[j].Ordinal = j + 1
		}
	}
	sq, ok := s.inner.(sqldriver.StmtQueryContext)
	if !ok {
		return codes.Misuse
	}
	rows, err := sq.QueryContext(context.Background(), s.binds)
	if err != nil {
		return s.conn.fail(err)
	}
	s.rows = rows
	s.cols = rows.Columns()
	s.buf = make([]sqldriver.Value, len(s.cols))
	if dt, ok := rows.(sqldriver.RowsColumnTypeDatabaseTypeName); ok {
		s.decls = make([]string, len(s.cols))
		for i := range s.cols {
			s.decls[i] = dt.ColumnTypeDatabaseTypeName(i)
		}
	}
	return codes.OK
}

func (s *Stmt) Reset() codes.Code {
	if s.rows != nil {
		if err := s.rows.Close(); err != nil {
			s.rows = nil
			return s.conn.fail(err)
		}
		s.rows = nil
	}
	return codes.OK
}

func (s *Stmt) ColumnCount() int {
	return len(s.cols)
}

func (s *Stmt) ColumnName(i int) string {
	return s.cols[i]
}

func (s *Stmt) ColumnType(i int) driver.ColumnType {
	switch s.buf[i].(type) {
	case nil:
		return driver.Null
	case int64:
		return driver.Integer
	case float64:
		return driver.Float
	case string, time.Time:
		return driver.Text
	case []byte:
		if s.declaredText(i) {
			return driver.Text
		}
		return driver.Blob
	}
	return driver.Text
}

// declaredText reports whether column i's declared type marks it as
// textual. Expression columns have no declared type and default to
// BLOB, which round-trips the bytes either way.
func (s *Stmt) declaredText(i int) bool {
	if s.decls == nil || i >= len(s.decls) {
		return false
	}
	d := strings.ToUpper(s.decls[i])
	return strings.Contains(d, "CHAR") || strings.Contains(d, "TEXT") ||
		strings.Contains(d, "CLOB")
}

func (s *Stmt) ColumnInt64(i int) int64 {
	switch v := s.buf[i].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func (s *Stmt) ColumnDouble(i int) float64 {
	switch v := s.buf[i].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func (s *Stmt) ColumnText(i int) string {
	switch v := s.buf[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(timeFormat)
	}
	return ""
}

func (s *Stmt) ColumnBlob(i int) []byte {
	switch v := s.buf[i].(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	case time.Time:
		return []byte(v.Format(timeFormat))
	}
	return nil
}

// Finalize closes the row cursor and the underlying statement.
func (s *Stmt) Finalize() codes.Code {
	code := codes.OK
	if s.rows != nil {
		if err := s.rows.Close(); err != nil {
			code = s.conn.fail(err)
		}
		s.rows = nil
	}
	if s.inner != nil {
		if err := s.inner.Close(); err != nil && code == codes.OK {
			code = s.conn.fail(err)
		}
		s.inner = nil
	}
	return code
}
