// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package fakestore is a scripted in-memory implementation of the
// driver contract, used to exercise the marshalling engines and the
// execution sequencer without a real database.
package fakestore

import (
	"fmt"
	"strconv"

	"github.com/sqlbind/sqlbind/codes"
	"github.com/sqlbind/sqlbind/driver"
	"github.com/sqlbind/sqlbind/internal/sqltext"
)

// Result scripts the behavior of one prepared statement. Cells are
// plain Go values: nil, int64, float64, string, or []byte.
type Result struct {
	// PrepareCode, when not OK, fails the prepare itself.
	PrepareCode codes.Code
	// Columns names the result columns.
	Columns []string
	// Rows are delivered by successive Step calls.
	Rows [][]any
	// StepCode, when not OK, is returned by Step once Rows are
	// exhausted, instead of Done.
	StepCode codes.Code
	// BindCode, when not OK, is returned by every bind call.
	BindCode codes.Code
}

// Conn is a scripted connection. Each Prepare of a non-empty statement
// consumes the next Result; preparing past the script yields empty
// statements that step straight to Done.
type Conn struct {
	Results []Result
	// Message and Offset script the connection diagnostics.
	Message string
	Offset  int

	// Stmts collects every statement handed out, for assertions on
	// recorded bindings and finalization.
	Stmts []*Stmt

	next   int
	closed bool
}

// NewConn returns a connection scripted with the given results.
func NewConn(results ...Result) *Conn {
	return &Conn{Results: results, Offset: -1}
}

func (c *Conn) Prepare(query string) (driver.Stmt, string, codes.Code) {
	head, tail := sqltext.SplitFirst(query)
	if head == "" {
		return nil, tail, codes.OK
	}
	var res Result
	if c.next < len(c.Results) {
		res = c.Results[c.next]
		c.next++
	}
	if res.PrepareCode != codes.OK {
		return nil, tail, res.PrepareCode
	}
	stmt := &Stmt{
		conn:   c,
		sql:    head,
		params: sqltext.Params(head),
		res:    res,
		row:    -1,
	}
	stmt.binds = make([]any, len(stmt.params))
	stmt.bound = make([]bool, len(stmt.params))
	c.Stmts = append(c.Stmts, stmt)
	return stmt, tail, codes.OK
}

func (c *Conn) ErrMsg() string {
	return c.Message
}

func (c *Conn) ErrOffset() int {
	return c.Offset
}

func (c *Conn) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	return c.closed
}

// Stmt is a scripted statement. It records every bound parameter for
// later inspection.
type Stmt struct {
	conn   *Conn
	sql    string
	params []string
	res    Result

	binds []any
	bound []bool

	row       int
	finalized bool
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

// Bind returns the value bound at the 1-based parameter index and
// whether anything was bound there.
func (s *Stmt) Bind(i int) (any, bool) {
	if i < 1 || i > len(s.binds) {
		return nil, false
	}
	return s.binds[i-1], s.bound[i-1]
}

// Binds returns the bound values in parameter order; parameters never
// bound are nil.
func (s *Stmt) Binds() []any {
	return s.binds
}

func (s *Stmt) bind(i int, v any) codes.Code {
	if s.res.BindCode != codes.OK {
		return s.res.BindCode
	}
	if i < 1 || i > len(s.binds) {
		return codes.Range
	}
	s.binds[i-1] = v
	s.bound[i-1] = true
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

func (s *Stmt) Step() codes.Code {
	if s.row+1 < len(s.res.Rows) {
		s.row++
		return codes.Row
	}
	if s.res.StepCode != codes.OK {
		return s.res.StepCode
	}
	return codes.Done
}

func (s *Stmt) Reset() codes.Code {
	s.row = -1
	return codes.OK
}

func (s *Stmt) ColumnCount() int {
	return len(s.res.Columns)
}

func (s *Stmt) ColumnName(i int) string {
	return s.res.Columns[i]
}

func (s *Stmt) cell(i int) any {
	if s.row < 0 || s.row >= len(s.res.Rows) || i >= len(s.res.Rows[s.row]) {
		return nil
	}
	return s.res.Rows[s.row][i]
}

func (s *Stmt) ColumnType(i int) driver.ColumnType {
	switch s.cell(i).(type) {
	case int64:
		return driver.Integer
	case float64:
		return driver.Float
	case string:
		return driver.Text
	case []byte:
		return driver.Blob
	case nil:
		return driver.Null
	}
	panic(fmt.Sprintf("fakestore: unsupported cell type %T", s.cell(i)))
}

func (s *Stmt) ColumnInt64(i int) int64 {
	switch v := s.cell(i).(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

func (s *Stmt) ColumnDouble(i int) float64 {
	switch v := s.cell(i).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

func (s *Stmt) ColumnText(i int) string {
	switch v := s.cell(i).(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ""
}

func (s *Stmt) ColumnBlob(i int) []byte {
	switch v := s.cell(i).(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return nil
}

func (s *Stmt) Finalize() codes.Code {
	s.finalized = true
	return codes.OK
}

// Finalized reports whether Finalize was called.
func (s *Stmt) Finalized() bool {
	return s.finalized
}
