// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbind

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sqlbind/sqlbind/codes"
	"github.com/sqlbind/sqlbind/driver"
)

// ErrNoRows is reported, wrapped in a [DecodeError], when a required
// single-row read finds no rows.
var ErrNoRows = sql.ErrNoRows

// StoreError wraps an error-class result code from the store together
// with every diagnostic that could be gathered at construction time.
// A StoreError is never constructed for a success-class code.
type StoreError struct {
	// Code is the raw result code, possibly extended.
	Code codes.Code
	// Primary is the primary classification: the low byte of Code.
	Primary codes.Code

	// Symbol and Comment are the static table entry for the raw code;
	// empty when the raw code is unknown.
	Symbol  string
	Comment string
	// PrimarySymbol and PrimaryComment are the static table entry for
	// the primary code. They are populated only when Primary differs
	// from Code.
	PrimarySymbol  string
	PrimaryComment string

	// Message is the store-provided error string, when one was
	// available.
	Message string
	// ConnMessage is the connection-scoped message, when a connection
	// was available.
	ConnMessage string

	// SQL is the offending statement text, when known, and Offset the
	// byte offset into it at which the error was detected (-1 when
	// unknown).
	SQL    string
	Offset int
}

// NewStoreError builds a StoreError for an error-class code, pulling
// the statement's SQL text and the owning connection's diagnostics when
// stmt is non-nil. Callers must not pass a success-class code.
func NewStoreError(code codes.Code, stmt driver.Stmt) *StoreError {
	e := newStoreError(code)
	if stmt != nil {
		e.SQL = stmt.SQL()
		if conn := stmt.Conn(); conn != nil {
			e.ConnMessage = conn.ErrMsg()
			e.Offset = conn.ErrOffset()
		}
	}
	return e
}

// newConnError builds a StoreError for a failure that happened before a
// statement handle existed, such as a failed prepare.
func newConnError(code codes.Code, conn driver.Conn, sql string) *StoreError {
	e := newStoreError(code)
	e.SQL = sql
	if conn != nil {
		e.ConnMessage = conn.ErrMsg()
		e.Offset = conn.ErrOffset()
	}
	return e
}

func newStoreError(code codes.Code) *StoreError {
	e := &StoreError{Code: code, Primary: code.Primary(), Offset: -1}
	e.Symbol, e.Comment, _ = codes.Lookup(code)
	if e.Primary != code {
		e.PrimarySymbol, e.PrimaryComment, _ = codes.Lookup(e.Primary)
	}
	return e
}

// Error assembles the full diagnostic: the raw code, a parenthesized
// clause naming its symbol (and the primary code and symbol when they
// differ), the most specific human text available, the connection
// message, and the offending SQL with its byte offset.
func (e *StoreError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "store error %d", int(e.Code))

	var clause []string
	if e.Symbol != "" {
		clause = append(clause, e.Symbol)
	}
	if e.Primary != e.Code {
		p := fmt.Sprintf("primary: %d", int(e.Primary))
		if e.PrimarySymbol != "" {
			p += " " + e.PrimarySymbol
		}
		clause = append(clause, p)
	}
	if len(clause) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(clause, ", "))
	}

	text := e.Message
	if text == "" {
		text = e.Comment
	}
	if text == "" {
		text = e.PrimaryComment
	}
	if text != "" {
		b.WriteString(": " + text)
	}
	if e.ConnMessage != "" && e.ConnMessage != text {
		b.WriteString(": " + e.ConnMessage)
	}
	if e.SQL != "" {
		fmt.Fprintf(&b, " in %q", e.SQL)
		if e.Offset >= 0 {
			fmt.Fprintf(&b, " at offset %d", e.Offset)
		}
	}
	return b.String()
}

// CheckCode translates a result code into an error. Success-class codes
// (OK, Row, Done, and any member of except) yield nil; every other code
// yields a [StoreError] carrying the statement's diagnostics.
func CheckCode(code codes.Code, stmt driver.Stmt, except ...codes.Code) error {
	if code.Success(except...) {
		return nil
	}
	return NewStoreError(code, stmt)
}

// BindError reports a failure to convert an application value into a
// statement parameter.
type BindError struct {
	// Cause is the underlying error, when one exists.
	Cause error
	// Message describes the failing conversion.
	Message string
}

func (e *BindError) Error() string {
	switch {
	case e.Message == "":
		return fmt.Sprintf("cannot bind parameter: %s", e.Cause)
	case e.Cause == nil:
		return fmt.Sprintf("cannot bind parameter: %s", e.Message)
	}
	return fmt.Sprintf("cannot bind parameter: %s: %s", e.Message, e.Cause)
}

func (e *BindError) Unwrap() error {
	return e.Cause
}

// DecodeError reports a failure to convert a result column or row into
// the requested shape, including the absence of a required row.
type DecodeError struct {
	// Cause is the underlying error, when one exists.
	Cause error
	// Message describes the failing conversion.
	Message string
}

func (e *DecodeError) Error() string {
	switch {
	case e.Message == "":
		return fmt.Sprintf("cannot decode result: %s", e.Cause)
	case e.Cause == nil:
		return fmt.Sprintf("cannot decode result: %s", e.Message)
	}
	return fmt.Sprintf("cannot decode result: %s: %s", e.Message, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func bindErrorf(cause error, format string, args ...any) error {
	return &BindError{Cause: cause, Message: fmt.Sprintf(format, args...)}
}

func decodeErrorf(cause error, format string, args ...any) error {
	return &DecodeError{Cause: cause, Message: fmt.Sprintf(format, args...)}
}

// asBindError wraps an error raised by a custom encode hook or by
// structural recursion, leaving errors already belonging to the
// taxonomy untouched.
func asBindError(err error) error {
	switch err.(type) {
	case *StoreError, *BindError, *DecodeError:
		return err
	}
	return &BindError{Cause: err}
}

// asDecodeError is the decode-side counterpart of asBindError.
func asDecodeError(err error) error {
	switch err.(type) {
	case *StoreError, *BindError, *DecodeError:
		return err
	}
	return &DecodeError{Cause: err}
}
