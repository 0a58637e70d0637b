// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbind

import (
	"context"
	"reflect"
	"strings"

	"github.com/sqlbind/sqlbind/codes"
	"github.com/sqlbind/sqlbind/driver"
	"github.com/sqlbind/sqlbind/internal/sqltext"
)

// DB wraps a store connection and provides the statement execution
// sequencer. A DB adds no locking of its own: the underlying
// [driver.Conn] must not be used from more than one goroutine at a
// time.
type DB struct {
	conn driver.Conn
}

// NewDB returns a DB executing on conn.
func NewDB(conn driver.Conn) *DB {
	return &DB{conn: conn}
}

// Conn returns the underlying connection.
func (db *DB) Conn() driver.Conn {
	return db.conn
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Query holds a SQL script and its arguments ready for execution. The
// script may contain any number of statements; they run in order and
// rows from every statement are delivered through the same iteration.
// Arguments are bound afresh to each statement: positional parameters
// consume arguments left to right, named parameters resolve against
// keyed arguments and are skipped silently where a statement has no
// matching parameter.
type Query struct {
	db   *DB
	ctx  context.Context
	sql  string
	args []any
}

// Query builds a query over the SQL script with the given arguments.
// Nothing is prepared until the query runs.
func (db *DB) Query(ctx context.Context, sql string, args ...any) *Query {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Query{db: db, ctx: ctx, sql: sql, args: args}
}

// Run executes the query and discards any rows.
func (q *Query) Run() error {
	iter := q.Iter()
	for iter.Next() {
	}
	return iter.Close()
}

// Get executes the query and decodes the first row into dest. Zero
// rows is an error: the returned DecodeError wraps [ErrNoRows].
func (q *Query) Get(dest any) error {
	ok, err := q.GetFirst(dest)
	if err != nil {
		return err
	}
	if !ok {
		return &DecodeError{Cause: ErrNoRows}
	}
	return nil
}

// GetFirst executes the query and decodes the first row into dest,
// reporting ok=false without error when the query yields no rows.
func (q *Query) GetFirst(dest any) (ok bool, err error) {
	iter := q.Iter()
	if !iter.Next() {
		return false, iter.Close()
	}
	if err := iter.Read(dest); err != nil {
		iter.Close()
		return false, err
	}
	return true, iter.Close()
}

// GetAll executes the query and appends every row, decoded into a new
// element, to the slice pointed to by slicePtr.
func (q *Query) GetAll(slicePtr any) error {
	sv := reflect.ValueOf(slicePtr)
	if sv.Kind() != reflect.Pointer || sv.IsNil() || sv.Elem().Kind() != reflect.Slice {
		return decodeErrorf(nil, "need pointer to slice, got %T", slicePtr)
	}
	slice := sv.Elem()
	elemType := slice.Type().Elem()

	iter := q.Iter()
	for iter.Next() {
		ep := reflect.New(elemType)
		if elemType.Kind() == reflect.Map {
			ep.Elem().Set(reflect.MakeMap(elemType))
		}
		if err := iter.Read(ep.Interface()); err != nil {
			iter.Close()
			return err
		}
		slice = reflect.Append(slice, ep.Elem())
	}
	if err := iter.Close(); err != nil {
		return err
	}
	sv.Elem().Set(slice)
	return nil
}

// Each executes the query, decoding every row into dest and calling fn
// after each decode. fn returning false stops the whole sequence,
// remaining statements included, without error.
func (q *Query) Each(dest any, fn func() bool) error {
	iter := q.Iter()
	for iter.Next() {
		if err := iter.Read(dest); err != nil {
			iter.Close()
			return err
		}
		if !fn() {
			break
		}
	}
	return iter.Close()
}

// Iter executes the query and returns an iterator over its rows. Close
// must be called when iteration finishes.
func (q *Query) Iter() *Iterator {
	return &Iterator{q: q, conn: q.db.conn, tail: q.sql}
}

// Iterator walks the rows of a multi-statement script one at a time.
// Statements are prepared lazily: each is prepared, bound, and stepped
// to completion before the next piece of the script is touched, and the
// statement handle is released on every exit path.
type Iterator struct {
	q      *Query
	conn   driver.Conn
	tail   string
	stmt   driver.Stmt
	reader *RowReader
	err    error
	done   bool
	onRow  bool
}

// Next advances to the next row, preparing and executing further
// statements of the script as needed. It returns false when the rows
// are exhausted or an error occurred; Close reports the error.
func (iter *Iterator) Next() bool {
	if iter.done {
		return false
	}
	iter.onRow = false
	for {
		if err := iter.q.ctx.Err(); err != nil {
			iter.fail(err)
			return false
		}
		if iter.stmt == nil {
			if strings.TrimSpace(iter.tail) == "" {
				iter.done = true
				return false
			}
			head, _ := sqltext.SplitFirst(iter.tail)
			stmt, tail, code := iter.conn.Prepare(iter.tail)
			iter.tail = tail
			if !code.Success() {
				iter.fail(newConnError(code, iter.conn, head))
				return false
			}
			if stmt == nil {
				// Comment or whitespace only.
				continue
			}
			iter.stmt = stmt
			iter.reader = NewRowReader(stmt)
			if err := BindParams(stmt, iter.q.args...); err != nil {
				iter.fail(err)
				return false
			}
		}
		switch code := iter.stmt.Step(); code {
		case codes.Row:
			iter.onRow = true
			return true
		case codes.Done:
			iter.finalize()
		default:
			iter.fail(CheckCode(code, iter.stmt))
			return false
		}
	}
}

// Read decodes the current row into dest. It may only be called after
// Next has returned true.
func (iter *Iterator) Read(dest any) error {
	if iter.err != nil {
		return iter.err
	}
	if !iter.onRow {
		return decodeErrorf(nil, "cannot read: iterator is not on a row")
	}
	return iter.reader.Read(dest)
}

// Close releases the current statement, ends the iteration, and
// returns any error the iteration hit. Close is idempotent.
func (iter *Iterator) Close() error {
	iter.finalize()
	iter.done = true
	iter.onRow = false
	return iter.err
}

func (iter *Iterator) fail(err error) {
	iter.finalize()
	iter.err = err
	iter.done = true
	iter.onRow = false
}

func (iter *Iterator) finalize() {
	if iter.stmt != nil {
		iter.stmt.Finalize()
		iter.stmt = nil
		iter.reader = nil
	}
}
