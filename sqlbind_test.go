// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbind_test

import (
	"context"
	"errors"

	. "gopkg.in/check.v1"

	"github.com/sqlbind/sqlbind"
	"github.com/sqlbind/sqlbind/codes"
	"github.com/sqlbind/sqlbind/internal/fakestore"
)

type QuerySuite struct{}

var _ = Suite(&QuerySuite{})

func numberRows(ns ...int64) [][]any {
	rows := make([][]any, len(ns))
	for i, n := range ns {
		rows[i] = []any{n}
	}
	return rows
}

func (s *QuerySuite) TestGetAll(c *C) {
	conn := fakestore.NewConn(fakestore.Result{
		Columns: []string{"id", "name"},
		Rows:    [][]any{{int64(30), "Fred"}, {int64(20), "Mark"}},
	})
	db := sqlbind.NewDB(conn)

	type person struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
	}
	var people []person
	c.Assert(db.Query(nil, "SELECT id, name FROM person").GetAll(&people), IsNil)
	c.Assert(people, DeepEquals, []person{{30, "Fred"}, {20, "Mark"}})

	// Every statement handle is released.
	for _, stmt := range conn.Stmts {
		c.Assert(stmt.Finalized(), Equals, true)
	}
}

func (s *QuerySuite) TestGetAllMaps(c *C) {
	conn := fakestore.NewConn(fakestore.Result{
		Columns: []string{"n"},
		Rows:    numberRows(1, 2),
	})
	db := sqlbind.NewDB(conn)

	var ms []map[string]int64
	c.Assert(db.Query(nil, "SELECT n FROM t").GetAll(&ms), IsNil)
	c.Assert(ms, DeepEquals, []map[string]int64{{"n": 1}, {"n": 2}})
}

func (s *QuerySuite) TestGet(c *C) {
	conn := fakestore.NewConn(fakestore.Result{
		Columns: []string{"n"},
		Rows:    numberRows(7, 8),
	})
	db := sqlbind.NewDB(conn)

	var n int
	c.Assert(db.Query(nil, "SELECT n FROM t").Get(&n), IsNil)
	c.Assert(n, Equals, 7)
	c.Assert(conn.Stmts[0].Finalized(), Equals, true)
}

func (s *QuerySuite) TestGetNoRows(c *C) {
	conn := fakestore.NewConn(fakestore.Result{Columns: []string{"n"}})
	db := sqlbind.NewDB(conn)

	var n int
	err := db.Query(nil, "SELECT n FROM t").Get(&n)
	c.Assert(err, NotNil)
	c.Assert(errors.Is(err, sqlbind.ErrNoRows), Equals, true)
}

func (s *QuerySuite) TestGetFirst(c *C) {
	conn := fakestore.NewConn(fakestore.Result{Columns: []string{"n"}})
	db := sqlbind.NewDB(conn)

	var n int
	ok, err := db.Query(nil, "SELECT n FROM t").GetFirst(&n)
	c.Assert(err, IsNil)
	c.Assert(ok, Equals, false)

	conn = fakestore.NewConn(fakestore.Result{Columns: []string{"n"}, Rows: numberRows(5)})
	db = sqlbind.NewDB(conn)
	ok, err = db.Query(nil, "SELECT n FROM t").GetFirst(&n)
	c.Assert(err, IsNil)
	c.Assert(ok, Equals, true)
	c.Assert(n, Equals, 5)
}

func (s *QuerySuite) TestRunBindsArgs(c *C) {
	conn := fakestore.NewConn(fakestore.Result{})
	db := sqlbind.NewDB(conn)

	c.Assert(db.Query(nil, "INSERT INTO t VALUES (?, :name)", 7, map[string]any{"name": "x"}).Run(), IsNil)
	c.Assert(conn.Stmts[0].Binds(), DeepEquals, []any{int64(7), "x"})
}

func (s *QuerySuite) TestMultiStatementRows(c *C) {
	conn := fakestore.NewConn(
		fakestore.Result{Columns: []string{"n"}, Rows: numberRows(1, 2)},
		fakestore.Result{},
		fakestore.Result{Columns: []string{"n"}, Rows: numberRows(3)},
	)
	db := sqlbind.NewDB(conn)

	var got []int64
	var n int64
	err := db.Query(nil, "SELECT a; INSERT INTO t VALUES (1); SELECT b").
		Each(&n, func() bool {
			got = append(got, n)
			return true
		})
	c.Assert(err, IsNil)
	c.Assert(got, DeepEquals, []int64{1, 2, 3})
	c.Assert(len(conn.Stmts), Equals, 3)
	for _, stmt := range conn.Stmts {
		c.Assert(stmt.Finalized(), Equals, true)
	}
}

func (s *QuerySuite) TestMultiStatementPartialThenError(c *C) {
	// The second of three statements errors after delivering its row:
	// rows seen so far stay delivered, the error surfaces, and the
	// third statement is never prepared.
	conn := fakestore.NewConn(
		fakestore.Result{Columns: []string{"n"}, Rows: numberRows(1, 2)},
		fakestore.Result{Columns: []string{"n"}, Rows: numberRows(3), StepCode: codes.Busy},
		fakestore.Result{Columns: []string{"n"}, Rows: numberRows(4)},
	)
	db := sqlbind.NewDB(conn)

	var got []int64
	var n int64
	err := db.Query(nil, "SELECT a; SELECT b; SELECT c").
		Each(&n, func() bool {
			got = append(got, n)
			return true
		})
	c.Assert(got, DeepEquals, []int64{1, 2, 3})

	var serr *sqlbind.StoreError
	c.Assert(errors.As(err, &serr), Equals, true)
	c.Assert(serr.Code, Equals, codes.Busy)
	c.Assert(serr.SQL, Equals, "SELECT b")

	c.Assert(len(conn.Stmts), Equals, 2)
	for _, stmt := range conn.Stmts {
		c.Assert(stmt.Finalized(), Equals, true)
	}
}

func (s *QuerySuite) TestEachStops(c *C) {
	// A false return stops the whole sequence: no further rows are
	// decoded and no further statements are prepared.
	conn := fakestore.NewConn(
		fakestore.Result{Columns: []string{"n"}, Rows: numberRows(1, 2)},
		fakestore.Result{Columns: []string{"n"}, Rows: numberRows(3)},
	)
	db := sqlbind.NewDB(conn)

	var got []int64
	var n int64
	err := db.Query(nil, "SELECT a; SELECT b").
		Each(&n, func() bool {
			got = append(got, n)
			return false
		})
	c.Assert(err, IsNil)
	c.Assert(got, DeepEquals, []int64{1})
	c.Assert(len(conn.Stmts), Equals, 1)
	c.Assert(conn.Stmts[0].Finalized(), Equals, true)
}

func (s *QuerySuite) TestPrepareError(c *C) {
	conn := fakestore.NewConn(fakestore.Result{PrepareCode: codes.Error})
	conn.Message = `near "SELEC": syntax error`
	db := sqlbind.NewDB(conn)

	err := db.Query(nil, "SELEC 1; SELECT 2").Run()
	var serr *sqlbind.StoreError
	c.Assert(errors.As(err, &serr), Equals, true)
	c.Assert(serr.Code, Equals, codes.Error)
	c.Assert(serr.ConnMessage, Equals, `near "SELEC": syntax error`)
	c.Assert(serr.SQL, Equals, "SELEC 1")
}

func (s *QuerySuite) TestCommentOnlyStatements(c *C) {
	conn := fakestore.NewConn(fakestore.Result{Columns: []string{"n"}, Rows: numberRows(1)})
	db := sqlbind.NewDB(conn)

	var n int
	c.Assert(db.Query(nil, "-- preamble\n; SELECT n FROM t; /* trailing */").Get(&n), IsNil)
	c.Assert(n, Equals, 1)
	c.Assert(len(conn.Stmts), Equals, 1)
}

func (s *QuerySuite) TestContextCancellation(c *C) {
	conn := fakestore.NewConn(fakestore.Result{Columns: []string{"n"}, Rows: numberRows(1)})
	db := sqlbind.NewDB(conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := db.Query(ctx, "SELECT n FROM t").Run()
	c.Assert(errors.Is(err, context.Canceled), Equals, true)
}

func (s *QuerySuite) TestIterMethodOrder(c *C) {
	conn := fakestore.NewConn(fakestore.Result{Columns: []string{"n"}, Rows: numberRows(1)})
	db := sqlbind.NewDB(conn)

	var n int

	// Read before Next.
	iter := db.Query(nil, "SELECT n FROM t").Iter()
	c.Assert(iter.Read(&n), ErrorMatches, "cannot decode result: cannot read: iterator is not on a row")
	c.Assert(iter.Close(), IsNil)

	// Next after Close.
	conn = fakestore.NewConn(fakestore.Result{Columns: []string{"n"}, Rows: numberRows(1)})
	db = sqlbind.NewDB(conn)
	iter = db.Query(nil, "SELECT n FROM t").Iter()
	c.Assert(iter.Close(), IsNil)
	c.Assert(iter.Next(), Equals, false)

	// Close is idempotent.
	c.Assert(iter.Close(), IsNil)
	c.Assert(iter.Close(), IsNil)
}

func (s *QuerySuite) TestBindErrorReleasesStatement(c *C) {
	conn := fakestore.NewConn(fakestore.Result{BindCode: codes.Misuse})
	db := sqlbind.NewDB(conn)

	err := db.Query(nil, "SELECT ?", 1).Run()
	var serr *sqlbind.StoreError
	c.Assert(errors.As(err, &serr), Equals, true)
	c.Assert(serr.Code, Equals, codes.Misuse)
	c.Assert(conn.Stmts[0].Finalized(), Equals, true)
}
