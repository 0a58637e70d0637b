// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbind_test

import (
	. "gopkg.in/check.v1"

	"github.com/sqlbind/sqlbind"
	"github.com/sqlbind/sqlbind/codes"
	"github.com/sqlbind/sqlbind/internal/fakestore"
)

type ErrorSuite struct{}

var _ = Suite(&ErrorSuite{})

func (s *ErrorSuite) TestCheckCodeSuccessClasses(c *C) {
	// OK, Row and Done never produce an error.
	for _, code := range []codes.Code{codes.OK, codes.Row, codes.Done} {
		c.Assert(sqlbind.CheckCode(code, nil), IsNil, Commentf("code %v", code))
	}

	err := sqlbind.CheckCode(codes.Busy, nil)
	c.Assert(err, FitsTypeOf, &sqlbind.StoreError{})

	// The exception set admits further codes.
	c.Assert(sqlbind.CheckCode(codes.Range, nil, codes.Range), IsNil)
	c.Assert(sqlbind.CheckCode(codes.Busy, nil, codes.Range), NotNil)
}

func (s *ErrorSuite) TestStoreErrorFields(c *C) {
	err := sqlbind.NewStoreError(codes.BusySnapshot, nil)
	c.Assert(err.Code, Equals, codes.BusySnapshot)
	c.Assert(err.Primary, Equals, codes.Busy)
	c.Assert(err.Symbol, Equals, "SQLITE_BUSY_SNAPSHOT")
	c.Assert(err.PrimarySymbol, Equals, "SQLITE_BUSY")
	c.Assert(err.Offset, Equals, -1)

	// Primary fields stay empty when the code is already primary.
	err = sqlbind.NewStoreError(codes.Busy, nil)
	c.Assert(err.PrimarySymbol, Equals, "")
	c.Assert(err.PrimaryComment, Equals, "")
}

func (s *ErrorSuite) TestStoreErrorDiagnostics(c *C) {
	conn := fakestore.NewConn(fakestore.Result{})
	conn.Message = "database table is locked"
	conn.Offset = 12
	stmt, _, code := conn.Prepare("UPDATE t SET x = 1")
	c.Assert(code, Equals, codes.OK)

	err := sqlbind.NewStoreError(codes.Busy, stmt)
	c.Assert(err.SQL, Equals, "UPDATE t SET x = 1")
	c.Assert(err.ConnMessage, Equals, "database table is locked")
	c.Assert(err.Offset, Equals, 12)
	c.Assert(err.Error(), Equals,
		`store error 5 (SQLITE_BUSY): database is locked: database table is locked in "UPDATE t SET x = 1" at offset 12`)
}

func (s *ErrorSuite) TestStoreErrorExtendedAssembly(c *C) {
	err := sqlbind.NewStoreError(codes.BusySnapshot, nil)
	c.Assert(err.Error(), Equals,
		"store error 517 (SQLITE_BUSY_SNAPSHOT, primary: 5 SQLITE_BUSY): cannot promote read transaction to write")
}

func (s *ErrorSuite) TestUnknownCode(c *C) {
	err := sqlbind.NewStoreError(codes.Busy|200<<8, nil)
	c.Assert(err.Symbol, Equals, "")
	c.Assert(err.PrimarySymbol, Equals, "SQLITE_BUSY")
	c.Assert(err.Error(), Equals,
		"store error 51205 (primary: 5 SQLITE_BUSY): database is locked")
}
