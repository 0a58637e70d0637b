// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbind_test

import (
	"database/sql"
	"math"
	"strings"
	"time"

	. "gopkg.in/check.v1"

	"github.com/sqlbind/sqlbind"
	"github.com/sqlbind/sqlbind/internal/fakestore"
)

type BindSuite struct{}

var _ = Suite(&BindSuite{})

// upperText binds itself as upper-cased text.
type upperText string

func (u upperText) BindParam(b sqlbind.Binder) error {
	return b.Text(strings.ToUpper(string(u)))
}

func (s *BindSuite) TestStandardKinds(c *C) {
	var tests = []struct {
		summary string
		arg     any
		want    any
	}{
		{"int", 22, int64(22)},
		{"int8", int8(-3), int64(-3)},
		{"int64", int64(1 << 40), int64(1 << 40)},
		{"uint", uint(9), int64(9)},
		{"bool true", true, int64(1)},
		{"bool false", false, int64(0)},
		{"float64", 5.7, 5.7},
		{"float32", float32(2), float64(2)},
		{"string", "hi", "hi"},
		{"bytes", []byte{1, 2}, []byte{1, 2}},
		{"nil", nil, nil},
		{"nil pointer", (*int)(nil), nil},
		{"pointer", ptr(7), int64(7)},
		{"value integer", sqlbind.Int64Value(4), int64(4)},
		{"value null", sqlbind.NullValue(), nil},
		{"valuer", sql.NullString{String: "v", Valid: true}, "v"},
		{"valuer null", sql.NullString{}, nil},
		{"custom", upperText("shout"), "SHOUT"},
	}
	for _, t := range tests {
		stmt := prepare(c, "SELECT ?", fakestore.Result{})
		err := sqlbind.BindParams(stmt, t.arg)
		c.Assert(err, IsNil, Commentf("test %q", t.summary))
		got, bound := stmt.Bind(1)
		c.Assert(bound, Equals, true, Commentf("test %q", t.summary))
		c.Assert(got, DeepEquals, t.want, Commentf("test %q", t.summary))
	}
}

func (s *BindSuite) TestTime(c *C) {
	stmt := prepare(c, "SELECT ?", fakestore.Result{})
	when := time.Date(2024, 10, 3, 10, 11, 12, 500_000_000, time.UTC)
	c.Assert(sqlbind.BindParams(stmt, when), IsNil)
	got, _ := stmt.Bind(1)
	c.Assert(got, Equals, "2024-10-03 10:11:12.5Z")
}

func (s *BindSuite) TestUintOverflow(c *C) {
	stmt := prepare(c, "SELECT ?", fakestore.Result{})
	err := sqlbind.BindParams(stmt, uint64(math.MaxInt64)+1)
	c.Assert(err, FitsTypeOf, &sqlbind.BindError{})
	c.Assert(err, ErrorMatches, "cannot bind parameter: unsigned value .* overflows the integer parameter range")
}

func (s *BindSuite) TestSequentialAndSliceEquivalence(c *C) {
	a := prepare(c, "SELECT ?, ?, ?", fakestore.Result{})
	b := prepare(c, "SELECT ?, ?, ?", fakestore.Result{})

	c.Assert(sqlbind.BindParams(a, 1, "two", 3.5), IsNil)
	c.Assert(sqlbind.BindParams(b, []any{1, "two", 3.5}), IsNil)
	c.Assert(a.Binds(), DeepEquals, b.Binds())
}

func (s *BindSuite) TestNestedIndexed(c *C) {
	stmt := prepare(c, "SELECT ?, ?, ?, ?", fakestore.Result{})
	c.Assert(sqlbind.BindParams(stmt, []any{1, []any{2, 3}, 4}), IsNil)
	c.Assert(stmt.Binds(), DeepEquals, []any{int64(1), int64(2), int64(3), int64(4)})
}

type machine struct {
	ID    int     `db:"id"`
	Name  string  `db:"name"`
	Score float64 `db:"score"`
	Extra string  `db:"extra"`
}

func (s *BindSuite) TestKeyedStruct(c *C) {
	stmt := prepare(c, "INSERT INTO m VALUES (:id, @name, $score)", fakestore.Result{})
	m := machine{ID: 7, Name: "fred", Score: 1.5, Extra: "never bound"}
	c.Assert(sqlbind.BindParams(stmt, m), IsNil)
	c.Assert(stmt.Binds(), DeepEquals, []any{int64(7), "fred", 1.5})
}

func (s *BindSuite) TestKeyedMap(c *C) {
	stmt := prepare(c, "SELECT :a, :b", fakestore.Result{})
	c.Assert(sqlbind.BindParams(stmt, map[string]any{"a": 1, "b": "x", "missing": true}), IsNil)
	c.Assert(stmt.Binds(), DeepEquals, []any{int64(1), "x"})
}

func (s *BindSuite) TestKeyedDoesNotAdvancePosition(c *C) {
	// A keyed record binds by name only; positional arguments around it
	// keep their own sequence.
	stmt := prepare(c, "SELECT ?, :a, ?", fakestore.Result{})
	c.Assert(sqlbind.BindParams(stmt, "first", map[string]any{"a": 2}, "third"), IsNil)
	c.Assert(stmt.Binds(), DeepEquals, []any{"first", int64(2), "third"})
}

func (s *BindSuite) TestOmitEmpty(c *C) {
	type rec struct {
		A int `db:"a,omitempty"`
		B int `db:"b"`
	}
	stmt := prepare(c, "SELECT :a, :b", fakestore.Result{})
	c.Assert(sqlbind.BindParams(stmt, rec{B: 2}), IsNil)
	_, bound := stmt.Bind(1)
	c.Assert(bound, Equals, false)
	got, _ := stmt.Bind(2)
	c.Assert(got, Equals, int64(2))
}

func (s *BindSuite) TestExcludedField(c *C) {
	type rec struct {
		A int `db:"-"`
		B int `db:"b"`
	}
	stmt := prepare(c, "SELECT :A, :b", fakestore.Result{})
	c.Assert(sqlbind.BindParams(stmt, rec{A: 1, B: 2}), IsNil)
	_, bound := stmt.Bind(1)
	c.Assert(bound, Equals, false)
}

func (s *BindSuite) TestRepeatedName(c *C) {
	// One name used twice in the SQL shares a single parameter slot.
	stmt := prepare(c, "SELECT :a, :b, :a", fakestore.Result{})
	c.Assert(stmt.BindParameterCount(), Equals, 2)
	c.Assert(sqlbind.BindParams(stmt, map[string]any{"a": 1, "b": 2}), IsNil)
	c.Assert(stmt.Binds(), DeepEquals, []any{int64(1), int64(2)})
}

func (s *BindSuite) TestStructuralFallback(c *C) {
	stmt := prepare(c, "SELECT :tags, :meta", fakestore.Result{})
	type rec struct {
		Tags []string          `db:"tags"`
		Meta map[string]string `db:"meta"`
	}
	c.Assert(sqlbind.BindParams(stmt, rec{
		Tags: []string{"a", "b"},
		Meta: map[string]string{"zone": "eu"},
	}), IsNil)
	c.Assert(stmt.Binds(), DeepEquals, []any{`["a","b"]`, `{"zone":"eu"}`})
}

func (s *BindSuite) TestLeafJSON(c *C) {
	// A bare map with non-string keys has no keyed representation and
	// falls back to the structural text form at a single position.
	stmt := prepare(c, "SELECT ?", fakestore.Result{})
	c.Assert(sqlbind.BindParams(stmt, map[int]int{1: 2}), IsNil)
	got, _ := stmt.Bind(1)
	c.Assert(got, Equals, `{"1":2}`)
}

func (s *BindSuite) TestBindValue(c *C) {
	stmt := prepare(c, "SELECT ?, ?", fakestore.Result{})
	c.Assert(sqlbind.BindValue(sqlbind.NewBinder(stmt, 2), "second"), IsNil)
	got, _ := stmt.Bind(2)
	c.Assert(got, Equals, "second")
	_, bound := stmt.Bind(1)
	c.Assert(bound, Equals, false)
}

func ptr[T any](v T) *T {
	return &v
}
