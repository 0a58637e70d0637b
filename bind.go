// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbind

import (
	sqldriver "database/sql/driver"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/sqlbind/sqlbind/codes"
	"github.com/sqlbind/sqlbind/driver"
)

// timeFormat is the textual form times are bound as. It parses back
// through the date/time parser used on decode.
const timeFormat = "2006-01-02 15:04:05.999999999Z07:00"

// ParamBinder is the custom representation hook for parameter binding.
// A type implementing it takes precedence over both the standard
// representation and the structural fallback.
type ParamBinder interface {
	// BindParam writes the value to the statement parameter identified
	// by b.
	BindParam(b Binder) error
}

// Binder identifies one parameter of one statement: a short-lived
// handle passed to bind hooks and discarded after use.
type Binder struct {
	stmt  driver.Stmt
	index int
}

// NewBinder returns a Binder for the 1-based parameter index of stmt.
func NewBinder(stmt driver.Stmt, index int) Binder {
	return Binder{stmt: stmt, index: index}
}

// Index returns the 1-based parameter position.
func (b Binder) Index() int {
	return b.index
}

// check translates a bind primitive's result code. The parameter range
// code is benign: it legitimately occurs for optional named parameters
// absent from the SQL text.
func (b Binder) check(code codes.Code) error {
	if code.Success(codes.Range) {
		return nil
	}
	return NewStoreError(code, b.stmt)
}

// Int64 binds an integer at the Binder's position.
func (b Binder) Int64(v int64) error {
	return b.check(b.stmt.BindInt64(b.index, v))
}

// Float binds a float at the Binder's position.
func (b Binder) Float(v float64) error {
	return b.check(b.stmt.BindDouble(b.index, v))
}

// Text binds text at the Binder's position.
func (b Binder) Text(v string) error {
	return b.check(b.stmt.BindText(b.index, v))
}

// Blob binds raw bytes at the Binder's position.
func (b Binder) Blob(v []byte) error {
	return b.check(b.stmt.BindBlob(b.index, v))
}

// Null binds NULL at the Binder's position.
func (b Binder) Null() error {
	return b.check(b.stmt.BindNull(b.index))
}

// BindParams binds args to stmt. Each arg is bound in turn at
// sequential 1-based positions, except that a keyed record (a struct or
// a map with string keys, without a custom or standard representation)
// binds its fields by name instead and does not advance the position
// counter. Fields whose names resolve to no parameter in the SQL text
// are silently skipped. When several keyed args share a field name the
// later binding overwrites the earlier one.
func BindParams(stmt driver.Stmt, args ...any) error {
	pos := 1
	for _, arg := range args {
		if err := bindNext(stmt, &pos, arg); err != nil {
			return err
		}
	}
	return nil
}

type dispatch int

const (
	dispatchCustom dispatch = iota
	dispatchStandard
	dispatchKeyed
	dispatchIndexed
	dispatchLeaf
)

// classify resolves a value to its dispatch mode, following the fixed
// priority: custom representation, then standard, then structural.
// Pointers are dereferenced along the way; a nil pointer is a standard
// NULL.
func classify(v any) (any, dispatch) {
	for {
		if v == nil {
			return nil, dispatchStandard
		}
		if _, ok := v.(ParamBinder); ok {
			return v, dispatchCustom
		}
		if isStandard(v) {
			return v, dispatchStandard
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil, dispatchStandard
			}
			v = rv.Elem().Interface()
			continue
		}
		switch rv.Kind() {
		case reflect.Struct:
			return v, dispatchKeyed
		case reflect.Map:
			if rv.Type().Key().Kind() == reflect.String {
				return v, dispatchKeyed
			}
			return v, dispatchLeaf
		case reflect.Slice, reflect.Array:
			return v, dispatchIndexed
		default:
			return v, dispatchLeaf
		}
	}
}

// isStandard reports whether v has a standard primitive representation.
func isStandard(v any) bool {
	switch v.(type) {
	case Value, time.Time, []byte, sqldriver.Valuer:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Bool, reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	return false
}

// bindNext binds v at the running sequential position, advancing it for
// every parameter consumed. Keyed records divert to named binding.
func bindNext(stmt driver.Stmt, pos *int, v any) error {
	v, mode := classify(v)
	switch mode {
	case dispatchCustom:
		b := NewBinder(stmt, *pos)
		*pos++
		if err := v.(ParamBinder).BindParam(b); err != nil {
			return asBindError(err)
		}
		return nil
	case dispatchStandard:
		b := NewBinder(stmt, *pos)
		*pos++
		return bindStandard(b, v)
	case dispatchKeyed:
		return bindKeyed(stmt, reflect.ValueOf(v))
	case dispatchIndexed:
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			if err := bindNext(stmt, pos, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	err := bindJSON(stmt, *pos, v)
	*pos++
	return err
}

// bindKeyed binds every field of a keyed record by name. The parameter
// index for a field is resolved by probing the named-parameter
// syntaxes ":name", "@name", "$name" and finally the bare name; the
// first that resolves wins, and a field resolving to none is skipped.
func bindKeyed(stmt driver.Stmt, rv reflect.Value) error {
	if rv.Kind() == reflect.Map {
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := bindField(stmt, k, rv.MapIndex(reflect.ValueOf(k)).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	for _, f := range typeFields(rv.Type()) {
		fv := rv.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		if err := bindField(stmt, f.name, fv.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func bindField(stmt driver.Stmt, name string, v any) error {
	idx := resolveParamIndex(stmt, name)
	if idx == 0 {
		return nil
	}
	return BindValue(NewBinder(stmt, idx), v)
}

// resolveParamIndex probes the named-parameter syntaxes in their fixed
// order and returns the first 1-based index that resolves, or zero.
func resolveParamIndex(stmt driver.Stmt, name string) int {
	for _, sigil := range [...]string{":", "@", "$", ""} {
		if idx := stmt.BindParameterIndex(sigil + name); idx != 0 {
			return idx
		}
	}
	return 0
}

// BindValue binds a single value at the Binder's position using the
// full dispatch chain: a custom representation first, then the standard
// one, and finally the structural text encoding for values with
// neither. It is the primitive that custom bind hooks recurse through.
func BindValue(b Binder, v any) error {
	v, mode := classify(v)
	switch mode {
	case dispatchCustom:
		if err := v.(ParamBinder).BindParam(b); err != nil {
			return asBindError(err)
		}
		return nil
	case dispatchStandard:
		return bindStandard(b, v)
	}
	// A nested aggregate occupies a single parameter: it is serialized
	// to the structural text form, as is any opaque leaf.
	return bindJSON(b.stmt, b.index, v)
}

// bindStandard binds a value carrying a standard representation.
func bindStandard(b Binder, v any) error {
	switch x := v.(type) {
	case nil:
		return b.Null()
	case Value:
		return x.bind(b)
	case time.Time:
		return b.Text(x.Format(timeFormat))
	case []byte:
		return b.Blob(x)
	case sqldriver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return asBindError(err)
		}
		return bindStandard(b, dv)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return b.Int64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return bindErrorf(nil, "unsigned value %d overflows the integer parameter range", u)
		}
		return b.Int64(int64(u))
	case reflect.Bool:
		if rv.Bool() {
			return b.Int64(1)
		}
		return b.Int64(0)
	case reflect.Float32, reflect.Float64:
		return b.Float(rv.Float())
	case reflect.String:
		return b.Text(rv.String())
	}
	return bindErrorf(nil, "unsupported parameter type %T", v)
}

// bindJSON serializes v to the structural text form and binds it as
// text.
func bindJSON(stmt driver.Stmt, idx int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return asBindError(err)
	}
	return NewBinder(stmt, idx).Text(string(data))
}

// field is reflection information about one keyed-record member.
type field struct {
	name      string
	index     int
	omitEmpty bool
}

// fieldCache caches struct reflection information across calls.
var fieldCacheMutex sync.RWMutex
var fieldCache = make(map[reflect.Type][]field)

// typeFields returns the bindable fields of a struct type: exported
// fields named by their "db" tag when present and their Go name
// otherwise. A "-" tag excludes the field; an "omitempty" option skips
// it when zero.
func typeFields(t reflect.Type) []field {
	fieldCacheMutex.RLock()
	fields, ok := fieldCache[t]
	fieldCacheMutex.RUnlock()
	if ok {
		return fields
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		var omitEmpty bool
		if tag, ok := f.Tag.Lookup("db"); ok {
			options := strings.Split(tag, ",")
			if options[0] == "-" {
				continue
			}
			if options[0] != "" {
				name = options[0]
			}
			for _, flag := range options[1:] {
				if flag == "omitempty" {
					omitEmpty = true
				}
			}
		}
		fields = append(fields, field{name: name, index: i, omitEmpty: omitEmpty})
	}

	fieldCacheMutex.Lock()
	fieldCache[t] = fields
	fieldCacheMutex.Unlock()
	return fields
}
