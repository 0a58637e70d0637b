// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbind

import (
	"bytes"
	"database/sql"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/sqlbind/sqlbind/driver"
	"github.com/sqlbind/sqlbind/internal/timeparse"
)

// ColumnScanner is the custom representation hook for column reading.
// A type implementing it takes precedence over both the standard
// representation and the structural fallback. ScanColumn reports
// ok=false when the cell holds no value for the type; the engine turns
// that into a DecodeError naming the column and the target type.
type ColumnScanner interface {
	ScanColumn(r Reader) (ok bool, err error)
}

// columnTable is the cached column-name table for one statement
// execution. Column metadata is statement-invariant, so the table is
// built once and reused across rows. Lookup is case-insensitive: names
// are uppercased on entry.
type columnTable struct {
	names []string
	index map[string]int
}

func newColumnTable(stmt driver.Stmt) *columnTable {
	n := stmt.ColumnCount()
	t := &columnTable{names: make([]string, n), index: make(map[string]int, n)}
	for i := 0; i < n; i++ {
		name := stmt.ColumnName(i)
		t.names[i] = name
		t.index[strings.ToUpper(name)] = i
	}
	return t
}

func (t *columnTable) lookup(name string) (int, bool) {
	i, ok := t.index[strings.ToUpper(name)]
	return i, ok
}

// Reader identifies one result column of one statement positioned on a
// row: a short-lived handle passed to scan hooks and discarded after
// use.
type Reader struct {
	stmt  driver.Stmt
	col   int
	table *columnTable
}

// NewReader returns a Reader for the 0-based column of stmt, which must
// be positioned on a row. The column-name table is built afresh; when
// reading many rows prefer [NewRowReader], which caches it.
func NewReader(stmt driver.Stmt, col int) Reader {
	return Reader{stmt: stmt, col: col, table: newColumnTable(stmt)}
}

// Column returns the 0-based column position.
func (r Reader) Column() int {
	return r.col
}

// Name returns the column's name.
func (r Reader) Name() string {
	return r.table.names[r.col]
}

// ColumnCount returns the number of columns in the row.
func (r Reader) ColumnCount() int {
	return len(r.table.names)
}

// Type returns the declared type of the current cell.
func (r Reader) Type() driver.ColumnType {
	return r.stmt.ColumnType(r.col)
}

// IsNull reports whether the current cell is NULL.
func (r Reader) IsNull() bool {
	return r.Type() == driver.Null
}

// Int64 returns the cell as an integer.
func (r Reader) Int64() int64 {
	return r.stmt.ColumnInt64(r.col)
}

// Float returns the cell as a float.
func (r Reader) Float() float64 {
	return r.stmt.ColumnDouble(r.col)
}

// Text returns the cell as text.
func (r Reader) Text() string {
	return r.stmt.ColumnText(r.col)
}

// Blob returns a copy of the cell's raw bytes, or nil when the cell is
// NULL.
func (r Reader) Blob() []byte {
	return bytes.Clone(r.rawBlob())
}

// rawBlob returns the cell's bytes without copying. The store may
// invalidate them on the next statement call.
func (r Reader) rawBlob() []byte {
	return r.stmt.ColumnBlob(r.col)
}

// Lookup returns the 0-based index of the named column. The lookup is
// case-insensitive.
func (r Reader) Lookup(name string) (int, bool) {
	return r.table.lookup(name)
}

// At returns a Reader for another column of the same row, sharing the
// cached column-name table.
func (r Reader) At(col int) Reader {
	return Reader{stmt: r.stmt, col: col, table: r.table}
}

// RowReader decodes rows of one statement execution. It builds the
// column-name table on first use and reuses it for every subsequent
// row.
type RowReader struct {
	stmt  driver.Stmt
	table *columnTable
}

// NewRowReader returns a RowReader for stmt. The statement must be
// positioned on a row before Read is called.
func NewRowReader(stmt driver.Stmt) *RowReader {
	return &RowReader{stmt: stmt}
}

// Read decodes the current row into dest, which must be a non-nil
// pointer or a map. Dispatch follows the fixed priority: a custom
// representation first, then the standard one, then the structural
// fallback (struct and map fields by case-insensitive column name,
// slice and array elements by position, single values from column 0).
func (rr *RowReader) Read(dest any) error {
	if rr.table == nil {
		rr.table = newColumnTable(rr.stmt)
	}
	return readDest(rr.stmt, rr.table, dest)
}

// ReadRow decodes the current row of stmt into dest with a throwaway
// column-name table. Use [NewRowReader] to amortize the table over many
// rows.
func ReadRow(stmt driver.Stmt, dest any) error {
	return NewRowReader(stmt).Read(dest)
}

func readDest(stmt driver.Stmt, table *columnTable, dest any) error {
	if dest == nil {
		return decodeErrorf(nil, "need map or non-nil pointer, got nil")
	}
	if cs, ok := dest.(ColumnScanner); ok {
		r := Reader{stmt: stmt, col: 0, table: table}
		ok, err := cs.ScanColumn(r)
		if err != nil {
			return asDecodeError(err)
		}
		if !ok {
			return decodeErrorf(nil, "no value in column 0 for %T", dest)
		}
		return nil
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() == reflect.Map {
		if rv.IsNil() {
			return decodeErrorf(nil, "need map or non-nil pointer, got nil %T", dest)
		}
		return readKeyedMap(stmt, table, rv)
	}
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return decodeErrorf(nil, "need map or non-nil pointer, got %T", dest)
	}
	elem := rv.Elem()

	if isStandardTarget(elem) {
		r := Reader{stmt: stmt, col: 0, table: table}
		ok, err := readColumn(r, elem)
		if err != nil {
			return asDecodeError(err)
		}
		if !ok {
			return decodeErrorf(nil, "no value in column 0 for %s", elem.Type())
		}
		return nil
	}

	switch elem.Kind() {
	case reflect.Struct:
		return readKeyedStruct(stmt, table, elem)
	case reflect.Map:
		if elem.IsNil() {
			elem.Set(reflect.MakeMap(elem.Type()))
		}
		return readKeyedMap(stmt, table, elem)
	case reflect.Slice:
		return readIndexedSlice(stmt, table, elem)
	case reflect.Array:
		return readIndexedArray(stmt, table, elem)
	}

	// Single opaque value: column 0 through the full chain, which ends
	// at the structural text decoder.
	r := Reader{stmt: stmt, col: 0, table: table}
	if _, err := readColumn(r, elem); err != nil {
		return asDecodeError(err)
	}
	return nil
}

// isStandardTarget reports whether rv decodes from a single cell rather
// than from the row's shape.
func isStandardTarget(rv reflect.Value) bool {
	switch rv.Type() {
	case valueType, timeType, byteSliceType:
		return true
	}
	if rv.CanAddr() {
		if _, ok := rv.Addr().Interface().(sql.Scanner); ok {
			return true
		}
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Bool, reflect.Float32, reflect.Float64, reflect.String:
		return true
	case reflect.Interface:
		return rv.Type().NumMethod() == 0
	case reflect.Pointer:
		return true
	}
	return false
}

var (
	valueType     = reflect.TypeOf(Value{})
	timeType      = reflect.TypeOf(time.Time{})
	byteSliceType = reflect.TypeOf([]byte(nil))
)

func readKeyedStruct(stmt driver.Stmt, table *columnTable, rv reflect.Value) error {
	for _, f := range typeFields(rv.Type()) {
		col, ok := table.lookup(f.name)
		if !ok {
			return decodeErrorf(nil, "column %q not found in results", f.name)
		}
		r := Reader{stmt: stmt, col: col, table: table}
		fv := rv.Field(f.index)
		ok, err := readColumn(r, fv)
		if err != nil {
			return asDecodeError(err)
		}
		if !ok {
			// NULL into a field that cannot hold it zeroes the field.
			fv.SetZero()
		}
	}
	return nil
}

func readKeyedMap(stmt driver.Stmt, table *columnTable, rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return decodeErrorf(nil, "map type %s must have key type string", rv.Type())
	}
	elemType := rv.Type().Elem()
	for col, name := range table.names {
		r := Reader{stmt: stmt, col: col, table: table}
		p := reflect.New(elemType)
		ok, err := readColumn(r, p.Elem())
		if err != nil {
			return asDecodeError(err)
		}
		_ = ok // NULL leaves the zero element
		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), p.Elem())
	}
	return nil
}

func readIndexedSlice(stmt driver.Stmt, table *columnTable, rv reflect.Value) error {
	n := len(table.names)
	out := reflect.MakeSlice(rv.Type(), n, n)
	for col := 0; col < n; col++ {
		r := Reader{stmt: stmt, col: col, table: table}
		if _, err := readColumn(r, out.Index(col)); err != nil {
			return asDecodeError(err)
		}
	}
	rv.Set(out)
	return nil
}

func readIndexedArray(stmt driver.Stmt, table *columnTable, rv reflect.Value) error {
	if rv.Len() > len(table.names) {
		return decodeErrorf(nil, "need %d columns for %s, result has %d",
			rv.Len(), rv.Type(), len(table.names))
	}
	for col := 0; col < rv.Len(); col++ {
		r := Reader{stmt: stmt, col: col, table: table}
		if _, err := readColumn(r, rv.Index(col)); err != nil {
			return asDecodeError(err)
		}
	}
	return nil
}

// readColumn decodes one cell into rv, following the fixed priority:
// custom scanner, standard representation, structural text fallback.
// ok=false reports a NULL cell that the target cannot represent; the
// caller decides whether that is an error or a zeroing.
func readColumn(r Reader, rv reflect.Value) (ok bool, err error) {
	if rv.CanAddr() {
		if cs, scanner := rv.Addr().Interface().(ColumnScanner); scanner {
			ok, err := cs.ScanColumn(r)
			if err != nil {
				return false, asDecodeError(err)
			}
			if !ok {
				return false, decodeErrorf(nil, "no value in column %d for %s", r.col, rv.Type())
			}
			return true, nil
		}
	}
	return readStandard(r, rv)
}

// ReadValue decodes the cell identified by r into dest, a non-nil
// pointer, using the full dispatch chain. It is the primitive that
// custom scan hooks recurse through.
func ReadValue(r Reader, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return decodeErrorf(nil, "need non-nil pointer, got %T", dest)
	}
	ok, err := readColumn(r, rv.Elem())
	if err != nil {
		return asDecodeError(err)
	}
	if !ok {
		return decodeErrorf(nil, "no value in column %d for %s", r.col, rv.Elem().Type())
	}
	return nil
}

func readStandard(r Reader, rv reflect.Value) (bool, error) {
	switch rv.Type() {
	case valueType:
		rv.Set(reflect.ValueOf(readValue(r)))
		return true, nil
	case timeType:
		return readTime(r, rv)
	case byteSliceType:
		switch r.Type() {
		case driver.Blob:
			rv.SetBytes(r.Blob())
		case driver.Text:
			rv.SetBytes([]byte(r.Text()))
		case driver.Null:
			rv.SetZero()
		default:
			return false, decodeErrorf(nil, "cannot decode %s column %d into []byte", r.Type(), r.col)
		}
		return true, nil
	}

	if rv.CanAddr() {
		if sc, ok := rv.Addr().Interface().(sql.Scanner); ok {
			if err := sc.Scan(cellValue(r)); err != nil {
				return false, asDecodeError(err)
			}
			return true, nil
		}
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if r.IsNull() {
			rv.SetZero()
			return true, nil
		}
		p := reflect.New(rv.Type().Elem())
		ok, err := readColumn(r, p.Elem())
		if err != nil {
			return false, err
		}
		if ok {
			rv.Set(p)
		}
		return ok, nil

	case reflect.Interface:
		if rv.Type().NumMethod() != 0 {
			break
		}
		if r.IsNull() {
			rv.SetZero()
		} else {
			rv.Set(reflect.ValueOf(cellValue(r)))
		}
		return true, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok, err := cellInt64(r)
		if !ok || err != nil {
			return ok, err
		}
		if rv.OverflowInt(i) {
			return false, decodeErrorf(nil, "value %d overflows %s in column %d", i, rv.Type(), r.col)
		}
		rv.SetInt(i)
		return true, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, ok, err := cellInt64(r)
		if !ok || err != nil {
			return ok, err
		}
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return false, decodeErrorf(nil, "value %d overflows %s in column %d", i, rv.Type(), r.col)
		}
		rv.SetUint(uint64(i))
		return true, nil

	case reflect.Bool:
		switch r.Type() {
		case driver.Integer:
			rv.SetBool(r.Int64() != 0)
		case driver.Text:
			b, err := strconv.ParseBool(strings.TrimSpace(r.Text()))
			if err != nil {
				return false, decodeErrorf(nil, "cannot parse %q in column %d as bool", r.Text(), r.col)
			}
			rv.SetBool(b)
		case driver.Null:
			return false, nil
		default:
			return false, decodeErrorf(nil, "cannot decode %s column %d into bool", r.Type(), r.col)
		}
		return true, nil

	case reflect.Float32, reflect.Float64:
		switch r.Type() {
		case driver.Float:
			rv.SetFloat(r.Float())
		case driver.Integer:
			rv.SetFloat(float64(r.Int64()))
		case driver.Text:
			f, err := strconv.ParseFloat(strings.TrimSpace(r.Text()), 64)
			if err != nil {
				return false, decodeErrorf(nil, "cannot parse %q in column %d as float", r.Text(), r.col)
			}
			rv.SetFloat(f)
		case driver.Null:
			return false, nil
		default:
			return false, decodeErrorf(nil, "cannot decode %s column %d into %s", r.Type(), r.col, rv.Type())
		}
		return true, nil

	case reflect.String:
		switch r.Type() {
		case driver.Text:
			rv.SetString(r.Text())
		case driver.Integer:
			rv.SetString(strconv.FormatInt(r.Int64(), 10))
		case driver.Float:
			rv.SetString(strconv.FormatFloat(r.Float(), 'g', -1, 64))
		case driver.Blob:
			rv.SetString(string(r.rawBlob()))
		case driver.Null:
			return false, nil
		}
		return true, nil
	}

	return readJSON(r, rv)
}

// cellInt64 reads the cell as an integer under the exact coercion
// rules: integer cells directly, float cells only when integral, text
// cells by parsing.
func cellInt64(r Reader) (int64, bool, error) {
	switch r.Type() {
	case driver.Integer:
		return r.Int64(), true, nil
	case driver.Float:
		f := r.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false, decodeErrorf(nil, "float %v in column %d is not an integer", f, r.col)
		}
		return int64(f), true, nil
	case driver.Text:
		i, err := strconv.ParseInt(strings.TrimSpace(r.Text()), 10, 64)
		if err != nil {
			return 0, false, decodeErrorf(nil, "cannot parse %q in column %d as integer", r.Text(), r.col)
		}
		return i, true, nil
	case driver.Null:
		return 0, false, nil
	}
	return 0, false, decodeErrorf(nil, "cannot decode %s column %d into integer", r.Type(), r.col)
}

// readTime decodes a calendar instant from text in the ISO-8601-like
// form, or from a numeric cell holding unix seconds.
func readTime(r Reader, rv reflect.Value) (bool, error) {
	switch r.Type() {
	case driver.Text:
		t, ok := timeparse.Parse(r.Text())
		if !ok {
			return false, decodeErrorf(nil, "cannot parse %q in column %d as time", r.Text(), r.col)
		}
		rv.Set(reflect.ValueOf(t))
	case driver.Integer:
		rv.Set(reflect.ValueOf(time.Unix(r.Int64(), 0).UTC()))
	case driver.Float:
		sec, frac := math.Modf(r.Float())
		rv.Set(reflect.ValueOf(time.Unix(int64(sec), int64(frac*1e9)).UTC()))
	case driver.Null:
		return false, nil
	default:
		return false, decodeErrorf(nil, "cannot decode %s column %d into time", r.Type(), r.col)
	}
	return true, nil
}

// cellValue returns the cell as its natural Go value: int64, float64,
// string, a copied []byte, or nil.
func cellValue(r Reader) any {
	switch r.Type() {
	case driver.Integer:
		return r.Int64()
	case driver.Float:
		return r.Float()
	case driver.Text:
		return r.Text()
	case driver.Blob:
		return r.Blob()
	}
	return nil
}

// readJSON is the structural fallback: the raw cell bytes are run
// through the structural text decoder into the target shape. An empty
// cell (NULL) leaves the target zero.
func readJSON(r Reader, rv reflect.Value) (bool, error) {
	raw := cellBytes(r)
	if len(raw) == 0 {
		rv.SetZero()
		return true, nil
	}
	if !rv.CanAddr() {
		return false, decodeErrorf(nil, "cannot decode into unaddressable %s", rv.Type())
	}
	if err := json.Unmarshal(raw, rv.Addr().Interface()); err != nil {
		return false, decodeErrorf(err, "cannot decode column %d into %s", r.col, rv.Type())
	}
	return true, nil
}

// cellBytes returns the raw bytes of the cell: text and blob cells
// yield their payload, numeric cells their textual form, NULL nothing.
func cellBytes(r Reader) []byte {
	switch r.Type() {
	case driver.Text:
		return []byte(r.Text())
	case driver.Blob:
		return r.rawBlob()
	case driver.Integer:
		return strconv.AppendInt(nil, r.Int64(), 10)
	case driver.Float:
		return strconv.AppendFloat(nil, r.Float(), 'g', -1, 64)
	}
	return nil
}
