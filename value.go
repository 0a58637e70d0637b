// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbind

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/sqlbind/sqlbind/driver"
)

// ValueKind tags the populated case of a [Value].
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInteger
	KindFloat
	KindText
	KindBlob
)

// String returns the conventional name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindText:
		return "TEXT"
	case KindBlob:
		return "BLOB"
	}
	return "UNKNOWN"
}

// Value is a dynamically typed column value: exactly one of the five
// fundamental kinds is populated. The zero Value is NULL. Values are
// immutable once constructed.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Int64Value returns an integer Value.
func Int64Value(v int64) Value {
	return Value{kind: KindInteger, i: v}
}

// FloatValue returns a float Value.
func FloatValue(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// TextValue returns a text Value.
func TextValue(v string) Value {
	return Value{kind: KindText, s: v}
}

// BlobValue returns a blob Value holding its own copy of v.
func BlobValue(v []byte) Value {
	return Value{kind: KindBlob, b: bytes.Clone(v)}
}

// NullValue returns the NULL Value.
func NullValue() Value {
	return Value{}
}

// Kind returns the populated case.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the Value is NULL.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Int64 returns the integer payload; it is zero for any other kind.
func (v Value) Int64() int64 {
	return v.i
}

// Float returns the float payload; it is zero for any other kind.
func (v Value) Float() float64 {
	return v.f
}

// Text returns the text payload; it is empty for any other kind.
func (v Value) Text() string {
	return v.s
}

// Blob returns the blob payload; it is nil for any other kind. The
// returned slice must not be modified.
func (v Value) Blob() []byte {
	return v.b
}

// Equal reports structural equality: same kind, same payload. Blobs
// compare bytewise.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i == w.i
	case KindFloat:
		return v.f == w.f
	case KindText:
		return v.s == w.s
	case KindBlob:
		return bytes.Equal(v.b, w.b)
	}
	return true
}

// String renders the Value for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return strconv.Quote(v.s)
	case KindBlob:
		return fmt.Sprintf("blob(%d bytes)", len(v.b))
	}
	return "NULL"
}

// MarshalJSON encodes the Value in its structural text form: integers
// and floats as numeric literals, text as a string literal, blobs as an
// array of byte literals, NULL as the null literal.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		b, err := json.Marshal(v.f)
		if err != nil {
			return nil, err
		}
		// An integral float keeps a fraction marker so the decode side
		// does not read it back as an integer.
		if !bytes.ContainsAny(b, ".eE") {
			b = append(b, '.', '0')
		}
		return b, nil
	case KindText:
		return json.Marshal(v.s)
	case KindBlob:
		ints := make([]int, len(v.b))
		for i, b := range v.b {
			ints[i] = int(b)
		}
		return json.Marshal(ints)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes the structural text form produced by
// MarshalJSON. Numeric literals distinguish integer from float by the
// presence of a fraction or exponent.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("cannot decode empty value")
	}
	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return fmt.Errorf("cannot decode %q into value", data)
		}
		*v = NullValue()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case '[':
		var ints []int
		if err := json.Unmarshal(data, &ints); err != nil {
			return err
		}
		b := make([]byte, len(ints))
		for i, n := range ints {
			if n < 0 || n > 255 {
				return fmt.Errorf("byte literal %d out of range", n)
			}
			b[i] = byte(n)
		}
		*v = Value{kind: KindBlob, b: b}
	default:
		if bytes.ContainsAny(data, ".eE") {
			f, err := strconv.ParseFloat(string(data), 64)
			if err != nil {
				return fmt.Errorf("cannot decode %q into value: %s", data, err)
			}
			*v = FloatValue(f)
			return nil
		}
		i, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("cannot decode %q into value: %s", data, err)
		}
		*v = Int64Value(i)
	}
	return nil
}

// bind writes the Value to the statement parameter identified by b,
// delegating to the matching primitive bind operation.
func (v Value) bind(b Binder) error {
	switch v.kind {
	case KindInteger:
		return b.Int64(v.i)
	case KindFloat:
		return b.Float(v.f)
	case KindText:
		return b.Text(v.s)
	case KindBlob:
		return b.Blob(v.b)
	}
	return b.Null()
}

// readValue constructs a Value from the current cell by inspecting the
// cell's declared type rather than probing each accessor in turn. A
// text or blob cell whose accessor yields no payload decodes as NULL.
func readValue(r Reader) Value {
	switch r.Type() {
	case driver.Integer:
		return Int64Value(r.Int64())
	case driver.Float:
		return FloatValue(r.Float())
	case driver.Text:
		if r.rawBlob() == nil {
			return NullValue()
		}
		return TextValue(r.Text())
	case driver.Blob:
		b := r.rawBlob()
		if b == nil {
			return NullValue()
		}
		return Value{kind: KindBlob, b: bytes.Clone(b)}
	}
	return NullValue()
}
