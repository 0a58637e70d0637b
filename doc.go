/*
Package sqlbind is a type-directed marshalling layer between Go values and a
statement-oriented SQL store.

The store speaks five value kinds: NULL, integer, float, text, and blob.
This package converts arbitrary Go values into statement parameters and
result columns back into Go values, following one fixed dispatch priority
on both sides: a custom representation declared by the type itself, then
the standard representation for common scalar and time types, then a
structural fallback that marshals aggregates through JSON text.

# Binding

Parameters are bound with [BindParams] or, one value at a time, with
[BindValue]. A type controls its own encoding by implementing
[ParamBinder]; everything else follows the standard rules: integers and
booleans become store integers, floats become store floats, strings
become text, byte slices become blobs, time.Time becomes ISO-8601 text.
Structs and maps bind their fields to named parameters, slices and
arrays bind their elements to successive positional parameters, and any
value with no better representation is marshalled to JSON text.

# Reading

Result rows are decoded with [ReadRow] or a [RowReader]. A type controls
its own decoding by implementing [ColumnScanner]. Structs and maps are
filled by case-insensitive column name, slices and arrays by column
position, scalar destinations from column 0, with the usual numeric and
textual coercions in between.

# Execution

[DB] and [Query] drive a multi-statement script against a [driver.Conn]:
each statement is prepared, bound, and stepped in order, and rows from
every statement flow through one iteration. Get, GetFirst, GetAll, Each,
and Iter offer the row-delivery policies; Run executes and discards.

Store failures surface as [StoreError] carrying the numeric result code
and its diagnostics, conversion failures as [BindError] or [DecodeError].
*/
package sqlbind
