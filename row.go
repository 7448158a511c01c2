package ygggo_upsert

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx/reflectx"
	"github.com/pkg/errors"
)

// Row is an ordered column -> value mapping. Column order is the order the
// values are bound in, so it is kept explicitly rather than taken from a map.
//
// The zero Row is not a row at all and is rejected with ErrInvalidShape; a Row
// built with no columns is rejected with ErrEmptyInput.
type Row struct {
	cols []string
	vals []any
}

// structMapper resolves struct fields to column names: the `db` tag when set,
// otherwise the lower-cased field name.
var structMapper = reflectx.NewMapperFunc("db", strings.ToLower)

// NewRow builds a Row from alternating column names and values:
//
//	row, err := NewRow("id", 1, "name", "John")
func NewRow(pairs ...any) (Row, error) {
	if len(pairs)%2 != 0 {
		return Row{}, errors.Wrapf(ErrInvalidShape, "odd number of name/value arguments (%d)", len(pairs))
	}
	r := Row{cols: make([]string, 0, len(pairs)/2), vals: make([]any, 0, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return Row{}, errors.Wrapf(ErrInvalidShape, "argument %d: column name must be a string, got %T", i, pairs[i])
		}
		if err := r.add(name, pairs[i+1]); err != nil {
			return Row{}, err
		}
	}
	return r, nil
}

// MustRow is NewRow that panics on error. Intended for literals in tests and examples.
func MustRow(pairs ...any) Row {
	r, err := NewRow(pairs...)
	if err != nil {
		panic(err)
	}
	return r
}

// RowFromMap builds a Row from m. Columns follow order when given; otherwise
// the keys are sorted, since Go maps carry no order of their own.
func RowFromMap(m map[string]any, order ...string) (Row, error) {
	if m == nil {
		return Row{}, errors.Wrap(ErrInvalidShape, "nil map")
	}
	if len(order) == 0 {
		order = make([]string, 0, len(m))
		for k := range m {
			order = append(order, k)
		}
		sort.Strings(order)
	}
	r := Row{cols: make([]string, 0, len(order)), vals: make([]any, 0, len(order))}
	for _, k := range order {
		v, ok := m[k]
		if !ok {
			return Row{}, errors.Wrapf(ErrInvalidShape, "column %q not present in map", k)
		}
		if err := r.add(k, v); err != nil {
			return Row{}, err
		}
	}
	return r, nil
}

// RowFromStruct builds a Row from the exported fields of a struct (or pointer
// to struct) in declaration order. Embedded structs are flattened in place,
// except those with no exported fields of their own (time.Time, for one),
// which become a single column named after the type.
// Column names come from the `db` tag; `db:"-"` skips a field.
func RowFromStruct(v any) (Row, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Row{}, errors.Wrap(ErrInvalidShape, "nil struct pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return Row{}, errors.Wrapf(ErrInvalidShape, "want struct, got %T", v)
	}
	tm := structMapper.TypeMap(rv.Type())
	r := Row{cols: []string{}, vals: []any{}}
	if err := appendStructFields(&r, rv, tm.Tree); err != nil {
		return Row{}, err
	}
	return r, nil
}

func appendStructFields(r *Row, v reflect.Value, fi *reflectx.FieldInfo) error {
	for _, child := range fi.Children {
		if child == nil {
			continue
		}
		var fv reflect.Value
		if v.IsValid() {
			fv = v.Field(child.Index[len(child.Index)-1])
		}
		if child.Embedded && hasFields(child) {
			inner := fv
			if inner.IsValid() && inner.Kind() == reflect.Ptr {
				if inner.IsNil() {
					inner = reflect.Value{}
				} else {
					inner = inner.Elem()
				}
			}
			if err := appendStructFields(r, inner, child); err != nil {
				return err
			}
			continue
		}
		if fv.IsValid() && !fv.CanInterface() {
			continue
		}
		var val any
		if fv.IsValid() {
			val = fv.Interface()
		}
		if err := r.add(child.Name, val); err != nil {
			return err
		}
	}
	return nil
}

// hasFields reports whether fi maps at least one field of its own.
func hasFields(fi *reflectx.FieldInfo) bool {
	for _, c := range fi.Children {
		if c != nil {
			return true
		}
	}
	return false
}

// add appends one column. Names must be unique within a row.
func (r *Row) add(name string, value any) error {
	for _, c := range r.cols {
		if c == name {
			return errors.Wrapf(ErrInvalidShape, "duplicate column %q", name)
		}
	}
	r.cols = append(r.cols, name)
	r.vals = append(r.vals, value)
	return nil
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.cols) }

// Columns returns a copy of the column names in order.
func (r Row) Columns() []string { return append([]string(nil), r.cols...) }

// Values returns a copy of the values in column order.
func (r Row) Values() []any { return append([]any(nil), r.vals...) }

// Get returns the value stored under name.
func (r Row) Get(name string) (any, bool) {
	for i, c := range r.cols {
		if c == name {
			return r.vals[i], true
		}
	}
	return nil, false
}

// Set returns a copy of r with name set to value. A new column is appended
// at the end.
func (r Row) Set(name string, value any) Row {
	out := Row{cols: r.Columns(), vals: r.Values()}
	if out.cols == nil {
		out.cols, out.vals = []string{}, []any{}
	}
	for i, c := range out.cols {
		if c == name {
			out.vals[i] = value
			return out
		}
	}
	out.cols = append(out.cols, name)
	out.vals = append(out.vals, value)
	return out
}

func (r Row) valid() bool { return r.cols != nil && len(r.cols) == len(r.vals) }

func (r Row) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", c, r.vals[i])
	}
	b.WriteByte('}')
	return b.String()
}
