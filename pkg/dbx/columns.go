package dbx

import (
	"reflect"

	"github.com/pkg/errors"
)

// RowConvertibleEntity is implemented by structs that produce their own row for a bulk copy.
// ToRow must return the values in the order of the struct's `db` tagged fields.
type RowConvertibleEntity interface {
	ToRow() []interface{}
}

// column is a tagged struct field: the column it maps to and the field index.
type column struct {
	name  string
	index int
}

// taggedColumns lists the exported fields of t carrying a tagKey tag other than "-".
func taggedColumns(t reflect.Type, tagKey string) []column {
	var columns []column

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get(tagKey)
		if name == "" || name == "-" {
			continue
		}

		columns = append(columns, column{name: name, index: i})
	}

	return columns
}

// structValue dereferences pointers and rejects anything that is not a struct.
func structValue(entity any) (reflect.Value, error) {
	v := reflect.Indirect(reflect.ValueOf(entity))
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, errors.Errorf("expected a struct type, got %s", v.Kind())
	}

	return v, nil
}

// DeriveColumnNamesFromTags returns the tagKey values (e.g. "db") of the exported fields of
// entity, in declaration order. entity may be a struct or a pointer to one.
//
//	type Order struct {
//	    ID     int    `db:"id"`
//	    Status string `db:"status"`
//	    Notes  string `db:"-"`
//	}
//	columns, _ := DeriveColumnNamesFromTags(Order{}, "db") // [id status]
func DeriveColumnNamesFromTags[T any](entity T, tagKey string) ([]string, error) {
	v, err := structValue(entity)
	if err != nil {
		return nil, err
	}

	columns := taggedColumns(v.Type(), tagKey)
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}

	return names, nil
}

// StructsToRows reads the tagged field values of every entity, one row per entity, in the
// column order of DeriveColumnNamesFromTags. The rows feed pgx.CopyFromRows.
func StructsToRows[T any](entities []T, tagKey string) ([][]interface{}, error) {
	rows := make([][]interface{}, 0, len(entities))

	var (
		lastType reflect.Type
		columns  []column
	)

	for i, entity := range entities {
		v, err := structValue(entity)
		if err != nil {
			return nil, errors.Wrapf(err, "entity %d", i)
		}

		if v.Type() != lastType {
			lastType = v.Type()
			columns = taggedColumns(lastType, tagKey)
		}

		row := make([]interface{}, len(columns))
		for j, c := range columns {
			row[j] = v.Field(c.index).Interface()
		}
		rows = append(rows, row)
	}

	return rows, nil
}
