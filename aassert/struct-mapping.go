package aassert

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

// NumFields asserts that the struct object has the expected number of exported fields.
// Exported fields of nested structs are counted as well, also inside of
// pointers, slices, arrays and maps.
//
// Use it next to a function mapping one struct to another, e.g. a domain
// type to its JSON view: if a field is added, the test fails and points
// to the mapping to update.
func NumFields(t *testing.T, expected int, object any, msgAndArgs ...any) bool {
	t.Helper()

	if object == nil {
		return assert.Fail(t, "invalid argument, it has to be a struct", msgAndArgs...)
	}

	typ := reflect.TypeOf(object)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return assert.Fail(t, "invalid argument, it has to be a struct", msgAndArgs...)
	}

	fields := numFields(typ, map[reflect.Type]bool{})
	if fields != expected {
		t.Logf("the number of exported fields of %s changed: "+
			"check every function mapping it and the test data using it, then update the expected count of %s",
			typ, t.Name())

		return assert.Fail(t, fmt.Sprintf("struct changed, it has: %d fields, expected: %d", fields, expected), msgAndArgs...)
	}

	return true
}

func numFields(typ reflect.Type, seen map[reflect.Type]bool) int {
	for typ.Kind() == reflect.Ptr || typ.Kind() == reflect.Slice ||
		typ.Kind() == reflect.Array || typ.Kind() == reflect.Map {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct || seen[typ] {
		return 0
	}

	seen[typ] = true
	defer delete(seen, typ)

	var fields int

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		fields++
		fields += numFields(field.Type, seen)
	}

	return fields
}
