package aassert_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/queueboard/aassert"
)

type (
	flat struct {
		Name    string
		Count   int64
		private bool //nolint:unused // never counted
	}

	withPointers struct {
		Started  *int64
		Finished *time.Time
		Raw      json.RawMessage
	}

	nested struct {
		Flat    flat
		Flats   []flat
		ByName  map[string]*flat
		Strings []string
	}

	recursive struct {
		Name     string
		Children []recursive
	}
)

func TestNumFields(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		object   any
		expected int
		pass     bool
	}{
		"nil":              {nil, 0, false},
		"int":              {0, 0, false},
		"string":           {"", 0, false},
		"slice":            {[]flat{}, 2, false},
		"flat":             {flat{}, 2, true},
		"miscount":         {flat{}, 1337, false},
		"pointer":          {&flat{}, 2, true},
		"pointer fields":   {withPointers{}, 3, true},
		"nested":           {nested{}, 10, true},
		"recursive struct": {recursive{}, 2, true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pass := aassert.NumFields(new(testing.T), tt.expected, tt.object)
			assert.Equal(t, tt.pass, pass)
		})
	}
}
