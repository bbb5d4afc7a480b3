package queues_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

func TestParseBound(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		raw     string
		missing bool
		valid   bool
		value   int
	}{
		"empty":              {"", true, false, 0},
		"number":             {"10", false, true, 10},
		"zero":               {"0", false, true, 0},
		"negative":           {"-3", false, true, -3},
		"plus sign":          {"+4", false, true, 4},
		"leading whitespace": {"  7", false, true, 7},
		"trailing garbage":   {"12px", false, true, 12},
		"text":               {"abc", false, false, 0},
		"sign only":          {"-", false, false, 0},
		"whitespace only":    {" ", false, false, 0},
		"overflow":           {"99999999999999999999999", false, false, 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := queues.ParseBound(tc.raw)
			assert.Equal(t, tc.missing, b.Missing())
			assert.Equal(t, tc.valid, b.Valid())

			if tc.valid {
				assert.Equal(t, tc.value, b.Or(-1))
			} else {
				assert.Equal(t, -1, b.Or(-1))
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		start    string
		end      string
		expected queues.Pagination
	}{
		"both missing":  {"", "", queues.Pagination{Start: 0, End: 10}},
		"start missing": {"", "5", queues.Pagination{Start: 0, End: 10}},
		"end missing":   {"20", "", queues.Pagination{Start: 0, End: 10}},
		"both valid":    {"20", "29", queues.Pagination{Start: 20, End: 29}},
		// a bad bound falls back on its own, the other bound is kept
		"invalid start keeps end, not the default window 0-10": {"abc", "5", queues.Pagination{Start: 0, End: 5}},
		"invalid end":   {"20", "xyz", queues.Pagination{Start: 20, End: 10}},
		"both invalid":  {"abc", "xyz", queues.Pagination{Start: 0, End: 10}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := queues.NewPagination(queues.ParseBound(tc.start), queues.ParseBound(tc.end))
			assert.Equal(t, tc.expected, p)
		})
	}
}
