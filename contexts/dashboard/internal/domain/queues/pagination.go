package queues

import (
	"strconv"
	"strings"
)

const (
	DefaultStart = 0
	DefaultEnd   = 10
)

type boundKind int

const (
	boundMissing boundKind = iota
	boundInvalid
	boundValid
)

// Bound is one parsed side of a Pagination window: Valid(n), Missing or Invalid.
type Bound struct {
	kind  boundKind
	value int
}

// ParseBound parses the leading integer of raw, ignoring leading whitespace
// and anything after the digits, e.g. " 12px" is 12.
// An empty raw is Missing, raw without leading digits is Invalid.
func ParseBound(raw string) Bound {
	if raw == "" {
		return Bound{kind: boundMissing}
	}

	s := strings.TrimLeft(raw, " \t\n\r\v\f")

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}

	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	if end == digitsStart {
		return Bound{kind: boundInvalid}
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return Bound{kind: boundInvalid}
	}

	return Bound{kind: boundValid, value: n}
}

func (b Bound) Missing() bool { return b.kind == boundMissing }
func (b Bound) Valid() bool   { return b.kind == boundValid }

// Or returns the parsed value or def, if the bound is not Valid.
func (b Bound) Or(def int) int {
	if b.Valid() {
		return b.value
	}

	return def
}

// Pagination is the window of jobs to return per status, end inclusive.
type Pagination struct {
	Start int
	End   int
}

// NewPagination only considers the bounds if both are present.
// If they are, an Invalid bound falls back to its own default,
// without affecting the other bound.
func NewPagination(start Bound, end Bound) Pagination {
	if start.Missing() || end.Missing() {
		return Pagination{Start: DefaultStart, End: DefaultEnd}
	}

	return Pagination{
		Start: start.Or(DefaultStart),
		End:   end.Or(DefaultEnd),
	}
}
