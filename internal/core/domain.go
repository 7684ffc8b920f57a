package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Office is one registry entry, identified by its CNS code.
	// Immutable after load.
	Office struct {
		CNS    string
		UF     string
		City   string
		Name   string // Denominação
		Status string
		Type   string
	}

	// Money holds an amount in centavos.
	Money struct {
		Cents int64
	}

	// RawCollection is one collections row as read from the source,
	// before any cleaning. Period and amount are still text.
	RawCollection struct {
		CNS    string
		Period string // DD/MM/YYYY
		Amount string // Brazilian format: "." thousands, "," decimal
	}

	// Collection is a cleaned collections row: valid period, strictly
	// positive amount. The CNS may reference an office missing from the
	// registry; such rows are kept.
	Collection struct {
		CNS    string
		Period time.Time
		Amount Money
	}

	// Point is one month of the aggregated series. Month is always the
	// first day of the calendar month.
	Point struct {
		Month time.Time
		Total Money
	}

	// Scope is the set of office codes a query is narrowed to.
	Scope map[string]struct{}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPeriod = errors.New("invalid period")
)

// NewScope builds a Scope from a list of CNS codes, ignoring blanks.
func NewScope(codes ...string) Scope {
	s := make(Scope, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether the CNS code is in scope.
func (s Scope) Contains(cns string) bool {
	_, ok := s[cns]
	return ok
}

// Validate checks the invariants the cleaning step guarantees.
func (c Collection) Validate() error {
	if strings.TrimSpace(c.CNS) == "" {
		return errors.New("empty CNS")
	}
	if c.Period.IsZero() {
		return ErrInvalidPeriod
	}
	if c.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MonthOf truncates a date to the first day of its calendar month.
// All grouping uses this, in both region and office mode.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParsePeriod parses a period in strict DD/MM/YYYY form.
func ParsePeriod(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation("02/01/2006", s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidPeriod
	}
	return t, nil
}
