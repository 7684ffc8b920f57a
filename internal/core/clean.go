package core

import (
	"sort"
	"strconv"
	"strings"
)

// CleanReport counts what the cleaning pass kept and dropped, for
// structured logging at load time.
type CleanReport struct {
	Kept        int
	BadAmount   int
	BadPeriod   int
	NonPositive int
}

// Clean turns raw collections rows into validated ones:
//
//  1. amount: trim, strip ".", "," -> ".", parse as decimal
//  2. period: strict DD/MM/YYYY
//  3. rows failing either parse are dropped, never defaulted
//  4. rows with amount <= 0 are dropped
//  5. result sorted ascending by period
//
// The sort makes the output independent of input order, so cleaning an
// already-clean sequence is a no-op.
func Clean(raw []RawCollection) ([]Collection, CleanReport) {
	out := make([]Collection, 0, len(raw))
	var rep CleanReport
	for _, r := range raw {
		period, perr := ParsePeriod(r.Period)
		cents, aerr := ParseBRLToCents(r.Amount)
		switch {
		case aerr != nil && isNonPositive(r.Amount):
			rep.NonPositive++
			continue
		case aerr != nil:
			rep.BadAmount++
			continue
		case perr != nil:
			rep.BadPeriod++
			continue
		}
		out = append(out, Collection{CNS: r.CNS, Period: period, Amount: Money{Cents: cents}})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	rep.Kept = len(out)
	return out, rep
}

// isNonPositive reports whether the amount text is numeric but <= 0,
// i.e. the row was dropped by the positivity rule rather than being
// unparseable.
func isNonPositive(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v <= 0
}
