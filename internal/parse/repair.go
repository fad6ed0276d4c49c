package parse

import (
	"regexp"
	"strconv"
)

// RepairOptions carries the salary text-repair heuristics inherited from the
// standalone wage scraper. Both look like workarounds for one specific page
// template, so they stay opt-in and apply only to the salary summary of a
// listing block — never to any other field.
type RepairOptions struct {
	// CollapseDigitRuns rewrites "1600" followed by a four-digit run back to
	// "1600" (a template bug once glued a yearly figure onto the hourly one).
	CollapseDigitRuns bool
	// MinWage drops a block whose first salary number is below the floor
	// (three-digit figures were per-day rates leaking into hourly listings).
	// Zero disables the filter.
	MinWage int
}

var (
	digitRun1600 = regexp.MustCompile(`1600\d{4}`)
	firstNumber  = regexp.MustCompile(`\d+`)
)

// RepairSalary applies the configured repairs to a salary summary.
func RepairSalary(s string, opts RepairOptions) string {
	if opts.CollapseDigitRuns {
		s = digitRun1600.ReplaceAllString(s, "1600")
	}
	return s
}

// BelowWageFloor reports whether the summary's first number is under the
// configured floor. Summaries without any number are never dropped.
func BelowWageFloor(s string, opts RepairOptions) bool {
	if opts.MinWage <= 0 {
		return false
	}
	match := firstNumber.FindString(s)
	if match == "" {
		return false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return false
	}
	return n < opts.MinWage
}
