// Package normalize contains the rule-based text transforms applied to vendor
// free-text fields before they are written into tags: the opening-hours
// grammar rewrite, name suffix stripping, and the curated name-correction
// lookup. All functions are pure and deterministic.
package normalize

import (
	"strconv"
	"strings"
)

// rule is one literal substitution, applied to all occurrences.
type rule struct {
	from string
	to   string
}

// weekdayRules rewrites weekday spellings seen in vendor feeds to the
// two-letter abbreviations of the opening_hours grammar. Full names go
// first so "Monday" does not decay to "Moday" via the three-letter rule.
var weekdayRules = []rule{
	{"Monday", "Mo"},
	{"Tuesday", "Tu"},
	{"Wednesday", "We"},
	{"Thursday", "Th"},
	{"Friday", "Fr"},
	{"Saturday", "Sa"},
	{"Sunday", "Su"},
	{"Mon", "Mo"},
	{"Tue", "Tu"},
	{"Wed", "We"},
	{"Thu", "Th"},
	{"Fri", "Fr"},
	{"Sat", "Sa"},
	{"Sun", "Su"},
	{"MO", "Mo"},
	{"TU", "Tu"},
	{"WE", "We"},
	{"TH", "Th"},
	{"FR", "Fr"},
	{"SA", "Sa"},
	{"SU", "Su"},
}

// OpeningHours rewrites a free-text hours string into the constrained
// opening_hours mini-grammar: two-letter weekdays, zero-padded HH:MM times,
// "-" ranges without spaces, and ";" as the clause separator.
//
// The substitutions are ordered. For each hour the ".30"/":30" forms must
// run before the whole-hour form, otherwise "1:30am" would be mangled by
// the "1am" pass. Output is a fixed point: applying the function to its own
// result changes nothing.
func OpeningHours(in string) string {
	for _, r := range weekdayRules {
		in = strings.ReplaceAll(in, r.from, r.to)
	}
	in = strings.ReplaceAll(in, " - ", "-")
	in = strings.ReplaceAll(in, "M-F", "Mo-Fr")

	in = rewriteClockTimes(in, "am")
	in = rewriteClockTimes(in, "pm")

	return strings.ReplaceAll(in, ",", ";")
}

// rewriteClockTimes converts "<h>.30am", "<h>:30am" and "<h>am" tokens (and
// their pm equivalents) for hours 1 through 12 into zero-padded HH:30 / HH:00.
func rewriteClockTimes(in, meridiem string) string {
	for h := 1; h <= 12; h++ {
		digits := strconv.Itoa(h)
		padded := digits
		if len(padded) == 1 {
			padded = "0" + padded
		}
		in = strings.ReplaceAll(in, digits+".30"+meridiem, padded+":30")
		in = strings.ReplaceAll(in, digits+":30"+meridiem, padded+":30")
		in = strings.ReplaceAll(in, digits+meridiem, padded+":00")
	}
	return in
}
