// Package period computes jurisdiction reporting-period windows from a
// renewal rule and an anchor date (typically the license issue date).
package period

import (
	"fmt"
	"time"

	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

// Current returns the reporting period containing asOf for the given rule
// and anchor date. It fails with ErrInvalidAnchor when the anchor is after
// asOf.
func Current(rule entity.JurisdictionRule, anchor, asOf time.Time) (entity.ReportingPeriod, error) {
	anchor = dateOnly(anchor)
	asOf = dateOnly(asOf)
	if anchor.After(asOf) {
		return entity.ReportingPeriod{}, fmt.Errorf("anchor %s is after %s: %w",
			anchor.Format("2006-01-02"), asOf.Format("2006-01-02"), common.ErrInvalidAnchor)
	}
	months := rule.ReportingPeriodMonths
	if months <= 0 {
		return entity.ReportingPeriod{}, fmt.Errorf("rule %s has no reporting period length: %w",
			rule.Code, common.ErrInvalidInput)
	}

	index := wholeMonths(anchor, asOf) / months
	return At(rule, anchor, asOf, index), nil
}

// At returns the reporting period with the given zero-based index counted
// from the anchor date. asOf only influences DaysRemaining.
func At(rule entity.JurisdictionRule, anchor, asOf time.Time, index int) entity.ReportingPeriod {
	anchor = dateOnly(anchor)
	asOf = dateOnly(asOf)
	months := rule.ReportingPeriodMonths

	start := addMonths(anchor, index*months)
	end := addMonths(start, months).AddDate(0, 0, -1)

	days := int(end.Sub(asOf) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return entity.ReportingPeriod{
		Start:         start,
		End:           end,
		RenewalDate:   end,
		DaysRemaining: days,
	}
}

// wholeMonths counts full calendar months between from and to (from <= to),
// flooring partial months. The last day of a short month completes the
// month, so a Feb 29 anchor still advances one full year on Feb 28.
func wholeMonths(from, to time.Time) int {
	m := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() && to.Day() != daysInMonth(to.Year(), to.Month()) {
		m--
	}
	if m < 0 {
		m = 0
	}
	return m
}

// addMonths performs calendar-month addition preserving the day of month,
// clamping to the end of shorter months (Jan 31 + 1 month = Feb 28/29).
// time.AddDate is deliberately avoided here: it normalizes overflow into
// the next month instead of clamping.
func addMonths(t time.Time, months int) time.Time {
	total := int(t.Month()) - 1 + months
	year := t.Year() + total/12
	month := time.Month(total%12 + 1)
	day := t.Day()
	if dim := daysInMonth(year, month); day > dim {
		day = dim
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
