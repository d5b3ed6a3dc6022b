package entity

import "time"

// ReportingPeriod is the derived window over which a jurisdiction measures
// compliance. End is always after Start and the span covers exactly the
// rule's reporting period months minus one day.
type ReportingPeriod struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	RenewalDate   time.Time `json:"renewal_date"`
	DaysRemaining int       `json:"days_remaining"`
}

// Contains reports whether a date falls inside the period, inclusive on
// both ends.
func (p ReportingPeriod) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}
