package entity

import "github.com/supercpe/cpe-tracker/constants"

// JurisdictionRule is the immutable per-jurisdiction continuing-education
// requirement set. One rule governs many licensees' periods; it is consumed
// read-only from the jurisdiction catalog.
type JurisdictionRule struct {
	Code                  string               `json:"code"`
	Name                  string               `json:"name"`
	BoardName             string               `json:"board_name,omitempty"`
	GeneralHoursRequired  int                  `json:"general_hours_required"`
	EthicsHoursRequired   int                  `json:"ethics_hours_required"`
	MinimumHoursPerYear   *int                 `json:"minimum_hours_per_year,omitempty"`
	ReportingPeriodType   constants.PeriodType `json:"reporting_period_type"`
	ReportingPeriodMonths int                  `json:"reporting_period_months"`
}

// HasAnnualMinimum reports whether the rule carries a per-year floor in
// addition to the period totals.
func (r JurisdictionRule) HasAnnualMinimum() bool {
	return r.MinimumHoursPerYear != nil && *r.MinimumHoursPerYear > 0
}
