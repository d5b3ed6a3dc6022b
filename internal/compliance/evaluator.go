// Package compliance evaluates a licensee's continuing-education standing
// against a jurisdiction rule over a reporting period.
package compliance

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/entity"
	"github.com/supercpe/cpe-tracker/internal/period"
)

// atRiskThreshold is the compliance percentage above which a non-compliant
// licensee is "At Risk" instead of "Non-Compliant".
const atRiskThreshold = 80.0

// Evaluator computes compliance results. The generic evaluation checks
// period totals and ethics hours; rules that carry an annual minimum get
// the specialized per-year check on top.
type Evaluator struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger, now: time.Now}
}

// Evaluate computes the compliance result for one (rule, anchor, asOf)
// evaluation over a snapshot of persisted records. A nil anchor yields
// Setup Required with no hour computation. Records without a completion
// date are excluded from every aggregation, never coerced to a date.
func (e *Evaluator) Evaluate(rule entity.JurisdictionRule, anchor *time.Time, asOf time.Time, records []entity.CPERecord) (entity.ComplianceResult, error) {
	if anchor == nil {
		return entity.ComplianceResult{
			Status:              constants.StatusSetupRequired,
			TotalHoursRequired:  rule.GeneralHoursRequired,
			EthicsHoursRequired: rule.EthicsHoursRequired,
			Recommendations: []string{
				"Complete your license setup to enable compliance tracking",
			},
		}, nil
	}

	p, err := period.Current(rule, *anchor, asOf)
	if err != nil {
		return entity.ComplianceResult{}, err
	}

	var totalHours, ethicsHours float64
	inPeriod := make([]entity.CPERecord, 0, len(records))
	for _, rec := range records {
		if rec.CompletionDate == nil {
			continue
		}
		if !p.Contains(*rec.CompletionDate) {
			continue
		}
		inPeriod = append(inPeriod, rec)
		totalHours += rec.CreditHours
		if rec.IsEthics {
			ethicsHours += rec.CreditHours
		}
	}

	res := entity.ComplianceResult{
		TotalHours:          totalHours,
		EthicsHours:         ethicsHours,
		TotalHoursRequired:  rule.GeneralHoursRequired,
		EthicsHoursRequired: rule.EthicsHoursRequired,
		Period:              &p,
	}

	totalOK := totalHours >= float64(rule.GeneralHoursRequired)
	ethicsOK := ethicsHours >= float64(rule.EthicsHoursRequired)

	if rule.GeneralHoursRequired > 0 {
		res.CompliancePercentage = totalHours / float64(rule.GeneralHoursRequired) * 100
		if res.CompliancePercentage > 100 {
			res.CompliancePercentage = 100
		}
	} else {
		res.CompliancePercentage = 100
	}

	// deficits in priority order: total, ethics, then per-year shortfalls
	if !totalOK {
		res.Deficits = append(res.Deficits, fmt.Sprintf(
			"%.1f general hours short of the %d required",
			float64(rule.GeneralHoursRequired)-totalHours, rule.GeneralHoursRequired))
	}
	if !ethicsOK {
		res.Deficits = append(res.Deficits, fmt.Sprintf(
			"%.1f ethics hours short of the %d required",
			float64(rule.EthicsHoursRequired)-ethicsHours, rule.EthicsHoursRequired))
	}

	var yearDefs []yearDeficit
	if rule.HasAnnualMinimum() {
		yearDefs = annualDeficits(p, dateOnly(asOf), inPeriod, *rule.MinimumHoursPerYear)
		for _, yd := range yearDefs {
			res.Deficits = append(res.Deficits, fmt.Sprintf(
				"%d: %.1f hours below the %d-hour annual minimum",
				yd.year, yd.shortfall, *rule.MinimumHoursPerYear))
		}
	}
	yearsOK := len(yearDefs) == 0

	res.IsCompliant = totalOK && ethicsOK && yearsOK
	switch {
	case res.IsCompliant:
		res.Status = constants.StatusCompliant
	case res.CompliancePercentage >= atRiskThreshold:
		res.Status = constants.StatusAtRisk
	default:
		res.Status = constants.StatusNonCompliant
	}

	res.Recommendations = recommendations(rule, res, p, yearDefs)

	e.logger.Debug("compliance evaluated",
		"jurisdiction", rule.Code,
		"status", res.Status,
		"total_hours", totalHours,
		"ethics_hours", ethicsHours,
		"deficits", len(res.Deficits),
	)
	return res, nil
}

type yearDeficit struct {
	year      int
	shortfall float64
}

// annualDeficits applies the per-year minimum to every calendar year fully
// or partially inside [period.start, min(period.end, asOf)], in
// chronological order. A year with no qualifying records is a full-minimum
// deficit.
func annualDeficits(p entity.ReportingPeriod, asOf time.Time, records []entity.CPERecord, minimum int) []yearDeficit {
	windowEnd := p.End
	if asOf.Before(windowEnd) {
		windowEnd = asOf
	}
	if windowEnd.Before(p.Start) {
		return nil
	}

	hoursByYear := make(map[int]float64)
	for _, rec := range records {
		hoursByYear[rec.CompletionDate.Year()] += rec.CreditHours
	}

	var deficits []yearDeficit
	for year := p.Start.Year(); year <= windowEnd.Year(); year++ {
		if sum := hoursByYear[year]; sum < float64(minimum) {
			deficits = append(deficits, yearDeficit{year: year, shortfall: float64(minimum) - sum})
		}
	}
	return deficits
}

// recommendations rephrases deficits as imperative actions and appends
// renewal-proximity nudges.
func recommendations(rule entity.JurisdictionRule, res entity.ComplianceResult, p entity.ReportingPeriod, yearDefs []yearDeficit) []string {
	var recs []string

	if res.TotalHours < float64(rule.GeneralHoursRequired) {
		recs = append(recs, fmt.Sprintf("Upload %.1f more CPE hours for the %s period ending %s",
			float64(rule.GeneralHoursRequired)-res.TotalHours,
			rule.ReportingPeriodType, p.End.Format("2006-01-02")))
	}
	if res.EthicsHours < float64(rule.EthicsHoursRequired) {
		recs = append(recs, fmt.Sprintf("Complete %.1f more ethics hours",
			float64(rule.EthicsHoursRequired)-res.EthicsHours))
	}
	for _, yd := range yearDefs {
		recs = append(recs, fmt.Sprintf("Complete %.1f more hours for %d to meet the %d-hour annual minimum",
			yd.shortfall, yd.year, *rule.MinimumHoursPerYear))
	}

	if p.DaysRemaining < 90 {
		recs = append(recs, "Renewal deadline approaching - prioritize remaining requirements")
	}
	if res.CompliancePercentage < 50 && p.DaysRemaining < 180 {
		recs = append(recs, "Consider accelerating CPE completion to avoid a last-minute rush")
	}
	return recs
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
