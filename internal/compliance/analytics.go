package compliance

import (
	"time"

	"github.com/supercpe/cpe-tracker/internal/entity"
)

// Breakdown summarizes records completed inside [from, to] by field of
// study, provider, and month. Records without a completion date never
// contribute.
func Breakdown(records []entity.CPERecord, from, to time.Time) entity.Analytics {
	a := entity.Analytics{
		HoursByField:    make(map[string]float64),
		HoursByProvider: make(map[string]float64),
		HoursByMonth:    make(map[string]float64),
	}

	for _, rec := range records {
		if rec.CompletionDate == nil {
			continue
		}
		d := *rec.CompletionDate
		if d.Before(from) || d.After(to) {
			continue
		}
		a.TotalCourses++
		a.TotalHours += rec.CreditHours
		if rec.IsEthics {
			a.EthicsHours += rec.CreditHours
		}

		field := rec.FieldOfStudy
		if field == "" {
			field = "Unknown"
		}
		provider := rec.ProviderName
		if provider == "" {
			provider = "Unknown"
		}
		a.HoursByField[field] += rec.CreditHours
		a.HoursByProvider[provider] += rec.CreditHours
		a.HoursByMonth[d.Format("2006-01")] += rec.CreditHours
	}

	if a.TotalCourses > 0 {
		a.AverageCourseLength = a.TotalHours / float64(a.TotalCourses)
	}
	return a
}
