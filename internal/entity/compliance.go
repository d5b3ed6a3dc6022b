package entity

// ComplianceResult is computed on demand per (licensee, jurisdiction, as-of
// date) from a snapshot of persisted records. It is never mutated, only
// recomputed.
type ComplianceResult struct {
	IsCompliant          bool             `json:"is_compliant"`
	Status               string           `json:"status"`
	TotalHours           float64          `json:"total_hours"`
	EthicsHours          float64          `json:"ethics_hours"`
	TotalHoursRequired   int              `json:"total_hours_required"`
	EthicsHoursRequired  int              `json:"ethics_hours_required"`
	CompliancePercentage float64          `json:"compliance_percentage"`
	Deficits             []string         `json:"deficits,omitempty"`
	Recommendations      []string         `json:"recommendations,omitempty"`
	Period               *ReportingPeriod `json:"period,omitempty"`
}

// Analytics summarizes a licensee's records over a window.
type Analytics struct {
	TotalCourses        int                `json:"total_courses"`
	TotalHours          float64            `json:"total_hours"`
	EthicsHours         float64            `json:"ethics_hours"`
	HoursByField        map[string]float64 `json:"hours_by_field"`
	HoursByProvider     map[string]float64 `json:"hours_by_provider"`
	HoursByMonth        map[string]float64 `json:"hours_by_month"`
	AverageCourseLength float64            `json:"average_course_length"`
}
