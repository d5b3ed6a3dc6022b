package constants

// ComplianceStatus is the overall standing of a licensee for a reporting
// period. Stable values (rendered to clients verbatim).
const (
	StatusCompliant     = "Compliant"
	StatusAtRisk        = "At Risk"
	StatusNonCompliant  = "Non-Compliant"
	StatusSetupRequired = "Setup Required"
)

// ExtractionMethod records how a candidate record was produced.
type ExtractionMethod string

const (
	MethodFilenamePattern ExtractionMethod = "filename_pattern"
	MethodTextPattern     ExtractionMethod = "text_pattern"
	MethodManual          ExtractionMethod = "manual"
)

// DeliveryMethod is the NASBA delivery format of a course.
type DeliveryMethod string

const (
	DeliverySelfStudy      DeliveryMethod = "QAS Self-Study"
	DeliveryLive           DeliveryMethod = "Group Live"
	DeliveryOnline         DeliveryMethod = "Group Internet"
	DeliveryCorrespondence DeliveryMethod = "Correspondence"
)

// QualityIssue tags a low-confidence extraction result for manual review.
type QualityIssue string

const (
	IssueCourseNameUnclear     QualityIssue = "course_name_unclear"
	IssueCompletionDateInvalid QualityIssue = "completion_date_invalid"
	IssueCreditsUnreasonable   QualityIssue = "credits_unreasonable"
	IssueProviderUnclear       QualityIssue = "provider_unclear"
)

// IngestOutcome is the per-document result of an upload. Duplicate and
// needs-review are distinct successes, not errors.
type IngestOutcome string

const (
	OutcomeAccepted         IngestOutcome = "accepted"
	OutcomeNeedsReview      IngestOutcome = "needs_review"
	OutcomeDuplicate        IngestOutcome = "duplicate"
	OutcomeRejected         IngestOutcome = "rejected"
	OutcomeExtractionFailed IngestOutcome = "extraction_failed"
)

// PeriodType is the length class of a jurisdiction's reporting period.
type PeriodType string

const (
	PeriodAnnual    PeriodType = "annual"
	PeriodBiennial  PeriodType = "biennial"
	PeriodTriennial PeriodType = "triennial"
)
