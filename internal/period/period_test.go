package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func triennial() entity.JurisdictionRule {
	return entity.JurisdictionRule{
		Code:                  "NH",
		ReportingPeriodType:   constants.PeriodTriennial,
		ReportingPeriodMonths: 36,
	}
}

func TestCurrentFirstPeriod(t *testing.T) {
	p, err := Current(triennial(), date(2023, time.April, 1), date(2024, time.June, 15))
	require.NoError(t, err)
	require.Equal(t, date(2023, time.April, 1), p.Start)
	require.Equal(t, date(2026, time.March, 31), p.End)
	require.Equal(t, p.End, p.RenewalDate)
}

func TestCurrentLaterPeriod(t *testing.T) {
	// nine years after the anchor lands in the fourth triennial window
	p, err := Current(triennial(), date(2015, time.April, 1), date(2024, time.June, 15))
	require.NoError(t, err)
	require.Equal(t, date(2024, time.April, 1), p.Start)
	require.Equal(t, date(2027, time.March, 31), p.End)
	require.True(t, p.Contains(date(2024, time.June, 15)))
}

func TestCurrentAsOfEqualsAnchor(t *testing.T) {
	p, err := Current(triennial(), date(2023, time.April, 1), date(2023, time.April, 1))
	require.NoError(t, err)
	require.Equal(t, date(2023, time.April, 1), p.Start)
}

func TestCurrentAsOfOnPeriodBoundary(t *testing.T) {
	anchor := date(2020, time.January, 15)
	rule := triennial()

	// last day of the first period
	p, err := Current(rule, anchor, date(2023, time.January, 14))
	require.NoError(t, err)
	require.Equal(t, anchor, p.Start)

	// first day of the second period
	p, err = Current(rule, anchor, date(2023, time.January, 15))
	require.NoError(t, err)
	require.Equal(t, date(2023, time.January, 15), p.Start)
}

func TestCurrentAnchorAfterAsOf(t *testing.T) {
	_, err := Current(triennial(), date(2025, time.January, 1), date(2024, time.January, 1))
	require.ErrorIs(t, err, common.ErrInvalidAnchor)
}

func TestCurrentZeroMonths(t *testing.T) {
	rule := entity.JurisdictionRule{Code: "XX"}
	_, err := Current(rule, date(2023, time.January, 1), date(2024, time.January, 1))
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCurrentEndOfMonthAnchor(t *testing.T) {
	annual := entity.JurisdictionRule{
		Code:                  "NY",
		ReportingPeriodType:   constants.PeriodAnnual,
		ReportingPeriodMonths: 12,
	}

	// Jan 31 anchor: the next period starts Jan 31, ends Jan 30
	p, err := Current(annual, date(2023, time.January, 31), date(2023, time.June, 1))
	require.NoError(t, err)
	require.Equal(t, date(2023, time.January, 31), p.Start)
	require.Equal(t, date(2024, time.January, 30), p.End)
}

func TestCurrentLeapDayAnchorStable(t *testing.T) {
	annual := entity.JurisdictionRule{
		Code:                  "UT",
		ReportingPeriodType:   constants.PeriodAnnual,
		ReportingPeriodMonths: 12,
	}
	anchor := date(2024, time.February, 29)

	// Feb 28 of a common year completes the month, so the second period
	// starts there instead of oscillating
	p, err := Current(annual, anchor, date(2025, time.February, 28))
	require.NoError(t, err)
	require.Equal(t, date(2025, time.February, 28), p.Start)

	p, err = Current(annual, anchor, date(2025, time.February, 27))
	require.NoError(t, err)
	require.Equal(t, anchor, p.Start)
}

func TestDaysRemaining(t *testing.T) {
	p, err := Current(triennial(), date(2023, time.April, 1), date(2026, time.March, 30))
	require.NoError(t, err)
	require.Equal(t, 1, p.DaysRemaining)

	// past-period queries clamp to zero rather than going negative
	p2 := At(triennial(), date(2023, time.April, 1), date(2027, time.June, 1), 0)
	require.Equal(t, 0, p2.DaysRemaining)
}

func TestPeriodContainsInclusive(t *testing.T) {
	p, err := Current(triennial(), date(2023, time.April, 1), date(2024, time.January, 1))
	require.NoError(t, err)
	require.True(t, p.Contains(p.Start))
	require.True(t, p.Contains(p.End))
	require.False(t, p.Contains(p.Start.AddDate(0, 0, -1)))
	require.False(t, p.Contains(p.End.AddDate(0, 0, 1)))
}
