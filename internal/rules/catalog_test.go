package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/common"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, c.All())
}

func TestGetIsCaseInsensitive(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	for _, code := range []string{"NH", "nh", " nh "} {
		rule, err := c.Get(code)
		require.NoError(t, err, "code: %q", code)
		require.Equal(t, "NH", rule.Code)
	}
}

func TestGetUnknownCode(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	_, err = c.Get("ZZ")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestNewHampshireRule(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	rule, err := c.Get("NH")
	require.NoError(t, err)
	require.Equal(t, 120, rule.GeneralHoursRequired)
	require.Equal(t, 4, rule.EthicsHoursRequired)
	require.True(t, rule.HasAnnualMinimum())
	require.Equal(t, 20, *rule.MinimumHoursPerYear)
	require.Equal(t, constants.PeriodTriennial, rule.ReportingPeriodType)
	require.Equal(t, 36, rule.ReportingPeriodMonths)
}

func TestAllSortedByCode(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	all := c.All()
	for i := 1; i < len(all); i++ {
		require.Less(t, all[i-1].Code, all[i].Code)
	}
}

func TestLoadRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty array", `[]`},
		{"bad code", `[{"code":"NEWHAMPSHIRE","name":"X","general_hours_required":1,"ethics_hours_required":0,"reporting_period_type":"annual","reporting_period_months":12}]`},
		{"bad period type", `[{"code":"NH","name":"X","general_hours_required":1,"ethics_hours_required":0,"reporting_period_type":"quadrennial","reporting_period_months":12}]`},
		{"missing hours", `[{"code":"NH","name":"X","reporting_period_type":"annual","reporting_period_months":12}]`},
	}
	for _, tc := range tests {
		_, err := load([]byte(tc.data))
		require.Error(t, err, tc.name)
	}
}

func TestLoadRejectsDuplicateCodes(t *testing.T) {
	data := `[
		{"code":"NH","name":"A","general_hours_required":1,"ethics_hours_required":0,"reporting_period_type":"annual","reporting_period_months":12},
		{"code":"NH","name":"B","general_hours_required":1,"ethics_hours_required":0,"reporting_period_type":"annual","reporting_period_months":12}
	]`
	_, err := load([]byte(data))
	require.ErrorIs(t, err, common.ErrInvalidInput)
}
