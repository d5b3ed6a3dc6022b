// Package rules holds the jurisdiction requirement catalog. Rules are
// versioned with the binary as embedded JSON and validated against a JSON
// schema at load time, so a bad edit fails fast instead of producing wrong
// compliance math.
package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

//go:embed jurisdictions.json
var jurisdictionsJSON []byte

//go:embed schema.json
var schemaJSON []byte

// Catalog is an immutable, code-indexed set of jurisdiction rules.
type Catalog struct {
	byCode map[string]entity.JurisdictionRule
}

// Load parses and validates the embedded jurisdiction data.
func Load() (*Catalog, error) {
	return load(jurisdictionsJSON)
}

func load(data []byte) (*Catalog, error) {
	if err := validateAgainstSchema(data); err != nil {
		return nil, fmt.Errorf("jurisdiction data: %w", err)
	}

	var raw []struct {
		Code                  string `json:"code"`
		Name                  string `json:"name"`
		BoardName             string `json:"board_name"`
		GeneralHoursRequired  int    `json:"general_hours_required"`
		EthicsHoursRequired   int    `json:"ethics_hours_required"`
		MinimumHoursPerYear   *int   `json:"minimum_hours_per_year"`
		ReportingPeriodType   string `json:"reporting_period_type"`
		ReportingPeriodMonths int    `json:"reporting_period_months"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal jurisdiction data: %w", err)
	}

	c := &Catalog{byCode: make(map[string]entity.JurisdictionRule, len(raw))}
	for _, r := range raw {
		if _, dup := c.byCode[r.Code]; dup {
			return nil, fmt.Errorf("duplicate jurisdiction code %q: %w", r.Code, common.ErrInvalidInput)
		}
		c.byCode[r.Code] = entity.JurisdictionRule{
			Code:                  r.Code,
			Name:                  r.Name,
			BoardName:             r.BoardName,
			GeneralHoursRequired:  r.GeneralHoursRequired,
			EthicsHoursRequired:   r.EthicsHoursRequired,
			MinimumHoursPerYear:   r.MinimumHoursPerYear,
			ReportingPeriodType:   constants.PeriodType(r.ReportingPeriodType),
			ReportingPeriodMonths: r.ReportingPeriodMonths,
		}
	}
	return c, nil
}

func validateAgainstSchema(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

// Get looks up a jurisdiction rule by code. Codes are case-insensitive.
func (c *Catalog) Get(code string) (entity.JurisdictionRule, error) {
	rule, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return entity.JurisdictionRule{}, fmt.Errorf("jurisdiction %q: %w", code, common.ErrNotFound)
	}
	return rule, nil
}

// All returns every rule sorted by code.
func (c *Catalog) All() []entity.JurisdictionRule {
	out := make([]entity.JurisdictionRule, 0, len(c.byCode))
	for _, r := range c.byCode {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
