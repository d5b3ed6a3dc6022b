package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/compliance"
	"github.com/supercpe/cpe-tracker/internal/entity"
	"github.com/supercpe/cpe-tracker/internal/export"
)

type complianceResponse struct {
	Licensee  *entity.Licensee         `json:"licensee"`
	Rule      *entity.JurisdictionRule `json:"rule,omitempty"`
	Result    entity.ComplianceResult  `json:"result"`
	Analytics *entity.Analytics        `json:"analytics,omitempty"`
}

// getCompliance is the dashboard evaluation: current period, hour totals,
// deficits, and recommendations, computed fresh from stored records. An
// optional as_of query parameter pins the evaluation date.
func (s *Server) getCompliance(w http.ResponseWriter, r *http.Request) {
	id, err := licenseeID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	asOf, err := parseAsOf(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	l, err := s.licensees.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := complianceResponse{Licensee: l}
	if l.JurisdictionCode == nil {
		resp.Result = entity.ComplianceResult{
			Status: constants.StatusSetupRequired,
			Recommendations: []string{
				"Complete your license setup to enable compliance tracking",
			},
		}
		respondJSON(w, http.StatusOK, resp)
		return
	}

	rule, err := s.catalog.Get(*l.JurisdictionCode)
	if err != nil {
		s.respondError(w, err)
		return
	}
	records, err := s.records.ListAll(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	result, err := s.evaluator.Evaluate(rule, l.LicenseIssueDate, asOf, records)
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp.Rule = &rule
	resp.Result = result
	if result.Period != nil {
		a := compliance.Breakdown(records, result.Period.Start, result.Period.End)
		resp.Analytics = &a
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	id, err := licenseeID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	records, err := s.records.ListAll(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	from := time.Time{}
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			s.respondError(w, fmt.Errorf("from must be YYYY-MM-DD: %w", common.ErrInvalidInput))
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			s.respondError(w, fmt.Errorf("to must be YYYY-MM-DD: %w", common.ErrInvalidInput))
			return
		}
	}
	respondJSON(w, http.StatusOK, compliance.Breakdown(records, from, to))
}

type recordItem struct {
	entity.CPERecord
	SuggestedFilename string `json:"suggested_filename"`
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	id, err := licenseeID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	records, err := s.records.ListAll(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	items := make([]recordItem, len(records))
	for i, rec := range records {
		items[i] = recordItem{
			CPERecord:         rec,
			SuggestedFilename: export.SuggestedFilename(&rec),
		}
	}
	respondJSON(w, http.StatusOK, items)
}

// exportRecords streams the XLSX workbook, including the compliance summary
// sheet when the licensee has completed setup.
func (s *Server) exportRecords(w http.ResponseWriter, r *http.Request) {
	id, err := licenseeID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	l, err := s.licensees.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var summary *entity.ComplianceResult
	if l.JurisdictionCode != nil {
		if rule, err := s.catalog.Get(*l.JurisdictionCode); err == nil {
			records, err := s.records.ListAll(r.Context(), id)
			if err == nil {
				if result, err := s.evaluator.Evaluate(rule, l.LicenseIssueDate, time.Now().UTC(), records); err == nil {
					summary = &result
				}
			}
		}
	}

	data, err := s.exporter.ExportRecordsXLSX(r.Context(), id, nil, nil, summary)
	if err != nil {
		s.respondError(w, err)
		return
	}

	filename := fmt.Sprintf("cpe-records-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseAsOf(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("as_of")
	if v == "" {
		return time.Now().UTC(), nil
	}
	asOf, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("as_of must be YYYY-MM-DD: %w", common.ErrInvalidInput)
	}
	return asOf, nil
}
