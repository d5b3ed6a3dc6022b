package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

type createLicenseeRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (s *Server) createLicensee(w http.ResponseWriter, r *http.Request) {
	var req createLicenseeRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" {
		s.respondError(w, fmt.Errorf("full_name and email are required: %w", common.ErrInvalidInput))
		return
	}

	l := &entity.Licensee{FullName: req.FullName, Email: req.Email}
	if err := s.licensees.Create(r.Context(), l); err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, l)
}

func (s *Server) getLicensee(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, l)
}

type setupLicenseRequest struct {
	JurisdictionCode string `json:"jurisdiction_code"`
	LicenseNumber    string `json:"license_number"`
	LicenseIssueDate string `json:"license_issue_date"`
}

// setupLicense records the one-time license details. The issue date anchors
// every reporting period, so it must parse and must not be in the future.
func (s *Server) setupLicense(w http.ResponseWriter, r *http.Request) {
	id, err := licenseeID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	var req setupLicenseRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	rule, err := s.catalog.Get(req.JurisdictionCode)
	if err != nil {
		s.respondError(w, fmt.Errorf("unknown jurisdiction %q: %w", req.JurisdictionCode, common.ErrInvalidInput))
		return
	}
	issued, err := time.Parse("2006-01-02", req.LicenseIssueDate)
	if err != nil {
		s.respondError(w, fmt.Errorf("license_issue_date must be YYYY-MM-DD: %w", common.ErrInvalidInput))
		return
	}
	if issued.After(time.Now().UTC()) {
		s.respondError(w, fmt.Errorf("license_issue_date is in the future: %w", common.ErrInvalidAnchor))
		return
	}

	l, err := s.licensees.SetupLicense(r.Context(), id, rule.Code, strings.TrimSpace(req.LicenseNumber), issued)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (s *Server) listJurisdictions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.catalog.All())
}

func (s *Server) getJurisdiction(w http.ResponseWriter, r *http.Request) {
	rule, err := s.catalog.Get(chi.URLParam(r, "code"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rule)
}
