package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/async"
	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/ingest"
)

// readUpload pulls one file out of a multipart request.
func readUpload(r *http.Request, field string) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, fmt.Errorf("parse multipart form: %w", common.ErrInvalidInput)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("missing %q file field: %w", field, common.ErrInvalidInput)
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, content, nil
}

func (s *Server) uploadCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := licenseeID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	filename, content, err := readUpload(r, "file")
	if err != nil {
		s.respondError(w, err)
		return
	}

	res := s.ingest.IngestFile(r.Context(), id, filename, content)
	respondJSON(w, uploadStatus(res), res)
}

// uploadCertificateAsync accepts the document and queues it for background
// processing. The response carries only the digest; the client polls the
// records list for the outcome.
func (s *Server) uploadCertificateAsync(w http.ResponseWriter, r *http.Request) {
	id, err := licenseeID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	filename, content, err := readUpload(r, "file")
	if err != nil {
		s.respondError(w, err)
		return
	}

	_ = s.queue.Enqueue(r.Context(), async.Job{
		LicenseeID:  id,
		Filename:    filename,
		Content:     content,
		SubmittedAt: time.Now().UTC(),
	})
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status":   "queued",
		"filename": filename,
	})
}

type bulkUploadResponse struct {
	Results []ingest.Result   `json:"results"`
	Stats   ingest.BatchStats `json:"stats"`
}

func (s *Server) uploadBulk(w http.ResponseWriter, r *http.Request) {
	id, err := licenseeID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, fmt.Errorf("parse multipart form: %w", common.ErrInvalidInput))
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		s.respondError(w, fmt.Errorf("missing \"files\" field: %w", common.ErrInvalidInput))
		return
	}

	var files []ingest.UploadFile
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			s.respondError(w, err)
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.respondError(w, err)
			return
		}
		files = append(files, ingest.UploadFile{Filename: header.Filename, Content: content})
	}

	results, stats := s.ingest.IngestFiles(r.Context(), id, files)
	respondJSON(w, http.StatusOK, bulkUploadResponse{Results: results, Stats: stats})
}

func (s *Server) submitManual(w http.ResponseWriter, r *http.Request) {
	id, err := licenseeID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	var entry ingest.ManualEntry
	if err := decodeBody(r, &entry); err != nil {
		s.respondError(w, err)
		return
	}
	rec, err := s.ingest.SubmitManual(r.Context(), id, entry)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func uploadStatus(res ingest.Result) int {
	switch res.Outcome {
	case constants.OutcomeAccepted:
		return http.StatusCreated
	case constants.OutcomeRejected:
		return http.StatusUnprocessableEntity
	default:
		// duplicate, needs_review, extraction_failed are successes with work
		// left for the caller
		return http.StatusOK
	}
}
