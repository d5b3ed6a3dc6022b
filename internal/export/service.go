// Package export produces audit-ready XLSX workbooks from persisted CPE
// records.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/supercpe/cpe-tracker/internal/entity"
	"github.com/supercpe/cpe-tracker/internal/store"
)

// Service is a tiny façade over the record repository that produces XLSX
// bytes for board audit exports.
type Service struct {
	records store.RecordRepository
	logger  *slog.Logger
}

func NewService(records store.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportRecordsXLSX returns a workbook with one row per record in the date
// window, plus a compliance summary sheet when a result is supplied.
// A nil from/to leaves that side of the window open.
func (s *Service) ExportRecordsXLSX(ctx context.Context, licenseeID uuid.UUID, from, to *time.Time, summary *entity.ComplianceResult) ([]byte, error) {
	start := time.Now()

	recs, err := s.records.ListAll(ctx, licenseeID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "CPE Records"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Completion Date",
		"Course Name",
		"Course Code",
		"Provider",
		"Field of Study",
		"Credit Hours",
		"Ethics",
		"Delivery Method",
		"Source",
		"Confidence",
		"Certificate File",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	count := 0
	for _, r := range recs {
		if !inWindow(r.CompletionDate, from, to) {
			continue
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		date := ""
		if r.CompletionDate != nil {
			date = r.CompletionDate.Format("2006-01-02")
		}
		code := ""
		if r.CourseCode != nil {
			code = *r.CourseCode
		}
		ethics := "No"
		if r.IsEthics {
			ethics = "Yes"
		}

		write(1, date)
		write(2, r.CourseName)
		write(3, code)
		write(4, r.ProviderName)
		write(5, r.FieldOfStudy)
		write(6, r.CreditHours)
		write(7, ethics)
		write(8, r.DeliveryMethod)
		write(9, r.Method)
		write(10, fmt.Sprintf("%.0f%%", r.Confidence*100))
		write(11, r.CertificateName)

		row++
		count++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 44)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "D", "E", 26)
	_ = f.SetColWidth(sheet, "F", "J", 12)
	_ = f.SetColWidth(sheet, "K", "K", 48)

	if summary != nil {
		if err := writeSummarySheet(f, summary); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"licensee_id", licenseeID.String(),
		"rows", count,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, res *entity.ComplianceResult) error {
	const sheet = "Compliance Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	row := 1
	pair := func(label string, value any) {
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellB, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, cellA, label)
		_ = f.SetCellValue(sheet, cellB, value)
		row++
	}

	pair("Status", res.Status)
	if res.Period != nil {
		pair("Period Start", res.Period.Start.Format("2006-01-02"))
		pair("Period End", res.Period.End.Format("2006-01-02"))
		pair("Renewal Date", res.Period.RenewalDate.Format("2006-01-02"))
		pair("Days Remaining", res.Period.DaysRemaining)
	}
	pair("Total Hours", res.TotalHours)
	pair("Total Hours Required", res.TotalHoursRequired)
	pair("Ethics Hours", res.EthicsHours)
	pair("Ethics Hours Required", res.EthicsHoursRequired)
	pair("Compliance", fmt.Sprintf("%.1f%%", res.CompliancePercentage))

	for i, d := range res.Deficits {
		pair(fmt.Sprintf("Deficit %d", i+1), d)
	}
	for i, r := range res.Recommendations {
		pair(fmt.Sprintf("Recommendation %d", i+1), r)
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 70)
	return nil
}

func inWindow(d, from, to *time.Time) bool {
	if d == nil {
		// undated records still belong in a full export
		return from == nil && to == nil
	}
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}
