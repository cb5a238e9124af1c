package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
)

const (
	recordsSheet  = "Records"
	failuresSheet = "Failures"
	skillsSep     = "; "
)

// Headers are the export columns, one row per experience entry.
var Headers = []string{
	"Source File Name",
	"Full Name",
	"Email",
	"Phone Number",
	"Company Name",
	"Customer Name",
	"Role",
	"Duration",
	"Skills/Technologies",
	"Industry/Domain",
	"Location",
	"ATS Score",
}

// Service renders a BatchResult as a spreadsheet or CSV.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Rows flattens records into export rows. A record without experience still
// gets one row, with the experience columns set to N/A.
func Rows(result *entity.BatchResult) [][]string {
	if result == nil {
		return nil
	}
	var rows [][]string
	for _, r := range result.Records {
		head := []string{
			r.SourceName,
			entity.OrNotSpecified(r.FullName),
			entity.OrNotSpecified(r.Email),
			entity.OrNotSpecified(r.PhoneNumber),
		}
		score := strconv.Itoa(r.ATSScore)

		entries := r.WorkExperience
		if len(entries) == 0 {
			entries = []entity.ExperienceEntry{entity.EmptyExperienceEntry()}
		}
		for _, e := range entries {
			row := make([]string, 0, len(Headers))
			row = append(row, head...)
			row = append(row,
				e.CompanyName,
				e.CustomerName,
				e.Role,
				e.Duration,
				joinSkills(e.Skills),
				e.IndustryDomain,
				e.Location,
				score,
			)
			rows = append(rows, row)
		}
	}
	return rows
}

func joinSkills(skills []string) string {
	if len(skills) == 0 {
		return constants.NotSpecified
	}
	return strings.Join(skills, skillsSep)
}

// CSV renders the records with every field quoted.
func (s *Service) CSV(result *entity.BatchResult) []byte {
	start := time.Now()
	rows := Rows(result)

	var buf bytes.Buffer
	writeQuoted(&buf, Headers)
	for _, row := range rows {
		writeQuoted(&buf, row)
	}

	s.logger.Info("export.csv.ok",
		"rows", len(rows),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes()
}

func writeQuoted(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}

// XLSX returns a workbook with a Records sheet and, when any document
// failed, a Failures sheet.
func (s *Service) XLSX(result *entity.BatchResult) ([]byte, error) {
	start := time.Now()
	rows := Rows(result)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), recordsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSheet(f, recordsSheet, Headers, rows); err != nil {
		return nil, err
	}

	// Widen a few columns
	_ = f.SetColWidth(recordsSheet, "A", "A", 28) // source file
	_ = f.SetColWidth(recordsSheet, "B", "D", 24) // contact
	_ = f.SetColWidth(recordsSheet, "E", "H", 20) // company..duration
	_ = f.SetColWidth(recordsSheet, "I", "I", 48) // skills
	_ = f.SetColWidth(recordsSheet, "J", "K", 20)
	_ = f.SetColWidth(recordsSheet, "L", "L", 10)

	failed := 0
	if result != nil && len(result.Failures) > 0 {
		if _, err := f.NewSheet(failuresSheet); err != nil {
			return nil, fmt.Errorf("new sheet: %w", err)
		}
		names := result.FailedNames()
		frows := make([][]string, 0, len(names))
		for _, name := range names {
			frows = append(frows, []string{name, result.Failures[name]})
		}
		if err := writeSheet(f, failuresSheet, []string{"Document", "Error"}, frows); err != nil {
			return nil, err
		}
		_ = f.SetColWidth(failuresSheet, "A", "A", 32)
		_ = f.SetColWidth(failuresSheet, "B", "B", 80)
		failed = len(frows)
	}

	idx, _ := f.GetSheetIndex(recordsSheet)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"failures", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
