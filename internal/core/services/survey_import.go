package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"census-backend/internal/core/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const importSheetName = "Surveys"

// ImportHeader is the column order of the import spreadsheet.
var ImportHeader = []string{
	"Identity Number",
	"Full Name",
	"Date of Birth",
	"Gender",
	"Hometown",
	"Permanent City",
	"Permanent District",
	"Permanent Ward",
	"Permanent Civil Group",
	"Permanent Home Address",
	"Temporary City",
	"Temporary District",
	"Temporary Ward",
	"Temporary Civil Group",
	"Temporary Home Address",
	"Religion",
	"Job",
	"Education Level",
}

// ImportRowResult is the outcome of one spreadsheet row. Row is 1-based as
// shown in the sheet.
type ImportRowResult struct {
	Row            int    `json:"row"`
	IdentityNumber string `json:"identity_number"`
	OK             bool   `json:"ok"`
	Error          string `json:"error,omitempty"`
}

// ImportSummary reports a whole upload.
type ImportSummary struct {
	Inserted int               `json:"inserted"`
	Failed   int               `json:"failed"`
	Rows     []ImportRowResult `json:"rows"`
}

// ImportSpreadsheet inserts every data row of the first sheet of an .xlsx
// upload. A failing row does not stop the rest.
func (s *SurveyService) ImportSpreadsheet(ctx context.Context, collectorUsername string, r io.Reader) (*ImportSummary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.ErrInvalidSpreadsheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSpreadsheet, err)
	}

	summary := &ImportSummary{Rows: []ImportRowResult{}}
	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}
		input := rowToInput(row)
		result := ImportRowResult{Row: i + 1, IdentityNumber: input.IdentityNumber}

		if _, err := s.Insert(ctx, collectorUsername, input, SourceImport); err != nil {
			result.Error = err.Error()
			summary.Failed++
		} else {
			result.OK = true
			summary.Inserted++
		}
		summary.Rows = append(summary.Rows, result)
	}

	s.log.Info("📥 Survey import finished",
		zap.String("by", collectorUsername),
		zap.Int("inserted", summary.Inserted),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func rowToInput(row []string) *SurveyInput {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return &SurveyInput{
		IdentityNumber: cell(0),
		Fullname:       cell(1),
		Dob:            cell(2),
		Gender:         cell(3),
		Hometown:       cell(4),
		PermanentAddress: AddressInput{
			City:        cell(5),
			District:    cell(6),
			Ward:        cell(7),
			CivilGroup:  cell(8),
			HomeAddress: cell(9),
		},
		TemporaryAddress: AddressInput{
			City:        cell(10),
			District:    cell(11),
			Ward:        cell(12),
			CivilGroup:  cell(13),
			HomeAddress: cell(14),
		},
		Religion: cell(15),
		Job:      cell(16),
		EduLevel: cell(17),
	}
}

// ImportTemplate returns an empty .xlsx with the import header.
func ImportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(importSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range ImportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(importSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(importSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(importSheetName, col, col, 22); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.SetPanes(importSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
