package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/test-session-service/internal/repositories"
)

const (
	resultsSheet   = "Results"
	exportPageSize = 500
)

var resultsHeader = []interface{}{"Name", "Contact", "Test Status", "Session ID", "Score", "Result"}

type exportService struct {
	takers TestTakerService
	logger *slog.Logger
}

func NewExportService(takers TestTakerService, logger *slog.Logger) ExportService {
	return &exportService{takers: takers, logger: logger}
}

func (s *exportService) ExportResults(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to name results sheet: %w", err)
	}

	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(resultsSheet, "A1", "F1", style)
	}

	row := 2
	for offset := 0; ; offset += exportPageSize {
		takers, total, err := s.takers.List(ctx, repositories.TestTakerFilters{
			Limit:     exportPageSize,
			Offset:    offset,
			SortBy:    "name",
			SortOrder: "asc",
		})
		if err != nil {
			return nil, err
		}

		for _, t := range takers {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to address row %d: %w", row, err)
			}
			values := []interface{}{t.Name, t.Contact, string(t.TestStatus), "", "", ""}
			if t.TestSessionID != nil {
				values[3] = *t.TestSessionID
			}
			if t.Score != nil {
				values[4] = *t.Score
				values[5] = "Fail"
				if *t.Score >= PassingScore {
					values[5] = "Pass"
				}
			}
			if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}

		if len(takers) == 0 || int64(offset+len(takers)) >= total {
			break
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Results exported", "rows", row-2)
	return buf.Bytes(), nil
}
