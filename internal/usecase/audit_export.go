package usecase

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
)

const (
	exportSheetName   = "Audit Trails"
	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	reportTimestampLayout = "02 Jan 2006 15:04:05"
	exportFilenameLayout  = "02_January_2006"
)

// ExportResult is a finished workbook ready to stream to the client.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Export builds an XLSX workbook of every entry matching the filter. The
// filter's pagination fields are ignored; an export always covers the full
// filtered set.
func (s *AuditService) Export(ctx context.Context, filter domain.AuditFilter) (*ExportResult, error) {
	timer := s.now()

	items, err := s.listAllResolved(ctx, filter)
	if err != nil {
		return nil, err
	}

	workbook := excelize.NewFile()
	defer workbook.Close()

	if err := workbook.SetSheetName(workbook.GetSheetName(0), exportSheetName); err != nil {
		return nil, fmt.Errorf("rename export sheet: %w", err)
	}

	headerStyle, err := workbook.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := []any{"Date/Time", "User Name", "Action", "Description"}
	if err := workbook.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}
	if err := workbook.SetCellStyle(exportSheetName, "A1", "D1", headerStyle); err != nil {
		return nil, fmt.Errorf("style export header: %w", err)
	}

	for i, item := range items {
		performer := "System"
		if item.PerformedByName != nil && *item.PerformedByName != "" {
			performer = *item.PerformedByName
		}

		row := []any{
			item.FormattedCreatedAt,
			performer,
			item.Action,
			item.FormattedDescription,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := workbook.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write export row %d: %w", i+2, err)
		}
	}

	if err := workbook.SetColWidth(exportSheetName, "A", "A", 22); err != nil {
		return nil, fmt.Errorf("size export columns: %w", err)
	}
	if err := workbook.SetColWidth(exportSheetName, "B", "C", 20); err != nil {
		return nil, fmt.Errorf("size export columns: %w", err)
	}
	if err := workbook.SetColWidth(exportSheetName, "D", "D", 60); err != nil {
		return nil, fmt.Errorf("size export columns: %w", err)
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize export workbook: %w", err)
	}

	s.metrics.AuditExportsTotal.Inc()
	s.metrics.AuditExportDuration.Observe(s.now().Sub(timer).Seconds())

	return &ExportResult{
		FileName:    fmt.Sprintf("auditTrails_%s.xlsx", s.now().Format(exportFilenameLayout)),
		ContentType: exportContentType,
		Content:     buf.Bytes(),
	}, nil
}
