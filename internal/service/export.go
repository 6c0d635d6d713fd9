package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/calendar"
	"github.com/pkordes/masjid-admin/internal/domain"
)

// ExportColumns is the header row of an export: the import fields in table
// order with the optional Hanafi column after asr_start. An export therefore
// maps itself on upload.
var ExportColumns = []string{
	domain.FieldDate,
	domain.FieldFajrStart, domain.FieldFajrJammat,
	domain.FieldSunrise,
	domain.FieldDhurStart, domain.FieldDhurJammat,
	domain.FieldAsrStart, domain.FieldAsrStart1, domain.FieldAsrJammat,
	domain.FieldMagribStart, domain.FieldMagribJammat,
	domain.FieldIshaStart, domain.FieldIshaJammat,
}

// ExportService writes a month of prayer times in the import schema.
type ExportService struct {
	months MonthLoader
}

// NewExportService constructs an ExportService.
func NewExportService(months MonthLoader) *ExportService {
	return &ExportService{months: months}
}

// Filename is the suggested download name for a month export.
func (s *ExportService) Filename(m calendar.Month) string {
	return "prayer-times-" + m.String() + ".csv"
}

// Export writes one CSV row per stored day of m, ascending by date, after a
// header row. Nothing is written if loading fails.
func (s *ExportService) Export(ctx context.Context, w io.Writer, masjidID uuid.UUID, m calendar.Month) error {
	recs, err := s.months.Month(ctx, masjidID, m)
	if err != nil {
		return fmt.Errorf("service.ExportService.Export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("service.ExportService.Export: %w", err)
	}
	for _, rec := range recs {
		values := rec.ImportValues()
		row := make([]string, len(ExportColumns))
		for i, col := range ExportColumns {
			row[i] = values[col]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("service.ExportService.Export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return nil
}
