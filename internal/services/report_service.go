package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yukikurage/learnflow-api/internal/metrics"
	"github.com/yukikurage/learnflow-api/internal/report"
)

// ReportService renders learning reports and data exports for download.
type ReportService struct {
	analytics *AnalyticsService
}

func NewReportService(analytics *AnalyticsService) *ReportService {
	return &ReportService{analytics: analytics}
}

// Document is a rendered file ready to be served as an attachment.
type Document struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ReportInput selects the window, sections and format of a report. Empty
// values select the defaults: a monthly comprehensive JSON report.
type ReportInput struct {
	UserID uint64
	Period string
	Type   string
	Format string
}

// Build assembles a report without rendering it.
func (s *ReportService) Build(userID uint64, period report.Period, reportType report.Type) (*report.Report, error) {
	snap, err := s.analytics.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	return report.Build(report.Input{
		User:       snap.User,
		Goals:      snap.Goals,
		Resources:  snap.Resources,
		Activities: snap.Activities,
		Period:     period,
		Type:       reportType,
		Now:        snap.Now,
	}), nil
}

// Generate builds and renders a report.
func (s *ReportService) Generate(input ReportInput) (*Document, error) {
	period, err := report.ParsePeriod(input.Period)
	if err != nil {
		return nil, ErrInvalidPeriod
	}
	reportType, err := report.ParseType(input.Type)
	if err != nil {
		return nil, ErrInvalidReportType
	}
	format, err := report.ParseFormat(input.Format)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	r, err := s.Build(input.UserID, period, reportType)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, r, format); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	metrics.ReportsGenerated.WithLabelValues("report", string(format)).Inc()

	return &Document{
		FileName:    report.FileName(reportType, period, format, r.Period.GeneratedAt),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// ExportInput selects the collections and format of a data export.
type ExportInput struct {
	UserID uint64
	Type   string
	Format string
}

// Export dumps the user's data as JSON, or one collection as CSV.
func (s *ReportService) Export(input ExportInput) (*Document, error) {
	exportType, err := report.ParseExportType(input.Type)
	if err != nil {
		return nil, ErrInvalidExportType
	}
	format, err := report.ParseFormat(input.Format)
	if err != nil || format == report.FormatHTML {
		return nil, ErrInvalidFormat
	}
	if format == report.FormatCSV && exportType == report.ExportAll {
		return nil, ErrCSVNeedsSingleType
	}

	snap, err := s.analytics.Snapshot(input.UserID)
	if err != nil {
		return nil, err
	}
	export := report.NewExport(input.UserID, exportType, snap.Goals, snap.Resources, snap.Activities, snap.Now)

	var buf bytes.Buffer
	if format == report.FormatCSV {
		err = report.WriteExportCSV(&buf, export, exportType)
	} else {
		err = report.WriteJSON(&buf, export)
	}
	switch {
	case errors.Is(err, report.ErrNothingToExport):
		return nil, ErrNothingToExport
	case errors.Is(err, report.ErrExportNeedsType):
		return nil, ErrCSVNeedsSingleType
	case err != nil:
		return nil, fmt.Errorf("failed to render export: %w", err)
	}
	metrics.ReportsGenerated.WithLabelValues("export", string(format)).Inc()

	return &Document{
		FileName:    report.ExportFileName(exportType, format, snap.Now),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}
