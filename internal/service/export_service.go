package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/visionafrica/debate-portal/internal/models"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
	"github.com/visionafrica/debate-portal/pkg/export"
)

// Export formats accepted by ExportRegistrations.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{"RegNumber", "School", "Coach", "Email", "Phone", "State", "Status", "Registered"}

// relative PDF column widths, same order as exportHeaders
var exportWidths = []float64{1.3, 2.2, 1.6, 2.2, 1.2, 1, 1, 1.1}

type registrationLister interface {
	List(ctx context.Context) ([]models.Registration, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders the registration list as CSV or PDF.
type ExportService struct {
	registrations registrationLister
	csv           csvRenderer
	pdf           pdfRenderer
	logger        *zap.Logger
	now           func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(registrations registrationLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{registrations: registrations, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportRegistrations renders every registration in the requested format.
func (s *ExportService) ExportRegistrations(ctx context.Context, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	regs, err := s.registrations.List(ctx)
	if err != nil {
		return nil, err
	}
	data := buildRegistrationDataset(regs)
	stamp := s.now().UTC().Format("20060102")

	var file ExportFile
	switch format {
	case ExportFormatPDF:
		content, err := s.pdf.Render(data, "School Debate Registrations")
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render pdf export")
		}
		file = ExportFile{Filename: fmt.Sprintf("registrations-%s.pdf", stamp), ContentType: "application/pdf", Content: content}
	default:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render csv export")
		}
		file = ExportFile{Filename: fmt.Sprintf("registrations-%s.csv", stamp), ContentType: "text/csv; charset=utf-8", Content: content}
	}
	s.logger.Info("registrations exported", zap.String("format", format), zap.Int("rows", len(regs)))
	return &file, nil
}

func buildRegistrationDataset(regs []models.Registration) export.Dataset {
	rows := make([]map[string]string, 0, len(regs))
	for _, reg := range regs {
		rows = append(rows, map[string]string{
			"RegNumber":  reg.RegNumber,
			"School":     reg.SchoolName,
			"Coach":      reg.CoachName,
			"Email":      reg.Email,
			"Phone":      reg.Phone,
			"State":      reg.State,
			"Status":     string(reg.Status),
			"Registered": reg.DateRegistered.UTC().Format("2006-01-02"),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows, Widths: exportWidths}
}
