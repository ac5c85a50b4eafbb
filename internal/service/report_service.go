package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/models"
	"github.com/noah-isme/storehouse-api/pkg/export"
)

// ReportFormat selects the rendered report type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type transactionReporter interface {
	Report(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionReportRow, error)
}

// ReportFile is a rendered report ready to be sent.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService renders the transaction log as CSV or PDF.
type ReportService struct {
	repo   transactionReporter
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(repo transactionReporter, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ReportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, csv: csv, pdf: pdf, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

var transactionReportColumns = []export.Column{
	{Key: "id", Title: "ID", Width: 18},
	{Key: "created_at", Title: "When", Width: 40},
	{Key: "student", Title: "Student", Width: 55},
	{Key: "type", Title: "Type", Width: 25},
	{Key: "reason", Title: "Reason"},
	{Key: "amount", Title: "Shekels", Width: 22, Align: "R"},
}

// Transactions renders the filtered transaction log.
func (s *ReportService) Transactions(ctx context.Context, filter models.TransactionFilter, format ReportFormat) (*ReportFile, error) {
	rows, err := s.repo.Report(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to load transactions")
	}

	data := export.Dataset{Columns: transactionReportColumns, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"id":         strconv.FormatInt(row.ID, 10),
			"created_at": row.CreatedAt.UTC().Format("2006-01-02 15:04"),
			"student":    row.StudentName,
			"type":       string(row.Type),
			"reason":     row.ReasonOr(""),
			"amount":     strconv.FormatInt(row.AmountShekels, 10),
		})
	}

	generated := s.now()
	base := fmt.Sprintf("storehouse-transactions-%s", generated.Format("20060102-150405"))
	switch format {
	case ReportFormatPDF:
		subtitle := fmt.Sprintf("%d transactions, generated %s UTC", len(rows), generated.Format("2006-01-02 15:04"))
		out, err := s.pdf.Render(data, "Storehouse Transactions", subtitle)
		if err != nil {
			return nil, internalError(err, "failed to render report")
		}
		return &ReportFile{Filename: base + ".pdf", ContentType: "application/pdf", Data: out}, nil
	default:
		out, err := s.csv.Render(data)
		if err != nil {
			return nil, internalError(err, "failed to render report")
		}
		return &ReportFile{Filename: base + ".csv", ContentType: "text/csv", Data: out}, nil
	}
}
