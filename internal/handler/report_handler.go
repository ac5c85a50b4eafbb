package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storehouse-api/internal/models"
	"github.com/noah-isme/storehouse-api/internal/service"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
	"github.com/noah-isme/storehouse-api/pkg/response"
)

type reportService interface {
	Transactions(ctx context.Context, filter models.TransactionFilter, format service.ReportFormat) (*service.ReportFile, error)
}

// ReportHandler exposes transaction log exports.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// TransactionsCSV godoc
// @Summary Transaction log as CSV
// @Tags Reports
// @Produce text/csv
// @Security BearerAuth
// @Param student_id query int false "Student ID"
// @Param type query string false "Transaction type"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date, exclusive (YYYY-MM-DD)"
// @Param limit query int false "Maximum rows"
// @Success 200 {file} binary
// @Router /admin/reports/transactions.csv [get]
func (h *ReportHandler) TransactionsCSV(c *gin.Context) {
	h.transactions(c, service.ReportFormatCSV)
}

// TransactionsPDF godoc
// @Summary Transaction log as PDF
// @Tags Reports
// @Produce application/pdf
// @Security BearerAuth
// @Param student_id query int false "Student ID"
// @Param type query string false "Transaction type"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date, exclusive (YYYY-MM-DD)"
// @Param limit query int false "Maximum rows"
// @Success 200 {file} binary
// @Router /admin/reports/transactions.pdf [get]
func (h *ReportHandler) TransactionsPDF(c *gin.Context) {
	h.transactions(c, service.ReportFormatPDF)
}

func (h *ReportHandler) transactions(c *gin.Context, format service.ReportFormat) {
	filter, err := reportFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.reports.Transactions(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Data)
}

func reportFilter(c *gin.Context) (models.TransactionFilter, error) {
	var filter models.TransactionFilter
	if raw := c.Query("student_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "student_id must be an integer")
		}
		filter.StudentID = &id
	}
	filter.Type = models.TransactionType(strings.ToLower(strings.TrimSpace(c.Query("type"))))
	for _, bound := range []struct {
		name string
		dest **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := c.Query(bound.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, bound.name+" must be YYYY-MM-DD")
		}
		*bound.dest = &t
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
