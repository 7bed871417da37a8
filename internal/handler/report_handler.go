package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billora/internal/csvexport"
	"billora/internal/domain"
	"billora/internal/port"
	"billora/internal/report"
	"billora/internal/service"
)

// ReportHandler handles invoice export endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func parseExportFilter(c *gin.Context) (port.InvoiceFilter, error) {
	filter := port.InvoiceFilter{Search: c.Query("search")}

	if status := c.Query("status"); status != "" {
		s := domain.InvoiceStatus(status)
		if !domain.ValidInvoiceStatuses[s] {
			return filter, fmt.Errorf("invalid 'status': not a known invoice status")
		}
		filter.Status = &s
	}
	if cidStr := c.Query("client_id"); cidStr != "" {
		cid, err := uuid.Parse(cidStr)
		if err != nil {
			return filter, fmt.Errorf("invalid 'client_id': must be a valid UUID")
		}
		filter.ClientID = &cid
	}
	return filter, nil
}

// ExportCSV handles GET /api/v1/reports/invoices.csv
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	filter, err := parseExportFilter(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	data, err := h.reportService.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename("invoices", time.Now().UTC())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportExcel handles GET /api/v1/reports/invoices.xlsx
func (h *ReportHandler) ExportExcel(c *gin.Context) {
	filter, err := parseExportFilter(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	data, err := h.reportService.ExportExcel(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := report.ExcelFilename(time.Now().UTC())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
