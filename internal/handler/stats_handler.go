package handler

import (
	"github.com/gin-gonic/gin"

	"billora/internal/service"
)

// StatsHandler serves the dashboard aggregate numbers.
type StatsHandler struct {
	invoiceService service.InvoiceService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(invoiceService service.InvoiceService) *StatsHandler {
	return &StatsHandler{invoiceService: invoiceService}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.invoiceService.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}
