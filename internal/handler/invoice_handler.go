package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billora/internal/domain"
	"billora/internal/port"
	"billora/internal/service"
)

// InvoiceHandler handles invoice aggregate endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

type invoiceItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

type scheduleSpecRequest struct {
	Description string           `json:"description"`
	Percentage  *decimal.Decimal `json:"percentage"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     string           `json:"due_date"`
	Notes       string           `json:"notes"`
	// Attachments carries storage keys obtained from the file upload
	// endpoint; on edit it lists the keys the entry keeps.
	Attachments []string `json:"attachments"`
}

type invoiceRequest struct {
	InvoiceNumber  string                `json:"invoice_number"`
	ClientID       uuid.UUID             `json:"client_id" binding:"required"`
	ProjectName    string                `json:"project_name"`
	PONumber       string                `json:"po_number"`
	IssueDate      string                `json:"issue_date" binding:"required"`
	DueDate        string                `json:"due_date" binding:"required"`
	Status         string                `json:"status"`
	Notes          string                `json:"notes"`
	Terms          string                `json:"terms"`
	TaxRate        decimal.Decimal       `json:"tax_rate"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	Items          []invoiceItemRequest  `json:"items"`
	Schedules      []scheduleSpecRequest `json:"payment_schedules"`
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (r *invoiceRequest) dates() (issue, due time.Time, ok bool) {
	issue, ok = parseDate(r.IssueDate)
	if !ok {
		return
	}
	due, ok = parseDate(r.DueDate)
	return
}

func (r *invoiceRequest) items() []service.InvoiceItemInput {
	items := make([]service.InvoiceItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, service.InvoiceItemInput{
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			VATRate:     it.VATRate,
		})
	}
	return items
}

func (r *invoiceRequest) schedules() ([]service.ScheduleSpecInput, bool) {
	specs := make([]service.ScheduleSpecInput, 0, len(r.Schedules))
	for _, sch := range r.Schedules {
		due, ok := parseDate(sch.DueDate)
		if sch.DueDate != "" && !ok {
			return nil, false
		}
		specs = append(specs, service.ScheduleSpecInput{
			Description:     sch.Description,
			Percentage:      sch.Percentage,
			Amount:          sch.Amount,
			DueDate:         due,
			Notes:           sch.Notes,
			KeepAttachments: sch.Attachments,
		})
	}
	return specs, true
}

func (r *invoiceRequest) status() domain.InvoiceStatus {
	if r.Status == "" {
		return domain.InvoiceStatusDraft
	}
	return domain.InvoiceStatus(r.Status)
}

// Create handles POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "client_id, issue_date, and due_date are required")
		return
	}

	issue, due, ok := req.dates()
	if !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "dates must be YYYY-MM-DD")
		return
	}
	specs, ok := req.schedules()
	if !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "schedule due dates must be YYYY-MM-DD")
		return
	}

	number := req.InvoiceNumber
	if number == "" {
		var err error
		number, err = h.invoiceService.NextInvoiceNumber(c.Request.Context())
		if err != nil {
			HandleError(c, err)
			return
		}
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), &service.CreateInvoiceInput{
		InvoiceNumber:  number,
		ClientID:       req.ClientID,
		ProjectName:    req.ProjectName,
		PONumber:       req.PONumber,
		IssueDate:      issue,
		DueDate:        due,
		Status:         req.status(),
		Notes:          req.Notes,
		Terms:          req.Terms,
		TaxRate:        req.TaxRate,
		DiscountAmount: req.DiscountAmount,
		Items:          req.items(),
		Schedules:      specs,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, inv)
}

// Update handles PUT /api/v1/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "client_id, issue_date, and due_date are required")
		return
	}

	issue, due, ok := req.dates()
	if !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "dates must be YYYY-MM-DD")
		return
	}
	specs, ok := req.schedules()
	if !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "schedule due dates must be YYYY-MM-DD")
		return
	}

	inv, err := h.invoiceService.Update(c.Request.Context(), &service.UpdateInvoiceInput{
		InvoiceID:      id,
		ClientID:       req.ClientID,
		ProjectName:    req.ProjectName,
		PONumber:       req.PONumber,
		IssueDate:      issue,
		DueDate:        due,
		Status:         req.status(),
		Notes:          req.Notes,
		Terms:          req.Terms,
		TaxRate:        req.TaxRate,
		DiscountAmount: req.DiscountAmount,
		Items:          req.items(),
		Schedules:      specs,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, inv)
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	filter := port.InvoiceFilter{Search: c.Query("search")}
	if status := c.Query("status"); status != "" {
		s := domain.InvoiceStatus(status)
		if !domain.ValidInvoiceStatuses[s] {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid status filter")
			return
		}
		filter.Status = &s
	}
	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		clientID, err := uuid.Parse(clientIDStr)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid client_id filter")
			return
		}
		filter.ClientID = &clientID
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	view, err := h.invoiceService.GetView(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// Delete handles DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// Duplicate handles POST /api/v1/invoices/:id/duplicate
func (h *InvoiceHandler) Duplicate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	clone, err := h.invoiceService.Duplicate(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, clone)
}

// UpdateStatus handles PATCH /api/v1/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "status is required")
		return
	}

	if err := h.invoiceService.UpdateStatus(c.Request.Context(), id, domain.InvoiceStatus(req.Status)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": req.Status})
}

// Send handles POST /api/v1/invoices/:id/send
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var req struct {
		To        string `json:"to" binding:"required"`
		Subject   string `json:"subject" binding:"required"`
		Message   string `json:"message"`
		AttachPDF bool   `json:"attach_pdf"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "to and subject are required")
		return
	}

	if err := h.invoiceService.Send(c.Request.Context(), id, &service.SendInvoiceInput{
		To:        req.To,
		Subject:   req.Subject,
		Message:   req.Message,
		AttachPDF: req.AttachPDF,
	}); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"sent": true})
}

// NextNumber handles GET /api/v1/invoices/next-number
func (h *InvoiceHandler) NextNumber(c *gin.Context) {
	number, err := h.invoiceService.NextInvoiceNumber(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"invoice_number": number})
}
