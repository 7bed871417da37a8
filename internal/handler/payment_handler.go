package handler

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billora/internal/service"
)

// PaymentHandler handles payment ledger endpoints. Record and update accept
// multipart form data so a receipt file can ride along.
type PaymentHandler struct {
	paymentService service.PaymentService
	fileService    service.FileService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService, fileService service.FileService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, fileService: fileService}
}

type paymentForm struct {
	amount        decimal.Decimal
	paymentMethod string
	paymentDate   time.Time
	notes         string
	receipt       *service.FilePayload
}

func parsePaymentForm(c *gin.Context) (*paymentForm, string) {
	amountStr := c.PostForm("amount")
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, "amount must be a decimal number"
	}

	dateStr := c.PostForm("payment_date")
	date, ok := parseDate(dateStr)
	if !ok {
		return nil, "payment_date must be YYYY-MM-DD"
	}

	form := &paymentForm{
		amount:        amount,
		paymentMethod: c.PostForm("payment_method"),
		paymentDate:   date,
		notes:         c.PostForm("notes"),
	}

	file, header, err := c.Request.FormFile("receipt")
	if err == nil {
		form.receipt = filePayload(file, header)
	} else if err != http.ErrMissingFile {
		return nil, "invalid receipt file"
	}
	return form, ""
}

func filePayload(file multipart.File, header *multipart.FileHeader) *service.FilePayload {
	return &service.FilePayload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	}
}

// Record handles POST /api/v1/schedules/:id/payments
func (h *PaymentHandler) Record(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid schedule ID")
		return
	}

	form, msg := parsePaymentForm(c)
	if msg != "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", msg)
		return
	}

	payment, err := h.paymentService.Record(c.Request.Context(), &service.RecordPaymentInput{
		ScheduleID:    scheduleID,
		Amount:        form.amount,
		PaymentMethod: form.paymentMethod,
		PaymentDate:   form.paymentDate,
		Notes:         form.notes,
		Receipt:       form.receipt,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, payment)
}

// Update handles PUT /api/v1/payments/:id
func (h *PaymentHandler) Update(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid payment ID")
		return
	}

	form, msg := parsePaymentForm(c)
	if msg != "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", msg)
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), &service.UpdatePaymentInput{
		PaymentID:     paymentID,
		Amount:        form.amount,
		PaymentMethod: form.paymentMethod,
		PaymentDate:   form.paymentDate,
		Notes:         form.notes,
		Receipt:       form.receipt,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, payment)
}

// Delete handles DELETE /api/v1/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid payment ID")
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), paymentID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// GetByID handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, payment)
}

// List handles GET /api/v1/payments
func (h *PaymentHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	payments, total, err := h.paymentService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, payments, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Remaining handles GET /api/v1/schedules/:id/remaining
func (h *PaymentHandler) Remaining(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid schedule ID")
		return
	}

	remaining, err := h.paymentService.RemainingAmount(c.Request.Context(), scheduleID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"remaining": remaining})
}

// ReceiptURL handles GET /api/v1/payments/:id/receipt
func (h *PaymentHandler) ReceiptURL(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if payment.ReceiptPath == "" {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "payment has no receipt")
		return
	}

	url, err := h.fileService.PresignURL(c.Request.Context(), payment.ReceiptPath)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}
