package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billora/internal/domain"
	"billora/internal/handler"
	"billora/internal/service"
	"billora/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newInvoiceHandler() (*handler.InvoiceHandler, *mocks.MockInvoiceService) {
	mockSvc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(mockSvc)
	return h, mockSvc
}

func jsonRequest(t *testing.T, c *gin.Context, method, url string, body interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request, err = http.NewRequest(method, url, bytes.NewReader(data))
	require.NoError(t, err)
	c.Request.Header.Set("Content-Type", "application/json")
}

func setIDParam(c *gin.Context, id string) {
	c.Params = gin.Params{{Key: "id", Value: id}}
}

func validInvoiceBody(clientID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"invoice_number": "ACME/INV/03/000021",
		"client_id":      clientID.String(),
		"issue_date":     "2026-03-01",
		"due_date":       "2026-03-31",
		"tax_rate":       "7.5",
		"items": []map[string]interface{}{
			{"description": "Fabrication", "quantity": "10", "unit_price": "100.00", "vat_rate": "7.5"},
		},
	}
}

func TestInvoiceHandler_Create_Success(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	clientID := uuid.New()

	created := &domain.Invoice{ID: uuid.New(), InvoiceNumber: "ACME/INV/03/000021", ClientID: clientID}
	mockSvc.On("Create", mock.Anything, mock.AnythingOfType("*service.CreateInvoiceInput")).Return(created, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/api/v1/invoices", validInvoiceBody(clientID))

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_Create_GeneratesNumberWhenOmitted(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	clientID := uuid.New()

	body := validInvoiceBody(clientID)
	delete(body, "invoice_number")

	mockSvc.On("NextInvoiceNumber", mock.Anything).Return("ACME/INV/03/000022", nil)
	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in *service.CreateInvoiceInput) bool {
		return in.InvoiceNumber == "ACME/INV/03/000022"
	})).Return(&domain.Invoice{ID: uuid.New()}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/api/v1/invoices", body)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_Create_BadDate(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	body := validInvoiceBody(uuid.New())
	body["issue_date"] = "01/03/2026"

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/api/v1/invoices", body)

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Create_ValidationErrorFromService(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	clientID := uuid.New()

	ve := domain.NewValidationError("items", "at least one line item is required")
	mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, ve)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/api/v1/invoices", validInvoiceBody(clientID))

	h.Create(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "items")
}

func TestInvoiceHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()

	mockSvc.On("GetView", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String(), http.NoBody)
	setIDParam(c, id.String())

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_GetByID_InvalidID(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/not-a-uuid", http.NoBody)
	setIDParam(c, "not-a-uuid")

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "GetView", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_List_InvalidStatusFilter(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices?status=archived", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Create_DuplicateNumber(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrDuplicateInvoiceNumber)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/api/v1/invoices", validInvoiceBody(uuid.New()))

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DUPLICATE_INVOICE_NUMBER", resp.Error.Code)
}

func TestInvoiceHandler_Send_Success(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()

	mockSvc.On("Send", mock.Anything, id, mock.MatchedBy(func(in *service.SendInvoiceInput) bool {
		return in.To == "ada@example.com" && in.AttachPDF
	})).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/api/v1/invoices/"+id.String()+"/send", map[string]interface{}{
		"to":         "ada@example.com",
		"subject":    "Invoice",
		"message":    "attached",
		"attach_pdf": true,
	})
	setIDParam(c, id.String())

	h.Send(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}
