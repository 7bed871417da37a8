package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billora/internal/domain"
	"billora/internal/port"
	"billora/internal/service"
	"billora/mocks"
)

type invoiceFixture struct {
	clientRepo   *mocks.MockClientRepo
	invoiceRepo  *mocks.MockInvoiceRepo
	itemRepo     *mocks.MockInvoiceItemRepo
	scheduleRepo *mocks.MockScheduleRepo
	paymentRepo  *mocks.MockPaymentRepo
	fileSvc      *mocks.MockFileService
	renderer     *mocks.MockRenderer
	emailSender  *mocks.MockEmailSender
	svc          service.InvoiceService
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		clientRepo:   new(mocks.MockClientRepo),
		invoiceRepo:  new(mocks.MockInvoiceRepo),
		itemRepo:     new(mocks.MockInvoiceItemRepo),
		scheduleRepo: new(mocks.MockScheduleRepo),
		paymentRepo:  new(mocks.MockPaymentRepo),
		fileSvc:      new(mocks.MockFileService),
		renderer:     new(mocks.MockRenderer),
		emailSender:  new(mocks.MockEmailSender),
	}
	reconciler := service.NewReconciler(f.invoiceRepo, f.scheduleRepo, f.paymentRepo)
	company := &domain.CompanySettings{Name: "Acme Workshop", InvoicePrefix: "ACME"}
	f.svc = service.NewInvoiceService(
		&mocks.MockTxManager{},
		f.clientRepo, f.invoiceRepo, f.itemRepo, f.scheduleRepo, f.paymentRepo,
		f.fileSvc, reconciler, f.renderer, f.emailSender,
		company, domain.TaxModePerLine,
	)
	return f
}

func baseCreateInput(t *testing.T, clientID uuid.UUID) *service.CreateInvoiceInput {
	t.Helper()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &service.CreateInvoiceInput{
		InvoiceNumber: "ACME/INV/03/000001",
		ClientID:      clientID,
		ProjectName:   "Workshop retrofit",
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 30),
		Status:        domain.InvoiceStatusDraft,
		TaxRate:       dec(t, "7.5"),
		Items: []service.InvoiceItemInput{
			{Description: "Fabrication", Quantity: dec(t, "10"), UnitPrice: dec(t, "100.00"), VATRate: dec(t, "7.5")},
		},
	}
}

func TestInvoiceService_Create(t *testing.T) {
	f := newInvoiceFixture()
	clientID := uuid.New()
	input := baseCreateInput(t, clientID)

	f.clientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{ID: clientID, Name: "Ada"}, nil)
	f.invoiceRepo.On("GetByNumber", mock.Anything, input.InvoiceNumber).Return(nil, domain.ErrInvoiceNotFound)

	var created *domain.Invoice
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Invoice) }).Return(nil)
	f.itemRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.InvoiceItem")).Return(nil)

	var entries []domain.PaymentScheduleEntry
	f.scheduleRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.PaymentScheduleEntry")).
		Run(func(args mock.Arguments) { entries = args.Get(1).([]domain.PaymentScheduleEntry) }).Return(nil)

	inv, err := f.svc.Create(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, inv.Subtotal.Equal(dec(t, "1000.00")), "subtotal %s", inv.Subtotal)
	assert.True(t, inv.TaxAmount.Equal(dec(t, "75.00")), "tax %s", inv.TaxAmount)
	assert.True(t, inv.TotalAmount.Equal(dec(t, "1075.00")), "total %s", inv.TotalAmount)
	assert.True(t, inv.PaidAmount.IsZero())
	assert.True(t, inv.BalanceDue.Equal(inv.TotalAmount))

	// no schedule specs submitted: a single full payment entry is generated
	// from the invoice-with-tax base, itself taxed once more
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].PaymentNumber)
	assert.True(t, entries[0].Amount.Equal(dec(t, "1155.63")), "entry amount %s", entries[0].Amount)
	assert.Equal(t, domain.ScheduleStatusPending, entries[0].Status)
	assert.True(t, entries[0].DueDate.Equal(input.DueDate))
}

func TestInvoiceService_Create_RequiresItems(t *testing.T) {
	f := newInvoiceFixture()
	input := baseCreateInput(t, uuid.New())
	input.Items = nil

	_, err := f.svc.Create(context.Background(), input)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "items")
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_Create_UnknownClient(t *testing.T) {
	f := newInvoiceFixture()
	clientID := uuid.New()
	input := baseCreateInput(t, clientID)

	f.clientRepo.On("GetByID", mock.Anything, clientID).Return(nil, domain.ErrClientNotFound)

	_, err := f.svc.Create(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestInvoiceService_Create_DuplicateNumber(t *testing.T) {
	f := newInvoiceFixture()
	clientID := uuid.New()
	input := baseCreateInput(t, clientID)

	f.clientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{ID: clientID}, nil)
	f.invoiceRepo.On("GetByNumber", mock.Anything, input.InvoiceNumber).Return(&domain.Invoice{ID: uuid.New()}, nil)

	_, err := f.svc.Create(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrDuplicateInvoiceNumber)
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_Create_DueDateBeforeIssueDate(t *testing.T) {
	f := newInvoiceFixture()
	input := baseCreateInput(t, uuid.New())
	input.DueDate = input.IssueDate.AddDate(0, 0, -1)

	_, err := f.svc.Create(context.Background(), input)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "due_date")
}

func updateFixture(t *testing.T) (*invoiceFixture, *domain.Invoice, *service.UpdateInvoiceInput) {
	t.Helper()
	f := newInvoiceFixture()
	clientID := uuid.New()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "ACME/INV/03/000007",
		ClientID:      clientID,
		Status:        domain.InvoiceStatusSent,
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 30),
		TotalAmount:   dec(t, "1075.00"),
	}
	input := &service.UpdateInvoiceInput{
		InvoiceID: inv.ID,
		ClientID:  clientID,
		IssueDate: inv.IssueDate,
		DueDate:   inv.DueDate,
		Status:    domain.InvoiceStatusSent,
		TaxRate:   dec(t, "7.5"),
		Items: []service.InvoiceItemInput{
			{Description: "Fabrication", Quantity: dec(t, "10"), UnitPrice: dec(t, "100.00"), VATRate: dec(t, "7.5")},
		},
	}
	f.clientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{ID: clientID}, nil)
	return f, inv, input
}

// splitSpecs builds a two-installment split matching a 1155.63 base.
func splitSpecs(t *testing.T, due time.Time) []service.ScheduleSpecInput {
	t.Helper()
	first := dec(t, "600.00")
	second := dec(t, "555.63")
	return []service.ScheduleSpecInput{
		{Description: "Mobilization", Amount: &first, DueDate: due},
		{Description: "Completion", Amount: &second, DueDate: due.AddDate(0, 0, 14)},
	}
}

func TestInvoiceService_Update_PreservesEntriesWithPayments(t *testing.T) {
	f, inv, input := updateFixture(t)
	input.Schedules = splitSpecs(t, inv.DueDate)

	existing := []domain.PaymentScheduleEntry{
		{ID: uuid.New(), InvoiceID: inv.ID, PaymentNumber: 1, Amount: dec(t, "500.00"), PaidAmount: dec(t, "300.00"), Status: domain.ScheduleStatusPartial, DueDate: inv.DueDate},
		{ID: uuid.New(), InvoiceID: inv.ID, PaymentNumber: 2, Amount: dec(t, "655.63"), Status: domain.ScheduleStatusPending, DueDate: inv.DueDate},
	}

	f.invoiceRepo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.paymentRepo.On("SumByInvoice", mock.Anything, inv.ID).Return(dec(t, "300.00"), nil)
	f.invoiceRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.itemRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	f.scheduleRepo.On("ListByInvoice", mock.Anything, inv.ID).Return(existing, nil)
	f.paymentRepo.On("SumBySchedule", mock.Anything, existing[0].ID, uuid.Nil).Return(dec(t, "300.00"), nil)
	f.paymentRepo.On("SumBySchedule", mock.Anything, existing[1].ID, uuid.Nil).Return(decimal.Zero, nil)

	var updatedEntries []*domain.PaymentScheduleEntry
	f.scheduleRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.PaymentScheduleEntry")).
		Run(func(args mock.Arguments) {
			updatedEntries = append(updatedEntries, args.Get(1).(*domain.PaymentScheduleEntry))
		}).Return(nil)
	f.scheduleRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.PaymentScheduleEntry")).Return(nil)

	// the paid entry is re-reconciled after its amount changed
	f.scheduleRepo.On("GetByID", mock.Anything, existing[0].ID).Return(&existing[0], nil)
	f.scheduleRepo.On("UpdateDerived", mock.Anything, existing[0].ID, domain.ScheduleStatusPartial, dec(t, "300.00"), mock.Anything).Return(nil)
	f.paymentRepo.On("SumByInvoice", mock.Anything, inv.ID).Return(dec(t, "300.00"), nil)
	f.invoiceRepo.On("UpdatePaymentTotals", mock.Anything, inv.ID, domain.InvoiceStatusPartiallyPaid, dec(t, "300.00"), mock.Anything).Return(nil)

	_, err := f.svc.Update(context.Background(), input)

	require.NoError(t, err)
	require.Len(t, updatedEntries, 2)
	// entry IDs survive the edit; only amounts and descriptions move
	assert.Equal(t, existing[0].ID, updatedEntries[0].ID)
	assert.True(t, updatedEntries[0].Amount.Equal(dec(t, "600.00")))
	assert.Equal(t, "Mobilization", updatedEntries[0].Description)
	assert.Equal(t, existing[1].ID, updatedEntries[1].ID)
	assert.True(t, updatedEntries[1].Amount.Equal(dec(t, "555.63")))
}

func TestInvoiceService_Update_RejectsAmountBelowPaid(t *testing.T) {
	f, inv, input := updateFixture(t)
	low := dec(t, "200.00")
	rest := dec(t, "955.63")
	input.Schedules = []service.ScheduleSpecInput{
		{Amount: &low, DueDate: inv.DueDate},
		{Amount: &rest, DueDate: inv.DueDate},
	}

	existing := []domain.PaymentScheduleEntry{
		{ID: uuid.New(), InvoiceID: inv.ID, PaymentNumber: 1, Amount: dec(t, "500.00"), DueDate: inv.DueDate},
	}

	f.invoiceRepo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.paymentRepo.On("SumByInvoice", mock.Anything, inv.ID).Return(dec(t, "300.00"), nil)
	f.invoiceRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.itemRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.scheduleRepo.On("ListByInvoice", mock.Anything, inv.ID).Return(existing, nil)
	f.paymentRepo.On("SumBySchedule", mock.Anything, existing[0].ID, uuid.Nil).Return(dec(t, "300.00"), nil)

	_, err := f.svc.Update(context.Background(), input)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "payment_schedules.0.amount")
	f.scheduleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestInvoiceService_Update_RejectsRemovingPaidEntry(t *testing.T) {
	f, inv, input := updateFixture(t)
	full := dec(t, "1155.63")
	input.Schedules = []service.ScheduleSpecInput{
		{Amount: &full, DueDate: inv.DueDate},
	}

	existing := []domain.PaymentScheduleEntry{
		{ID: uuid.New(), InvoiceID: inv.ID, PaymentNumber: 1, Amount: dec(t, "600.00"), DueDate: inv.DueDate},
		{ID: uuid.New(), InvoiceID: inv.ID, PaymentNumber: 2, Amount: dec(t, "555.63"), DueDate: inv.DueDate},
	}

	f.invoiceRepo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.paymentRepo.On("SumByInvoice", mock.Anything, inv.ID).Return(dec(t, "100.00"), nil)
	f.invoiceRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.itemRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.scheduleRepo.On("ListByInvoice", mock.Anything, inv.ID).Return(existing, nil)
	f.paymentRepo.On("SumBySchedule", mock.Anything, existing[0].ID, uuid.Nil).Return(decimal.Zero, nil)
	f.scheduleRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	// the dropped second entry has a recorded payment
	f.paymentRepo.On("CountBySchedule", mock.Anything, existing[1].ID).Return(1, nil)

	_, err := f.svc.Update(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrScheduleEntryHasPayments)
	f.scheduleRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestInvoiceService_Update_DeletesUnpaidLeftovers(t *testing.T) {
	f, inv, input := updateFixture(t)
	full := dec(t, "1155.63")
	input.Schedules = []service.ScheduleSpecInput{
		{Amount: &full, DueDate: inv.DueDate},
	}

	existing := []domain.PaymentScheduleEntry{
		{ID: uuid.New(), InvoiceID: inv.ID, PaymentNumber: 1, Amount: dec(t, "600.00"), DueDate: inv.DueDate},
		{ID: uuid.New(), InvoiceID: inv.ID, PaymentNumber: 2, Amount: dec(t, "555.63"), DueDate: inv.DueDate},
	}

	f.invoiceRepo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.paymentRepo.On("SumByInvoice", mock.Anything, inv.ID).Return(decimal.Zero, nil)
	f.invoiceRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.itemRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.scheduleRepo.On("ListByInvoice", mock.Anything, inv.ID).Return(existing, nil)
	f.paymentRepo.On("SumBySchedule", mock.Anything, existing[0].ID, uuid.Nil).Return(decimal.Zero, nil)
	f.scheduleRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.paymentRepo.On("CountBySchedule", mock.Anything, existing[1].ID).Return(0, nil)
	f.scheduleRepo.On("Delete", mock.Anything, existing[1].ID).Return(nil)
	f.scheduleRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.invoiceRepo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

	_, err := f.svc.Update(context.Background(), input)

	require.NoError(t, err)
	f.scheduleRepo.AssertCalled(t, "Delete", mock.Anything, existing[1].ID)
}

func TestInvoiceService_Delete_RemovesPaymentsFirst(t *testing.T) {
	f := newInvoiceFixture()
	id := uuid.New()

	var order []string
	f.paymentRepo.On("DeleteByInvoice", mock.Anything, id).
		Run(func(mock.Arguments) { order = append(order, "payments") }).Return(nil)
	f.invoiceRepo.On("Delete", mock.Anything, id).
		Run(func(mock.Arguments) { order = append(order, "invoice") }).Return(nil)

	err := f.svc.Delete(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, []string{"payments", "invoice"}, order)
}

func TestInvoiceService_Duplicate_ResetsPaymentState(t *testing.T) {
	f := newInvoiceFixture()
	srcID := uuid.New()
	src := &domain.Invoice{
		ID:            srcID,
		InvoiceNumber: "ACME/INV/01/000003",
		ClientID:      uuid.New(),
		Status:        domain.InvoiceStatusPaid,
		Subtotal:      dec(t, "1000.00"),
		TaxRate:       dec(t, "7.5"),
		TaxAmount:     dec(t, "75.00"),
		TotalAmount:   dec(t, "1075.00"),
		PaidAmount:    dec(t, "1075.00"),
		BalanceDue:    decimal.Zero,
	}
	items := []domain.InvoiceItem{
		{ID: uuid.New(), InvoiceID: srcID, Position: 1, Description: "Fabrication"},
	}

	f.invoiceRepo.On("GetByID", mock.Anything, srcID).Return(src, nil)
	f.itemRepo.On("ListByInvoice", mock.Anything, srcID).Return(items, nil)
	f.invoiceRepo.On("CountCreatedInMonth", mock.Anything, mock.Anything, mock.Anything).Return(4, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	var clonedItems []domain.InvoiceItem
	f.itemRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.InvoiceItem")).
		Run(func(args mock.Arguments) { clonedItems = args.Get(1).([]domain.InvoiceItem) }).Return(nil)

	clone, err := f.svc.Duplicate(context.Background(), srcID)

	require.NoError(t, err)
	assert.NotEqual(t, src.ID, clone.ID)
	assert.NotEqual(t, src.InvoiceNumber, clone.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusDraft, clone.Status)
	assert.True(t, clone.PaidAmount.IsZero())
	assert.True(t, clone.BalanceDue.Equal(src.TotalAmount))
	require.Len(t, clonedItems, 1)
	assert.Equal(t, clone.ID, clonedItems[0].InvoiceID)
	assert.NotEqual(t, items[0].ID, clonedItems[0].ID)
	f.scheduleRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestInvoiceService_UpdateStatus_RejectsUnknown(t *testing.T) {
	f := newInvoiceFixture()

	err := f.svc.UpdateStatus(context.Background(), uuid.New(), domain.InvoiceStatus("archived"))

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	f.invoiceRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_NextInvoiceNumber(t *testing.T) {
	f := newInvoiceFixture()
	now := time.Now().UTC()

	f.invoiceRepo.On("CountCreatedInMonth", mock.Anything, now.Year(), now.Month()).Return(41, nil)

	number, err := f.svc.NextInvoiceNumber(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ACME/INV/%02d/000042", int(now.Month())), number)
}

func TestInvoiceService_GetView_MarksOverdueAtReadTime(t *testing.T) {
	f := newInvoiceFixture()
	// due well in the past relative to the wall clock
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	inv := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "ACME/INV/01/000003",
		ClientID:      uuid.New(),
		Status:        domain.InvoiceStatusSent,
		DueDate:       due,
	}
	entries := []domain.PaymentScheduleEntry{
		{ID: uuid.New(), InvoiceID: inv.ID, PaymentNumber: 1, Status: domain.ScheduleStatusPending, DueDate: due},
	}

	f.invoiceRepo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.clientRepo.On("GetByID", mock.Anything, inv.ClientID).Return(&domain.Client{ID: inv.ClientID}, nil)
	f.itemRepo.On("ListByInvoice", mock.Anything, inv.ID).Return([]domain.InvoiceItem{}, nil)
	f.scheduleRepo.On("ListByInvoice", mock.Anything, inv.ID).Return(entries, nil)
	f.paymentRepo.On("ListByInvoice", mock.Anything, inv.ID).Return([]domain.Payment{}, nil)

	view, err := f.svc.GetView(context.Background(), inv.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, view.Invoice.Status)
	assert.Equal(t, domain.ScheduleStatusOverdue, view.Schedule[0].Status)
	// the stored invoice row is untouched
	assert.Equal(t, domain.InvoiceStatusSent, inv.Status)
}

func sendFixture(t *testing.T, status domain.InvoiceStatus) (*invoiceFixture, *domain.Invoice) {
	t.Helper()
	f := newInvoiceFixture()
	inv := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "ACME/INV/03/000009",
		ClientID:      uuid.New(),
		Status:        status,
	}
	f.invoiceRepo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.clientRepo.On("GetByID", mock.Anything, inv.ClientID).Return(&domain.Client{ID: inv.ClientID, Email: "ada@example.com"}, nil)
	f.itemRepo.On("ListByInvoice", mock.Anything, inv.ID).Return([]domain.InvoiceItem{}, nil)
	f.scheduleRepo.On("ListByInvoice", mock.Anything, inv.ID).Return([]domain.PaymentScheduleEntry{}, nil)
	f.paymentRepo.On("ListByInvoice", mock.Anything, inv.ID).Return([]domain.Payment{}, nil)
	return f, inv
}

func TestInvoiceService_Send_PromotesDraftToSent(t *testing.T) {
	f, inv := sendFixture(t, domain.InvoiceStatusDraft)

	f.emailSender.On("SendInvoiceEmail", mock.Anything, "ada@example.com", "Invoice", mock.Anything, "please find attached", (*port.EmailAttachment)(nil)).Return(nil)
	f.invoiceRepo.On("UpdateStatus", mock.Anything, inv.ID, domain.InvoiceStatusSent).Return(nil)

	err := f.svc.Send(context.Background(), inv.ID, &service.SendInvoiceInput{
		To:      "ada@example.com",
		Subject: "Invoice",
		Message: "please find attached",
	})

	require.NoError(t, err)
	f.invoiceRepo.AssertCalled(t, "UpdateStatus", mock.Anything, inv.ID, domain.InvoiceStatusSent)
}

func TestInvoiceService_Send_AttachesRenderedDocument(t *testing.T) {
	f, inv := sendFixture(t, domain.InvoiceStatusSent)

	doc := &port.RenderedDocument{Data: []byte("<html>"), ContentType: "text/html; charset=utf-8", FileExt: ".html"}
	f.renderer.On("RenderInvoice", mock.Anything, mock.AnythingOfType("*domain.InvoiceView"), mock.Anything).Return(doc, nil)

	var sent *port.EmailAttachment
	f.emailSender.On("SendInvoiceEmail", mock.Anything, "ada@example.com", "Invoice", mock.Anything, mock.Anything, mock.AnythingOfType("*port.EmailAttachment")).
		Run(func(args mock.Arguments) { sent = args.Get(5).(*port.EmailAttachment) }).Return(nil)

	err := f.svc.Send(context.Background(), inv.ID, &service.SendInvoiceInput{
		To:        "ada@example.com",
		Subject:   "Invoice",
		Message:   "attached",
		AttachPDF: true,
	})

	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, "invoice-ACME-INV-03-000009.html", sent.Filename)
	assert.Equal(t, "text/html; charset=utf-8", sent.ContentType)
	// an already-sent invoice keeps its status
	f.invoiceRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Send_RequiresRecipient(t *testing.T) {
	f := newInvoiceFixture()

	err := f.svc.Send(context.Background(), uuid.New(), &service.SendInvoiceInput{Subject: "x"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "to")
}
