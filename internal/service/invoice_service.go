package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billora/internal/domain"
	"billora/internal/port"
	"billora/internal/validator"
)

// InvoiceItemInput is one submitted line item.
type InvoiceItemInput struct {
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
}

// ScheduleSpecInput is one requested installment. KeepAttachments carries
// storage keys of existing attachments retained on edit; Attachments are
// new files to upload.
type ScheduleSpecInput struct {
	Description     string
	Percentage      *decimal.Decimal
	Amount          *decimal.Decimal
	DueDate         time.Time
	Notes           string
	Attachments     []*FilePayload
	KeepAttachments []string
}

// CreateInvoiceInput is the DTO for creating an invoice.
type CreateInvoiceInput struct {
	InvoiceNumber  string
	ClientID       uuid.UUID
	ProjectName    string
	PONumber       string
	IssueDate      time.Time
	DueDate        time.Time
	Status         domain.InvoiceStatus
	Notes          string
	Terms          string
	TaxRate        decimal.Decimal
	DiscountAmount decimal.Decimal
	Items          []InvoiceItemInput
	Schedules      []ScheduleSpecInput
}

// UpdateInvoiceInput is the DTO for editing an invoice. Items are replaced
// wholesale; schedule entries are diffed by payment number so entries with
// recorded payments survive in place.
type UpdateInvoiceInput struct {
	InvoiceID      uuid.UUID
	ClientID       uuid.UUID
	ProjectName    string
	PONumber       string
	IssueDate      time.Time
	DueDate        time.Time
	Status         domain.InvoiceStatus
	Notes          string
	Terms          string
	TaxRate        decimal.Decimal
	DiscountAmount decimal.Decimal
	Items          []InvoiceItemInput
	Schedules      []ScheduleSpecInput
}

// SendInvoiceInput is the DTO for emailing an invoice.
type SendInvoiceInput struct {
	To        string
	Subject   string
	Message   string
	AttachPDF bool
}

var invoiceSchema = validator.Schema{
	Fields: map[string]validator.Constraint{
		"invoice_number":  {Required: true, MaxLen: 255},
		"issue_date":      {Required: true},
		"due_date":        {Required: true},
		"status":          {Required: true, OneOf: []string{"draft", "pending", "sent", "paid", "partially_paid", "overdue", "cancelled"}},
		"tax_rate":        {Min: validator.Dec("0"), Max: validator.Dec("100")},
		"discount_amount": {Min: validator.Dec("0")},
		"po_number":       {MaxLen: 255},
	},
	Cross: []validator.CrossField{
		{Field: "due_date", After: "issue_date"},
	},
}

var invoiceItemSchema = validator.Schema{
	Fields: map[string]validator.Constraint{
		"description": {Required: true},
		"quantity":    {Required: true, Min: validator.Dec("0.01")},
		"unit_price":  {Required: true, Min: validator.Dec("0")},
		"vat_rate":    {Min: validator.Dec("0"), Max: validator.Dec("100")},
	},
}

// InvoiceService is the invoice aggregate: creation, edit, duplication,
// deletion, emailing, and the read model.
type InvoiceService interface {
	Create(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error)
	Update(ctx context.Context, input *UpdateInvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Duplicate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetView(ctx context.Context, id uuid.UUID) (*domain.InvoiceView, error)
	List(ctx context.Context, filter port.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error)
	Stats(ctx context.Context) (*port.InvoiceStats, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error
	Send(ctx context.Context, id uuid.UUID, input *SendInvoiceInput) error
	NextInvoiceNumber(ctx context.Context) (string, error)
}

type invoiceService struct {
	tx           port.TxManager
	clientRepo   port.ClientRepository
	invoiceRepo  port.InvoiceRepository
	itemRepo     port.InvoiceItemRepository
	scheduleRepo port.ScheduleRepository
	paymentRepo  port.PaymentRepository
	fileSvc      FileService
	reconciler   *Reconciler
	renderer     port.DocumentRenderer
	emailSender  port.EmailSender
	company      *domain.CompanySettings
	taxMode      domain.TaxMode
}

// NewInvoiceService creates an InvoiceService.
func NewInvoiceService(
	tx port.TxManager,
	clientRepo port.ClientRepository,
	invoiceRepo port.InvoiceRepository,
	itemRepo port.InvoiceItemRepository,
	scheduleRepo port.ScheduleRepository,
	paymentRepo port.PaymentRepository,
	fileSvc FileService,
	reconciler *Reconciler,
	renderer port.DocumentRenderer,
	emailSender port.EmailSender,
	company *domain.CompanySettings,
	taxMode domain.TaxMode,
) InvoiceService {
	return &invoiceService{
		tx:           tx,
		clientRepo:   clientRepo,
		invoiceRepo:  invoiceRepo,
		itemRepo:     itemRepo,
		scheduleRepo: scheduleRepo,
		paymentRepo:  paymentRepo,
		fileSvc:      fileSvc,
		reconciler:   reconciler,
		renderer:     renderer,
		emailSender:  emailSender,
		company:      company,
		taxMode:      taxMode,
	}
}

func validateInvoiceInput(number string, issue, due time.Time, status domain.InvoiceStatus, taxRate, discount decimal.Decimal, poNumber string, items []InvoiceItemInput) error {
	if err := invoiceSchema.Validate(validator.Values{
		"invoice_number":  number,
		"issue_date":      issue,
		"due_date":        due,
		"status":          string(status),
		"tax_rate":        taxRate,
		"discount_amount": discount,
		"po_number":       poNumber,
	}); err != nil {
		return err
	}
	if len(items) == 0 {
		return domain.NewValidationError("items", "at least one line item is required")
	}
	for i, it := range items {
		if err := invoiceItemSchema.Validate(validator.Values{
			"description": it.Description,
			"quantity":    it.Quantity,
			"unit_price":  it.UnitPrice,
			"vat_rate":    it.VATRate,
		}); err != nil {
			ve := err.(*domain.ValidationError)
			prefixed := map[string]string{}
			for f, msg := range ve.Fields {
				prefixed["items."+strconv.Itoa(i)+"."+f] = msg
			}
			return &domain.ValidationError{Fields: prefixed}
		}
	}
	return nil
}

func toLineItems(items []InvoiceItemInput) []domain.LineItemInput {
	lines := make([]domain.LineItemInput, 0, len(items))
	for _, it := range items {
		unit := it.Unit
		if unit == "" {
			unit = domain.DefaultUnit
		}
		lines = append(lines, domain.LineItemInput{
			Description: it.Description,
			Unit:        unit,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			VATRate:     it.VATRate,
		})
	}
	return lines
}

func buildItems(invoiceID uuid.UUID, lines []domain.LineItemInput, totals domain.Totals) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, domain.InvoiceItem{
			ID:             uuid.New(),
			InvoiceID:      invoiceID,
			Position:       i + 1,
			Description:    line.Description,
			Unit:           line.Unit,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			VATRate:        line.VATRate,
			TotalPrice:     totals.Lines[i].Base,
			TotalPriceWTax: totals.Lines[i].WithTax,
		})
	}
	return items
}

// uploadScheduleAttachments stores new attachment files and returns the
// schedule specs in domain form, each carrying its full set of storage keys.
func (s *invoiceService) uploadScheduleAttachments(ctx context.Context, specs []ScheduleSpecInput) ([]domain.ScheduleSpec, error) {
	out := make([]domain.ScheduleSpec, 0, len(specs))
	for _, spec := range specs {
		keys := append([]string{}, spec.KeepAttachments...)
		for _, payload := range spec.Attachments {
			key, err := s.fileSvc.Upload(ctx, FolderAttachments, payload)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
		out = append(out, domain.ScheduleSpec{
			Description: spec.Description,
			Percentage:  spec.Percentage,
			Amount:      spec.Amount,
			DueDate:     spec.DueDate,
			Attachments: keys,
			Notes:       spec.Notes,
		})
	}
	return out, nil
}

func (s *invoiceService) Create(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error) {
	if err := validateInvoiceInput(input.InvoiceNumber, input.IssueDate, input.DueDate, input.Status,
		input.TaxRate, input.DiscountAmount, input.PONumber, input.Items); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.GetByID(ctx, input.ClientID); err != nil {
		return nil, err
	}
	// Early uniqueness check for a clean error; the unique index still backs
	// it under concurrency.
	if _, err := s.invoiceRepo.GetByNumber(ctx, input.InvoiceNumber); err == nil {
		return nil, domain.ErrDuplicateInvoiceNumber
	} else if !errors.Is(err, domain.ErrInvoiceNotFound) {
		return nil, err
	}

	lines := toLineItems(input.Items)
	totals := domain.ComputeTotals(lines, input.TaxRate, s.taxMode)

	inv := &domain.Invoice{
		ID:             uuid.New(),
		InvoiceNumber:  input.InvoiceNumber,
		ClientID:       input.ClientID,
		ProjectName:    input.ProjectName,
		PONumber:       input.PONumber,
		IssueDate:      input.IssueDate,
		DueDate:        input.DueDate,
		Status:         input.Status,
		Subtotal:       totals.Subtotal,
		TaxRate:        input.TaxRate,
		TaxAmount:      totals.TaxAmount,
		DiscountAmount: domain.MoneyRound(input.DiscountAmount),
		TotalAmount:    totals.TotalAmount,
		PaidAmount:     decimal.Zero,
		BalanceDue:     totals.TotalAmount,
		Notes:          input.Notes,
		Terms:          input.Terms,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		if err := s.itemRepo.CreateBatch(ctx, buildItems(inv.ID, lines, totals)); err != nil {
			return err
		}

		specs, err := s.uploadScheduleAttachments(ctx, input.Schedules)
		if err != nil {
			return err
		}
		entries, err := domain.BuildSchedule(inv.ID, totals.ScheduleBase, input.DueDate, specs)
		if err != nil {
			return err
		}
		return s.scheduleRepo.CreateBatch(ctx, entries)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("invoiceService.Create: created invoice %s (%s)", inv.ID, inv.InvoiceNumber)
	return inv, nil
}

func (s *invoiceService) Update(ctx context.Context, input *UpdateInvoiceInput) (*domain.Invoice, error) {
	if err := validateInvoiceInput("unchanged", input.IssueDate, input.DueDate, input.Status,
		input.TaxRate, input.DiscountAmount, input.PONumber, input.Items); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.GetByID(ctx, input.ClientID); err != nil {
		return nil, err
	}

	lines := toLineItems(input.Items)
	totals := domain.ComputeTotals(lines, input.TaxRate, s.taxMode)

	var inv *domain.Invoice
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.invoiceRepo.GetByID(ctx, input.InvoiceID)
		if err != nil {
			return err
		}

		paid, err := s.paymentRepo.SumByInvoice(ctx, existing.ID)
		if err != nil {
			return err
		}

		existing.ClientID = input.ClientID
		existing.ProjectName = input.ProjectName
		existing.PONumber = input.PONumber
		existing.IssueDate = input.IssueDate
		existing.DueDate = input.DueDate
		existing.Status = input.Status
		existing.Subtotal = totals.Subtotal
		existing.TaxRate = input.TaxRate
		existing.TaxAmount = totals.TaxAmount
		existing.DiscountAmount = domain.MoneyRound(input.DiscountAmount)
		existing.TotalAmount = totals.TotalAmount
		existing.PaidAmount = paid
		existing.BalanceDue = domain.BalanceDue(totals.TotalAmount, paid)
		existing.Notes = input.Notes
		existing.Terms = input.Terms
		if err := s.invoiceRepo.Update(ctx, existing); err != nil {
			return err
		}

		// Line items have no payment history: replace wholesale.
		if err := s.itemRepo.DeleteByInvoice(ctx, existing.ID); err != nil {
			return err
		}
		if err := s.itemRepo.CreateBatch(ctx, buildItems(existing.ID, lines, totals)); err != nil {
			return err
		}

		if err := s.applyScheduleDiff(ctx, existing, totals.ScheduleBase, input.DueDate, input.Schedules); err != nil {
			return err
		}

		inv, err = s.invoiceRepo.GetByID(ctx, existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// applyScheduleDiff reconciles the submitted schedule against the stored
// one, matching entries by payment number. Entries with recorded payments
// are updated in place; removing one fails the whole edit. Each surviving
// entry with payments is re-reconciled because its amount may have changed.
func (s *invoiceService) applyScheduleDiff(ctx context.Context, inv *domain.Invoice, scheduleBase decimal.Decimal, dueDate time.Time, specInputs []ScheduleSpecInput) error {
	specs, err := s.uploadScheduleAttachments(ctx, specInputs)
	if err != nil {
		return err
	}
	desired, err := domain.BuildSchedule(inv.ID, scheduleBase, dueDate, specs)
	if err != nil {
		return err
	}

	existing, err := s.scheduleRepo.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return err
	}
	byNumber := make(map[int]*domain.PaymentScheduleEntry, len(existing))
	for i := range existing {
		byNumber[existing[i].PaymentNumber] = &existing[i]
	}

	var toCreate []domain.PaymentScheduleEntry
	var toReconcile []uuid.UUID
	for _, d := range desired {
		cur, ok := byNumber[d.PaymentNumber]
		if !ok {
			toCreate = append(toCreate, d)
			continue
		}
		delete(byNumber, d.PaymentNumber)

		paidSum, err := s.paymentRepo.SumBySchedule(ctx, cur.ID, uuid.Nil)
		if err != nil {
			return err
		}
		if d.Amount.LessThan(paidSum) {
			return domain.NewValidationError(
				fmt.Sprintf("payment_schedules.%d.amount", d.PaymentNumber-1),
				fmt.Sprintf("amount cannot be below the %s already paid", paidSum.StringFixed(2)))
		}

		cur.Description = d.Description
		cur.Percentage = d.Percentage
		cur.Amount = d.Amount
		cur.DueDate = d.DueDate
		cur.Attachments = d.Attachments
		cur.Notes = d.Notes
		if err := s.scheduleRepo.Update(ctx, cur); err != nil {
			return err
		}
		if paidSum.IsPositive() {
			toReconcile = append(toReconcile, cur.ID)
		}
	}

	for _, leftover := range byNumber {
		count, err := s.paymentRepo.CountBySchedule(ctx, leftover.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrScheduleEntryHasPayments
		}
		if err := s.scheduleRepo.Delete(ctx, leftover.ID); err != nil {
			return err
		}
	}

	if err := s.scheduleRepo.CreateBatch(ctx, toCreate); err != nil {
		return err
	}

	for _, id := range toReconcile {
		if err := s.reconciler.Reconcile(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Payments go first: their schedule FK blocks cascade deletion.
		if err := s.paymentRepo.DeleteByInvoice(ctx, id); err != nil {
			return err
		}
		return s.invoiceRepo.Delete(ctx, id)
	})
}

func (s *invoiceService) Duplicate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var clone *domain.Invoice
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		src, err := s.invoiceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		items, err := s.itemRepo.ListByInvoice(ctx, id)
		if err != nil {
			return err
		}
		number, err := s.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		clone = &domain.Invoice{
			ID:             uuid.New(),
			InvoiceNumber:  number,
			ClientID:       src.ClientID,
			ProjectName:    src.ProjectName,
			PONumber:       src.PONumber,
			IssueDate:      now,
			DueDate:        now.AddDate(0, 0, 30),
			Status:         domain.InvoiceStatusDraft,
			Subtotal:       src.Subtotal,
			TaxRate:        src.TaxRate,
			TaxAmount:      src.TaxAmount,
			DiscountAmount: src.DiscountAmount,
			TotalAmount:    src.TotalAmount,
			PaidAmount:     decimal.Zero,
			BalanceDue:     src.TotalAmount,
			Notes:          src.Notes,
			Terms:          src.Terms,
		}
		if err := s.invoiceRepo.Create(ctx, clone); err != nil {
			return err
		}

		cloned := make([]domain.InvoiceItem, 0, len(items))
		for _, it := range items {
			it.ID = uuid.New()
			it.InvoiceID = clone.ID
			cloned = append(cloned, it)
		}
		// Schedule entries and payments are intentionally not cloned.
		return s.itemRepo.CreateBatch(ctx, cloned)
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) GetView(ctx context.Context, id uuid.UUID) (*domain.InvoiceView, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(ctx, inv.ClientID)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	schedule, err := s.scheduleRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &domain.InvoiceView{
		Invoice:  *inv,
		Client:   *client,
		Items:    items,
		Schedule: schedule,
		Payments: payments,
	}
	view.ApplyOverdue(time.Now().UTC())
	return view, nil
}

func (s *invoiceService) List(ctx context.Context, filter port.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.List(ctx, filter, offset, limit)
}

func (s *invoiceService) Stats(ctx context.Context) (*port.InvoiceStats, error) {
	return s.invoiceRepo.Stats(ctx)
}

func (s *invoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	if !domain.ValidInvoiceStatuses[status] {
		return domain.NewValidationError("status", "is not a valid value")
	}
	return s.invoiceRepo.UpdateStatus(ctx, id, status)
}

func (s *invoiceService) Send(ctx context.Context, id uuid.UUID, input *SendInvoiceInput) error {
	if input.To == "" {
		return domain.NewValidationError("to", "is required")
	}
	if input.Subject == "" {
		return domain.NewValidationError("subject", "is required")
	}

	view, err := s.GetView(ctx, id)
	if err != nil {
		return err
	}

	var attachment *port.EmailAttachment
	if input.AttachPDF {
		doc, err := s.renderer.RenderInvoice(ctx, view, s.company)
		if err != nil {
			return err
		}
		attachment = &port.EmailAttachment{
			Filename:    fmt.Sprintf("invoice-%s%s", sanitizeNumber(view.Invoice.InvoiceNumber), doc.FileExt),
			ContentType: doc.ContentType,
			Data:        doc.Data,
		}
	}

	htmlBody := fmt.Sprintf("<p>%s</p>", input.Message)
	if err := s.emailSender.SendInvoiceEmail(ctx, input.To, input.Subject, htmlBody, input.Message, attachment); err != nil {
		return err
	}

	if view.Invoice.Status == domain.InvoiceStatusDraft {
		return s.invoiceRepo.UpdateStatus(ctx, id, domain.InvoiceStatusSent)
	}
	return nil
}

// NextInvoiceNumber produces PREFIX/INV/MM/NNNNNN from the count of invoices
// created this calendar month.
func (s *invoiceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	now := time.Now().UTC()
	count, err := s.invoiceRepo.CountCreatedInMonth(ctx, now.Year(), now.Month())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/INV/%02d/%06d", s.company.InvoicePrefix, int(now.Month()), count+1), nil
}

func sanitizeNumber(number string) string {
	out := make([]rune, 0, len(number))
	for _, r := range number {
		if r == '/' || r == '\\' {
			out = append(out, '-')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
