package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billora/internal/domain"
	"billora/internal/port"
	"billora/internal/validator"
)

// RecordPaymentInput is the DTO for recording a payment against a schedule
// entry.
type RecordPaymentInput struct {
	ScheduleID    uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod string
	PaymentDate   time.Time
	Notes         string
	Receipt       *FilePayload
}

// UpdatePaymentInput is the DTO for editing an existing payment.
type UpdatePaymentInput struct {
	PaymentID     uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod string
	PaymentDate   time.Time
	Notes         string
	Receipt       *FilePayload
}

var paymentSchema = validator.Schema{
	Fields: map[string]validator.Constraint{
		"amount":         {Required: true, Min: validator.Dec("0.01")},
		"payment_method": {Required: true, MaxLen: 255},
		"payment_date":   {Required: true},
	},
}

// PaymentService is the payment ledger: it records, edits, and removes
// payments, holding the invariant that an entry's cumulative payments never
// exceed its amount. Every mutation reconciles entry and invoice status in
// the same transaction.
type PaymentService interface {
	Record(ctx context.Context, input *RecordPaymentInput) (*domain.Payment, error)
	Update(ctx context.Context, input *UpdatePaymentInput) (*domain.Payment, error)
	Delete(ctx context.Context, paymentID uuid.UUID) error
	GetByID(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	List(ctx context.Context, offset, limit int) ([]domain.Payment, int, error)
	RemainingAmount(ctx context.Context, scheduleID uuid.UUID) (decimal.Decimal, error)
}

type paymentService struct {
	tx           port.TxManager
	scheduleRepo port.ScheduleRepository
	paymentRepo  port.PaymentRepository
	fileSvc      FileService
	reconciler   *Reconciler
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(
	tx port.TxManager,
	scheduleRepo port.ScheduleRepository,
	paymentRepo port.PaymentRepository,
	fileSvc FileService,
	reconciler *Reconciler,
) PaymentService {
	return &paymentService{
		tx:           tx,
		scheduleRepo: scheduleRepo,
		paymentRepo:  paymentRepo,
		fileSvc:      fileSvc,
		reconciler:   reconciler,
	}
}

func (s *paymentService) validate(amount decimal.Decimal, method string, date time.Time) error {
	return paymentSchema.Validate(validator.Values{
		"amount":         amount,
		"payment_method": method,
		"payment_date":   date,
	})
}

func (s *paymentService) Record(ctx context.Context, input *RecordPaymentInput) (*domain.Payment, error) {
	if err := s.validate(input.Amount, input.PaymentMethod, input.PaymentDate); err != nil {
		return nil, err
	}

	var payment *domain.Payment
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Row lock serializes concurrent payments against the same entry so
		// the capacity check cannot read stale sums.
		entry, err := s.scheduleRepo.GetByIDForUpdate(ctx, input.ScheduleID)
		if err != nil {
			return err
		}

		alreadyPaid, err := s.paymentRepo.SumBySchedule(ctx, entry.ID, uuid.Nil)
		if err != nil {
			return err
		}
		remaining := entry.Amount.Sub(alreadyPaid)
		if input.Amount.GreaterThan(remaining) {
			return &domain.OverpaymentError{ScheduleID: entry.ID.String(), Remaining: remaining}
		}

		receiptPath := ""
		if input.Receipt != nil {
			receiptPath, err = s.fileSvc.Upload(ctx, FolderReceipts, input.Receipt)
			if err != nil {
				return err
			}
		}

		payment = &domain.Payment{
			ID:            uuid.New(),
			InvoiceID:     entry.InvoiceID,
			ScheduleID:    entry.ID,
			Amount:        domain.MoneyRound(input.Amount),
			PaymentDate:   input.PaymentDate,
			PaymentMethod: input.PaymentMethod,
			Notes:         input.Notes,
			Status:        domain.PaymentStatusCompleted,
			ReceiptPath:   receiptPath,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		return s.reconciler.Reconcile(ctx, entry.ID)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) Update(ctx context.Context, input *UpdatePaymentInput) (*domain.Payment, error) {
	if err := s.validate(input.Amount, input.PaymentMethod, input.PaymentDate); err != nil {
		return nil, err
	}

	var payment *domain.Payment
	var replacedReceipt string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.paymentRepo.GetByID(ctx, input.PaymentID)
		if err != nil {
			return err
		}

		entry, err := s.scheduleRepo.GetByIDForUpdate(ctx, p.ScheduleID)
		if err != nil {
			return err
		}

		// Capacity check excludes the payment being edited.
		otherPaid, err := s.paymentRepo.SumBySchedule(ctx, entry.ID, p.ID)
		if err != nil {
			return err
		}
		remaining := entry.Amount.Sub(otherPaid)
		if input.Amount.GreaterThan(remaining) {
			return &domain.OverpaymentError{ScheduleID: entry.ID.String(), Remaining: remaining}
		}

		if input.Receipt != nil {
			newPath, err := s.fileSvc.Upload(ctx, FolderReceipts, input.Receipt)
			if err != nil {
				return err
			}
			replacedReceipt = p.ReceiptPath
			p.ReceiptPath = newPath
		}

		p.Amount = domain.MoneyRound(input.Amount)
		p.PaymentMethod = input.PaymentMethod
		p.PaymentDate = input.PaymentDate
		p.Notes = input.Notes
		if err := s.paymentRepo.Update(ctx, p); err != nil {
			return err
		}
		payment = p

		return s.reconciler.Reconcile(ctx, entry.ID)
	})
	if err != nil {
		return nil, err
	}

	// The old receipt is removed only after the transaction committed;
	// object storage is not transactional.
	if replacedReceipt != "" {
		if rmErr := s.fileSvc.Remove(ctx, replacedReceipt); rmErr != nil {
			log.Printf("paymentService.Update: failed to remove replaced receipt %s: %v", replacedReceipt, rmErr)
		}
	}
	return payment, nil
}

func (s *paymentService) Delete(ctx context.Context, paymentID uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.paymentRepo.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}

		if _, err := s.scheduleRepo.GetByIDForUpdate(ctx, p.ScheduleID); err != nil {
			return err
		}

		if err := s.paymentRepo.Delete(ctx, p.ID); err != nil {
			return err
		}

		return s.reconciler.Reconcile(ctx, p.ScheduleID)
	})
}

func (s *paymentService) GetByID(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	return s.paymentRepo.GetByID(ctx, paymentID)
}

func (s *paymentService) List(ctx context.Context, offset, limit int) ([]domain.Payment, int, error) {
	return s.paymentRepo.List(ctx, offset, limit)
}

// RemainingAmount reports what a schedule entry can still accept, for
// payment form display.
func (s *paymentService) RemainingAmount(ctx context.Context, scheduleID uuid.UUID) (decimal.Decimal, error) {
	entry, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return decimal.Zero, err
	}
	paid, err := s.paymentRepo.SumBySchedule(ctx, scheduleID, uuid.Nil)
	if err != nil {
		return decimal.Zero, err
	}
	remaining := entry.Amount.Sub(paid)
	if !remaining.IsPositive() {
		return decimal.Zero, domain.ErrScheduleFullyPaid
	}
	return remaining, nil
}
