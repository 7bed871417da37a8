package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"billora/internal/domain"
	"billora/internal/port"
)

// Reconciler recomputes derived status and money caches from the payment
// ledger. It runs after every ledger mutation, inside the same transaction,
// and is idempotent: reconciling twice with no intervening mutation changes
// nothing.
type Reconciler struct {
	invoiceRepo  port.InvoiceRepository
	scheduleRepo port.ScheduleRepository
	paymentRepo  port.PaymentRepository
}

// NewReconciler creates a Reconciler over the given repositories.
func NewReconciler(invoiceRepo port.InvoiceRepository, scheduleRepo port.ScheduleRepository, paymentRepo port.PaymentRepository) *Reconciler {
	return &Reconciler{
		invoiceRepo:  invoiceRepo,
		scheduleRepo: scheduleRepo,
		paymentRepo:  paymentRepo,
	}
}

// Reconcile recomputes the schedule entry's status from its live payment
// sum, then the owning invoice's status from the full set of entries, then
// the invoice's paid_amount/balance_due caches from the ledger.
func (r *Reconciler) Reconcile(ctx context.Context, scheduleID uuid.UUID) error {
	entry, err := r.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	totalPaid, err := r.paymentRepo.SumBySchedule(ctx, entry.ID, uuid.Nil)
	if err != nil {
		return err
	}

	status := domain.DeriveEntryStatus(entry.Amount, totalPaid)
	var paidDate *time.Time
	if status == domain.ScheduleStatusPaid {
		if entry.PaidDate != nil {
			paidDate = entry.PaidDate
		} else {
			now := time.Now().UTC()
			paidDate = &now
		}
	}
	if err := r.scheduleRepo.UpdateDerived(ctx, entry.ID, status, totalPaid, paidDate); err != nil {
		return err
	}

	return r.reconcileInvoice(ctx, entry.InvoiceID)
}

// reconcileInvoice derives the invoice status from a fresh read of all its
// schedule entries and refreshes the invoice money caches from the ledger.
func (r *Reconciler) reconcileInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	entries, err := r.scheduleRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}

	inv, err := r.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	derived := domain.DeriveInvoiceStatus(entries)
	status := derived
	// Reconciliation never demotes an invoice back to draft or cancelled;
	// with no payment progress those states stay untouched.
	if derived == domain.InvoiceStatusSent &&
		(inv.Status == domain.InvoiceStatusDraft || inv.Status == domain.InvoiceStatusCancelled) {
		status = inv.Status
	}

	paid, err := r.paymentRepo.SumByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	balance := domain.BalanceDue(inv.TotalAmount, paid)

	if err := r.invoiceRepo.UpdatePaymentTotals(ctx, invoiceID, status, paid, balance); err != nil {
		return fmt.Errorf("reconciling invoice %s: %w", invoiceID, err)
	}
	return nil
}
