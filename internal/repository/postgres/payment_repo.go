package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"billora/internal/domain"
	"billora/internal/port"
)

type paymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo creates a new PostgreSQL-backed PaymentRepository.
func NewPaymentRepo(db *sqlx.DB) port.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := exec(ctx, r.db).ExecContext(ctx,
		`INSERT INTO payments (
			id, invoice_id, schedule_id, amount, payment_date, payment_method,
			notes, status, receipt_path, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.InvoiceID, p.ScheduleID, p.Amount, p.PaymentDate, p.PaymentMethod,
		p.Notes, p.Status, p.ReceiptPath, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("paymentRepo.Create: %w", err)
	}
	return nil
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment
	err := exec(ctx, r.db).GetContext(ctx, &p,
		"SELECT * FROM payments WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", err)
	}
	return &p, nil
}

func (r *paymentRepo) List(ctx context.Context, offset, limit int) ([]domain.Payment, int, error) {
	q := exec(ctx, r.db)

	var total int
	if err := q.GetContext(ctx, &total, "SELECT COUNT(*) FROM payments"); err != nil {
		return nil, 0, fmt.Errorf("paymentRepo.List count: %w", err)
	}

	var payments []domain.Payment
	err := q.SelectContext(ctx, &payments,
		"SELECT * FROM payments ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("paymentRepo.List: %w", err)
	}
	return payments, total, nil
}

func (r *paymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := exec(ctx, r.db).SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE invoice_id = $1 ORDER BY payment_date, created_at", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.ListByInvoice: %w", err)
	}
	return payments, nil
}

func (r *paymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := exec(ctx, r.db).ExecContext(ctx,
		`UPDATE payments SET
			amount = $1, payment_date = $2, payment_method = $3,
			notes = $4, receipt_path = $5, updated_at = $6
		 WHERE id = $7`,
		p.Amount, p.PaymentDate, p.PaymentMethod,
		p.Notes, p.ReceiptPath, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("paymentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := exec(ctx, r.db).ExecContext(ctx,
		"DELETE FROM payments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("paymentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepo) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	_, err := exec(ctx, r.db).ExecContext(ctx,
		"DELETE FROM payments WHERE invoice_id = $1", invoiceID)
	if err != nil {
		return fmt.Errorf("paymentRepo.DeleteByInvoice: %w", err)
	}
	return nil
}

func (r *paymentRepo) SumBySchedule(ctx context.Context, scheduleID, excludePaymentID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	var err error
	if excludePaymentID == uuid.Nil {
		err = exec(ctx, r.db).GetContext(ctx, &sum,
			"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE schedule_id = $1", scheduleID)
	} else {
		err = exec(ctx, r.db).GetContext(ctx, &sum,
			"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE schedule_id = $1 AND id <> $2",
			scheduleID, excludePaymentID)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("paymentRepo.SumBySchedule: %w", err)
	}
	return sum, nil
}

func (r *paymentRepo) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := exec(ctx, r.db).GetContext(ctx, &sum,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1", invoiceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("paymentRepo.SumByInvoice: %w", err)
	}
	return sum, nil
}

func (r *paymentRepo) CountBySchedule(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	var count int
	err := exec(ctx, r.db).GetContext(ctx, &count,
		"SELECT COUNT(*) FROM payments WHERE schedule_id = $1", scheduleID)
	if err != nil {
		return 0, fmt.Errorf("paymentRepo.CountBySchedule: %w", err)
	}
	return count, nil
}

