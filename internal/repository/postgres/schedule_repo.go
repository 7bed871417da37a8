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

type scheduleRepo struct {
	db *sqlx.DB
}

// NewScheduleRepo creates a new PostgreSQL-backed ScheduleRepository.
func NewScheduleRepo(db *sqlx.DB) port.ScheduleRepository {
	return &scheduleRepo{db: db}
}

const scheduleInsert = `INSERT INTO invoice_payment_schedules (
	id, invoice_id, payment_number, description, percentage, amount,
	due_date, status, paid_amount, paid_date, attachments, notes,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func (r *scheduleRepo) CreateBatch(ctx context.Context, entries []domain.PaymentScheduleEntry) error {
	now := time.Now().UTC()
	q := exec(ctx, r.db)

	for i := range entries {
		entries[i].CreatedAt = now
		entries[i].UpdatedAt = now
		e := &entries[i]
		_, err := q.ExecContext(ctx, scheduleInsert,
			e.ID, e.InvoiceID, e.PaymentNumber, e.Description, e.Percentage, e.Amount,
			e.DueDate, e.Status, e.PaidAmount, e.PaidDate, e.Attachments, e.Notes,
			e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("scheduleRepo.CreateBatch: %w", err)
		}
	}
	return nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentScheduleEntry, error) {
	return r.get(ctx, id, "SELECT * FROM invoice_payment_schedules WHERE id = $1")
}

func (r *scheduleRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.PaymentScheduleEntry, error) {
	return r.get(ctx, id, "SELECT * FROM invoice_payment_schedules WHERE id = $1 FOR UPDATE")
}

func (r *scheduleRepo) get(ctx context.Context, id uuid.UUID, query string) (*domain.PaymentScheduleEntry, error) {
	var entry domain.PaymentScheduleEntry
	err := exec(ctx, r.db).GetContext(ctx, &entry, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("scheduleRepo.get: %w", err)
	}
	return &entry, nil
}

func (r *scheduleRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.PaymentScheduleEntry, error) {
	var entries []domain.PaymentScheduleEntry
	err := exec(ctx, r.db).SelectContext(ctx, &entries,
		"SELECT * FROM invoice_payment_schedules WHERE invoice_id = $1 ORDER BY payment_number",
		invoiceID)
	if err != nil {
		return nil, fmt.Errorf("scheduleRepo.ListByInvoice: %w", err)
	}
	return entries, nil
}

func (r *scheduleRepo) Update(ctx context.Context, entry *domain.PaymentScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	result, err := exec(ctx, r.db).ExecContext(ctx,
		`UPDATE invoice_payment_schedules SET
			payment_number = $1, description = $2, percentage = $3, amount = $4,
			due_date = $5, status = $6, attachments = $7, notes = $8, updated_at = $9
		 WHERE id = $10`,
		entry.PaymentNumber, entry.Description, entry.Percentage, entry.Amount,
		entry.DueDate, entry.Status, entry.Attachments, entry.Notes, entry.UpdatedAt,
		entry.ID)
	if err != nil {
		return fmt.Errorf("scheduleRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

func (r *scheduleRepo) UpdateDerived(ctx context.Context, id uuid.UUID, status domain.ScheduleStatus, paid decimal.Decimal, paidDate *time.Time) error {
	result, err := exec(ctx, r.db).ExecContext(ctx,
		`UPDATE invoice_payment_schedules SET
			status = $1, paid_amount = $2, paid_date = $3, updated_at = $4
		 WHERE id = $5`,
		status, paid, paidDate, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("scheduleRepo.UpdateDerived: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

func (r *scheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := exec(ctx, r.db).ExecContext(ctx,
		"DELETE FROM invoice_payment_schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("scheduleRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}
