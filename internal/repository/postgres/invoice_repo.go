package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"billora/internal/domain"
	"billora/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	query := `INSERT INTO invoices (
		id, invoice_number, client_id, project_name, po_number,
		issue_date, due_date, status,
		subtotal, tax_rate, tax_amount, discount_amount,
		total_amount, paid_amount, balance_due,
		notes, terms, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11, $12,
		$13, $14, $15,
		$16, $17, $18, $19
	)`

	_, err := exec(ctx, r.db).ExecContext(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.ClientID, inv.ProjectName, inv.PONumber,
		inv.IssueDate, inv.DueDate, inv.Status,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.DiscountAmount,
		inv.TotalAmount, inv.PaidAmount, inv.BalanceDue,
		inv.Notes, inv.Terms, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "invoice_number") {
			return domain.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := exec(ctx, r.db).GetContext(ctx, &inv,
		"SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := exec(ctx, r.db).GetContext(ctx, &inv,
		"SELECT * FROM invoices WHERE invoice_number = $1", number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByNumber: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, filter port.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	q := exec(ctx, r.db)

	where := []string{"1=1"}
	args := []interface{}{}
	n := 0

	if filter.ClientID != nil {
		n++
		where = append(where, fmt.Sprintf("i.client_id = $%d", n))
		args = append(args, *filter.ClientID)
	}
	if filter.Status != nil {
		n++
		where = append(where, fmt.Sprintf("i.status = $%d", n))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		n++
		where = append(where, fmt.Sprintf(
			"(i.invoice_number ILIKE $%d OR EXISTS (SELECT 1 FROM clients c WHERE c.id = i.client_id AND c.name ILIKE $%d))", n, n))
		args = append(args, "%"+filter.Search+"%")
	}

	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM invoices i WHERE " + cond
	if err := q.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	listQuery := fmt.Sprintf(
		"SELECT i.* FROM invoices i WHERE %s ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d",
		cond, n+1, n+2)
	args = append(args, limit, offset)

	var invoices []domain.Invoice
	if err := q.SelectContext(ctx, &invoices, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	result, err := exec(ctx, r.db).ExecContext(ctx,
		`UPDATE invoices SET
			client_id = $1, project_name = $2, po_number = $3,
			issue_date = $4, due_date = $5, status = $6,
			subtotal = $7, tax_rate = $8, tax_amount = $9, discount_amount = $10,
			total_amount = $11, paid_amount = $12, balance_due = $13,
			notes = $14, terms = $15, updated_at = $16
		 WHERE id = $17`,
		inv.ClientID, inv.ProjectName, inv.PONumber,
		inv.IssueDate, inv.DueDate, inv.Status,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.DiscountAmount,
		inv.TotalAmount, inv.PaidAmount, inv.BalanceDue,
		inv.Notes, inv.Terms, inv.UpdatedAt, inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	result, err := exec(ctx, r.db).ExecContext(ctx,
		"UPDATE invoices SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) UpdatePaymentTotals(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus, paid, balance decimal.Decimal) error {
	result, err := exec(ctx, r.db).ExecContext(ctx,
		`UPDATE invoices SET status = $1, paid_amount = $2, balance_due = $3, updated_at = $4
		 WHERE id = $5`,
		status, paid, balance, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdatePaymentTotals: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := exec(ctx, r.db).ExecContext(ctx,
		"DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) CountCreatedInMonth(ctx context.Context, year int, month time.Month) (int, error) {
	var count int
	err := exec(ctx, r.db).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM invoices
		 WHERE EXTRACT(YEAR FROM created_at) = $1 AND EXTRACT(MONTH FROM created_at) = $2`,
		year, int(month))
	if err != nil {
		return 0, fmt.Errorf("invoiceRepo.CountCreatedInMonth: %w", err)
	}
	return count, nil
}

func (r *invoiceRepo) Stats(ctx context.Context) (*port.InvoiceStats, error) {
	var stats port.InvoiceStats
	err := exec(ctx, r.db).GetContext(ctx, &stats,
		`SELECT
			COALESCE(SUM(total_amount), 0)                                        AS total_amount,
			COUNT(*) FILTER (WHERE status = 'draft')                              AS draft_count,
			COUNT(*) FILTER (WHERE status = 'pending')                            AS pending_count,
			COUNT(*) FILTER (WHERE status = 'overdue')                            AS overdue_count,
			COUNT(*) FILTER (WHERE status = 'paid')                               AS paid_count,
			(SELECT COALESCE(SUM(amount), 0) FROM payments)                       AS received_amount,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'pending'), 0)      AS pending_amount,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'overdue'), 0)      AS overdue_amount
		 FROM invoices`)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.Stats: %w", err)
	}
	return &stats, nil
}
