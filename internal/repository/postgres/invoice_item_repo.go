package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billora/internal/domain"
	"billora/internal/port"
)

type invoiceItemRepo struct {
	db *sqlx.DB
}

// NewInvoiceItemRepo creates a new PostgreSQL-backed InvoiceItemRepository.
func NewInvoiceItemRepo(db *sqlx.DB) port.InvoiceItemRepository {
	return &invoiceItemRepo{db: db}
}

func (r *invoiceItemRepo) CreateBatch(ctx context.Context, items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	q := exec(ctx, r.db)

	query := `INSERT INTO invoice_items (
		id, invoice_id, position, description, unit,
		quantity, unit_price, vat_rate, total_price, total_price_w_tax,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for i := range items {
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
		it := &items[i]
		_, err := q.ExecContext(ctx, query,
			it.ID, it.InvoiceID, it.Position, it.Description, it.Unit,
			it.Quantity, it.UnitPrice, it.VATRate, it.TotalPrice, it.TotalPriceWTax,
			it.CreatedAt, it.UpdatedAt)
		if err != nil {
			return fmt.Errorf("invoiceItemRepo.CreateBatch: %w", err)
		}
	}
	return nil
}

func (r *invoiceItemRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := exec(ctx, r.db).SelectContext(ctx, &items,
		"SELECT * FROM invoice_items WHERE invoice_id = $1 ORDER BY position", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceItemRepo.ListByInvoice: %w", err)
	}
	return items, nil
}

func (r *invoiceItemRepo) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	_, err := exec(ctx, r.db).ExecContext(ctx,
		"DELETE FROM invoice_items WHERE invoice_id = $1", invoiceID)
	if err != nil {
		return fmt.Errorf("invoiceItemRepo.DeleteByInvoice: %w", err)
	}
	return nil
}
