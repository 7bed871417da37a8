package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billora/internal/domain"
	"billora/internal/port"
)

type clientRepo struct {
	db *sqlx.DB
}

// NewClientRepo creates a new PostgreSQL-backed ClientRepository.
func NewClientRepo(db *sqlx.DB) port.ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *domain.Client) error {
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := exec(ctx, r.db).ExecContext(ctx,
		`INSERT INTO clients (id, name, company_name, email, phone, address, city, state,
			postal_code, country, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		client.ID, client.Name, client.CompanyName, client.Email, client.Phone,
		client.Address, client.City, client.State, client.PostalCode, client.Country,
		client.Notes, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("clientRepo.Create: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := exec(ctx, r.db).GetContext(ctx, &client,
		"SELECT * FROM clients WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByID: %w", err)
	}
	return &client, nil
}

func (r *clientRepo) List(ctx context.Context, search string, offset, limit int) ([]domain.Client, int, error) {
	q := exec(ctx, r.db)

	where := ""
	args := []interface{}{}
	if search != "" {
		where = " WHERE name ILIKE $1 OR company_name ILIKE $1 OR email ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := q.GetContext(ctx, &total, "SELECT COUNT(*) FROM clients"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("clientRepo.List count: %w", err)
	}

	limitPos := len(args) + 1
	args = append(args, limit, offset)
	var clients []domain.Client
	err := q.SelectContext(ctx, &clients,
		fmt.Sprintf("SELECT * FROM clients%s ORDER BY name LIMIT $%d OFFSET $%d", where, limitPos, limitPos+1),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("clientRepo.List: %w", err)
	}
	return clients, total, nil
}

func (r *clientRepo) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()
	result, err := exec(ctx, r.db).ExecContext(ctx,
		`UPDATE clients SET name = $1, company_name = $2, email = $3, phone = $4, address = $5,
			city = $6, state = $7, postal_code = $8, country = $9, notes = $10, updated_at = $11
		 WHERE id = $12`,
		client.Name, client.CompanyName, client.Email, client.Phone, client.Address,
		client.City, client.State, client.PostalCode, client.Country, client.Notes,
		client.UpdatedAt, client.ID)
	if err != nil {
		return fmt.Errorf("clientRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := exec(ctx, r.db).ExecContext(ctx,
		"DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("clientRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
