package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"billora/internal/port"
)

type txKey struct{}

// txFrom returns the transaction carried by ctx, if any.
func txFrom(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}

// exec resolves the executor for ctx: the context transaction when present,
// the pool otherwise.
func exec(ctx context.Context, db *sqlx.DB) queryer {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return db
}

type txManager struct {
	db *sqlx.DB
}

// NewTxManager creates a TxManager backed by the given pool.
func NewTxManager(db *sqlx.DB) port.TxManager {
	return &txManager{db: db}
}

// RunInTx begins a transaction, stores it in the context, and runs fn.
// A nested call joins the ongoing transaction instead of opening a new one.
// The transaction commits only if fn returns nil; any error rolls back
// everything, so no step of a multi-step mutation is observable alone.
func (m *txManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
