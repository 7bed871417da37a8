package mocks

import (
	"context"
)

// MockTxManager is a TxManager that runs the function inline with no real
// transaction, so service tests exercise the wrapped logic directly.
type MockTxManager struct {
	// Err, when set, is returned without running fn.
	Err error
}

func (m *MockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}
