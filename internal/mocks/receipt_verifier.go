package mocks

import (
	"context"
	"sync"
)

// MockReceiptVerifier implements service.ReceiptVerifier for testing
type MockReceiptVerifier struct {
	// VerifyFn overrides the default behavior when set
	VerifyFn func(ctx context.Context, receipt string, userID string) error

	// Err is returned when VerifyFn is nil
	Err error

	mu       sync.Mutex
	Receipts []string
}

// Verify implements service.ReceiptVerifier
func (m *MockReceiptVerifier) Verify(ctx context.Context, receipt string, userID string) error {
	m.mu.Lock()
	m.Receipts = append(m.Receipts, receipt)
	m.mu.Unlock()

	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, receipt, userID)
	}
	return m.Err
}
