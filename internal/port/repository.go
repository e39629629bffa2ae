package port

import (
	"context"

	"cverve/internal/domain"
)

// UserRepository defines the contract for user balance persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.UserBalance) error
	GetByID(ctx context.Context, userID string) (*domain.UserBalance, error)
}

// LedgerRepository defines the contract for the payment ledger.
//
// RecordPayment must insert rec and increment the user's balance by rec.Amount in one
// transaction, creating the balance row on first reference. A second record for the same
// TransactionID must fail with domain.ErrDuplicatePayment; the store enforces this with a
// uniqueness constraint, not only an application-level check.
type LedgerRepository interface {
	RecordPayment(ctx context.Context, rec *domain.PaymentRecord) (newBalance float64, err error)
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.PaymentRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.PaymentRecord, int, error)
}
