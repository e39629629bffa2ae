package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cverve/internal/domain"
	"cverve/internal/port"
)

type paymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo creates a new PostgreSQL-backed LedgerRepository.
func NewPaymentRepo(db *sqlx.DB) port.LedgerRepository {
	return &paymentRepo{db: db}
}

// RecordPayment inserts the payment and credits the user's balance in one transaction.
// The UNIQUE(transaction_id) constraint is the final guard against double credit.
func (r *paymentRepo) RecordPayment(ctx context.Context, rec *domain.PaymentRecord) (float64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("paymentRepo.RecordPayment: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	if err := tx.GetContext(ctx, &existing,
		tx.Rebind("SELECT COUNT(1) FROM payments WHERE transaction_id = ?"), rec.TransactionID); err != nil {
		return 0, fmt.Errorf("paymentRepo.RecordPayment: existence check: %w", err)
	}
	if existing > 0 {
		return 0, domain.ErrDuplicatePayment
	}

	now := time.Now().UTC()
	rec.ID = uuid.New()
	rec.CreatedAt = now

	insert := tx.Rebind(`INSERT INTO payments (id, transaction_id, user_id, amount, receiver_name, proof_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert,
		rec.ID, rec.TransactionID, rec.UserID, rec.Amount, rec.ReceiverName, rec.ProofKey, rec.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicatePayment
		}
		return 0, fmt.Errorf("paymentRepo.RecordPayment: insert: %w", err)
	}

	upsert := tx.Rebind(`INSERT INTO users (user_id, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = users.balance + excluded.balance, updated_at = excluded.updated_at
		RETURNING balance`)
	var balance float64
	if err := tx.QueryRowxContext(ctx, upsert, rec.UserID, rec.Amount, now, now).Scan(&balance); err != nil {
		return 0, fmt.Errorf("paymentRepo.RecordPayment: credit balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicatePayment
		}
		return 0, fmt.Errorf("paymentRepo.RecordPayment: commit: %w", err)
	}
	return balance, nil
}

func (r *paymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.PaymentRecord, error) {
	var rec domain.PaymentRecord
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`SELECT id, transaction_id, user_id, amount, receiver_name, proof_key, created_at
		FROM payments WHERE transaction_id = ?`), transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("paymentRepo.GetByTransactionID: %w", err)
	}
	return &rec, nil
}

func (r *paymentRepo) List(ctx context.Context, offset, limit int) ([]domain.PaymentRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM payments"); err != nil {
		return nil, 0, fmt.Errorf("paymentRepo.List count: %w", err)
	}

	var records []domain.PaymentRecord
	err := r.db.SelectContext(ctx, &records, r.db.Rebind(`SELECT id, transaction_id, user_id, amount, receiver_name, proof_key, created_at
		FROM payments ORDER BY created_at DESC, transaction_id LIMIT ? OFFSET ?`), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("paymentRepo.List: %w", err)
	}
	return records, total, nil
}
