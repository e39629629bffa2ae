package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"cverve/internal/domain"
	"cverve/internal/port"
)

// PaymentLedger records each transaction id at most once and credits the payer.
type PaymentLedger interface {
	RecordPayment(ctx context.Context, rec *domain.PaymentRecord) (float64, error)
}

type paymentLedger struct {
	repo   port.LedgerRepository
	locker port.KeyedLocker
}

// NewPaymentLedger creates a ledger that serializes work per transaction id through locker.
func NewPaymentLedger(repo port.LedgerRepository, locker port.KeyedLocker) PaymentLedger {
	return &paymentLedger{repo: repo, locker: locker}
}

// RecordPayment stores rec and returns the payer's new balance. Amounts must be positive;
// a transaction id already on the ledger yields domain.ErrDuplicatePayment.
func (l *paymentLedger) RecordPayment(ctx context.Context, rec *domain.PaymentRecord) (float64, error) {
	rec.TransactionID = strings.ToUpper(strings.TrimSpace(rec.TransactionID))
	rec.UserID = strings.TrimSpace(rec.UserID)
	if rec.TransactionID == "" || rec.UserID == "" {
		return 0, fmt.Errorf("%w: transaction id and user id are required", domain.ErrInvalidInput)
	}
	if rec.Amount <= 0 || math.IsNaN(rec.Amount) || math.IsInf(rec.Amount, 0) {
		return 0, domain.ErrInvalidAmount
	}

	unlock, err := l.locker.Lock(ctx, rec.TransactionID)
	if err != nil {
		return 0, fmt.Errorf("paymentLedger.RecordPayment: acquiring lock: %w", err)
	}
	defer unlock()

	balance, err := l.repo.RecordPayment(ctx, rec)
	if err != nil {
		return 0, err
	}
	log.Printf("paymentLedger.RecordPayment: credited %.2f to %s for %s (balance %.2f)",
		rec.Amount, rec.UserID, rec.TransactionID, balance)
	return balance, nil
}
