package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/models"
)

// Receipt is a locally journaled payment confirmation. The commerce
// backend owns orders; this journal exists so confirmed payments can be
// reconciled even if the post-confirmation bookkeeping fails.
type Receipt struct {
	ID         int64
	OrderID    string
	PaymentKey string
	UserID     string
	Amount     int64
	Method     string
	Status     string
	ApprovedAt time.Time
	CreatedAt  time.Time
}

// ReceiptStore persists payment confirmations.
type ReceiptStore interface {
	Save(ctx context.Context, userID string, record *models.PaymentRecord) error
	GetByOrderID(ctx context.Context, orderID string) (*Receipt, error)
}

// Ensure PostgresReceiptStore implements ReceiptStore.
var _ ReceiptStore = (*PostgresReceiptStore)(nil)

// PostgresReceiptStore implements ReceiptStore on PostgreSQL.
type PostgresReceiptStore struct {
	db     *sql.DB
	logger *logrus.Entry
}

// NewPostgresReceiptStore creates a PostgreSQL receipt store.
func NewPostgresReceiptStore(db *sql.DB, logger *logrus.Entry) *PostgresReceiptStore {
	return &PostgresReceiptStore{db: db, logger: logger}
}

// Save journals one confirmation. Saving the same order twice is a no-op;
// the provider redirect can be replayed.
func (s *PostgresReceiptStore) Save(ctx context.Context, userID string, record *models.PaymentRecord) error {
	query := `
		INSERT INTO payment_receipts
			(order_id, payment_key, user_id, amount, method, status, approved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (order_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		record.OrderID,
		record.PaymentKey,
		userID,
		record.Amount,
		record.Method,
		record.Status,
		record.ApprovedAt,
	)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id": record.OrderID,
			"error":    err.Error(),
		}).Error("failed to journal payment receipt")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": record.OrderID,
		"amount":   record.Amount,
	}).Info("payment receipt journaled")
	return nil
}

// GetByOrderID fetches the journaled confirmation for an order.
func (s *PostgresReceiptStore) GetByOrderID(ctx context.Context, orderID string) (*Receipt, error) {
	query := `
		SELECT id, order_id, payment_key, user_id, amount, method, status, approved_at, created_at
		FROM payment_receipts
		WHERE order_id = $1
	`

	var r Receipt
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(
		&r.ID,
		&r.OrderID,
		&r.PaymentKey,
		&r.UserID,
		&r.Amount,
		&r.Method,
		&r.Status,
		&r.ApprovedAt,
		&r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// MockReceiptStore is an in-memory implementation for tests.
type MockReceiptStore struct {
	Saved map[string]*models.PaymentRecord
}

// NewMockReceiptStore creates a mock receipt store.
func NewMockReceiptStore() *MockReceiptStore {
	return &MockReceiptStore{Saved: make(map[string]*models.PaymentRecord)}
}

func (m *MockReceiptStore) Save(ctx context.Context, userID string, record *models.PaymentRecord) error {
	if _, ok := m.Saved[record.OrderID]; ok {
		return nil
	}
	m.Saved[record.OrderID] = record
	return nil
}

func (m *MockReceiptStore) GetByOrderID(ctx context.Context, orderID string) (*Receipt, error) {
	record, ok := m.Saved[orderID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &Receipt{
		OrderID:    record.OrderID,
		PaymentKey: record.PaymentKey,
		Amount:     record.Amount,
		Method:     record.Method,
		Status:     record.Status,
		ApprovedAt: record.ApprovedAt,
	}, nil
}
