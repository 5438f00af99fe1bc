package receipts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
)

// Receipt is the durable record of a captured payment. One row per capture;
// the redis mirror of the latest receipt per session is a convenience cache,
// this table is the source of truth.
type Receipt struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	IntentID      string    `gorm:"uniqueIndex;size:64" json:"intent_id"`
	TransactionID string    `gorm:"size:64" json:"transaction_id"`
	OrderID       int64     `gorm:"index" json:"order_id"`
	SessionID     string    `gorm:"index;size:64" json:"session_id"`
	Email         string    `gorm:"size:255" json:"email"`
	Amount        string    `gorm:"size:32" json:"amount"`
	Currency      string    `gorm:"size:8" json:"currency"`
	CapturedAt    time.Time `json:"captured_at"`
}

// Repository persists capture receipts.
type Repository struct {
	conn *gorm.DB
}

// NewRepository builds the receipt repository and migrates its table.
func NewRepository(conn *gorm.DB) (*Repository, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	if err := conn.AutoMigrate(&Receipt{}); err != nil {
		return nil, fmt.Errorf("migrating receipts: %w", err)
	}
	return &Repository{conn: conn}, nil
}

// Create stores a new receipt row.
func (r *Repository) Create(ctx context.Context, receipt *Receipt) error {
	if receipt == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "receipt is required")
	}
	if receipt.IntentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "receipt intent id is required")
	}
	if receipt.CapturedAt.IsZero() {
		receipt.CapturedAt = time.Now().UTC()
	}
	if err := r.conn.WithContext(ctx).Create(receipt).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist receipt")
	}
	return nil
}

// ByIntentID returns the receipt for a payment intent, if one was recorded.
func (r *Repository) ByIntentID(ctx context.Context, intentID string) (*Receipt, error) {
	var receipt Receipt
	err := r.conn.WithContext(ctx).Where("intent_id = ?", intentID).First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receipt not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receipt")
	}
	return &receipt, nil
}

// LatestBySession returns the most recent receipt captured for a session.
func (r *Repository) LatestBySession(ctx context.Context, sessionID string) (*Receipt, error) {
	var receipt Receipt
	err := r.conn.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("captured_at DESC").
		First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no receipts for session")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session receipts")
	}
	return &receipt, nil
}
