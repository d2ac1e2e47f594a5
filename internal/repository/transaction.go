package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sejoli-paypal-gateway/internal/model"
)

// TransactionRepository keeps one row per order; the unique index on
// order_id stops state from forking.
type TransactionRepository interface {
	// Create inserts the pending row for an order. When a row already
	// exists the order is re-entering checkout, so the row is reset to
	// pending with a fresh ref and an empty payload.
	Create(ctx context.Context, orderID uint) (*model.Transaction, error)
	UpdateStatus(ctx context.Context, orderID uint, status string) error
	UpdatePayload(ctx context.Context, orderID uint, payload []byte) error
	FindByOrderID(ctx context.Context, orderID uint) (*model.Transaction, error)
}

type transactionRepoImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepoImpl{
		db: db,
	}
}

func (r *transactionRepoImpl) Create(ctx context.Context, orderID uint) (*model.Transaction, error) {
	now := time.Now()
	trx := &model.Transaction{
		OrderID:   orderID,
		Status:    model.TrxPending,
		Ref:       uuid.NewString(),
		CreatedAt: now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":      model.TrxPending,
			"ref":         trx.Ref,
			"payload":     "",
			"last_update": &now,
		}),
	}).Create(trx).Error
	if err != nil {
		return nil, err
	}

	return trx, nil
}

func (r *transactionRepoImpl) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":      status,
			"last_update": &now,
		}).Error
}

func (r *transactionRepoImpl) UpdatePayload(ctx context.Context, orderID uint, payload []byte) error {
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("order_id = ?", orderID).
		Update("payload", string(payload)).Error
}

func (r *transactionRepoImpl) FindByOrderID(ctx context.Context, orderID uint) (*model.Transaction, error) {
	var trx model.Transaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&trx).Error

	if err != nil {
		return nil, err
	}

	return &trx, nil
}
