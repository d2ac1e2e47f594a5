package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sejoli-paypal-gateway/internal/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	// AdvanceStatus moves an order forward, but only when its current
	// status is one of from. Returns the number of rows changed: a replayed
	// notification for an already-advanced order changes nothing.
	AdvanceStatus(ctx context.Context, orderID uint, to string, from ...string) (int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) AdvanceStatus(ctx context.Context, orderID uint, to string, from ...string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status IN ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}
