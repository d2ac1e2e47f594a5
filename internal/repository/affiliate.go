package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sejoli-paypal-gateway/internal/model"
)

type AffiliateRepository interface {
	FindByOrderID(ctx context.Context, orderID uint) (*model.AffiliateCommission, error)
	MarkPaid(ctx context.Context, orderID uint) (int64, error)
}

type affiliateRepoImpl struct {
	db *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &affiliateRepoImpl{
		db: db,
	}
}

func (r *affiliateRepoImpl) FindByOrderID(ctx context.Context, orderID uint) (*model.AffiliateCommission, error) {
	var comm model.AffiliateCommission
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&comm).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &comm, nil
}

func (r *affiliateRepoImpl) MarkPaid(ctx context.Context, orderID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.AffiliateCommission{}).
		Where("order_id = ?", orderID).
		Update("paid_status", 1)

	return result.RowsAffected, result.Error
}
