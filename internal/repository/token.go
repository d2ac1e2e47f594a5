package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sejoli-paypal-gateway/internal/model"
)

type TokenRepository interface {
	Get(ctx context.Context, environment string) (*model.TokenState, error)
	// Save upserts the token row for an environment. Concurrent renewals
	// are last-writer-wins; tokens are interchangeable while valid.
	Save(ctx context.Context, environment, accessToken string, expiresAt time.Time) error
}

type tokenRepoImpl struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepoImpl{
		db: db,
	}
}

func (r *tokenRepoImpl) Get(ctx context.Context, environment string) (*model.TokenState, error) {
	var state model.TokenState
	err := r.db.WithContext(ctx).
		Where("environment = ?", environment).
		First(&state).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &state, nil
}

func (r *tokenRepoImpl) Save(ctx context.Context, environment, accessToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "environment"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"access_token": accessToken,
			"expires_at":   expiresAt,
			"updated_at":   time.Now(),
		}),
	}).Create(&model.TokenState{
		Environment: environment,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		UpdatedAt:   time.Now(),
	}).Error
}
