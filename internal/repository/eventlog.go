package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"sejoli-paypal-gateway/internal/model"
)

// EventLogRepository is the persistent sink for gateway events: ipn
// verification results, paypal errors, order status changes.
type EventLogRepository interface {
	Write(ctx context.Context, event string, payload interface{}) error
	FindByEvent(ctx context.Context, event string) ([]*model.EventLog, error)
}

type eventLogRepoImpl struct {
	db *gorm.DB
}

func NewEventLogRepository(db *gorm.DB) EventLogRepository {
	return &eventLogRepoImpl{db: db}
}

func (r *eventLogRepoImpl) Write(ctx context.Context, event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(`{}`)
	}

	return r.db.WithContext(ctx).Create(&model.EventLog{
		Event:   event,
		Payload: string(raw),
	}).Error
}

func (r *eventLogRepoImpl) FindByEvent(ctx context.Context, event string) ([]*model.EventLog, error) {
	var logs []*model.EventLog
	err := r.db.WithContext(ctx).
		Where("event = ?", event).
		Order("id").
		Find(&logs).Error

	if err != nil {
		return nil, err
	}

	return logs, nil
}
