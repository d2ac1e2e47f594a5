package model

import "time"

// Gateway transaction statuses.
const (
	TrxPending = "pending"
	TrxPaid    = "paid"
	TrxFailed  = "failed"
)

// PayPal environments.
const (
	EnvSandbox = "sandbox"
	EnvLive    = "live"
)

// Transaction is the one row the gateway keeps per order: its provider-side
// status plus the last raw API response as an opaque JSON payload.
type Transaction struct {
	ID         uint   `gorm:"primaryKey"`
	OrderID    uint   `gorm:"uniqueIndex;not null"`
	Status     string `gorm:"size:32;index;not null"`
	Ref        string `gorm:"size:64"`
	Payload    string `gorm:"type:text"`
	CreatedAt  time.Time
	LastUpdate *time.Time
}

// TokenState caches one bearer token per environment. Renewal is
// last-writer-wins; tokens are fungible within their validity window.
type TokenState struct {
	Environment string `gorm:"primaryKey;size:16"`
	AccessToken string `gorm:"size:2048"`
	ExpiresAt   time.Time
	UpdatedAt   time.Time
}

// EventLog persists gateway events (ipn results, paypal errors) for forensics.
type EventLog struct {
	ID        uint   `gorm:"primaryKey"`
	Event     string `gorm:"size:64;index;not null"`
	Payload   string `gorm:"type:text"`
	CreatedAt time.Time
}
