package model

import "time"

// Host order statuses.
const (
	OrderPending        = "pending"
	OrderOnHold         = "on-hold" // awaiting payment confirmation
	OrderPaymentConfirm = "payment-confirm"
	OrderPaid           = "paid"
	OrderInProgress     = "in-progress"
	OrderCompleted      = "completed"
	OrderRefunded       = "refunded"
	OrderCancelled      = "cancelled"
)

// Order types.
const (
	OrderTypeRegular      = "regular"
	OrderTypeSubscription = "subscription-regular"
)

type Product struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"size:255;not null"`
	Slug    string `gorm:"size:255;index;not null"` // sku sent to paypal
	Excerpt string `gorm:"size:255"`
	Price   float64

	RequiresShipment bool

	// Subscription terms, zero-valued for one-off products.
	SubscriptionPrice    float64
	SubscriptionDuration int32
	SubscriptionPeriod   string `gorm:"size:16"` // day, week, month, year
}

type Order struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"index;not null"`
	Status    string `gorm:"size:32;index;not null"`
	Type      string `gorm:"size:32;not null"`

	GrandTotal float64 // IDR
	Quantity   int32   `gorm:"not null"`
	Currency   string  `gorm:"size:8;not null"`

	// Buyer profile, used as recipient for digital orders.
	BuyerName    string `gorm:"size:128"`
	BuyerAddress string `gorm:"size:255"`
	BuyerPhone   string `gorm:"size:32"`

	// Shipping meta, populated only when the product ships.
	ShippingReceiver string `gorm:"size:128"`
	ShippingPhone    string `gorm:"size:32"`
	ShippingCost     float64
	ShippingCity     string `gorm:"size:128"`
	ShippingProvince string `gorm:"size:128"`

	AffiliateID *uint `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequiresShipment reports whether the order carries physical shipping data.
func (o *Order) RequiresShipment() bool {
	return o.ShippingReceiver != "" || o.ShippingCost > 0
}

type AffiliateCommission struct {
	ID         uint `gorm:"primaryKey"`
	OrderID    uint `gorm:"index;not null"`
	Commission float64
	PaidStatus int32 `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
