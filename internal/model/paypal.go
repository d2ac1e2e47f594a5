package model

// PayPal v1 payments wire types. All monetary fields are 2-decimal strings,
// as the API expects.

type PaypalLink struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

type PaymentPayer struct {
	PaymentMethod string `json:"payment_method"`
}

type AmountDetails struct {
	Subtotal         string `json:"subtotal"`
	Tax              string `json:"tax"`
	Shipping         string `json:"shipping"`
	HandlingFee      string `json:"handling_fee"`
	ShippingDiscount string `json:"shipping_discount"`
	Insurance        string `json:"insurance"`
}

type Amount struct {
	Total    string        `json:"total"`
	Currency string        `json:"currency"`
	Details  AmountDetails `json:"details"`
}

type SaleItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Tax         string `json:"tax"`
	Sku         string `json:"sku"`
	Currency    string `json:"currency"`
}

type ShippingAddress struct {
	RecipientName string `json:"recipient_name"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2"`
	City          string `json:"city"`
	CountryCode   string `json:"country_code"`
	PostalCode    string `json:"postal_code"`
	Phone         string `json:"phone"`
	State         string `json:"state"`
}

type ItemList struct {
	Items           []SaleItem       `json:"items"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
}

type PaymentOptions struct {
	AllowedPaymentMethod string `json:"allowed_payment_method"`
}

type PaymentTransaction struct {
	Amount         Amount         `json:"amount"`
	Description    string         `json:"description"`
	Custom         string         `json:"custom"`
	InvoiceNumber  string         `json:"invoice_number"`
	PaymentOptions PaymentOptions `json:"payment_options"`
	SoftDescriptor string         `json:"soft_descriptor"`
	ItemList       ItemList       `json:"item_list"`
}

type RedirectUrls struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type PaymentRequest struct {
	Intent       string               `json:"intent"`
	Payer        PaymentPayer         `json:"payer"`
	Transactions []PaymentTransaction `json:"transactions"`
	NoteToPayer  string               `json:"note_to_payer"`
	RedirectUrls RedirectUrls         `json:"redirect_urls"`
}

type PaymentResponse struct {
	ID    string       `json:"id"`
	State string       `json:"state"`
	Links []PaypalLink `json:"links"`
}

type ExecuteRequest struct {
	PayerID string `json:"payer_id"`
}

type ExecuteResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// IPN action codes delivered in the notification body.
type IPNAction int

const (
	ActionPaymentCompleted IPNAction = 1
	ActionCommissionPaid   IPNAction = 7
)
