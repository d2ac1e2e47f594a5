package dto

// IPNRequest is the form body PayPal's notification bridge posts to us:
// a JSON-encoded string plus its hex HMAC-SHA256 signature.
type IPNRequest struct {
	Data string `form:"data" validate:"required"`
	Hash string `form:"hash" validate:"required,hexadecimal"`
}

// IPNResponse mirrors the success/failure body the signer expects.
type IPNResponse struct {
	Success int    `json:"success"`
	Msg     string `json:"msg,omitempty"`
}

// CheckoutQuery carries the redirect params PayPal appends when the buyer
// returns from the approval page. All three are present or the request is
// treated as a fresh checkout entry.
type CheckoutQuery struct {
	PaymentID string `query:"paymentId"`
	Token     string `query:"token"`
	PayerID   string `query:"PayerID"`
}

// Approved reports whether this is a return-with-approval request.
func (q *CheckoutQuery) Approved() bool {
	return q.PaymentID != "" && q.Token != "" && q.PayerID != ""
}
