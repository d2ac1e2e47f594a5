package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"sejoli-paypal-gateway/internal/client"
	"sejoli-paypal-gateway/internal/config"
	"sejoli-paypal-gateway/internal/dto"
	"sejoli-paypal-gateway/internal/model"
	"sejoli-paypal-gateway/internal/repository"
)

// ErrMissingApprovalURL means PayPal accepted the payment but its response
// carried no approval link, so there is nowhere to send the buyer.
var ErrMissingApprovalURL = errors.New("paypal response has no approval url")

// Terminal pages the checkout flow can land on instead of a redirect.
const (
	PageCancelled = "cancelled"
	PageProcessed = "processed"
	PageFailure   = "failure"
)

// CheckoutResult tells the handler what to do with the buyer: follow
// Redirect when set, otherwise render the named terminal page.
type CheckoutResult struct {
	Redirect string
	Page     string
}

// PaymentService drives the per-order checkout state machine: build and
// send the create-payment request, persist the transaction, and on return
// from PayPal execute the approved payment.
type PaymentService interface {
	Checkout(ctx context.Context, orderID uint, q *dto.CheckoutQuery) (*CheckoutResult, error)
}

type paymentServiceImpl struct {
	paypalClient  client.PaypalClient
	rateClient    client.ExchangeRateClient
	tokenCache    TokenCache
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	trxRepo       repository.TransactionRepository
	affiliateRepo repository.AffiliateRepository
	eventLog      repository.EventLogRepository
	paypalCfg     *config.Paypal
	baseURL       string
	logger        *log.Logger
}

func NewPaymentService(
	paypalClient client.PaypalClient,
	rateClient client.ExchangeRateClient,
	tokenCache TokenCache,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	trxRepo repository.TransactionRepository,
	affiliateRepo repository.AffiliateRepository,
	eventLog repository.EventLogRepository,
	paypalCfg *config.Paypal,
	baseURL string,
) PaymentService {
	return &paymentServiceImpl{
		paypalClient:  paypalClient,
		rateClient:    rateClient,
		tokenCache:    tokenCache,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		trxRepo:       trxRepo,
		affiliateRepo: affiliateRepo,
		eventLog:      eventLog,
		paypalCfg:     paypalCfg,
		baseURL:       baseURL,
		logger:        log.New("payment"),
	}
}

// transactionPayload is the opaque blob stored per transaction: the urls
// the flow needs later plus the last raw API response.
type transactionPayload struct {
	PaymentURL        string          `json:"paymentUrl"`
	ExecutePaymentURL string          `json:"executePaymentUrl"`
	Response          json.RawMessage `json:"response"`
}

func (s *paymentServiceImpl) Checkout(ctx context.Context, orderID uint, q *dto.CheckoutQuery) (*CheckoutResult, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", orderID, err)
	}

	switch order.Status {
	case model.OrderOnHold:
		// fall through to the payment flow
	case model.OrderRefunded, model.OrderCancelled:
		return &CheckoutResult{Page: PageCancelled}, nil
	default:
		// already processed, nothing to do
		return &CheckoutResult{Page: PageProcessed}, nil
	}

	if q != nil && q.Approved() {
		return s.executeApproved(ctx, order, q.PayerID)
	}

	return s.createPayment(ctx, order)
}

func (s *paymentServiceImpl) createPayment(ctx context.Context, order *model.Order) (*CheckoutResult, error) {
	product, err := s.productRepo.FindByID(ctx, order.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", order.ProductID, err)
	}

	rate, err := s.rateClient.IDRPerUSD(ctx)
	if err != nil {
		return nil, fmt.Errorf("exchange rate lookup: %w", err)
	}

	if order.AffiliateID != nil {
		comm, err := s.affiliateRepo.FindByOrderID(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("load affiliate commission: %w", err)
		}
		if comm == nil {
			s.logger.Warnf("order %d has affiliate %d but no commission row", order.ID, *order.AffiliateID)
		}
	}

	token, err := s.tokenCache.GetOrRenew(ctx)
	if err != nil {
		s.writeEvent(ctx, "error-paypal", map[string]interface{}{
			"reason":   "empty token",
			"order_id": order.ID,
		})
		return nil, err
	}

	payment := s.buildPaymentRequest(order, product, rate)

	result, err := s.paypalClient.CreatePayment(ctx, token, payment)
	if err != nil {
		s.writeEvent(ctx, "error-paypal", map[string]interface{}{
			"reason":   err.Error(),
			"order_id": order.ID,
		})
		return nil, fmt.Errorf("paypal create payment: %w", err)
	}

	if _, err := s.trxRepo.Create(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("store transaction: %w", err)
	}

	payload, err := json.Marshal(&transactionPayload{
		PaymentURL:        result.PaymentURL,
		ExecutePaymentURL: result.ExecuteURL,
		Response:          result.Raw,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal transaction payload: %w", err)
	}
	if err := s.trxRepo.UpdatePayload(ctx, order.ID, payload); err != nil {
		return nil, fmt.Errorf("store transaction payload: %w", err)
	}

	if result.PaymentURL == "" {
		s.writeEvent(ctx, "error-paypal", map[string]interface{}{
			"reason":   "missing approval url",
			"order_id": order.ID,
		})
		return nil, ErrMissingApprovalURL
	}

	return &CheckoutResult{Redirect: result.PaymentURL}, nil
}

func (s *paymentServiceImpl) executeApproved(ctx context.Context, order *model.Order, payerID string) (*CheckoutResult, error) {
	trx, err := s.trxRepo.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load transaction for order %d: %w", order.ID, err)
	}

	var payload transactionPayload
	if err := json.Unmarshal([]byte(trx.Payload), &payload); err != nil {
		return nil, fmt.Errorf("decode transaction payload: %w", err)
	}
	if payload.ExecutePaymentURL == "" {
		return nil, fmt.Errorf("transaction for order %d has no execute url", order.ID)
	}

	token, err := s.tokenCache.GetOrRenew(ctx)
	if err != nil {
		s.writeEvent(ctx, "error-paypal", map[string]interface{}{
			"reason":   "empty token",
			"order_id": order.ID,
		})
		return nil, err
	}

	result, err := s.paypalClient.ExecutePayment(ctx, token, payload.ExecutePaymentURL, payerID)
	if err != nil {
		return nil, fmt.Errorf("paypal execute payment: %w", err)
	}

	payload.Response = result.Raw
	if raw, err := json.Marshal(&payload); err == nil {
		if err := s.trxRepo.UpdatePayload(ctx, order.ID, raw); err != nil {
			s.logger.Errorf("store execute payload for order %d: %v", order.ID, err)
		}
	}

	if result.State != "approved" {
		if err := s.trxRepo.UpdateStatus(ctx, order.ID, model.TrxFailed); err != nil {
			return nil, fmt.Errorf("mark transaction failed: %w", err)
		}
		s.writeEvent(ctx, "error-paypal", map[string]interface{}{
			"reason":   "execute state " + result.State,
			"order_id": order.ID,
		})
		return &CheckoutResult{Page: PageFailure}, nil
	}

	// resolve the target status before mutating anything, so a failed
	// lookup leaves the order on-hold and the checkout retryable
	product, err := s.productRepo.FindByID(ctx, order.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", order.ProductID, err)
	}
	target := model.OrderCompleted
	if product.RequiresShipment {
		target = model.OrderInProgress
	}

	if err := s.trxRepo.UpdateStatus(ctx, order.ID, model.TrxPaid); err != nil {
		return nil, fmt.Errorf("mark transaction paid: %w", err)
	}

	if _, err := s.orderRepo.AdvanceStatus(ctx, order.ID, model.OrderPaymentConfirm, model.OrderOnHold); err != nil {
		return nil, fmt.Errorf("advance order %d: %w", order.ID, err)
	}
	if _, err := s.orderRepo.AdvanceStatus(ctx, order.ID, target, model.OrderPaymentConfirm); err != nil {
		return nil, fmt.Errorf("advance order %d: %w", order.ID, err)
	}

	s.writeEvent(ctx, "paypal-update-order", map[string]interface{}{
		"order_id": order.ID,
		"status":   target,
	})

	return &CheckoutResult{
		Redirect: fmt.Sprintf("%s/checkout/thank-you?order_id=%d", s.baseURL, order.ID),
	}, nil
}

func (s *paymentServiceImpl) buildPaymentRequest(order *model.Order, product *model.Product, rate decimal.Decimal) *model.PaymentRequest {
	returnURL := fmt.Sprintf("%s/checkout/%d", s.baseURL, order.ID)
	invoiceNumber := s.paypalCfg.InvoicePrefix + fmt.Sprint(order.ID)

	grandTotal := convertIDRToUSD(order.GrandTotal, rate)

	var (
		shipping        decimal.Decimal
		subtotal        decimal.Decimal
		shippingAddress *model.ShippingAddress
	)

	if order.RequiresShipment() {
		shipping = convertIDRToUSD(order.ShippingCost, rate)
		subtotal = grandTotal.Sub(shipping)
		shippingAddress = &model.ShippingAddress{
			RecipientName: order.ShippingReceiver,
			Line1:         order.BuyerAddress,
			City:          order.ShippingCity,
			CountryCode:   "ID",
			Phone:         order.ShippingPhone,
			State:         order.ShippingProvince,
		}
	} else {
		// Subscription and one-off orders price identically here: the
		// grand total already carries any signup fee.
		shipping = decimal.Zero
		subtotal = grandTotal
	}

	return &model.PaymentRequest{
		Intent: "sale",
		Payer:  model.PaymentPayer{PaymentMethod: "paypal"},
		Transactions: []model.PaymentTransaction{
			{
				Amount: model.Amount{
					Total:    grandTotal.StringFixed(2),
					Currency: "USD",
					Details: model.AmountDetails{
						Subtotal:         subtotal.StringFixed(2),
						Tax:              "0.00",
						Shipping:         shipping.StringFixed(2),
						HandlingFee:      "0.00",
						ShippingDiscount: "0.00",
						Insurance:        "0.00",
					},
				},
				Description:    "Payment Transaction Succeded.",
				Custom:         "payment-" + invoiceNumber,
				InvoiceNumber:  invoiceNumber,
				PaymentOptions: model.PaymentOptions{AllowedPaymentMethod: "INSTANT_FUNDING_SOURCE"},
				SoftDescriptor: "ECHI5786786",
				ItemList: model.ItemList{
					Items: []model.SaleItem{
						{
							Name:        product.Name,
							Description: product.Excerpt,
							Quantity:    fmt.Sprint(order.Quantity),
							Price:       subtotal.StringFixed(2),
							Tax:         "0.00",
							Sku:         product.Slug,
							Currency:    "USD",
						},
					},
					ShippingAddress: shippingAddress,
				},
			},
		},
		NoteToPayer: "Contact us for any questions on your order.",
		RedirectUrls: model.RedirectUrls{
			ReturnURL: returnURL,
			CancelURL: returnURL,
		},
	}
}

func (s *paymentServiceImpl) writeEvent(ctx context.Context, event string, payload interface{}) {
	if err := s.eventLog.Write(ctx, event, payload); err != nil {
		s.logger.Errorf("write event %s: %v", event, err)
	}
}

// convertIDRToUSD divides a rupiah amount by the IDR-per-USD rate and
// rounds half away from zero to 2 decimals.
func convertIDRToUSD(amountIDR float64, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(amountIDR).Div(rate).Round(2)
}
