package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/gommon/log"

	"sejoli-paypal-gateway/internal/config"
	"sejoli-paypal-gateway/internal/dto"
	"sejoli-paypal-gateway/internal/model"
	"sejoli-paypal-gateway/internal/repository"
)

// ErrUnknownInvoice means the notified invoice id does not start with the
// configured prefix or carries no positive numeric order id after it.
var ErrUnknownInvoice = errors.New("invoice id does not match configured prefix")

// IPNService validates inbound payment notifications and applies the
// order-status transition the action code asks for. Validation failures
// never mutate anything; a valid replay of an already-applied
// notification is a no-op.
type IPNService interface {
	Handle(ctx context.Context, req *dto.IPNRequest) *dto.IPNResponse
}

type ipnServiceImpl struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	affiliateRepo repository.AffiliateRepository
	eventLog      repository.EventLogRepository
	secret        string
	invoicePrefix string
	logger        *log.Logger
}

func NewIPNService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	affiliateRepo repository.AffiliateRepository,
	eventLog repository.EventLogRepository,
	paypalCfg *config.Paypal,
) IPNService {
	return &ipnServiceImpl{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		affiliateRepo: affiliateRepo,
		eventLog:      eventLog,
		secret:        paypalCfg.IPNSecret(),
		invoicePrefix: paypalCfg.InvoicePrefix,
		logger:        log.New("ipn"),
	}
}

// ipnData is the notification body after signature verification.
type ipnData struct {
	Action    model.IPNAction `json:"action"`
	InvoiceID string          `json:"invoice_id"`
}

func (s *ipnServiceImpl) Handle(ctx context.Context, req *dto.IPNRequest) *dto.IPNResponse {
	computed, ok := s.verify(req.Data, req.Hash)
	if !ok {
		s.writeEvent(ctx, "ipn-paypal-failed", map[string]interface{}{
			"payload":  req.Data,
			"hash":     req.Hash,
			"calcHash": computed,
			"key":      s.secret,
		})
		return &dto.IPNResponse{Success: 0, Msg: "invalid data"}
	}

	var data ipnData
	if err := json.Unmarshal([]byte(req.Data), &data); err != nil {
		// a verified body that is not an object carries no action; ack it
		s.logger.Infof("ignoring ipn with non-object body: %v", err)
		data = ipnData{}
	}

	switch data.Action {
	case model.ActionPaymentCompleted:
		if err := s.completeOrder(ctx, data.InvoiceID); err != nil {
			s.logger.Warnf("complete order for invoice %s: %v", data.InvoiceID, err)
			s.writeEvent(ctx, "paypal-wrong-order", map[string]interface{}{
				"invoice_id": data.InvoiceID,
				"error":      err.Error(),
			})
		}
	case model.ActionCommissionPaid:
		if err := s.payCommission(ctx, data.InvoiceID); err != nil {
			s.logger.Warnf("pay commission for invoice %s: %v", data.InvoiceID, err)
			s.writeEvent(ctx, "paypal-wrong-order", map[string]interface{}{
				"invoice_id": data.InvoiceID,
				"error":      err.Error(),
			})
		}
	default:
		// unknown action codes are acknowledged without mutation
		s.logger.Infof("ignoring ipn action %d for invoice %s", data.Action, data.InvoiceID)
	}

	s.writeEvent(ctx, "ipn-paypal-success", map[string]interface{}{
		"payload": req.Data,
		"hash":    req.Hash,
	})

	return &dto.IPNResponse{Success: 1}
}

// verify recomputes the HMAC over the canonicalized body and compares it
// against the provided hex signature in constant time. It returns the
// computed hex for forensic logging.
func (s *ipnServiceImpl) verify(data, providedHex string) (string, bool) {
	canonical, err := canonicalize(data)
	if err != nil {
		return "", false
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(canonical)
	computed := mac.Sum(nil)

	provided, err := hex.DecodeString(providedHex)
	if err != nil {
		return hex.EncodeToString(computed), false
	}

	return hex.EncodeToString(computed), hmac.Equal(computed, provided)
}

// canonicalize re-serializes the JSON body deterministically: decoding
// and re-marshalling sorts object keys at every level, so signer and
// verifier agree on the exact bytes regardless of the order the sender
// used. The signer must canonicalize the same way. Any valid JSON value
// canonicalizes, not just objects.
func canonicalize(data string) ([]byte, error) {
	var decoded interface{}
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		return nil, fmt.Errorf("decode ipn data: %w", err)
	}

	return json.Marshal(decoded)
}

func (s *ipnServiceImpl) completeOrder(ctx context.Context, invoiceID string) error {
	orderID, err := ExtractOrderID(invoiceID, s.invoicePrefix)
	if err != nil {
		return err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %d: %w", orderID, err)
	}

	product, err := s.productRepo.FindByID(ctx, order.ProductID)
	if err != nil {
		// do not guess the target status; the notification can be re-sent
		return fmt.Errorf("load product %d: %w", order.ProductID, err)
	}

	target := model.OrderCompleted
	if product.RequiresShipment {
		target = model.OrderInProgress
	}

	changed, err := s.orderRepo.AdvanceStatus(ctx, orderID, target,
		model.OrderOnHold, model.OrderPaymentConfirm)
	if err != nil {
		return fmt.Errorf("advance order %d: %w", orderID, err)
	}
	if changed == 0 {
		// replay or already-terminal order; forward-only transitions make
		// this a no-op
		s.logger.Infof("order %d already past %s", orderID, target)
		return nil
	}

	s.writeEvent(ctx, "paypal-update-order", map[string]interface{}{
		"order_id": orderID,
		"status":   target,
	})

	return nil
}

func (s *ipnServiceImpl) payCommission(ctx context.Context, invoiceID string) error {
	orderID, err := ExtractOrderID(invoiceID, s.invoicePrefix)
	if err != nil {
		return err
	}

	if _, err := s.affiliateRepo.MarkPaid(ctx, orderID); err != nil {
		return fmt.Errorf("mark commission paid for order %d: %w", orderID, err)
	}

	return nil
}

// ExtractOrderID strips the configured invoice prefix and parses the
// remaining positive integer order id.
func ExtractOrderID(invoiceID, prefix string) (uint, error) {
	if prefix == "" || !strings.HasPrefix(invoiceID, prefix) {
		return 0, ErrUnknownInvoice
	}

	id, err := strconv.ParseUint(invoiceID[len(prefix):], 10, 64)
	if err != nil || id == 0 {
		return 0, ErrUnknownInvoice
	}

	return uint(id), nil
}

func (s *ipnServiceImpl) writeEvent(ctx context.Context, event string, payload interface{}) {
	if err := s.eventLog.Write(ctx, event, payload); err != nil {
		s.logger.Errorf("write event %s: %v", event, err)
	}
}
