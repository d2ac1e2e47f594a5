package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"sejoli-paypal-gateway/internal/dto"
	"sejoli-paypal-gateway/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *log.Logger
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         log.New("checkout"),
	}
}

// Checkout is both the entry into the PayPal flow and the return target
// after the buyer approves: PayPal appends paymentId, token and PayerID
// to the same url.
func (h *PaymentHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.String(http.StatusBadRequest, "invalid order id")
	}

	var q dto.CheckoutQuery
	if err := c.Bind(&q); err != nil {
		return c.String(http.StatusBadRequest, "invalid request")
	}

	result, err := h.paymentService.Checkout(ctx, uint(orderID), &q)
	if err != nil {
		h.logger.Errorf("checkout order %d: %v", orderID, err)
		return c.HTML(http.StatusInternalServerError, errorPage)
	}

	if result.Redirect != "" {
		return c.Redirect(http.StatusFound, result.Redirect)
	}

	switch result.Page {
	case service.PageCancelled:
		return c.HTML(http.StatusOK, cancelledPage)
	case service.PageFailure:
		return c.HTML(http.StatusOK, failurePage)
	default:
		return c.HTML(http.StatusOK, processedPage)
	}
}

// ThankYou renders the post-payment landing page.
func (h *PaymentHandler) ThankYou(c echo.Context) error {
	orderID := c.QueryParam("order_id")

	return c.HTML(http.StatusOK, fmt.Sprintf(thankYouPage, orderID))
}

const errorPage = `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Terjadi kesalahan</title>
	</head>
	<body>
		<h2>Terjadi kesalahan</h2>
		<p>Terjadi kesalahan saat request ke Paypal. Silahkan kontak pemilik website ini.</p>
	</body>
	</html>
	`

const cancelledPage = `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Order telah dibatalkan</title>
	</head>
	<body>
		<h2>Order telah dibatalkan</h2>
		<p>Order ini sudah dibatalkan atau di-refund. Tidak ada pembayaran yang perlu dilakukan.</p>
	</body>
	</html>
	`

const processedPage = `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Order sudah diproses</title>
	</head>
	<body>
		<h2>Order sudah diproses</h2>
		<p>Pembayaran untuk order ini sudah kami terima dan sedang diproses.</p>
	</body>
	</html>
	`

const failurePage = `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Pembayaran gagal</title>
	</head>
	<body>
		<h2>Pembayaran gagal</h2>
		<p>Paypal tidak menyetujui pembayaran ini. Silahkan ulangi checkout atau kontak pemilik website ini.</p>
	</body>
	</html>
	`

const thankYouPage = `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Terima kasih</title>
	</head>
	<body>
		<h2>Terima kasih</h2>
		<p>Pembayaran untuk order %s sudah kami terima.</p>
	</body>
	</html>
	`
