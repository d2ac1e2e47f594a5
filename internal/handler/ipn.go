package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sejoli-paypal-gateway/internal/dto"
	"sejoli-paypal-gateway/internal/service"
)

type IPNHandler struct {
	ipnService service.IPNService
}

func NewIPNHandler(ipnService service.IPNService) *IPNHandler {
	return &IPNHandler{
		ipnService: ipnService,
	}
}

// Handle processes one inbound notification. The response is always a
// 200 with a success flag; the caller is PayPal's notification bridge,
// not an interactive user.
func (h *IPNHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.IPNRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusOK, &dto.IPNResponse{Success: 0, Msg: "invalid data"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusOK, &dto.IPNResponse{Success: 0, Msg: "invalid data"})
	}

	return c.JSON(http.StatusOK, h.ipnService.Handle(ctx, req))
}
