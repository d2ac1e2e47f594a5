package server

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"sejoli-paypal-gateway/internal/handler"
	gwmiddleware "sejoli-paypal-gateway/internal/middleware"
	"sejoli-paypal-gateway/internal/service"
)

type Server struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
	ipnHandler     *handler.IPNHandler
}

type echoValidator struct {
	validate *validator.Validate
}

func (v *echoValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(paymentService service.PaymentService, ipnService service.IPNService) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = &echoValidator{validate: validator.New()}

	paymentHandler := handler.NewPaymentHandler(paymentService)
	ipnHandler := handler.NewIPNHandler(ipnService)

	// Inbound notifications are flagged by a reserved query parameter and
	// short-circuit normal routing entirely.
	e.Pre(gwmiddleware.IPNIntercept(ipnHandler.Handle))

	s := &Server{
		echo:           e,
		paymentHandler: paymentHandler,
		ipnHandler:     ipnHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- paypal checkout flow --------
	checkout := s.echo.Group("/checkout")
	checkout.GET("/thank-you", s.paymentHandler.ThankYou)
	checkout.GET("/:order_id", s.paymentHandler.Checkout)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
