package middleware

import "github.com/labstack/echo/v4"

// IPNIntercept dispatches any request carrying a truthy paypal-ipn query
// parameter straight to the notification handler, before routing. The
// handler runs at most once per request and no further dispatch happens
// for it.
func IPNIntercept(handler echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if v := c.QueryParam("paypal-ipn"); v != "" && v != "0" {
				return handler(c)
			}
			return next(c)
		}
	}
}
