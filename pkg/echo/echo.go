// Package echo mounts the merchant-side UCP routes on an echo router.
package echo

import (
	"github.com/labstack/echo/v4"

	ucp "github.com/ucp-foundation/ucp/go"
	ucphttp "github.com/ucp-foundation/ucp/go/http"
)

// Register mounts the discovery, search, and checkout routes on the given
// echo instance. The well-known discovery path is registered at the root,
// so the instance must not carry a path prefix of its own.
func Register(e *echo.Echo, svc *ucphttp.Service) {
	e.GET(ucp.WellKnownPath, func(c echo.Context) error {
		svc.Discovery(c.Response(), c.Request())
		return nil
	})

	v1 := e.Group("/ucp/v1")
	v1.GET(ucp.SearchPath, func(c echo.Context) error {
		svc.Search(c.Response(), c.Request())
		return nil
	})

	if !svc.HasCheckouts() {
		return
	}

	v1.POST("/checkouts", func(c echo.Context) error {
		svc.CheckoutCreate(c.Response(), c.Request())
		return nil
	})
	v1.GET("/checkouts/:id", func(c echo.Context) error {
		svc.CheckoutGet(c.Response(), c.Request(), c.Param("id"))
		return nil
	})
	v1.POST("/checkouts/:id/items", func(c echo.Context) error {
		svc.CheckoutAddItem(c.Response(), c.Request(), c.Param("id"))
		return nil
	})
	v1.PATCH("/checkouts/:id/items/:productId", func(c echo.Context) error {
		svc.CheckoutUpdateItem(c.Response(), c.Request(), c.Param("id"), c.Param("productId"))
		return nil
	})
	v1.DELETE("/checkouts/:id/items/:productId", func(c echo.Context) error {
		svc.CheckoutRemoveItem(c.Response(), c.Request(), c.Param("id"), c.Param("productId"))
		return nil
	})
	v1.PUT("/checkouts/:id/buyer", func(c echo.Context) error {
		svc.CheckoutSetBuyer(c.Response(), c.Request(), c.Param("id"))
		return nil
	})
	v1.POST("/checkouts/:id/payment", func(c echo.Context) error {
		svc.CheckoutStartPayment(c.Response(), c.Request(), c.Param("id"))
		return nil
	})
	v1.POST("/checkouts/:id/complete", func(c echo.Context) error {
		svc.CheckoutComplete(c.Response(), c.Request(), c.Param("id"))
		return nil
	})
	v1.POST("/checkouts/:id/cancel", func(c echo.Context) error {
		svc.CheckoutCancel(c.Response(), c.Request(), c.Param("id"))
		return nil
	})
}
