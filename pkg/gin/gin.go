// Package gin mounts the merchant-side UCP routes on a gin router.
package gin

import (
	"github.com/gin-gonic/gin"

	ucp "github.com/ucp-foundation/ucp/go"
	ucphttp "github.com/ucp-foundation/ucp/go/http"
)

// Register mounts the discovery, search, and checkout routes on the given
// router. The well-known discovery path is registered at the root, so the
// router must not carry a path prefix of its own.
func Register(router gin.IRouter, svc *ucphttp.Service) {
	router.GET(ucp.WellKnownPath, func(c *gin.Context) {
		svc.Discovery(c.Writer, c.Request)
	})

	v1 := router.Group("/ucp/v1")
	v1.GET(ucp.SearchPath, func(c *gin.Context) {
		svc.Search(c.Writer, c.Request)
	})

	if !svc.HasCheckouts() {
		return
	}

	v1.POST("/checkouts", func(c *gin.Context) {
		svc.CheckoutCreate(c.Writer, c.Request)
	})
	v1.GET("/checkouts/:id", func(c *gin.Context) {
		svc.CheckoutGet(c.Writer, c.Request, c.Param("id"))
	})
	v1.POST("/checkouts/:id/items", func(c *gin.Context) {
		svc.CheckoutAddItem(c.Writer, c.Request, c.Param("id"))
	})
	v1.PATCH("/checkouts/:id/items/:productId", func(c *gin.Context) {
		svc.CheckoutUpdateItem(c.Writer, c.Request, c.Param("id"), c.Param("productId"))
	})
	v1.DELETE("/checkouts/:id/items/:productId", func(c *gin.Context) {
		svc.CheckoutRemoveItem(c.Writer, c.Request, c.Param("id"), c.Param("productId"))
	})
	v1.PUT("/checkouts/:id/buyer", func(c *gin.Context) {
		svc.CheckoutSetBuyer(c.Writer, c.Request, c.Param("id"))
	})
	v1.POST("/checkouts/:id/payment", func(c *gin.Context) {
		svc.CheckoutStartPayment(c.Writer, c.Request, c.Param("id"))
	})
	v1.POST("/checkouts/:id/complete", func(c *gin.Context) {
		svc.CheckoutComplete(c.Writer, c.Request, c.Param("id"))
	})
	v1.POST("/checkouts/:id/cancel", func(c *gin.Context) {
		svc.CheckoutCancel(c.Writer, c.Request, c.Param("id"))
	})
}
