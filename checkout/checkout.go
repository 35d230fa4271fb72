// Package checkout implements the dev.ucp.shopping.checkout capability:
// merchant-side checkout sessions with line items and integer-cent totals.
// Payment-card handling and mandate signing are external concerns; checkout
// completion accepts an opaque payment token.
package checkout

import (
	"time"

	ucp "github.com/ucp-foundation/ucp/go"
)

// Status is the lifecycle state of a checkout session.
type Status string

const (
	StatusIncomplete      Status = "incomplete"
	StatusReadyForPayment Status = "ready_for_payment"
	StatusCompleted       Status = "completed"
	StatusCanceled        Status = "canceled"
)

// Error codes for checkout operations, carried in ucp.ProtocolError.
const (
	ErrCodeNotFound     = "checkout_not_found"
	ErrCodeInvalidState = "checkout_invalid_state"
)

// LineItem is a product snapshot inside a checkout. The item is copied at
// add time so a later catalog change never reprices an open cart.
type LineItem struct {
	ID       string      `json:"id"`
	Item     ucp.Product `json:"item"`
	Quantity int         `json:"quantity"`

	// Subtotal is quantity times unit price, in cents.
	Subtotal int64 `json:"subtotal"`
}

// Buyer holds the customer details required before payment can start.
type Buyer struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Totals are the computed amounts for a checkout, all in cents.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// Checkout is a checkout session.
type Checkout struct {
	ID        string     `json:"id"`
	Status    Status     `json:"status"`
	Currency  string     `json:"currency"`
	LineItems []LineItem `json:"lineItems"`
	Totals    Totals     `json:"totals"`
	Buyer     *Buyer     `json:"buyer,omitempty"`

	// OrderID is set once the checkout completes.
	OrderID string `json:"orderId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
