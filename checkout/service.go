package checkout

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	ucp "github.com/ucp-foundation/ucp/go"
)

// Service manages checkout sessions in memory. Thread-safe; each exported
// method returns a deep-enough copy so callers never hold a reference into
// the store.
type Service struct {
	mu        sync.RWMutex
	checkouts map[string]*Checkout

	currency       string
	taxBasisPoints int64
	flatShipping   int64
	now            func() time.Time
}

// ServiceOption configures the checkout service
type ServiceOption func(*Service)

// WithCurrency sets the currency code stamped on new checkouts
func WithCurrency(code string) ServiceOption {
	return func(s *Service) {
		s.currency = code
	}
}

// WithTaxBasisPoints sets the tax rate in basis points (1000 = 10%)
func WithTaxBasisPoints(bp int64) ServiceOption {
	return func(s *Service) {
		s.taxBasisPoints = bp
	}
}

// WithFlatShipping sets the flat shipping charge in cents applied to
// non-empty carts
func WithFlatShipping(cents int64) ServiceOption {
	return func(s *Service) {
		s.flatShipping = cents
	}
}

// NewService creates a checkout service. Defaults: USD, 10% tax, 500-cent
// flat shipping.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		checkouts:      make(map[string]*Checkout),
		currency:       "USD",
		taxBasisPoints: 1000,
		flatShipping:   500,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create opens a new empty checkout session.
func (s *Service) Create() Checkout {
	now := s.now()
	c := &Checkout{
		ID:        "chk_" + uuid.NewString(),
		Status:    StatusIncomplete,
		Currency:  s.currency,
		LineItems: []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.checkouts[c.ID] = c
	s.mu.Unlock()

	return snapshot(c)
}

// Get returns the checkout with the given id.
func (s *Service) Get(id string) (Checkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.checkouts[id]
	if !ok {
		return Checkout{}, notFound(id)
	}
	return snapshot(c), nil
}

// AddItem adds a product to the checkout, merging quantities when the
// product is already in the cart.
func (s *Service) AddItem(id string, product ucp.Product, quantity int) (Checkout, error) {
	if quantity <= 0 {
		return Checkout{}, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			fmt.Sprintf("quantity must be positive, got %d", quantity),
			map[string]interface{}{"parameter": "quantity"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkouts[id]
	if !ok {
		return Checkout{}, notFound(id)
	}
	if err := mutable(c); err != nil {
		return Checkout{}, err
	}

	merged := false
	for i := range c.LineItems {
		if c.LineItems[i].Item.ID == product.ID {
			c.LineItems[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.LineItems = append(c.LineItems, LineItem{
			ID:       "li_" + uuid.NewString(),
			Item:     product,
			Quantity: quantity,
		})
	}

	s.recalculate(c)
	return snapshot(c), nil
}

// UpdateItem sets the quantity of a product already in the cart. Quantity
// zero removes the line item.
func (s *Service) UpdateItem(id, productID string, quantity int) (Checkout, error) {
	if quantity < 0 {
		return Checkout{}, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			fmt.Sprintf("quantity must be non-negative, got %d", quantity),
			map[string]interface{}{"parameter": "quantity"})
	}
	if quantity == 0 {
		return s.RemoveItem(id, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkouts[id]
	if !ok {
		return Checkout{}, notFound(id)
	}
	if err := mutable(c); err != nil {
		return Checkout{}, err
	}

	for i := range c.LineItems {
		if c.LineItems[i].Item.ID == productID {
			c.LineItems[i].Quantity = quantity
			s.recalculate(c)
			return snapshot(c), nil
		}
	}

	return Checkout{}, ucp.NewProtocolError(ErrCodeNotFound,
		fmt.Sprintf("product %s is not in checkout %s", productID, id), nil)
}

// RemoveItem drops a product from the cart. Removing a product that is not
// in the cart is a no-op.
func (s *Service) RemoveItem(id, productID string) (Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkouts[id]
	if !ok {
		return Checkout{}, notFound(id)
	}
	if err := mutable(c); err != nil {
		return Checkout{}, err
	}

	kept := c.LineItems[:0]
	for _, li := range c.LineItems {
		if li.Item.ID != productID {
			kept = append(kept, li)
		}
	}
	c.LineItems = kept

	s.recalculate(c)
	return snapshot(c), nil
}

// SetBuyer records the customer details on the checkout.
func (s *Service) SetBuyer(id string, buyer Buyer) (Checkout, error) {
	if !strings.Contains(buyer.Email, "@") {
		return Checkout{}, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			fmt.Sprintf("invalid buyer email %q", buyer.Email),
			map[string]interface{}{"parameter": "email"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkouts[id]
	if !ok {
		return Checkout{}, notFound(id)
	}
	if err := mutable(c); err != nil {
		return Checkout{}, err
	}

	b := buyer
	c.Buyer = &b
	c.UpdatedAt = s.now()
	return snapshot(c), nil
}

// StartPayment moves the checkout to ready_for_payment. Requires a
// non-empty cart and buyer details.
func (s *Service) StartPayment(id string) (Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkouts[id]
	if !ok {
		return Checkout{}, notFound(id)
	}
	if c.Status != StatusIncomplete {
		return Checkout{}, invalidState(c, "start payment")
	}
	if len(c.LineItems) == 0 {
		return Checkout{}, ucp.NewProtocolError(ErrCodeInvalidState,
			fmt.Sprintf("checkout %s is empty", id), nil)
	}
	if c.Buyer == nil || c.Buyer.Email == "" {
		return Checkout{}, ucp.NewProtocolError(ErrCodeInvalidState,
			fmt.Sprintf("checkout %s has no buyer email", id), nil)
	}

	c.Status = StatusReadyForPayment
	c.UpdatedAt = s.now()
	return snapshot(c), nil
}

// Complete finishes a ready_for_payment checkout and assigns an order id.
// The payment token is opaque to this capability.
func (s *Service) Complete(id, paymentToken string) (Checkout, error) {
	if paymentToken == "" {
		return Checkout{}, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			"missing payment token",
			map[string]interface{}{"parameter": "paymentToken"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkouts[id]
	if !ok {
		return Checkout{}, notFound(id)
	}
	if c.Status != StatusReadyForPayment {
		return Checkout{}, invalidState(c, "complete")
	}

	c.Status = StatusCompleted
	c.OrderID = "ORD-" + strings.ToUpper(uuid.NewString()[:8])
	c.UpdatedAt = s.now()
	return snapshot(c), nil
}

// Cancel cancels an open checkout.
func (s *Service) Cancel(id string) (Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkouts[id]
	if !ok {
		return Checkout{}, notFound(id)
	}
	if c.Status == StatusCompleted {
		return Checkout{}, invalidState(c, "cancel")
	}

	c.Status = StatusCanceled
	c.UpdatedAt = s.now()
	return snapshot(c), nil
}

// recalculate recomputes line subtotals and checkout totals. Integer cents
// throughout; tax rounds down.
func (s *Service) recalculate(c *Checkout) {
	var subtotal int64
	for i := range c.LineItems {
		c.LineItems[i].Subtotal = c.LineItems[i].Item.Price * int64(c.LineItems[i].Quantity)
		subtotal += c.LineItems[i].Subtotal
	}

	tax := subtotal * s.taxBasisPoints / 10000
	shipping := int64(0)
	if subtotal > 0 {
		shipping = s.flatShipping
	}

	c.Totals = Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
	c.UpdatedAt = s.now()
}

func mutable(c *Checkout) error {
	if c.Status != StatusIncomplete {
		return invalidState(c, "modify")
	}
	return nil
}

func invalidState(c *Checkout, action string) error {
	return ucp.NewProtocolError(ErrCodeInvalidState,
		fmt.Sprintf("cannot %s checkout %s in status %s", action, c.ID, c.Status),
		map[string]interface{}{"status": string(c.Status)})
}

func notFound(id string) error {
	return ucp.NewProtocolError(ErrCodeNotFound, fmt.Sprintf("checkout %s not found", id), nil)
}

func snapshot(c *Checkout) Checkout {
	out := *c
	out.LineItems = append([]LineItem(nil), c.LineItems...)
	if c.Buyer != nil {
		b := *c.Buyer
		out.Buyer = &b
	}
	return out
}
