package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	ucp "github.com/ucp-foundation/ucp/go"
	"github.com/ucp-foundation/ucp/go/checkout"
)

// Service implements the merchant-side HTTP surface: the well-known
// discovery route, product search, and the checkout capability. Handlers
// take explicit path parameters so framework adapters can feed them from
// their own routers; Handler wires everything onto a stdlib mux.
type Service struct {
	responder *ucp.Responder
	checkouts *checkout.Service
	products  ucp.ProductGetter
	logger    *logrus.Logger
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithCheckouts enables the checkout routes
func WithCheckouts(cs *checkout.Service, products ucp.ProductGetter) ServiceOption {
	return func(s *Service) {
		s.checkouts = cs
		s.products = products
	}
}

// WithLogger sets the logger used for server-side faults
func WithLogger(logger *logrus.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates the merchant-side HTTP service over a responder.
func NewService(responder *ucp.Responder, opts ...ServiceOption) *Service {
	s := &Service{responder: responder}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasCheckouts reports whether the checkout routes are enabled.
func (s *Service) HasCheckouts() bool {
	return s.checkouts != nil
}

// Handler returns a mux serving the full responder surface. The REST
// endpoint advertised in the discovery document maps to the /ucp/v1 prefix.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+ucp.WellKnownPath, s.Discovery)
	mux.HandleFunc("GET /ucp/v1"+ucp.SearchPath, s.Search)

	if s.checkouts != nil {
		mux.HandleFunc("POST /ucp/v1/checkouts", s.CheckoutCreate)
		mux.HandleFunc("GET /ucp/v1/checkouts/{id}", func(w http.ResponseWriter, r *http.Request) {
			s.CheckoutGet(w, r, r.PathValue("id"))
		})
		mux.HandleFunc("POST /ucp/v1/checkouts/{id}/items", func(w http.ResponseWriter, r *http.Request) {
			s.CheckoutAddItem(w, r, r.PathValue("id"))
		})
		mux.HandleFunc("PATCH /ucp/v1/checkouts/{id}/items/{productId}", func(w http.ResponseWriter, r *http.Request) {
			s.CheckoutUpdateItem(w, r, r.PathValue("id"), r.PathValue("productId"))
		})
		mux.HandleFunc("DELETE /ucp/v1/checkouts/{id}/items/{productId}", func(w http.ResponseWriter, r *http.Request) {
			s.CheckoutRemoveItem(w, r, r.PathValue("id"), r.PathValue("productId"))
		})
		mux.HandleFunc("PUT /ucp/v1/checkouts/{id}/buyer", func(w http.ResponseWriter, r *http.Request) {
			s.CheckoutSetBuyer(w, r, r.PathValue("id"))
		})
		mux.HandleFunc("POST /ucp/v1/checkouts/{id}/payment", func(w http.ResponseWriter, r *http.Request) {
			s.CheckoutStartPayment(w, r, r.PathValue("id"))
		})
		mux.HandleFunc("POST /ucp/v1/checkouts/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
			s.CheckoutComplete(w, r, r.PathValue("id"))
		})
		mux.HandleFunc("POST /ucp/v1/checkouts/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
			s.CheckoutCancel(w, r, r.PathValue("id"))
		})
	}

	return mux
}

// Discovery serves the discovery document. A well-formed request never
// 4xxs here: broken responder configuration is a 500.
func (s *Service) Discovery(w http.ResponseWriter, r *http.Request) {
	doc := s.responder.DiscoveryDocument()
	if err := ucp.ValidateDiscoveryDocument(doc); err != nil {
		s.fault(w, r, ucp.NewProtocolError(ucp.ErrCodeInternal,
			"discovery configuration is invalid", nil), err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// Search serves product search.
func (s *Service) Search(w http.ResponseWriter, r *http.Request) {
	query, err := ParseSearchQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.responder.Search(r.Context(), query)
	if err != nil {
		if ucp.ErrorCode(err) == ucp.ErrCodeInternal {
			s.fault(w, r, ucp.NewProtocolError(ucp.ErrCodeInternal, "search failed", nil), err)
			return
		}
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// ----------------------------------------------------------------------------
// Checkout routes
// ----------------------------------------------------------------------------

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type completeRequest struct {
	PaymentToken string `json:"paymentToken"`
}

func (s *Service) CheckoutCreate(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusCreated, s.checkouts.Create())
}

func (s *Service) CheckoutGet(w http.ResponseWriter, r *http.Request, id string) {
	c, err := s.checkouts.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Service) CheckoutAddItem(w http.ResponseWriter, r *http.Request, id string) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			"malformed request body", nil))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, ok, err := s.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		s.fault(w, r, ucp.NewProtocolError(ucp.ErrCodeInternal, "catalog lookup failed", nil), err)
		return
	}
	if !ok {
		s.writeError(w, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			"unknown product "+req.ProductID,
			map[string]interface{}{"parameter": "productId"}))
		return
	}

	c, err := s.checkouts.AddItem(id, product, req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Service) CheckoutUpdateItem(w http.ResponseWriter, r *http.Request, id, productID string) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			"malformed request body", nil))
		return
	}

	c, err := s.checkouts.UpdateItem(id, productID, req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Service) CheckoutRemoveItem(w http.ResponseWriter, r *http.Request, id, productID string) {
	c, err := s.checkouts.RemoveItem(id, productID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Service) CheckoutSetBuyer(w http.ResponseWriter, r *http.Request, id string) {
	var buyer checkout.Buyer
	if err := json.NewDecoder(r.Body).Decode(&buyer); err != nil {
		s.writeError(w, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			"malformed request body", nil))
		return
	}

	c, err := s.checkouts.SetBuyer(id, buyer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Service) CheckoutStartPayment(w http.ResponseWriter, r *http.Request, id string) {
	c, err := s.checkouts.StartPayment(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Service) CheckoutComplete(w http.ResponseWriter, r *http.Request, id string) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			"malformed request body", nil))
		return
	}

	c, err := s.checkouts.Complete(id, req.PaymentToken)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Service) CheckoutCancel(w http.ResponseWriter, r *http.Request, id string) {
	c, err := s.checkouts.Cancel(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

// ----------------------------------------------------------------------------
// Response helpers
// ----------------------------------------------------------------------------

func (s *Service) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.WithError(err).Warn("failed to encode response")
	}
}

// writeError maps a protocol error to its HTTP status. A 200 never carries
// an error body.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	pe, ok := err.(*ucp.ProtocolError)
	if !ok {
		pe = ucp.NewProtocolError(ucp.ErrCodeInternal, err.Error(), nil)
	}
	s.writeJSON(w, statusFor(pe.Code), pe)
}

// fault logs an internal failure and responds 500 with a generic body. The
// detailed error stays in the log, not on the wire.
func (s *Service) fault(w http.ResponseWriter, r *http.Request, public *ucp.ProtocolError, cause error) {
	if s.logger != nil {
		s.logger.WithError(cause).WithField("path", r.URL.Path).Error(public.Message)
	}
	s.writeJSON(w, http.StatusInternalServerError, public)
}

func statusFor(code string) int {
	switch code {
	case ucp.ErrCodeInvalidParameter:
		return http.StatusBadRequest
	case checkout.ErrCodeNotFound:
		return http.StatusNotFound
	case checkout.ErrCodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
