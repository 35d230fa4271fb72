package gin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ucp "github.com/ucp-foundation/ucp/go"
	"github.com/ucp-foundation/ucp/go/catalog"
	"github.com/ucp-foundation/ucp/go/checkout"
	ucphttp "github.com/ucp-foundation/ucp/go/http"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := catalog.NewMemory(ucp.Product{ID: "PROD-001", Title: "Chocochip Cookies", Price: 499})
	responder := ucp.NewResponder(
		ucp.WithMerchant(ucp.Merchant{ID: "merchant-1", Name: "Demo Store", BaseURL: "https://store.example.com"}),
		ucp.WithCatalog(store),
	)
	svc := ucphttp.NewService(responder, ucphttp.WithCheckouts(checkout.NewService(), store))

	router := gin.New()
	Register(router, svc)
	return router
}

func TestRegisterDiscovery(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ucp.WellKnownPath, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var doc ucp.DiscoveryDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "merchant-1", doc.Merchant.ID)
}

func TestRegisterSearch(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ucp/v1/products/search?q=cookies", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result ucp.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Total)
}

func TestRegisterCheckoutParams(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ucp/v1/checkouts", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var c checkout.Checkout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))

	// Path parameter routing reaches the same checkout by id.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ucp/v1/checkouts/"+c.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
