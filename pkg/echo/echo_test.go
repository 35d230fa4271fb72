package echo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ucp "github.com/ucp-foundation/ucp/go"
	"github.com/ucp-foundation/ucp/go/catalog"
	"github.com/ucp-foundation/ucp/go/checkout"
	ucphttp "github.com/ucp-foundation/ucp/go/http"
)

func testRouter() *echo.Echo {
	store := catalog.NewMemory(ucp.Product{ID: "PROD-001", Title: "Chocochip Cookies", Price: 499})
	responder := ucp.NewResponder(
		ucp.WithMerchant(ucp.Merchant{ID: "merchant-1", Name: "Demo Store", BaseURL: "https://store.example.com"}),
		ucp.WithCatalog(store),
	)
	svc := ucphttp.NewService(responder, ucphttp.WithCheckouts(checkout.NewService(), store))

	e := echo.New()
	Register(e, svc)
	return e
}

func TestRegisterDiscovery(t *testing.T) {
	e := testRouter()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ucp.WellKnownPath, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var doc ucp.DiscoveryDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "merchant-1", doc.Merchant.ID)
}

func TestRegisterSearch(t *testing.T) {
	e := testRouter()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ucp/v1/products/search?q=cookies&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result ucp.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Items, 1)
	assert.EqualValues(t, 499, result.Items[0].Price)
}

func TestRegisterBadLimit(t *testing.T) {
	e := testRouter()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ucp/v1/products/search?limit=abc", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var pe ucp.ProtocolError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pe))
	assert.Equal(t, ucp.ErrCodeInvalidParameter, pe.Code)
}
