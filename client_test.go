package ucp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// Mock fetcher for testing
type mockFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fetch func(url string) ([]byte, int, error)
}

func newMockFetcher(fetch func(url string) ([]byte, int, error)) *mockFetcher {
	return &mockFetcher{calls: make(map[string]int), fetch: fetch}
}

func (m *mockFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, int, error) {
	m.mu.Lock()
	m.calls[rawURL]++
	m.mu.Unlock()
	return m.fetch(rawURL)
}

func (m *mockFetcher) callCount(substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for url, count := range m.calls {
		if strings.Contains(url, substr) {
			n += count
		}
	}
	return n
}

const testBaseURL = "https://store.example.com"

func marshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

// merchantFetcher simulates a well-behaved merchant serving discovery and a
// fixed search result.
func merchantFetcher(t *testing.T, result SearchResult) *mockFetcher {
	doc := validDocument()
	return newMockFetcher(func(url string) ([]byte, int, error) {
		switch {
		case strings.Contains(url, WellKnownPath):
			return marshal(t, doc), 200, nil
		case strings.Contains(url, SearchPath):
			return marshal(t, result), 200, nil
		default:
			return []byte("not found"), 404, nil
		}
	})
}

func TestDiscover(t *testing.T) {
	fetcher := merchantFetcher(t, SearchResult{Items: []Product{}, Total: 0})
	client := NewClient(WithFetcher(fetcher))

	doc, err := client.Discover(context.Background(), testBaseURL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.Merchant.ID != "merchant-1" {
		t.Fatalf("Expected merchant-1, got %s", doc.Merchant.ID)
	}
	if fetcher.callCount(WellKnownPath) != 1 {
		t.Fatalf("Expected one discovery fetch, got %d", fetcher.callCount(WellKnownPath))
	}
}

func TestDiscoverNon200(t *testing.T) {
	fetcher := newMockFetcher(func(url string) ([]byte, int, error) {
		return []byte("internal error"), 500, nil
	})
	client := NewClient(WithFetcher(fetcher))

	_, err := client.Discover(context.Background(), testBaseURL)
	if err == nil {
		t.Fatal("Expected error for 500 discovery response")
	}
	if ErrorCode(err) != ErrCodeDiscoveryUnavailable {
		t.Fatalf("Expected %s, got %s", ErrCodeDiscoveryUnavailable, ErrorCode(err))
	}
}

func TestDiscoverMalformedJSON(t *testing.T) {
	fetcher := newMockFetcher(func(url string) ([]byte, int, error) {
		return []byte("{not json"), 200, nil
	})
	client := NewClient(WithFetcher(fetcher))

	_, err := client.Discover(context.Background(), testBaseURL)
	if ErrorCode(err) != ErrCodeDiscoveryUnavailable {
		t.Fatalf("Expected %s, got %v", ErrCodeDiscoveryUnavailable, err)
	}
}

func TestDiscoverMissingMerchantID(t *testing.T) {
	doc := validDocument()
	doc.Merchant.ID = ""
	fetcher := newMockFetcher(func(url string) ([]byte, int, error) {
		return marshal(t, doc), 200, nil
	})
	client := NewClient(WithFetcher(fetcher))

	_, err := client.Discover(context.Background(), testBaseURL)
	if ErrorCode(err) != ErrCodeDiscoveryUnavailable {
		t.Fatalf("Expected %s, got %v", ErrCodeDiscoveryUnavailable, err)
	}
}

func TestSearch(t *testing.T) {
	result := SearchResult{
		Items: []Product{{ID: "PROD-001", Title: "Chocochip Cookies", Price: 499}},
		Total: 1,
	}
	client := NewClient(WithFetcher(merchantFetcher(t, result)))

	got, err := client.Search(context.Background(), testBaseURL, SearchQuery{Query: "cookies", Limit: 5})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Total != 1 || len(got.Items) != 1 {
		t.Fatalf("Unexpected result: %+v", got)
	}
	if DisplayPrice(got.Items[0].Price) != "4.99" {
		t.Fatalf("Expected display price 4.99, got %s", DisplayPrice(got.Items[0].Price))
	}
}

func TestSearchUsesDiscoveryCache(t *testing.T) {
	result := SearchResult{Items: []Product{}, Total: 0}
	fetcher := merchantFetcher(t, result)
	client := NewClient(WithFetcher(fetcher), WithCacheTTL(time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := client.Search(context.Background(), testBaseURL, SearchQuery{Query: "x", Limit: 5}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if n := fetcher.callCount(WellKnownPath); n != 1 {
		t.Fatalf("Expected a single discovery fetch across cached searches, got %d", n)
	}
	if n := fetcher.callCount(SearchPath); n != 3 {
		t.Fatalf("Expected 3 search fetches, got %d", n)
	}
}

func TestSearchCacheDisabled(t *testing.T) {
	fetcher := merchantFetcher(t, SearchResult{Items: []Product{}, Total: 0})
	client := NewClient(WithFetcher(fetcher), WithCacheTTL(0))

	for i := 0; i < 2; i++ {
		if _, err := client.Search(context.Background(), testBaseURL, SearchQuery{Query: "x", Limit: 5}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if n := fetcher.callCount(WellKnownPath); n != 2 {
		t.Fatalf("Expected discovery per search with caching disabled, got %d", n)
	}
}

func TestSearchStaleCacheTriggersRediscovery(t *testing.T) {
	oldDoc := validDocument()
	newDoc := validDocument()
	newDoc.Services[CapabilitySearch] = Service{Version: "1.0", RESTEndpoint: "https://store.example.com/ucp/v2"}
	newDoc.Services[CapabilityCheckout] = newDoc.Services[CapabilitySearch]

	result := SearchResult{Items: []Product{{ID: "p", Title: "P", Price: 1}}, Total: 1}

	var mu sync.Mutex
	moved := false
	fetcher := newMockFetcher(func(url string) ([]byte, int, error) {
		mu.Lock()
		hasMoved := moved
		mu.Unlock()
		switch {
		case strings.Contains(url, WellKnownPath):
			if hasMoved {
				return marshal(t, newDoc), 200, nil
			}
			return marshal(t, oldDoc), 200, nil
		case strings.Contains(url, "/ucp/v1"):
			if hasMoved {
				return []byte("gone"), 404, nil
			}
			return marshal(t, result), 200, nil
		case strings.Contains(url, "/ucp/v2"):
			return marshal(t, result), 200, nil
		default:
			return []byte("not found"), 404, nil
		}
	})

	client := NewClient(WithFetcher(fetcher), WithCacheTTL(time.Hour))

	// Populate the cache against the old endpoint.
	if _, err := client.Search(context.Background(), testBaseURL, SearchQuery{Query: "p", Limit: 1}); err != nil {
		t.Fatalf("Initial search failed: %v", err)
	}

	// Merchant moves its endpoint; the cached document is now stale.
	mu.Lock()
	moved = true
	mu.Unlock()

	got, err := client.Search(context.Background(), testBaseURL, SearchQuery{Query: "p", Limit: 1})
	if err != nil {
		t.Fatalf("Expected rediscovery to recover, got %v", err)
	}
	if got.Total != 1 {
		t.Fatalf("Unexpected result after rediscovery: %+v", got)
	}
	if n := fetcher.callCount(WellKnownPath); n != 2 {
		t.Fatalf("Expected exactly one rediscovery, got %d discovery fetches", n)
	}
}

func TestSearchServerError(t *testing.T) {
	doc := validDocument()
	fetcher := newMockFetcher(func(url string) ([]byte, int, error) {
		if strings.Contains(url, WellKnownPath) {
			return marshal(t, doc), 200, nil
		}
		body := marshal(t, NewProtocolError(ErrCodeInvalidParameter, "limit must be an integer", nil))
		return body, 400, nil
	})
	client := NewClient(WithFetcher(fetcher))

	_, err := client.Search(context.Background(), testBaseURL, SearchQuery{Query: "x", Limit: 5})
	if ErrorCode(err) != ErrCodeSearchRequestFailed {
		t.Fatalf("Expected %s, got %v", ErrCodeSearchRequestFailed, err)
	}
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatal("Expected a ProtocolError")
	}
	if pe.Details["code"] != ErrCodeInvalidParameter {
		t.Fatalf("Expected wire error code in details, got %v", pe.Details)
	}
}

func TestSearchRejectsMalformedProducts(t *testing.T) {
	doc := validDocument()
	fetcher := newMockFetcher(func(url string) ([]byte, int, error) {
		if strings.Contains(url, WellKnownPath) {
			return marshal(t, doc), 200, nil
		}
		// One valid item, one missing its id: the whole result must be
		// rejected, not partially returned.
		return []byte(`{"items":[{"id":"a","title":"A","price":100},{"title":"B","price":200}],"total":2}`), 200, nil
	})
	client := NewClient(WithFetcher(fetcher))

	_, err := client.Search(context.Background(), testBaseURL, SearchQuery{Query: "x", Limit: 5})
	if ErrorCode(err) != ErrCodeSearchResponseInvalid {
		t.Fatalf("Expected %s, got %v", ErrCodeSearchResponseInvalid, err)
	}
}

func TestSearchSchemaValidationRejectsFloatPrice(t *testing.T) {
	doc := validDocument()
	fetcher := newMockFetcher(func(url string) ([]byte, int, error) {
		if strings.Contains(url, WellKnownPath) {
			return marshal(t, doc), 200, nil
		}
		return []byte(`{"items":[{"id":"a","title":"A","price":4.99}],"total":1}`), 200, nil
	})
	client := NewClient(WithFetcher(fetcher), WithSchemaValidation(true))

	_, err := client.Search(context.Background(), testBaseURL, SearchQuery{Query: "x", Limit: 5})
	if ErrorCode(err) != ErrCodeSearchResponseInvalid {
		t.Fatalf("Expected %s, got %v", ErrCodeSearchResponseInvalid, err)
	}
}

func TestConcurrentSearches(t *testing.T) {
	result := SearchResult{Items: []Product{{ID: "p", Title: "P", Price: 1}}, Total: 1}
	client := NewClient(WithFetcher(merchantFetcher(t, result)), WithCacheTTL(time.Minute))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Search(context.Background(), testBaseURL, SearchQuery{Query: "p", Limit: 1}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("Concurrent search failed: %v", err)
	}
}

func TestResolveEndpointUnknownCapability(t *testing.T) {
	_, err := ResolveEndpoint(validDocument(), "dev.ucp.shopping.reviews")
	if ErrorCode(err) != ErrCodeCapabilityNotFound {
		t.Fatalf("Expected %s, got %v", ErrCodeCapabilityNotFound, err)
	}
}
