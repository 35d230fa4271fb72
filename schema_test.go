package ucp

import "testing"

func TestValidateDiscoveryJSON(t *testing.T) {
	good := []byte(`{
		"protocolVersion": "2026-01-11",
		"services": {"dev.ucp.shopping.search": {"version": "1.0", "restEndpoint": "https://s.example.com/ucp/v1"}},
		"capabilities": [{"name": "dev.ucp.shopping.search", "version": "1.0"}],
		"merchant": {"id": "m-1", "name": "Demo", "baseUrl": "https://s.example.com"}
	}`)
	if err := ValidateDiscoveryJSON(good); err != nil {
		t.Fatalf("Valid document rejected: %v", err)
	}

	missingMerchant := []byte(`{"protocolVersion": "2026-01-11", "services": {}, "capabilities": []}`)
	if err := ValidateDiscoveryJSON(missingMerchant); err == nil {
		t.Fatal("Expected error for missing merchant")
	}
}

func TestValidateSearchResultJSON(t *testing.T) {
	good := []byte(`{"items": [{"id": "a", "title": "A", "price": 499}], "total": 1}`)
	if err := ValidateSearchResultJSON(good); err != nil {
		t.Fatalf("Valid result rejected: %v", err)
	}

	cases := map[string][]byte{
		"float price":   []byte(`{"items": [{"id": "a", "title": "A", "price": 4.99}], "total": 1}`),
		"string price":  []byte(`{"items": [{"id": "a", "title": "A", "price": "4.99"}], "total": 1}`),
		"missing total": []byte(`{"items": []}`),
		"missing title": []byte(`{"items": [{"id": "a", "price": 499}], "total": 1}`),
	}
	for name, data := range cases {
		if err := ValidateSearchResultJSON(data); err == nil {
			t.Fatalf("Expected schema rejection for %s", name)
		}
	}
}
