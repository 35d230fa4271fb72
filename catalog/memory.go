// Package catalog provides merchant-side product stores implementing
// ucp.Catalog: an in-memory store for demos and tests, and a Postgres store
// for persistent catalogs.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	ucp "github.com/ucp-foundation/ucp/go"
)

// Memory is an in-memory product catalog.
//
// Suitable for single-instance deployments and tests; for persistent
// catalogs use Postgres. Thread-safe with mutex protection; Find returns
// copies, so callers can't mutate the stored products.
type Memory struct {
	mu       sync.RWMutex
	products map[string]ucp.Product
}

// NewMemory creates an in-memory catalog seeded with the given products.
// Products without an ID get a generated one.
func NewMemory(products ...ucp.Product) *Memory {
	m := &Memory{products: make(map[string]ucp.Product, len(products))}
	for _, p := range products {
		m.Put(p)
	}
	return m
}

// Find implements ucp.Catalog using case-insensitive substring matching over
// title and description.
func (m *Memory) Find(ctx context.Context, query string) ([]ucp.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []ucp.Product
	for _, p := range m.products {
		if ucp.MatchProduct(p, query) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// GetProduct implements ucp.ProductGetter.
func (m *Memory) GetProduct(ctx context.Context, id string) (ucp.Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return ucp.Product{}, false, err
	}
	p, ok := m.Get(id)
	return p, ok, nil
}

// Get returns the product with the given id.
func (m *Memory) Get(id string) (ucp.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	return p, ok
}

// Put inserts or replaces a product, generating an id if absent, and
// returns the stored product.
func (m *Memory) Put(p ucp.Product) ucp.Product {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	m.mu.Lock()
	m.products[p.ID] = p
	m.mu.Unlock()

	return p
}

// Delete removes a product. Deleting an unknown id is an error so callers
// can distinguish a no-op from a removal.
func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("product %s not found", id)
	}
	delete(m.products, id)
	return nil
}

// Len returns the number of products in the catalog.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}
